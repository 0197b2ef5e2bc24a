package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "validate")
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestValidateCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
DISCORD_TOKEN: d
TELEGRAM_TOKEN: t
CHANNEL_PAIRS:
  - DISCORD_CHANNEL_ID: "111"
    TELEGRAM_CHAT_ID: -100
  - DISCORD_CHANNEL_ID: "222"
    TELEGRAM_CHAT_ID: -200
    TELEGRAM_THREAD_ID: 5
`), 0o600))

	out, err := execute(t, "validate", "--config", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Configuration OK: 2 pairing(s), memory correlation backend")
	assert.Contains(t, out, "111 -> -100\n")
	assert.Contains(t, out, "222 -> -200 (thread 5)")
}

func TestValidateCmd_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DISCORD_TOKEN: d\nTELEGRAM_TOKEN: t\n"), 0o600))

	_, err := execute(t, "validate", "-c", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

func TestRunCmd_InvalidConfigFailsBeforeStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o600))

	_, err := execute(t, "run", "-c", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}
