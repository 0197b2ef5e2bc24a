package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/activity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(channelID, sourceID string, at time.Time) *domain.Activity {
	return &domain.Activity{
		Kind:      domain.KindCreated,
		SourceID:  sourceID,
		ChannelID: channelID,
		ChatID:    -100,
		At:        at,
	}
}

func TestFileStorage_RecentNewestFirst(t *testing.T) {
	repo, err := NewFileStorage(t.TempDir(), 0)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, repo.SaveActivity(entry("c1", id, base.Add(time.Duration(i)*time.Second))))
	}

	recent, err := repo.GetRecent("c1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "m3", recent[0].SourceID)
	assert.Equal(t, "m2", recent[1].SourceID)

	empty, err := repo.GetRecent("nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFileStorage_GetAllMergesChannels(t *testing.T) {
	repo, err := NewFileStorage(t.TempDir(), 0)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveActivity(entry("c1", "a", base)))
	require.NoError(t, repo.SaveActivity(entry("c2", "b", base.Add(time.Minute))))
	require.NoError(t, repo.SaveActivity(entry("", "c", base.Add(2*time.Minute))))

	all, err := repo.GetAll(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].SourceID, all[1].SourceID, all[2].SourceID})

	unknown, err := repo.GetRecent("", 0)
	require.NoError(t, err)
	require.Len(t, unknown, 1)
	assert.Equal(t, "c", unknown[0].SourceID)
}

func TestFileStorage_Retention(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileStorage(dir, 2)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"m1", "m2", "m3", "m4"} {
		require.NoError(t, repo.SaveActivity(entry("c1", id, base.Add(time.Duration(i)*time.Second))))
	}

	files, err := os.ReadDir(filepath.Join(dir, "activity", "c1"))
	require.NoError(t, err)
	assert.Len(t, files, 2)

	recent, err := repo.GetRecent("c1", 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "m4", recent[0].SourceID)
	assert.Equal(t, "m3", recent[1].SourceID)
}

func TestFileStorage_ChannelStaysInsideActivityDir(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileStorage(dir, 0)
	require.NoError(t, err)

	// A valid entry directly in the storage root must never be served.
	stray, err := json.Marshal(entry("c1", "stray", time.Now()))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00000000000000000001-stray-created.json"), stray, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "activity", "00000000000000000001-stray-created.json"), stray, 0o600))

	for _, channelID := range []string{"..", ".", "/", "../..", "c1/.."} {
		activities, err := repo.GetRecent(channelID, 0)
		require.NoError(t, err, channelID)
		assert.Empty(t, activities, channelID)
	}

	require.NoError(t, repo.SaveActivity(entry("..", "m1", time.Now())))
	unknown, err := repo.GetRecent("", 0)
	require.NoError(t, err)
	require.Len(t, unknown, 1)
	assert.Equal(t, "m1", unknown[0].SourceID)
}
