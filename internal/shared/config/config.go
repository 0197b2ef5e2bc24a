package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/discord-telegram-relay/internal/modules/pairing/domain"
	"github.com/reshetovitsme/discord-telegram-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

type Config struct {
	DiscordToken   string `koanf:"DISCORD_TOKEN"`
	TelegramToken  string `koanf:"TELEGRAM_TOKEN"`
	TelegramAPIURL string `koanf:"TELEGRAM_API_URL"`

	// ChannelPairs is validated and filled from the raw CHANNEL_PAIRS list.
	ChannelPairs []domain.Pairing `koanf:"-"`

	StoragePath string `koanf:"STORAGE_PATH"`
	HTTPPort    string `koanf:"HTTP_PORT"`
	LogLevel    string `koanf:"LOG_LEVEL"`
	LogFile     string `koanf:"LOG_FILE"`

	BackfillEnabled      bool          `koanf:"BACKFILL_ENABLED"`
	BackfillLimit        int           `koanf:"BACKFILL_LIMIT"`
	BackfillPace         time.Duration `koanf:"BACKFILL_PACE"`
	BackfillAutoReverse  bool          `koanf:"BACKFILL_AUTO_REVERSE"`
	BackfillReverseDelay time.Duration `koanf:"BACKFILL_REVERSE_DELAY"`

	CorrelationBackend Backend       `koanf:"CORRELATION_BACKEND"`
	RecordTTL          time.Duration `koanf:"RECORD_TTL"`
	RedisAddr          string        `koanf:"REDIS_ADDR"`
	RedisPassword      string        `koanf:"REDIS_PASSWORD"`
	RedisDB            int           `koanf:"REDIS_DB"`
	RedisPrefix        string        `koanf:"REDIS_PREFIX"`

	MentionAck  bool `koanf:"MENTION_ACK"`
	AccessCheck bool `koanf:"ACCESS_CHECK"`
	EventBuffer int  `koanf:"EVENT_BUFFER"`
}

// DefaultFiles are probed in order when no explicit config path is given.
var DefaultFiles = []string{
	"env.yaml",
	"config.yaml",
	"config.yml",
	"config.json",
	"config.toml",
}

var defaults = map[string]any{
	"TELEGRAM_API_URL":       "https://api.telegram.org",
	"STORAGE_PATH":           "./data",
	"HTTP_PORT":              "8080",
	"LOG_LEVEL":              "info",
	"BACKFILL_ENABLED":       true,
	"BACKFILL_LIMIT":         1,
	"BACKFILL_PACE":          500 * time.Millisecond,
	"BACKFILL_AUTO_REVERSE":  true,
	"BACKFILL_REVERSE_DELAY": 5 * time.Second,
	"CORRELATION_BACKEND":    BackendMemory.String(),
	"RECORD_TTL":             time.Duration(0),
	"REDIS_ADDR":             "localhost:6379",
	"REDIS_PREFIX":           "relay:delivery:",
	"MENTION_ACK":            true,
	"ACCESS_CHECK":           true,
	"EVENT_BUFFER":           100,
}

// Load reads configuration from path (or the first existing default file),
// applies environment overrides and validates the result. Every validation
// failure wraps errors.ErrConfiguration.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	configFile := path
	if configFile == "" {
		configFile, _ = lo.Find(DefaultFiles, func(file string) bool {
			_, err := os.Stat(file)
			return err == nil
		})
	}

	if configFile != "" {
		var parser koanf.Parser
		ext := filepath.Ext(configFile)

		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		case ".toml":
			parser = toml.Parser()
		default:
			return nil, invalid("unsupported config file extension: %s", ext)
		}

		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.In("config").With("config_file", configFile).Wrap(fmt.Errorf("%w: %w", errors.ErrConfiguration, err))
		}
	}

	// Environment variables override file values; keys keep their upper-case names.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return s
	}), nil); err != nil {
		return nil, oops.In("config").With("context", "loading environment variables").Wrap(err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.In("config").With("context", "unmarshaling config").Wrap(fmt.Errorf("%w: %w", errors.ErrConfiguration, err))
	}

	if cfg.DiscordToken == "" || cfg.TelegramToken == "" {
		return nil, oops.In("config").Code("configuration_error").Wrap(fmt.Errorf("%w: %w", errors.ErrConfiguration, errors.ErrMissingToken))
	}

	pairs, err := ParseChannelPairs(k.Get("CHANNEL_PAIRS"))
	if err != nil {
		return nil, err
	}
	cfg.ChannelPairs = pairs

	backend, err := ParseBackend(cfg.CorrelationBackend.String())
	if err != nil {
		return nil, invalid("CORRELATION_BACKEND: %v", err)
	}
	cfg.CorrelationBackend = backend
	if cfg.BackfillLimit < 0 {
		return nil, invalid("BACKFILL_LIMIT must not be negative")
	}

	return &cfg, nil
}

// ParseChannelPairs validates the raw CHANNEL_PAIRS value: a non-empty list
// where every entry carries a string DISCORD_CHANNEL_ID, a numeric
// TELEGRAM_CHAT_ID and an optional numeric TELEGRAM_THREAD_ID.
func ParseChannelPairs(raw any) ([]domain.Pairing, error) {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil, oops.In("config").Code("configuration_error").Wrap(fmt.Errorf("%w: %w", errors.ErrConfiguration, errors.ErrNoChannelPairs))
	}

	pairs := make([]domain.Pairing, 0, len(items))
	for i, item := range items {
		n := i + 1

		entry, ok := item.(map[string]any)
		if !ok {
			return nil, invalid("pair #%d must be a mapping", n)
		}

		channelID, ok := entry["DISCORD_CHANNEL_ID"].(string)
		if !ok {
			if entry["DISCORD_CHANNEL_ID"] == nil {
				return nil, invalid("missing DISCORD_CHANNEL_ID in pair #%d", n)
			}
			return nil, invalid("DISCORD_CHANNEL_ID must be a string in pair #%d", n)
		}
		if strings.TrimSpace(channelID) == "" {
			return nil, invalid("missing DISCORD_CHANNEL_ID in pair #%d", n)
		}

		if entry["TELEGRAM_CHAT_ID"] == nil {
			return nil, invalid("missing TELEGRAM_CHAT_ID in pair #%d", n)
		}
		chatID, ok := toInt64(entry["TELEGRAM_CHAT_ID"])
		if !ok {
			return nil, invalid("TELEGRAM_CHAT_ID must be a number in pair #%d", n)
		}
		if chatID == 0 {
			return nil, invalid("missing TELEGRAM_CHAT_ID in pair #%d", n)
		}

		var threadID int64
		if v, present := entry["TELEGRAM_THREAD_ID"]; present && v != nil {
			if threadID, ok = toInt64(v); !ok {
				return nil, invalid("TELEGRAM_THREAD_ID must be a number in pair #%d", n)
			}
		}

		pairs = append(pairs, domain.Pairing{
			SourceChannelID:     channelID,
			DestinationChatID:   chatID,
			DestinationThreadID: int(threadID),
		})
	}

	if dups := lo.FindDuplicatesBy(pairs, func(p domain.Pairing) string { return p.SourceChannelID }); len(dups) > 0 {
		return nil, oops.In("config").Code("configuration_error").
			With("discord_channel_id", dups[0].SourceChannelID).
			Wrap(fmt.Errorf("%w: %w", errors.ErrConfiguration, errors.ErrDuplicatePairing))
	}

	return pairs, nil
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int64(val), true
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}

func invalid(format string, args ...any) error {
	return oops.In("config").Code("configuration_error").Wrapf(errors.ErrConfiguration, format, args...)
}
