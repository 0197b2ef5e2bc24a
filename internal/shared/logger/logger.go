// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"github.com/samber/oops"
)

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New fans records out to a text handler on stdout, a JSON handler on stderr
// for errors only and, when file is set, a JSON handler appending to file.
// The returned closer releases the log file.
func New(stdout, stderr io.Writer, level, file string) (*slog.Logger, func() error, error) {
	lvl := ParseLevel(level)

	handlers := []slog.Handler{
		slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: lvl}),
		slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: slog.LevelError}),
	}

	closer := func() error { return nil }
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, oops.In("logger").With("log_file", file).Wrapf(err, "failed to create log directory")
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, oops.In("logger").With("log_file", file).Wrapf(err, "failed to open log file")
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl}))
		closer = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// Setup builds the logger for the process and installs it as slog's default.
func Setup(level, file string) (func() error, error) {
	logger, closer, err := New(os.Stdout, os.Stderr, level, file)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}
