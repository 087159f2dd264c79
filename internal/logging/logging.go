// Package logging builds the zerolog loggers used across the daemon.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wlan-control/wland/internal/config"
)

// New builds the root logger from the log configuration. Unknown levels
// fall back to info rather than failing; level mistakes should not take
// the daemon down.
func New(cfg config.LogConfig) zerolog.Logger {
	var out io.Writer
	switch cfg.Output {
	case "file":
		out = rotatingWriter(cfg)
	case "both":
		out = io.MultiWriter(consoleWriter(), rotatingWriter(cfg))
	default:
		out = consoleWriter()
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component tags a sub-logger with the owning component's name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Nop returns a disabled logger for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
}

func rotatingWriter(cfg config.LogConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}
