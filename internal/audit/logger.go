package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wlan-control/wland/internal/auth"
	"github.com/wlan-control/wland/internal/config"
)

// Outcome codes recorded per action.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeError   = "ERROR"
	OutcomeSkipped = "SKIPPED"
)

// Record is a single audit line.
type Record struct {
	Timestamp     time.Time `json:"ts"`
	User          string    `json:"user"`
	Action        string    `json:"action"`
	Target        string    `json:"target"`
	Outcome       string    `json:"outcome"`
	Detail        string    `json:"detail,omitempty"`
	LatencyMillis int64     `json:"latencyMs"`
}

// Logger appends audit records to a rotating JSONL sink.
type Logger struct {
	mu   sync.Mutex
	sink io.WriteCloser
	log  zerolog.Logger
}

// New opens the audit sink named by cfg. The parent directory is created
// if missing; rotation is handled by lumberjack using the configured size
// and backup limits. An empty file name yields a logger that discards
// records.
func New(cfg config.AuditConfig, log zerolog.Logger) (*Logger, error) {
	if cfg.File == "" {
		return NewWithSink(nopSink{}, log), nil
	}

	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	sink := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	return NewWithSink(sink, log), nil
}

// NewWithSink wraps an arbitrary sink; used by tests and New.
func NewWithSink(sink io.WriteCloser, log zerolog.Logger) *Logger {
	return &Logger{sink: sink, log: log}
}

// Action records one audit line. The acting user is taken from the
// request claims when present, "system" otherwise. Failures are logged
// and swallowed.
func (l *Logger) Action(ctx context.Context, action, target, outcome, detail string, latency time.Duration) {
	rec := Record{
		Timestamp:     time.Now().UTC(),
		User:          userFromContext(ctx),
		Action:        action,
		Target:        target,
		Outcome:       outcome,
		Detail:        detail,
		LatencyMillis: latency.Milliseconds(),
	}

	line, err := json.Marshal(rec)
	if err != nil {
		l.log.Error().Err(err).Str("action", action).Msg("failed to marshal audit record")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.sink.Write(append(line, '\n')); err != nil {
		l.log.Error().Err(err).Str("action", action).Msg("failed to write audit record")
	}
}

// Close closes the underlying sink.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sink.Close()
}

// userFromContext resolves the acting user from auth claims.
func userFromContext(ctx context.Context) string {
	if claims := auth.ClaimsFromContext(ctx); claims != nil && claims.Subject != "" {
		return claims.Subject
	}
	return "system"
}

// nopSink discards records when auditing is disabled.
type nopSink struct{}

func (nopSink) Write(p []byte) (int, error) { return len(p), nil }

func (nopSink) Close() error { return nil }
