package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlan-control/wland/internal/config"
)

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wland.log")
	logger := New(config.LogConfig{
		Level:     "info",
		Output:    "file",
		File:      path,
		MaxSizeMB: 1,
	})

	logger.Info().Str("iface", "wlan0").Msg("radio up")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"radio up"`)
	assert.Contains(t, string(data), `"iface":"wlan0"`)
}

func TestNewHonorsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wland.log")
	logger := New(config.LogConfig{
		Level:     "error",
		Output:    "file",
		File:      path,
		MaxSizeMB: 1,
	})

	logger.Info().Msg("suppressed")
	logger.Error().Msg("kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "suppressed")
	assert.Contains(t, string(data), "kept")
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	logger := New(config.LogConfig{Level: "loud", Output: "console"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestComponentTagsSubLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(zerolog.New(&buf), "monitor")

	logger.Info().Msg("ready")
	assert.Contains(t, buf.String(), `"component":"monitor"`)
}

func TestNopIsSilent(t *testing.T) {
	logger := Nop()
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}
