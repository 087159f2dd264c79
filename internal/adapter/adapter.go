package adapter

import (
	"context"
)

// LinkStats is one link measurement sample.
type LinkStats struct {
	RssiDbm       int    `json:"rssiDbm"`
	LinkSpeedMbps int    `json:"linkSpeedMbps"`
	FrequencyMhz  int    `json:"frequencyMhz"`
	BSSID         string `json:"bssid,omitempty"`
}

// WlanAdapter is the stable southbound contract for one wireless interface.
// Implementations return failures normalized to this package's sentinel
// errors, so callers branch with errors.Is instead of driver strings.
type WlanAdapter interface {
	// LinkStats samples the current association's signal and rate.
	LinkStats(ctx context.Context) (*LinkStats, error)

	// Disconnect tears down the current association. The reason is
	// forwarded to the driver for its own logging.
	Disconnect(ctx context.Context, reason string) error

	// SetRadioEnabled powers the radio on or off.
	SetRadioEnabled(ctx context.Context, enabled bool) error
}

// Base provides the common identity fields for adapter implementations.
type Base struct {
	// Interface is the wireless interface this adapter controls.
	Interface string

	// Driver identifies the adapter implementation.
	Driver string

	// Status indicates the current adapter status.
	Status string
}

// GetInterface returns the wireless interface name.
func (b *Base) GetInterface() string {
	return b.Interface
}

// GetDriver returns the driver name.
func (b *Base) GetDriver() string {
	return b.Driver
}

// GetStatus returns the adapter status.
func (b *Base) GetStatus() string {
	return b.Status
}

// SetStatus updates the adapter status.
func (b *Base) SetStatus(status string) {
	b.Status = status
}
