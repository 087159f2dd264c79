// Package fake provides an in-memory WLAN adapter for tests and for the
// fake driver in local runs.
package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/wlan-control/wland/internal/adapter"
)

// Adapter implements adapter.WlanAdapter against in-memory state. All
// methods are safe for concurrent use; the poller samples it while the
// monitor issues commands.
type Adapter struct {
	adapter.Base

	mu           sync.Mutex
	stats        adapter.LinkStats
	radioEnabled bool

	// Call recording for assertions
	disconnects      []string
	radioTransitions []bool

	// Error simulation
	failToken string
}

// New creates a fake adapter bound to iface with a plausible association.
func New(iface string) *Adapter {
	return &Adapter{
		Base: adapter.Base{
			Interface: iface,
			Driver:    "fake",
			Status:    "online",
		},
		stats: adapter.LinkStats{
			RssiDbm:       -55,
			LinkSpeedMbps: 866,
			FrequencyMhz:  5180,
			BSSID:         "aa:bb:cc:dd:ee:ff",
		},
		radioEnabled: true,
	}
}

// LinkStats returns the configured sample.
func (f *Adapter) LinkStats(ctx context.Context) (*adapter.LinkStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failToken != "" {
		return nil, f.simulatedError()
	}
	if !f.radioEnabled {
		return nil, adapter.NormalizeDriverError(fmt.Errorf("RADIO_OFF: %s is powered down", f.Interface), nil)
	}

	stats := f.stats
	return &stats, nil
}

// Disconnect records the requested teardown.
func (f *Adapter) Disconnect(ctx context.Context, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failToken != "" {
		return f.simulatedError()
	}

	f.disconnects = append(f.disconnects, reason)
	return nil
}

// SetRadioEnabled records the transition and updates the radio state.
func (f *Adapter) SetRadioEnabled(ctx context.Context, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failToken != "" {
		return f.simulatedError()
	}

	f.radioTransitions = append(f.radioTransitions, enabled)
	f.radioEnabled = enabled
	return nil
}

// Test helpers

// SetLinkStats replaces the sample returned by LinkStats.
func (f *Adapter) SetLinkStats(stats adapter.LinkStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = stats
}

// FailWith makes every call fail with a message containing token until
// ClearFailure is called.
func (f *Adapter) FailWith(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failToken = token
}

// ClearFailure disables error simulation.
func (f *Adapter) ClearFailure() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failToken = ""
}

// Disconnects returns the recorded disconnect reasons.
func (f *Adapter) Disconnects() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.disconnects...)
}

// RadioTransitions returns the recorded radio state changes.
func (f *Adapter) RadioTransitions() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.radioTransitions...)
}

// RadioEnabled reports the current radio state.
func (f *Adapter) RadioEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.radioEnabled
}

// simulatedError builds a driver-shaped error from the configured token.
// Callers hold f.mu.
func (f *Adapter) simulatedError() error {
	return adapter.NormalizeDriverError(fmt.Errorf("%s: simulated driver failure", f.failToken), nil)
}
