// Package monitor defines ports (interfaces) for orchestration operations.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/wlan-control/wland/internal/telemetry"
)

// SettingsStore is the mutable runtime-config surface the monitor drives.
type SettingsStore interface {
	SetPollRssiIntervalMillis(millis int)
	PollRssiIntervalMillis() int
	SetIPReachabilityDisconnectEnabled(enabled bool)
	IPReachabilityDisconnectEnabled() bool
	SetBluetoothEnabled(enabled bool)
	SetBluetoothConnected(connected bool)
	IsBluetoothConnected() bool
	FlushAnqpCacheOnWifiToggleOffEvent() bool
}

// AnqpCache is the flush surface used on radio power-down.
type AnqpCache interface {
	Flush() int
}

// Publisher posts events to the telemetry stream.
type Publisher interface {
	Publish(eventType string, data map[string]interface{}) telemetry.Event
}

// AuditSink records state-changing actions.
type AuditSink interface {
	Action(ctx context.Context, action, target, outcome, detail string, latency time.Duration)
}

// ErrInvalidParameter indicates a required parameter is missing or
// structurally invalid.
var ErrInvalidParameter = errors.New("BAD_REQUEST")
