// Package api defines ports (interfaces) for API server dependencies.
package api

import (
	"context"
	"io"

	"github.com/wlan-control/wland/internal/monitor"
	"github.com/wlan-control/wland/internal/settings"
	"github.com/wlan-control/wland/internal/telemetry"
)

// SettingsReader is the read surface of the runtime settings store.
type SettingsReader interface {
	PollRssiIntervalMillis() int
	IPReachabilityDisconnectEnabled() bool
	IsBluetoothConnected() bool
	IsConnectedMacRandomizationEnabled() bool
	IsWpa3SaeUpgradeEnabled() bool
	IsWpa3SaeUpgradeOffloadEnabled() bool
	IsOweUpgradeEnabled() bool
	IsWpa3EnterpriseUpgradeEnabled() bool
	FlushAnqpCacheOnWifiToggleOffEvent() bool
	Dump(w io.Writer)
}

// MonitorPort defines the minimal interface the API needs from the monitor.
type MonitorPort interface {
	SetPollRssiInterval(ctx context.Context, millis int) int
	SetIPReachabilityDisconnect(ctx context.Context, enabled bool)
	HandleBluetoothStateChanged(ctx context.Context, enabled bool)
	HandleBluetoothConnectionChanged(ctx context.Context, connected bool)
	HandleReachabilityLost(ctx context.Context) (bool, error)
	SetRadioEnabled(ctx context.Context, enabled bool) error
}

// TelemetryPort defines the minimal interface the API needs from the hub.
type TelemetryPort interface {
	Subscribe(ctx context.Context, lastEventID int64) (<-chan telemetry.Event, func())
	LastEventID() int64
}

// Compile-time assertions for port conformance
var _ SettingsReader = (*settings.Store)(nil)
var _ MonitorPort = (*monitor.Monitor)(nil)
var _ TelemetryPort = (*telemetry.Hub)(nil)
