package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wlan-control/wland/internal/adapter"
	"github.com/wlan-control/wland/internal/anqp"
	"github.com/wlan-control/wland/internal/audit"
	"github.com/wlan-control/wland/internal/config"
	"github.com/wlan-control/wland/internal/settings"
	"github.com/wlan-control/wland/internal/telemetry"
)

// Monitor routes intents and subsystem events to the store and adapter.
type Monitor struct {
	store  SettingsStore
	wlan   adapter.WlanAdapter
	cache  AnqpCache
	hub    Publisher
	audit  AuditSink
	iface  string
	timing config.Timing
	log    zerolog.Logger
}

// Compile-time assertions that the production types satisfy the ports.
var (
	_ SettingsStore = (*settings.Store)(nil)
	_ AnqpCache     = (*anqp.Cache)(nil)
	_ Publisher     = (*telemetry.Hub)(nil)
	_ AuditSink     = (*audit.Logger)(nil)
)

// New creates a monitor. iface names the managed interface and is used as
// the audit target.
func New(store SettingsStore, wlan adapter.WlanAdapter, cache AnqpCache, hub Publisher,
	auditSink AuditSink, iface string, timing config.Timing, log zerolog.Logger) *Monitor {
	return &Monitor{
		store:  store,
		wlan:   wlan,
		cache:  cache,
		hub:    hub,
		audit:  auditSink,
		iface:  iface,
		timing: timing,
		log:    log,
	}
}

// SetPollRssiInterval stores a new RSSI poll interval and returns the
// effective value. Values at or below zero re-enable the device default;
// the store applies no further validation.
func (m *Monitor) SetPollRssiInterval(ctx context.Context, millis int) int {
	start := time.Now()

	m.store.SetPollRssiIntervalMillis(millis)
	effective := m.store.PollRssiIntervalMillis()

	m.audit.Action(ctx, "setting.pollRssiInterval", m.iface, audit.OutcomeSuccess,
		fmt.Sprintf("requested=%d effective=%d", millis, effective), time.Since(start))
	m.hub.Publish(telemetry.TypeSetting, map[string]interface{}{
		"name":      "pollRssiIntervalMillis",
		"requested": millis,
		"effective": effective,
	})

	return effective
}

// SetIPReachabilityDisconnect toggles the disconnect-on-reachability-loss
// policy.
func (m *Monitor) SetIPReachabilityDisconnect(ctx context.Context, enabled bool) {
	start := time.Now()

	m.store.SetIPReachabilityDisconnectEnabled(enabled)

	m.audit.Action(ctx, "setting.ipReachabilityDisconnect", m.iface, audit.OutcomeSuccess,
		fmt.Sprintf("enabled=%t", enabled), time.Since(start))
	m.hub.Publish(telemetry.TypeSetting, map[string]interface{}{
		"name":    "ipReachabilityDisconnectEnabled",
		"enabled": enabled,
	})
}

// HandleBluetoothStateChanged records a Bluetooth radio state change.
// Disabling clears the connected flag inside the store.
func (m *Monitor) HandleBluetoothStateChanged(ctx context.Context, enabled bool) {
	start := time.Now()

	m.store.SetBluetoothEnabled(enabled)
	connected := m.store.IsBluetoothConnected()

	m.audit.Action(ctx, "bluetooth.state", m.iface, audit.OutcomeSuccess,
		fmt.Sprintf("enabled=%t connected=%t", enabled, connected), time.Since(start))
	m.hub.Publish(telemetry.TypeBluetooth, map[string]interface{}{
		"event":     "state",
		"enabled":   enabled,
		"connected": connected,
	})
}

// HandleBluetoothConnectionChanged records a Bluetooth connection change.
func (m *Monitor) HandleBluetoothConnectionChanged(ctx context.Context, connected bool) {
	start := time.Now()

	m.store.SetBluetoothConnected(connected)

	m.audit.Action(ctx, "bluetooth.connection", m.iface, audit.OutcomeSuccess,
		fmt.Sprintf("connected=%t", connected), time.Since(start))
	m.hub.Publish(telemetry.TypeBluetooth, map[string]interface{}{
		"event":     "connection",
		"connected": connected,
	})
}

// HandleReachabilityLost reacts to an IP reachability loss. When the
// disconnect policy is off the event is recorded and ignored; otherwise the
// adapter tears down the association under the disconnect timeout. acted
// reports whether a disconnect was issued.
func (m *Monitor) HandleReachabilityLost(ctx context.Context) (acted bool, err error) {
	start := time.Now()

	if !m.store.IPReachabilityDisconnectEnabled() {
		m.audit.Action(ctx, "reachability.lost", m.iface, audit.OutcomeSkipped,
			"disconnect disabled", time.Since(start))
		m.hub.Publish(telemetry.TypeReachability, map[string]interface{}{
			"action": "ignored",
		})
		return false, nil
	}

	dctx, cancel := context.WithTimeout(ctx, m.timing.DisconnectTimeout.Std())
	defer cancel()

	err = m.wlan.Disconnect(dctx, "ip-reachability-lost")
	latency := time.Since(start)

	if err != nil {
		m.audit.Action(ctx, "reachability.lost", m.iface, audit.OutcomeError,
			err.Error(), latency)
		m.hub.Publish(telemetry.TypeReachability, map[string]interface{}{
			"action": "error",
			"error":  err.Error(),
		})
		return false, err
	}

	m.audit.Action(ctx, "reachability.lost", m.iface, audit.OutcomeSuccess,
		"disconnected", latency)
	m.hub.Publish(telemetry.TypeReachability, map[string]interface{}{
		"action": "disconnected",
	})

	return true, nil
}

// SetRadioEnabled toggles the WLAN radio. A successful power-down flushes
// the ANQP cache when the overlay asks for flush-on-toggle behavior.
func (m *Monitor) SetRadioEnabled(ctx context.Context, enabled bool) error {
	start := time.Now()

	action := "radio.disable"
	if enabled {
		action = "radio.enable"
	}

	tctx, cancel := context.WithTimeout(ctx, m.timing.RadioToggleTimeout.Std())
	defer cancel()

	err := m.wlan.SetRadioEnabled(tctx, enabled)
	latency := time.Since(start)

	if err != nil {
		m.audit.Action(ctx, action, m.iface, audit.OutcomeError, err.Error(), latency)
		return err
	}

	detail := fmt.Sprintf("enabled=%t", enabled)
	if !enabled && m.store.FlushAnqpCacheOnWifiToggleOffEvent() {
		flushed := m.cache.Flush()
		detail = fmt.Sprintf("enabled=false anqpFlushed=%d", flushed)
		m.log.Info().Int("flushed", flushed).Msg("anqp cache flushed on radio off")
		m.hub.Publish(telemetry.TypeAnqpFlush, map[string]interface{}{
			"flushed": flushed,
		})
	}

	m.audit.Action(ctx, action, m.iface, audit.OutcomeSuccess, detail, latency)
	m.hub.Publish(telemetry.TypeRadioState, map[string]interface{}{
		"enabled": enabled,
	})

	return nil
}
