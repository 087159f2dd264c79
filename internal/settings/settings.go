package settings

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/wlan-control/wland/internal/overlay"
)

// MaxPollRssiIntervalMillis caps the computed default RSSI poll interval.
// Explicit overrides set via SetPollRssiIntervalMillis are not capped.
const MaxPollRssiIntervalMillis = 6000

// pollIntervalUnset marks the poll interval as "use the computed default".
const pollIntervalUnset = -1

// Store holds the wireless subsystem's runtime settings. All methods are
// safe for concurrent use; each mutable field is an independent atomic and
// no operation spans more than one field transactionally.
type Store struct {
	src Source

	pollRssiIntervalMillis          atomic.Int64
	ipReachabilityDisconnectEnabled atomic.Bool
	bluetoothConnected              atomic.Bool

	// Resolved once in New, read-only afterwards.
	wpa3SaeUpgradeEnabled              bool
	wpa3SaeUpgradeOffloadEnabled       bool
	oweUpgradeEnabled                  bool
	wpa3EnterpriseUpgradeEnabled       bool
	flushAnqpCacheOnWifiToggleOffEvent bool
}

// New constructs the store, resolving the five boot-cached feature flags
// from src. The first failing lookup aborts construction; no fallback
// values are substituted.
func New(src Source) (*Store, error) {
	s := &Store{src: src}

	flags := []struct {
		key string
		dst *bool
	}{
		{overlay.KeyWpa3SaeUpgradeEnabled, &s.wpa3SaeUpgradeEnabled},
		{overlay.KeyWpa3SaeUpgradeOffloadEnabled, &s.wpa3SaeUpgradeOffloadEnabled},
		{overlay.KeyOweUpgradeEnabled, &s.oweUpgradeEnabled},
		{overlay.KeyWpa3EnterpriseUpgradeEnabled, &s.wpa3EnterpriseUpgradeEnabled},
		{overlay.KeyFlushAnqpCacheOnWifiToggleOff, &s.flushAnqpCacheOnWifiToggleOffEvent},
	}
	for _, f := range flags {
		v, err := src.Bool(f.key)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f.key, err)
		}
		*f.dst = v
	}

	s.pollRssiIntervalMillis.Store(pollIntervalUnset)
	s.ipReachabilityDisconnectEnabled.Store(true)

	return s, nil
}

// PollRssiIntervalMillis returns the RSSI poll interval in milliseconds.
// A positive override is returned verbatim; otherwise the overlay default
// is re-read on every call and capped at MaxPollRssiIntervalMillis.
func (s *Store) PollRssiIntervalMillis() int {
	if v := s.pollRssiIntervalMillis.Load(); v > 0 {
		return int(v)
	}
	return min(s.src.IntOrDefault(overlay.KeyPollRssiIntervalMillis), MaxPollRssiIntervalMillis)
}

// SetPollRssiIntervalMillis stores millis unconditionally, without
// validation. Storing a value of zero or below re-enables the computed
// overlay default.
func (s *Store) SetPollRssiIntervalMillis(millis int) {
	s.pollRssiIntervalMillis.Store(int64(millis))
}

// IPReachabilityDisconnectEnabled reports whether a loss-of-reachability
// signal should tear down the connection. Defaults to true.
func (s *Store) IPReachabilityDisconnectEnabled() bool {
	return s.ipReachabilityDisconnectEnabled.Load()
}

// SetIPReachabilityDisconnectEnabled sets the reachability-disconnect policy.
func (s *Store) SetIPReachabilityDisconnectEnabled(enabled bool) {
	s.ipReachabilityDisconnectEnabled.Store(enabled)
}

// SetBluetoothEnabled records the Bluetooth adapter state. Disabling the
// adapter also clears the connected flag: no disconnect notification is
// delivered when Bluetooth goes down while a device is still attached.
// Enabling changes nothing; connections are reported separately.
func (s *Store) SetBluetoothEnabled(enabled bool) {
	// Two independent stores; a concurrent reader may briefly observe the
	// stale connected value.
	if !enabled {
		s.bluetoothConnected.Store(false)
	}
}

// SetBluetoothConnected records whether a Bluetooth device is connected.
func (s *Store) SetBluetoothConnected(connected bool) {
	s.bluetoothConnected.Store(connected)
}

// IsBluetoothConnected reports whether a Bluetooth device is connected.
func (s *Store) IsBluetoothConnected() bool {
	return s.bluetoothConnected.Load()
}

// IsConnectedMacRandomizationEnabled reports whether connected MAC
// randomization is supported. The overlay is re-read on every call; the
// value is deliberately not cached.
func (s *Store) IsConnectedMacRandomizationEnabled() bool {
	return s.src.BoolOrDefault(overlay.KeyConnectedMacRandomization)
}

// IsWpa3SaeUpgradeEnabled reports whether WPA2-Personal networks are
// auto-upgraded to WPA3-SAE. Cached at construction.
func (s *Store) IsWpa3SaeUpgradeEnabled() bool {
	return s.wpa3SaeUpgradeEnabled
}

// IsWpa3SaeUpgradeOffloadEnabled reports whether the SAE upgrade is
// offloaded to the driver. Cached at construction.
func (s *Store) IsWpa3SaeUpgradeOffloadEnabled() bool {
	return s.wpa3SaeUpgradeOffloadEnabled
}

// IsOweUpgradeEnabled reports whether open networks are auto-upgraded to
// OWE. Cached at construction.
func (s *Store) IsOweUpgradeEnabled() bool {
	return s.oweUpgradeEnabled
}

// IsWpa3EnterpriseUpgradeEnabled reports whether WPA2-Enterprise networks
// are auto-upgraded to WPA3-Enterprise. Cached at construction.
func (s *Store) IsWpa3EnterpriseUpgradeEnabled() bool {
	return s.wpa3EnterpriseUpgradeEnabled
}

// FlushAnqpCacheOnWifiToggleOffEvent reports whether the ANQP cache is
// flushed when the radio is toggled off. Cached at construction.
func (s *Store) FlushAnqpCacheOnWifiToggleOffEvent() bool {
	return s.flushAnqpCacheOnWifiToggleOffEvent
}

// Dump writes one fieldName=value line per setting, in data-model order,
// for inclusion in diagnostic reports. Values reflect what the getters
// would return at the time of the call.
func (s *Store) Dump(w io.Writer) {
	fmt.Fprintf(w, "pollRssiIntervalMillis=%d\n", s.PollRssiIntervalMillis())
	fmt.Fprintf(w, "ipReachabilityDisconnectEnabled=%t\n", s.IPReachabilityDisconnectEnabled())
	fmt.Fprintf(w, "isBluetoothConnected=%t\n", s.IsBluetoothConnected())
	fmt.Fprintf(w, "wpa3SaeUpgradeEnabled=%t\n", s.IsWpa3SaeUpgradeEnabled())
	fmt.Fprintf(w, "wpa3SaeUpgradeOffloadEnabled=%t\n", s.IsWpa3SaeUpgradeOffloadEnabled())
	fmt.Fprintf(w, "oweUpgradeEnabled=%t\n", s.IsOweUpgradeEnabled())
	fmt.Fprintf(w, "wpa3EnterpriseUpgradeEnabled=%t\n", s.IsWpa3EnterpriseUpgradeEnabled())
	fmt.Fprintf(w, "flushAnqpCacheOnWifiToggleOffEvent=%t\n", s.FlushAnqpCacheOnWifiToggleOffEvent())
	fmt.Fprintf(w, "maxPollRssiIntervalMillis=%d\n", MaxPollRssiIntervalMillis)
}
