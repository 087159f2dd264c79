package overlay

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Overlay keys. The namespace is fixed; lookups outside it fail.
const (
	KeyWpa3SaeUpgradeEnabled         = "wifi.wpa3_sae_upgrade_enabled"
	KeyWpa3SaeUpgradeOffloadEnabled  = "wifi.wpa3_sae_upgrade_offload_enabled"
	KeyOweUpgradeEnabled             = "wifi.owe_upgrade_enabled"
	KeyWpa3EnterpriseUpgradeEnabled  = "wifi.wpa3_enterprise_upgrade_enabled"
	KeyFlushAnqpCacheOnWifiToggleOff = "wifi.flush_anqp_cache_on_wifi_toggle_off"
	KeyPollRssiIntervalMillis        = "wifi.poll_rssi_interval_millis"
	KeyConnectedMacRandomization     = "wifi.connected_mac_randomization_supported"
)

// ErrUnknownKey is returned for lookups outside the registered namespace.
var ErrUnknownKey = errors.New("unknown overlay key")

// EnvPrefix is prepended to mangled key names for environment overrides.
const EnvPrefix = "WLAND_OVERLAY_"

// boolDefaults registers every boolean key with its built-in default.
var boolDefaults = map[string]bool{
	KeyWpa3SaeUpgradeEnabled:         true,
	KeyWpa3SaeUpgradeOffloadEnabled:  false,
	KeyOweUpgradeEnabled:             true,
	KeyWpa3EnterpriseUpgradeEnabled:  false,
	KeyFlushAnqpCacheOnWifiToggleOff: false,
	KeyConnectedMacRandomization:     false,
}

// intDefaults registers every integer key with its built-in default.
var intDefaults = map[string]int{
	KeyPollRssiIntervalMillis: 3000,
}

// Overlay resolves device configuration values with precedence
// environment > overlay file > built-in default. Environment variables
// are consulted on every lookup; file values are fixed at load time.
type Overlay struct {
	values map[string]interface{}
}

// Load reads the overlay file at path and returns an Overlay backed by it.
// An empty path yields an Overlay that serves built-in defaults and
// environment overrides only. The file must be a flat YAML map whose keys
// all belong to the registered namespace.
func Load(path string) (*Overlay, error) {
	if path == "" {
		return &Overlay{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay file: %w", err)
	}

	values := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse overlay file %s: %w", path, err)
	}

	// Reject keys outside the registered namespace so typos surface at boot.
	for key := range values {
		if !registered(key) {
			return nil, fmt.Errorf("overlay file %s: %w: %q", path, ErrUnknownKey, key)
		}
	}

	return &Overlay{values: values}, nil
}

// Static returns an Overlay backed by the given values, bypassing file
// loading. Intended for tests and embedded wiring.
func Static(values map[string]interface{}) *Overlay {
	return &Overlay{values: values}
}

// Bool resolves a boolean key or fails. Unknown keys and malformed
// overrides are errors; construction-time callers treat them as fatal.
func (o *Overlay) Bool(key string) (bool, error) {
	def, ok := boolDefaults[key]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	if raw, ok := os.LookupEnv(EnvKey(key)); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false, fmt.Errorf("overlay env %s: %w", EnvKey(key), err)
		}
		return v, nil
	}

	if raw, ok := o.values[key]; ok {
		v, err := coerceBool(raw)
		if err != nil {
			return false, fmt.Errorf("overlay key %q: %w", key, err)
		}
		return v, nil
	}

	return def, nil
}

// BoolOrDefault resolves a boolean key, falling through malformed layers
// to the next one. Total for registered keys; unregistered keys yield false.
func (o *Overlay) BoolOrDefault(key string) bool {
	if raw, ok := os.LookupEnv(EnvKey(key)); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	if raw, ok := o.values[key]; ok {
		if v, err := coerceBool(raw); err == nil {
			return v
		}
	}
	return boolDefaults[key]
}

// IntOrDefault resolves an integer key, falling through malformed layers
// to the next one. Total for registered keys; unregistered keys yield zero.
func (o *Overlay) IntOrDefault(key string) int {
	if raw, ok := os.LookupEnv(EnvKey(key)); ok {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	if raw, ok := o.values[key]; ok {
		if v, err := coerceInt(raw); err == nil {
			return v
		}
	}
	return intDefaults[key]
}

// EnvKey returns the environment variable name overriding key:
// EnvPrefix plus the key upper-cased with dots replaced by underscores.
func EnvKey(key string) string {
	mangled := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return EnvPrefix + mangled
}

// registered reports whether key belongs to the overlay namespace.
func registered(key string) bool {
	if _, ok := boolDefaults[key]; ok {
		return true
	}
	_, ok := intDefaults[key]
	return ok
}

// coerceBool converts a decoded YAML scalar to a bool.
func coerceBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	default:
		return false, fmt.Errorf("expected boolean, got %T", raw)
	}
}

// coerceInt converts a decoded YAML scalar to an int.
func coerceInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}
