package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathServesDefaults(t *testing.T) {
	o, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		key  string
		want bool
	}{
		{KeyWpa3SaeUpgradeEnabled, true},
		{KeyWpa3SaeUpgradeOffloadEnabled, false},
		{KeyOweUpgradeEnabled, true},
		{KeyWpa3EnterpriseUpgradeEnabled, false},
		{KeyFlushAnqpCacheOnWifiToggleOff, false},
		{KeyConnectedMacRandomization, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := o.Bool(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, o.BoolOrDefault(tt.key))
		})
	}

	assert.Equal(t, 3000, o.IntOrDefault(KeyPollRssiIntervalMillis))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeOverlayFile(t, ""+
		"wifi.wpa3_sae_upgrade_enabled: false\n"+
		"wifi.flush_anqp_cache_on_wifi_toggle_off: true\n"+
		"wifi.poll_rssi_interval_millis: 4500\n")

	o, err := Load(path)
	require.NoError(t, err)

	got, err := o.Bool(KeyWpa3SaeUpgradeEnabled)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = o.Bool(KeyFlushAnqpCacheOnWifiToggleOff)
	require.NoError(t, err)
	assert.True(t, got)

	// Keys absent from the file keep their built-in defaults.
	got, err = o.Bool(KeyOweUpgradeEnabled)
	require.NoError(t, err)
	assert.True(t, got)

	assert.Equal(t, 4500, o.IntOrDefault(KeyPollRssiIntervalMillis))
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeOverlayFile(t, "wifi.owe_upgrade_enabled: [unclosed\n"))
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeOverlayFile(t, "wifi.totally_new_knob: true\n"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnknownKey)
	})
}

func TestEnvOverrideWinsAndIsReadPerLookup(t *testing.T) {
	path := writeOverlayFile(t, "wifi.owe_upgrade_enabled: true\n")
	o, err := Load(path)
	require.NoError(t, err)

	t.Setenv(EnvKey(KeyOweUpgradeEnabled), "false")
	got, err := o.Bool(KeyOweUpgradeEnabled)
	require.NoError(t, err)
	assert.False(t, got)

	// Environment changes are visible on the next lookup without a reload.
	t.Setenv(EnvKey(KeyOweUpgradeEnabled), "true")
	got, err = o.Bool(KeyOweUpgradeEnabled)
	require.NoError(t, err)
	assert.True(t, got)

	os.Unsetenv(EnvKey(KeyOweUpgradeEnabled))
	got, err = o.Bool(KeyOweUpgradeEnabled)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestIntOrDefaultPrecedence(t *testing.T) {
	path := writeOverlayFile(t, "wifi.poll_rssi_interval_millis: 2000\n")
	o, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2000, o.IntOrDefault(KeyPollRssiIntervalMillis))

	t.Setenv(EnvKey(KeyPollRssiIntervalMillis), "1500")
	assert.Equal(t, 1500, o.IntOrDefault(KeyPollRssiIntervalMillis))

	// A malformed override falls through to the file value.
	t.Setenv(EnvKey(KeyPollRssiIntervalMillis), "soon")
	assert.Equal(t, 2000, o.IntOrDefault(KeyPollRssiIntervalMillis))
}

func TestBoolErrors(t *testing.T) {
	o := Static(nil)

	_, err := o.Bool("wifi.no_such_key")
	assert.ErrorIs(t, err, ErrUnknownKey)

	t.Setenv(EnvKey(KeyOweUpgradeEnabled), "definitely")
	_, err = o.Bool(KeyOweUpgradeEnabled)
	assert.Error(t, err)

	// The total form falls back to the built-in default instead.
	assert.True(t, o.BoolOrDefault(KeyOweUpgradeEnabled))
}

func TestStaticValues(t *testing.T) {
	o := Static(map[string]interface{}{
		KeyWpa3EnterpriseUpgradeEnabled: true,
		KeyPollRssiIntervalMillis:       250,
	})

	got, err := o.Bool(KeyWpa3EnterpriseUpgradeEnabled)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, 250, o.IntOrDefault(KeyPollRssiIntervalMillis))
}

func TestEnvKeyMangling(t *testing.T) {
	assert.Equal(t, "WLAND_OVERLAY_WIFI_POLL_RSSI_INTERVAL_MILLIS",
		EnvKey(KeyPollRssiIntervalMillis))
}

func writeOverlayFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
