package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlan-control/wland/internal/adapter"
	"github.com/wlan-control/wland/internal/adaptertest"
)

func TestConformance(t *testing.T) {
	adaptertest.RunConformance(t, "fake", func(t *testing.T) adapter.WlanAdapter {
		return New("wlan0")
	})
}

func TestRecordsDisconnects(t *testing.T) {
	f := New("wlan0")

	require.NoError(t, f.Disconnect(context.Background(), "ip-reachability-lost"))
	require.NoError(t, f.Disconnect(context.Background(), "operator"))

	assert.Equal(t, []string{"ip-reachability-lost", "operator"}, f.Disconnects())
}

func TestRadioOffMakesStatsUnavailable(t *testing.T) {
	f := New("wlan0")

	require.NoError(t, f.SetRadioEnabled(context.Background(), false))
	assert.False(t, f.RadioEnabled())

	_, err := f.LinkStats(context.Background())
	assert.ErrorIs(t, err, adapter.ErrUnavailable)

	require.NoError(t, f.SetRadioEnabled(context.Background(), true))
	_, err = f.LinkStats(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, []bool{false, true}, f.RadioTransitions())
}

func TestErrorSimulation(t *testing.T) {
	f := New("wlan0")

	f.FailWith("BUSY")
	_, err := f.LinkStats(context.Background())
	assert.ErrorIs(t, err, adapter.ErrBusy)
	assert.ErrorIs(t, f.Disconnect(context.Background(), "x"), adapter.ErrBusy)
	assert.ErrorIs(t, f.SetRadioEnabled(context.Background(), false), adapter.ErrBusy)

	f.ClearFailure()
	_, err = f.LinkStats(context.Background())
	assert.NoError(t, err)
}

func TestSetLinkStats(t *testing.T) {
	f := New("wlan0")
	f.SetLinkStats(adapter.LinkStats{RssiDbm: -70, LinkSpeedMbps: 130, FrequencyMhz: 2437, BSSID: "11:22:33:44:55:66"})

	stats, err := f.LinkStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -70, stats.RssiDbm)
	assert.Equal(t, 130, stats.LinkSpeedMbps)
	assert.Equal(t, 2437, stats.FrequencyMhz)
	assert.Equal(t, "11:22:33:44:55:66", stats.BSSID)
}
