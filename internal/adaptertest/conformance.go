// Package adaptertest provides the driver-agnostic conformance suite every
// WLAN adapter implementation must pass.
package adaptertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlan-control/wland/internal/adapter"
)

// RunConformance exercises the WlanAdapter contract against a fresh
// adapter per subtest. The factory may register cleanup on t.
func RunConformance(t *testing.T, name string, factory func(t *testing.T) adapter.WlanAdapter) {
	t.Run(name+"/link_stats", func(t *testing.T) {
		a := factory(t)

		stats, err := a.LinkStats(context.Background())
		require.NoError(t, err)
		require.NotNil(t, stats)

		assert.Less(t, stats.RssiDbm, 0, "RSSI must be negative dBm")
		assert.GreaterOrEqual(t, stats.RssiDbm, -120)
		assert.Greater(t, stats.LinkSpeedMbps, 0)
		assert.Greater(t, stats.FrequencyMhz, 0)
	})

	t.Run(name+"/disconnect", func(t *testing.T) {
		a := factory(t)

		err := a.Disconnect(context.Background(), "conformance")
		assert.NoError(t, err)
	})

	t.Run(name+"/radio_toggle", func(t *testing.T) {
		a := factory(t)

		require.NoError(t, a.SetRadioEnabled(context.Background(), false))
		require.NoError(t, a.SetRadioEnabled(context.Background(), true))

		stats, err := a.LinkStats(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, stats)
	})

	t.Run(name+"/context_cancellation", func(t *testing.T) {
		a := factory(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := a.LinkStats(ctx)
		assert.Error(t, err)

		assert.Error(t, a.Disconnect(ctx, "cancelled"))
		assert.Error(t, a.SetRadioEnabled(ctx, false))
	})
}
