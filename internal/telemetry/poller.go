//
//
package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wlan-control/wland/internal/adapter"
	"github.com/wlan-control/wland/internal/config"
)

// IntervalSource yields the current poll interval in milliseconds.
type IntervalSource interface {
	PollRssiIntervalMillis() int
}

// StatsSource yields link statistics for the managed interface.
type StatsSource interface {
	LinkStats(ctx context.Context) (*adapter.LinkStats, error)
}

// Compile-time assertion that any WLAN adapter can feed the poller.
var _ StatsSource = adapter.WlanAdapter(nil)

// pollFloor bounds the sleep when the configured interval is not positive,
// which would otherwise spin the loop.
const pollFloor = time.Second

// Poller runs the RSSI measurement loop. The interval is re-read from the
// settings store every cycle so interval changes apply without a restart.
type Poller struct {
	intervals  IntervalSource
	stats      StatsSource
	hub        *Hub
	startDelay time.Duration
	log        zerolog.Logger
}

// NewPoller creates a poller publishing to hub.
func NewPoller(intervals IntervalSource, stats StatsSource, hub *Hub, timing config.Timing, log zerolog.Logger) *Poller {
	return &Poller{
		intervals:  intervals,
		stats:      stats,
		hub:        hub,
		startDelay: timing.PollerStartDelay.Std(),
		log:        log,
	}
}

// Run polls until ctx is cancelled. Adapter failures are published as rssi
// events carrying an error field and do not stop the loop.
func (p *Poller) Run(ctx context.Context) {
	if p.startDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.startDelay):
		}
	}

	for {
		p.pollOnce(ctx)

		interval := time.Duration(p.intervals.PollRssiIntervalMillis()) * time.Millisecond
		if interval <= 0 {
			interval = pollFloor
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// pollOnce reads link stats and publishes one rssi event.
func (p *Poller) pollOnce(ctx context.Context) {
	stats, err := p.stats.LinkStats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.log.Debug().Err(err).Msg("rssi poll failed")
		p.hub.Publish(TypeRssi, map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	data := map[string]interface{}{
		"rssiDbm":       stats.RssiDbm,
		"linkSpeedMbps": stats.LinkSpeedMbps,
		"frequencyMhz":  stats.FrequencyMhz,
	}
	if stats.BSSID != "" {
		data["bssid"] = stats.BSSID
	}

	p.hub.Publish(TypeRssi, data)
}
