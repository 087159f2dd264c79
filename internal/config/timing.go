package config

import "time"

// Timing holds the operation deadlines and periodic intervals consumed by
// the monitor and the telemetry layer.
type Timing struct {
	// DisconnectTimeout bounds an adapter disconnect issued on a
	// reachability-lost event.
	DisconnectTimeout Duration `yaml:"disconnectTimeout" env:"DISCONNECT_TIMEOUT"`

	// RadioToggleTimeout bounds an adapter radio on/off transition.
	RadioToggleTimeout Duration `yaml:"radioToggleTimeout" env:"RADIO_TOGGLE_TIMEOUT"`

	// SSEHeartbeat is the idle keep-alive period on telemetry streams.
	SSEHeartbeat Duration `yaml:"sseHeartbeat" env:"SSE_HEARTBEAT"`

	// PollerStartDelay postpones the first RSSI poll after startup so the
	// adapter has settled.
	PollerStartDelay Duration `yaml:"pollerStartDelay" env:"POLLER_START_DELAY"`
}

// DefaultTiming returns the timing baseline.
func DefaultTiming() Timing {
	return Timing{
		DisconnectTimeout:  Duration(5 * time.Second),
		RadioToggleTimeout: Duration(10 * time.Second),
		SSEHeartbeat:       Duration(15 * time.Second),
		PollerStartDelay:   Duration(1 * time.Second),
	}
}
