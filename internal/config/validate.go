package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate rejects merged configurations the daemon could not run with.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr must not be empty")
	}
	if c.HTTP.ReadTimeout <= 0 {
		return fmt.Errorf("http.readTimeout must be positive, got %s", c.HTTP.ReadTimeout.Std())
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("http.shutdownTimeout must be positive, got %s", c.HTTP.ShutdownTimeout.Std())
	}
	// WriteTimeout zero is allowed: SSE streams outlive any fixed deadline.
	if c.HTTP.WriteTimeout < 0 || c.HTTP.IdleTimeout < 0 {
		return fmt.Errorf("http timeouts must not be negative")
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level %q is not one of trace, debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Output {
	case "console":
	case "file", "both":
		if c.Log.File == "" {
			return fmt.Errorf("log.file must be set when log.output is %q", c.Log.Output)
		}
	default:
		return fmt.Errorf("log.output %q is not one of console, file, both", c.Log.Output)
	}

	if c.Auth.Enabled {
		switch c.Auth.Algorithm {
		case "HS256":
			if c.Auth.SecretKey == "" {
				return fmt.Errorf("auth.secretKey must be set for HS256")
			}
		case "RS256":
			if c.Auth.PublicKeyFile == "" {
				return fmt.Errorf("auth.publicKeyFile must be set for RS256")
			}
		default:
			return fmt.Errorf("auth.algorithm %q is not one of HS256, RS256", c.Auth.Algorithm)
		}
	}

	if c.Audit.File != "" && c.Audit.MaxSizeMB <= 0 {
		return fmt.Errorf("audit.maxSizeMb must be positive, got %d", c.Audit.MaxSizeMB)
	}

	if c.Telemetry.ReplayBuffer < 1 {
		return fmt.Errorf("telemetry.replayBuffer must be at least 1, got %d", c.Telemetry.ReplayBuffer)
	}
	if c.Telemetry.SubscriberBuffer < 1 {
		return fmt.Errorf("telemetry.subscriberBuffer must be at least 1, got %d", c.Telemetry.SubscriberBuffer)
	}

	switch c.Adapter.Driver {
	case "fake":
	case "wpactrl":
		if c.Adapter.ControlAddr == "" {
			return fmt.Errorf("adapter.controlAddr must be set for the wpactrl driver")
		}
	default:
		return fmt.Errorf("adapter.driver %q is not one of fake, wpactrl", c.Adapter.Driver)
	}

	return c.Timing.Validate()
}

// Validate rejects non-positive timing values.
func (t Timing) Validate() error {
	checks := []struct {
		name  string
		value Duration
	}{
		{"timing.disconnectTimeout", t.DisconnectTimeout},
		{"timing.radioToggleTimeout", t.RadioToggleTimeout},
		{"timing.sseHeartbeat", t.SSEHeartbeat},
		{"timing.pollerStartDelay", t.PollerStartDelay},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", c.name, c.value.Std())
		}
	}
	return nil
}
