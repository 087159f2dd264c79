package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Duration wraps time.Duration so values parse from "250ms"/"10s" strings
// in both the YAML file layer and the environment layer.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for the env layer.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.v2 unmarshaling for the file layer.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(raw))
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the merged service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http" envPrefix:"WLAND_HTTP_"`
	Log       LogConfig       `yaml:"log" envPrefix:"WLAND_LOG_"`
	Auth      AuthConfig      `yaml:"auth" envPrefix:"WLAND_AUTH_"`
	Overlay   OverlayConfig   `yaml:"overlay" envPrefix:"WLAND_OVERLAY_"`
	Audit     AuditConfig     `yaml:"audit" envPrefix:"WLAND_AUDIT_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"WLAND_TELEMETRY_"`
	Adapter   AdapterConfig   `yaml:"adapter" envPrefix:"WLAND_ADAPTER_"`
	Timing    Timing          `yaml:"timing" envPrefix:"WLAND_TIMING_"`
}

// HTTPConfig configures the API listener. WriteTimeout defaults to zero
// so SSE streams are not cut off by the server.
type HTTPConfig struct {
	Addr            string   `yaml:"addr" env:"ADDR"`
	ReadTimeout     Duration `yaml:"readTimeout" env:"READ_TIMEOUT"`
	WriteTimeout    Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     Duration `yaml:"idleTimeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	Level      string `yaml:"level" env:"LEVEL"`
	Output     string `yaml:"output" env:"OUTPUT"` // console, file, or both
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"maxSizeMb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"maxBackups" env:"MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"maxAgeDays" env:"MAX_AGE_DAYS"`
}

// AuthConfig configures bearer-token verification. Auth is off by default
// and must be enabled explicitly with key material.
type AuthConfig struct {
	Enabled       bool   `yaml:"enabled" env:"ENABLED"`
	Algorithm     string `yaml:"algorithm" env:"ALGORITHM"` // HS256 or RS256
	SecretKey     string `yaml:"secretKey" env:"SECRET_KEY"`
	PublicKeyFile string `yaml:"publicKeyFile" env:"PUBLIC_KEY_FILE"`
}

// OverlayConfig names the device overlay file consumed at boot.
type OverlayConfig struct {
	File string `yaml:"file" env:"FILE"`
}

// AuditConfig configures the JSONL audit trail.
type AuditConfig struct {
	File       string `yaml:"file" env:"FILE"`
	MaxSizeMB  int    `yaml:"maxSizeMb" env:"MAX_SIZE_MB"`
	MaxBackups int    `yaml:"maxBackups" env:"MAX_BACKUPS"`
}

// TelemetryConfig sizes the event hub.
type TelemetryConfig struct {
	ReplayBuffer     int `yaml:"replayBuffer" env:"REPLAY_BUFFER"`
	SubscriberBuffer int `yaml:"subscriberBuffer" env:"SUBSCRIBER_BUFFER"`
}

// AdapterConfig selects the southbound WLAN adapter.
type AdapterConfig struct {
	Driver      string `yaml:"driver" env:"DRIVER"` // fake or wpactrl
	ControlAddr string `yaml:"controlAddr" env:"CONTROL_ADDR"`
	Interface   string `yaml:"interface" env:"INTERFACE"`
}

// Default returns the built-in configuration baseline.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(10 * time.Second),
			IdleTimeout:     Duration(60 * time.Second),
			ShutdownTimeout: Duration(5 * time.Second),
		},
		Log: LogConfig{
			Level:      "info",
			Output:     "console",
			File:       "wland.log",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Auth: AuthConfig{
			Algorithm: "HS256",
		},
		Audit: AuditConfig{
			File:       "audit/wland-audit.jsonl",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Telemetry: TelemetryConfig{
			ReplayBuffer:     64,
			SubscriberBuffer: 16,
		},
		Adapter: AdapterConfig{
			Driver:    "fake",
			Interface: "wlan0",
		},
		Timing: DefaultTiming(),
	}
}

// Load resolves the service configuration. An empty path falls back to
// the WLAND_CONFIG environment variable; if that is also empty, no file
// layer is used. Later layers fill only fields the earlier ones left
// unset, so precedence is environment > file > defaults.
func Load(path string) (*Config, error) {
	// Optional .env bootstrap; absence is not an error.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("WLAND_CONFIG")
	}

	layers := make([]*Config, 0, 3)

	envCfg := &Config{}
	if err := env.Parse(envCfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	layers = append(layers, envCfg)

	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		layers = append(layers, fileCfg)
	}

	layers = append(layers, Default())

	cfg := &Config{}
	for _, layer := range layers {
		if err := mergo.Merge(cfg, layer); err != nil {
			return nil, fmt.Errorf("failed to merge configuration layers: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile reads one YAML configuration layer.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}
