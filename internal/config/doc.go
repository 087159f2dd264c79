// Package config implements service configuration for the WLAN Control
// Daemon.
//
// Configuration is resolved from three layers with descending precedence:
// environment variables (WLAND_*), an optional YAML file named by
// WLAND_CONFIG, and built-in defaults. Validation runs on the merged
// result and rejects configurations the daemon could not run with.
package config
