// Package overlay implements the device configuration overlay for the
// WLAN Control Daemon.
//
// The overlay is a fixed key namespace with built-in per-key defaults.
// Values can be overridden by a flat YAML overlay file shipped with the
// device image and, with highest precedence, by WLAND_OVERLAY_* environment
// variables resolved on every lookup.
package overlay
