// Package auth implements bearer-token authentication for the WLAN Control
// Daemon.
//
// The auth package validates JWT bearer tokens and enforces scopes on the
// management API, supporting read, control and telemetry permissions. When
// authentication is disabled in configuration the middleware passes requests
// through unchanged.
package auth
