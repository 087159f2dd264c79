// Package api implements the HTTP API gateway for the WLAN Control Daemon.
//
// The gateway exposes northbound HTTP/JSON endpoints for runtime settings,
// subsystem event injection and radio control, an SSE telemetry stream, and
// a text diagnostic dump, translating requests into monitor calls.
package api
