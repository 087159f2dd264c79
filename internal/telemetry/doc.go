// Package telemetry implements the telemetry hub for the WLAN Control Daemon.
//
// The hub fans out link and settings events to all subscribers and keeps a
// ring of the last N events so reconnecting SSE clients can resume from a
// Last-Event-ID. The RSSI poller lives here too and feeds the hub.
package telemetry
