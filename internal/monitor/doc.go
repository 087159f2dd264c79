// Package monitor implements the event orchestrator for the WLAN Control
// Daemon.
//
// The monitor routes validated API intents and subsystem events to the
// settings store, calls adapter methods under timing bounds, flushes the
// ANQP cache on radio power-down, emits events to the telemetry hub, and
// writes audit records for every state change.
package monitor
