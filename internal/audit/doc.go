// Package audit implements the audit trail for the WLAN Control Daemon.
//
// Every state-changing operation is recorded as one JSON object per line
// (action, target, outcome, latency, acting user) through a size-rotated
// file sink. Audit failures are logged and never fail the operation that
// was being recorded.
package audit
