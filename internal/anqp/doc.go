// Package anqp implements the ANQP element cache for the WLAN Control Daemon.
//
// The cache holds network query responses keyed by BSSID so repeated probes
// of the same access point are answered locally. Entries age out on read and
// the whole cache is flushed when the radio is switched off and the device
// overlay asks for flush-on-toggle behavior.
package anqp
