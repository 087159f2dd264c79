// Package adapter defines the southbound WLAN adapter contract.
//
// An adapter binds the daemon to one wireless interface: it reads link
// statistics, tears down associations, and toggles the radio. Driver
// errors are normalized to a small set of sentinel codes
// (NOT_CONNECTED, BUSY, UNAVAILABLE, INTERNAL) through table-driven
// token matching so callers never branch on driver-specific strings.
package adapter
