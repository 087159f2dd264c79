//
//
package adapter

import (
	"errors"
	"fmt"
	"strings"
)

// Normalized adapter errors. Callers match with errors.Is.
var (
	ErrNotConnected = errors.New("NOT_CONNECTED")
	ErrBusy         = errors.New("BUSY")
	ErrUnavailable  = errors.New("UNAVAILABLE")
	ErrInternal     = errors.New("INTERNAL")
)

// DriverMap defines the error token mapping for a specific driver.
type DriverMap struct {
	NotConnected []string // Tokens that map to NOT_CONNECTED
	Busy         []string // Tokens that map to BUSY
	Unavailable  []string // Tokens that map to UNAVAILABLE
}

// DriverErrorMappings contains the deterministic error mapping tables for
// all drivers. Matching is token-based, not heuristic: unknown tokens map
// to INTERNAL, and new drivers get their own entry rather than extending
// the generic one.
var DriverErrorMappings = map[string]DriverMap{
	"wpactrl": {
		NotConnected: []string{
			"NOT-CONNECTED",
			"NOT_ASSOCIATED",
			"NO_CONNECTION",
			"DISCONNECTED",
		},
		Busy: []string{
			"FAIL-BUSY",
			"SCAN_IN_PROGRESS",
			"OPERATION_IN_PROGRESS",
			"RATE_LIMITED",
		},
		Unavailable: []string{
			"INTERFACE_DOWN",
			"RADIO_OFF",
			"DRIVER_NOT_READY",
			"CTRL_TIMEOUT",
			"SOCKET_CLOSED",
		},
	},
	"generic": {
		NotConnected: []string{
			"NOT_CONNECTED",
			"NO_LINK",
			"NO_CARRIER",
		},
		Busy: []string{
			"BUSY",
			"RETRY",
			"RATE_LIMIT",
			"BACKOFF",
		},
		Unavailable: []string{
			"UNAVAILABLE",
			"OFFLINE",
			"NOT_READY",
			"DOWN",
			"TIMEOUT",
		},
	},
}

// DriverError wraps a driver error with its normalized code and any
// diagnostic payload the driver returned.
type DriverError struct {
	Code     error       // Normalized sentinel
	Original error       // Driver error
	Details  interface{} // Driver payload (opaque)
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%v (driver: %v)", e.Code, e.Original)
}

func (e *DriverError) Unwrap() error {
	return e.Code
}

// NormalizeDriverError maps a driver error using the generic token table.
func NormalizeDriverError(driverErr error, payload interface{}) error {
	return NormalizeDriverErrorFor("generic", driverErr, payload)
}

// NormalizeDriverErrorFor maps a driver error using the named driver's
// token table, falling back to the generic table for unknown drivers.
func NormalizeDriverErrorFor(driver string, driverErr error, payload interface{}) error {
	if driverErr == nil {
		return nil
	}

	return &DriverError{
		Code:     mapDriverErrorToCode(driverErr.Error(), driver),
		Original: driverErr,
		Details:  payload,
	}
}

// mapDriverErrorToCode resolves a driver message to a normalized sentinel.
func mapDriverErrorToCode(msg string, driver string) error {
	driverMap, exists := DriverErrorMappings[driver]
	if !exists {
		driverMap = DriverErrorMappings["generic"]
	}

	upperMsg := strings.ToUpper(msg)

	for _, token := range driverMap.NotConnected {
		if strings.Contains(upperMsg, token) {
			return ErrNotConnected
		}
	}

	for _, token := range driverMap.Busy {
		if strings.Contains(upperMsg, token) {
			return ErrBusy
		}
	}

	for _, token := range driverMap.Unavailable {
		if strings.Contains(upperMsg, token) {
			return ErrUnavailable
		}
	}

	// Unknown token maps to INTERNAL.
	return ErrInternal
}
