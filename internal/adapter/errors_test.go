package adapter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDriverErrorForTokens(t *testing.T) {
	tests := []struct {
		driver string
		msg    string
		want   error
	}{
		{"wpactrl", "FAIL NOT-CONNECTED", ErrNotConnected},
		{"wpactrl", "command failed: not_associated", ErrNotConnected},
		{"wpactrl", "FAIL-BUSY", ErrBusy},
		{"wpactrl", "scan_in_progress, retry later", ErrBusy},
		{"wpactrl", "INTERFACE_DOWN", ErrUnavailable},
		{"wpactrl", "radio_off", ErrUnavailable},
		{"wpactrl", "ctrl_timeout waiting for reply", ErrUnavailable},
		{"wpactrl", "ENOMEM", ErrInternal},
		{"generic", "device busy", ErrBusy},
		{"generic", "link is down", ErrUnavailable},
		{"generic", "no_carrier detected", ErrNotConnected},
		{"generic", "segfault", ErrInternal},
		// Unknown drivers fall back to the generic table.
		{"nl80211", "TIMEOUT", ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.driver, tt.msg), func(t *testing.T) {
			err := NormalizeDriverErrorFor(tt.driver, errors.New(tt.msg), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNormalizeDriverErrorNil(t *testing.T) {
	assert.NoError(t, NormalizeDriverError(nil, nil))
	assert.NoError(t, NormalizeDriverErrorFor("wpactrl", nil, nil))
}

func TestDriverErrorPreservesDiagnostics(t *testing.T) {
	original := errors.New("FAIL-BUSY: queue full")
	payload := map[string]interface{}{"queued": 12}

	err := NormalizeDriverErrorFor("wpactrl", original, payload)

	var driverErr *DriverError
	require.ErrorAs(t, err, &driverErr)
	assert.Equal(t, ErrBusy, driverErr.Code)
	assert.Equal(t, original, driverErr.Original)
	assert.Equal(t, payload, driverErr.Details)
	assert.Contains(t, driverErr.Error(), "BUSY")
	assert.Contains(t, driverErr.Error(), "queue full")
}
