//
//
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/wlan-control/wland/internal/auth"
)

const serviceVersion = "1.0.0"

// maxBodyBytes bounds control-plane request bodies.
const maxBodyBytes = 1 << 16

// RegisterRoutes registers all v1 endpoints.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	apiV1 := "/api/v1"

	// Health endpoint (no auth required)
	mux.HandleFunc(apiV1+"/health", s.handleHealth)

	// Settings surface
	mux.HandleFunc(apiV1+"/settings", s.protect(auth.ScopeRead, s.handleSettings))
	mux.HandleFunc(apiV1+"/settings/poll-rssi-interval", s.protect(auth.ScopeControl, s.handlePollRssiInterval))
	mux.HandleFunc(apiV1+"/settings/ip-reachability-disconnect", s.protect(auth.ScopeControl, s.handleIPReachabilityDisconnect))

	// Subsystem event injection
	mux.HandleFunc(apiV1+"/events/bluetooth", s.protect(auth.ScopeControl, s.handleBluetoothEvent))
	mux.HandleFunc(apiV1+"/events/reachability-lost", s.protect(auth.ScopeControl, s.handleReachabilityLost))

	// Radio control
	mux.HandleFunc(apiV1+"/radio", s.protect(auth.ScopeControl, s.handleRadio))

	// Telemetry stream
	mux.HandleFunc(apiV1+"/telemetry", s.protect(auth.ScopeTelemetry, s.handleTelemetry))

	// Diagnostic dump
	mux.HandleFunc(apiV1+"/debug/settings", s.protect(auth.ScopeRead, s.handleDebugSettings))
}

// protect wraps a handler with authentication and a scope requirement.
func (s *Server) protect(scope string, h http.HandlerFunc) http.HandlerFunc {
	if s.authMiddleware == nil {
		return h
	}
	return s.authMiddleware.RequireAuth(s.authMiddleware.RequireScope(scope)(h))
}

// decodeStrict decodes exactly one JSON value, rejecting unknown fields,
// trailing data, and oversized bodies. It writes the error response itself
// and reports whether decoding succeeded.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Malformed JSON or unknown fields", nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"Trailing data after JSON object", nil)
		return false
	}

	return true
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	uptime := 0.0
	if !s.startTime.IsZero() {
		uptime = time.Since(s.startTime).Seconds()
	}

	subsystems := map[string]bool{
		"settings":  s.settings != nil,
		"monitor":   s.monitor != nil,
		"telemetry": s.telemetry != nil,
	}

	overallStatus := "ok"
	for _, up := range subsystems {
		if !up {
			overallStatus = "degraded"
		}
	}

	health := map[string]interface{}{
		"status":     overallStatus,
		"service":    "wland",
		"version":    serviceVersion,
		"uptimeSec":  uptime,
		"subsystems": subsystems,
	}

	if overallStatus == "ok" {
		WriteSuccess(w, health)
	} else {
		WriteError(w, http.StatusServiceUnavailable, "SERVICE_DEGRADED",
			"One or more subsystems are unavailable", health)
	}
}

// handleSettings handles GET /settings
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"pollRssiIntervalMillis":             s.settings.PollRssiIntervalMillis(),
		"ipReachabilityDisconnectEnabled":    s.settings.IPReachabilityDisconnectEnabled(),
		"isBluetoothConnected":               s.settings.IsBluetoothConnected(),
		"connectedMacRandomizationEnabled":   s.settings.IsConnectedMacRandomizationEnabled(),
		"wpa3SaeUpgradeEnabled":              s.settings.IsWpa3SaeUpgradeEnabled(),
		"wpa3SaeUpgradeOffloadEnabled":       s.settings.IsWpa3SaeUpgradeOffloadEnabled(),
		"oweUpgradeEnabled":                  s.settings.IsOweUpgradeEnabled(),
		"wpa3EnterpriseUpgradeEnabled":       s.settings.IsWpa3EnterpriseUpgradeEnabled(),
		"flushAnqpCacheOnWifiToggleOffEvent": s.settings.FlushAnqpCacheOnWifiToggleOffEvent(),
		"maxPollRssiIntervalMillis":          6000,
	})
}

// handlePollRssiInterval handles PUT /settings/poll-rssi-interval
func (s *Server) handlePollRssiInterval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only PUT method is allowed", nil)
		return
	}

	var req struct {
		IntervalMillis *int `json:"intervalMillis"`
	}
	if !decodeStrict(w, r, &req) {
		return
	}
	if req.IntervalMillis == nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"intervalMillis is required", nil)
		return
	}

	effective := s.monitor.SetPollRssiInterval(r.Context(), *req.IntervalMillis)
	WriteSuccess(w, map[string]interface{}{
		"pollRssiIntervalMillis": effective,
	})
}

// handleIPReachabilityDisconnect handles PUT /settings/ip-reachability-disconnect
func (s *Server) handleIPReachabilityDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only PUT method is allowed", nil)
		return
	}

	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if !decodeStrict(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"enabled is required", nil)
		return
	}

	s.monitor.SetIPReachabilityDisconnect(r.Context(), *req.Enabled)
	WriteSuccess(w, map[string]interface{}{
		"ipReachabilityDisconnectEnabled": *req.Enabled,
	})
}

// handleBluetoothEvent handles POST /events/bluetooth
func (s *Server) handleBluetoothEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only POST method is allowed", nil)
		return
	}

	var req struct {
		Event     string `json:"event"`
		Enabled   *bool  `json:"enabled,omitempty"`
		Connected *bool  `json:"connected,omitempty"`
	}
	if !decodeStrict(w, r, &req) {
		return
	}

	switch req.Event {
	case "state":
		if req.Enabled == nil {
			WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
				"enabled is required for state events", nil)
			return
		}
		s.monitor.HandleBluetoothStateChanged(r.Context(), *req.Enabled)
	case "connection":
		if req.Connected == nil {
			WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
				"connected is required for connection events", nil)
			return
		}
		s.monitor.HandleBluetoothConnectionChanged(r.Context(), *req.Connected)
	default:
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			fmt.Sprintf("Unknown bluetooth event %q", req.Event), nil)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"event":                req.Event,
		"isBluetoothConnected": s.settings.IsBluetoothConnected(),
	})
}

// handleReachabilityLost handles POST /events/reachability-lost
func (s *Server) handleReachabilityLost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only POST method is allowed", nil)
		return
	}

	acted, err := s.monitor.HandleReachabilityLost(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"disconnected": acted,
	})
}

// handleRadio handles POST /radio
func (s *Server) handleRadio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only POST method is allowed", nil)
		return
	}

	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if !decodeStrict(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		WriteError(w, http.StatusBadRequest, "BAD_REQUEST",
			"enabled is required", nil)
		return
	}

	if err := s.monitor.SetRadioEnabled(r.Context(), *req.Enabled); err != nil {
		writeMappedError(w, err)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"radioEnabled": *req.Enabled,
	})
}

// handleTelemetry handles GET /telemetry (SSE)
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "INTERNAL",
			"Streaming not supported", nil)
		return
	}

	// Parse Last-Event-ID header for resume
	lastEventID := int64(0)
	if lastIDStr := r.Header.Get("Last-Event-ID"); lastIDStr != "" {
		if id, err := strconv.ParseInt(lastIDStr, 10, 64); err == nil {
			lastEventID = id
		}
	}

	events, cancel := s.telemetry.Subscribe(r.Context(), lastEventID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Initial ready event so clients learn the current stream position.
	if err := writeSSE(w, 0, "ready", map[string]interface{}{
		"lastEventId": s.telemetry.LastEventID(),
	}); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, event.ID, event.Type, event.Data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSE emits one SSE frame. A zero id omits the id field.
func writeSSE(w io.Writer, id int64, eventType string, data map[string]interface{}) error {
	if id > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}

	return nil
}

// handleDebugSettings handles GET /debug/settings
func (s *Server) handleDebugSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			"Only GET method is allowed", nil)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	s.settings.Dump(w)
}
