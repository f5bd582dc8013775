package httpapi

import (
	"time"

	"postured/internal/stream"
)

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
)

// SetCORSOptions configures CORS for the HTTP server and the origin check
// for WebSocket upgrades.
func SetCORSOptions(enabled bool, origins []string) {
	corsEnabled = enabled && len(origins) > 0
	corsAllowedOrigins = append([]string(nil), origins...)
}

// wsWriteTimeout bounds a single WebSocket frame write.
var wsWriteTimeout = 10 * time.Second

// SetWSWriteTimeout sets the per-message WebSocket write deadline.
func SetWSWriteTimeout(d time.Duration) {
	if d <= 0 {
		d = 10 * time.Second
	}
	wsWriteTimeout = d
}

// eventSink, if set, receives a copy of every event streamed to HTTP clients.
var eventSink stream.Sink

// SetEventSink installs a sink shared by all stream handlers. Pass nil to disable.
func SetEventSink(s stream.Sink) { eventSink = s }
