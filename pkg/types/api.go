package types

// Event types carried in the "type" field of every stream line.
const (
	EventPosture = "posture"
	EventStatus  = "status"
	EventError   = "error"
)

// Codes carried in the "code" field. Posture and status events use CodeOK.
const (
	CodeOK           = 0
	CodeGeneral      = 1
	CodeSubscription = 2
	CodeDetection    = 3
	CodeCamera       = 10
	CodeUnexpected   = 99
)

// Posture strings carried in the "posture" field.
const (
	PostureLeaning = "leaning"
	PostureUpright = "upright"
)

// Event is one line of the posture stream. Field order is the wire order.
type Event struct {
	// Unix time in seconds with sub-second precision.
	// example: 1700000000.123
	Timestamp float64 `json:"timestamp" example:"1700000000.123"`
	// One of posture, status, error.
	// example: posture
	Type string `json:"type" example:"posture"`
	// Zero for posture and healthy status; see Code* constants otherwise.
	// example: 0
	Code int `json:"code" example:"0"`
	// Present on posture events only.
	// example: true
	IsLeaning *bool `json:"is_leaning,omitempty" example:"true"`
	// Present on posture events only: leaning or upright.
	// example: leaning
	Posture string `json:"posture,omitempty" example:"leaning"`
	// Present on status and error events.
	// example: Camera monitor active
	Message string `json:"message,omitempty" example:"Camera monitor active"`
}

// ErrorResponse is a consistent JSON error payload for the HTTP API.
type ErrorResponse struct {
	// Error message.
	// example: subscription not found
	Error string `json:"error" example:"subscription not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// SubscribersResponse is returned by GET /subscribers.
type SubscribersResponse struct {
	Subscribers []string `json:"subscribers"`
}

// ProcessStatus summarizes resource usage of the running daemon.
type ProcessStatus struct {
	// example: 4242
	PID int32 `json:"pid" example:"4242"`
	// Resident set size in bytes.
	// example: 52428800
	RSSBytes uint64 `json:"rss_bytes" example:"52428800"`
	// CPU usage since process start, percent of one core.
	// example: 3.5
	CPUPercent float64 `json:"cpu_percent" example:"3.5"`
}

// MonitorStatus is returned by GET /status.
type MonitorStatus struct {
	// True while at least one subscriber is registered.
	// example: true
	Active bool `json:"active" example:"true"`
	// Registered subscriber identities, sorted.
	Subscribers []string `json:"subscribers"`
	// Sampling interval in seconds.
	// example: 10
	IntervalSeconds float64 `json:"interval_seconds" example:"10"`
	// Camera device index.
	// example: 0
	CameraIndex int `json:"camera_index" example:"0"`
	// Posture sensitivity in [0,1].
	// example: 0.4
	Sensitivity float64 `json:"sensitivity" example:"0.4"`
	// Capture strategy: hold or oneshot.
	// example: hold
	Strategy string `json:"strategy" example:"hold"`
	// Whether a device handle is currently open.
	// example: true
	CaptureOpen bool `json:"capture_open" example:"true"`
	// Samples produced since start.
	// example: 120
	TicksTotal uint64 `json:"ticks_total" example:"120"`
	// Samples that carried a capture or detection failure.
	// example: 3
	FailuresTotal uint64 `json:"failures_total" example:"3"`
	// Last per-tick or acquisition error, if any.
	LastError string `json:"last_error,omitempty"`
	// Uptime of the monitor in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Resource usage of this process, when available.
	Process *ProcessStatus `json:"process,omitempty"`
}
