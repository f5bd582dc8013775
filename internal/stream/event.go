// Package stream renders monitor samples as posture stream events and drives
// one consumer of the monitor end to end: the CLI's stdout stream, an HTTP
// NDJSON response or a WebSocket connection.
package stream

import (
	"time"

	"postured/internal/capture"
	"postured/internal/monitor"
	"postured/internal/posture"
	"postured/pkg/types"
)

// Status messages emitted by Runner.
const (
	MsgStarting = "Starting posture monitoring"
	MsgActive   = "Camera monitor active"
	MsgStopped  = "Posture monitoring stopped"
)

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// PostureEvent builds a posture event. v must be Leaning or Upright.
func PostureEvent(v posture.Verdict, at time.Time) types.Event {
	leaning := v.IsLeaning()
	return types.Event{
		Timestamp: unixSeconds(at),
		Type:      types.EventPosture,
		Code:      types.CodeOK,
		IsLeaning: &leaning,
		Posture:   v.String(),
	}
}

// StatusEvent builds a status event with code 0.
func StatusEvent(msg string, at time.Time) types.Event {
	return types.Event{Timestamp: unixSeconds(at), Type: types.EventStatus, Code: types.CodeOK, Message: msg}
}

// ErrorEvent builds an error event.
func ErrorEvent(code int, msg string, at time.Time) types.Event {
	return types.Event{Timestamp: unixSeconds(at), Type: types.EventError, Code: code, Message: msg}
}

// SetupErrorEvent reports a startup failure that happened before any
// subscription existed, such as an unusable camera backend or a sink that
// would not connect.
func SetupErrorEvent(err error, at time.Time) types.Event {
	return ErrorEvent(types.CodeGeneral, "Error: "+err.Error(), at)
}

// SampleEvent maps one sample to its event. Capture failures carry code 10;
// detection failures and indeterminate verdicts carry code 3.
func SampleEvent(s monitor.Sample, at time.Time) types.Event {
	switch {
	case s.Err == nil && s.Verdict.Determinate():
		return PostureEvent(s.Verdict, at)
	case capture.IsFrameCaptureFailed(s.Err) || capture.IsCameraUnavailable(s.Err):
		return ErrorEvent(types.CodeCamera, "Camera hardware error: "+s.Err.Error(), at)
	case s.Err == nil:
		return ErrorEvent(types.CodeDetection, "Posture detection error: "+posture.ErrIndeterminate.Error(), at)
	default:
		return ErrorEvent(types.CodeDetection, "Posture detection error: "+s.Err.Error(), at)
	}
}

// SubscribeErrorEvent maps a failed Subscribe to its event: code 10 when the
// camera could not be opened, code 2 otherwise.
func SubscribeErrorEvent(err error, at time.Time) types.Event {
	if capture.IsCameraUnavailable(err) {
		return ErrorEvent(types.CodeCamera, "Camera hardware error: "+err.Error(), at)
	}
	return ErrorEvent(types.CodeSubscription, "Error during camera monitor subscription: "+err.Error(), at)
}
