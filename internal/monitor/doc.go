// Package monitor runs the posture sampling loops behind a subscriber
// registry. It is structured into small files by concern:
//
//   - monitor.go: Monitor type, Subscribe/Unsubscribe, lifecycle.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: Sample, Schedule and Subscription.
//   - loop.go: the per-subscriber sampling loop.
//   - errors.go: error types and helpers (IsSubscriptionFailure, ErrClosed).
//   - events.go: lifecycle events and the EventPublisher hook.
//   - metrics.go: Prometheus collectors.
//   - status.go: Status reporting for the HTTP layer.
//
// All subscribers share one capture.Resource. The first subscriber acquires
// it and the last one to leave releases it, so the device is only in use while
// somebody is listening.
package monitor
