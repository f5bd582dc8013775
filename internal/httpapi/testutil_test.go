package httpapi

import (
	"context"
	"testing"
	"time"

	"postured/internal/capture"
	"postured/internal/monitor"
	"postured/internal/posture"
)

type stubDevice struct{}

func (stubDevice) Grab() error { return nil }
func (stubDevice) Read() (capture.Frame, error) {
	return capture.Frame{Data: []byte{0xff, 0xd8}, Height: 10}, nil
}
func (stubDevice) Close() error { return nil }

func newTestMonitor(t *testing.T, openErr error, interval time.Duration) *monitor.Monitor {
	t.Helper()
	op := capture.OpenerFunc(func(int) (capture.Device, error) {
		if openErr != nil {
			return nil, openErr
		}
		return stubDevice{}, nil
	})
	c := posture.ClassifierFunc(func(context.Context, capture.Frame) (posture.Verdict, error) {
		return posture.Upright, nil
	})
	m := monitor.NewWithConfig(monitor.Config{Opener: op, Classifier: c, Interval: interval, GrabInterval: -1})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
