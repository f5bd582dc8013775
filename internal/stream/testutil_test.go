package stream

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"postured/internal/capture"
	"postured/internal/monitor"
	"postured/internal/posture"
	"postured/pkg/types"
)

type testOpener struct {
	openErr error
	readErr error
}

func (o testOpener) Open(int) (capture.Device, error) {
	if o.openErr != nil {
		return nil, o.openErr
	}
	return testDevice{readErr: o.readErr}, nil
}

type testDevice struct{ readErr error }

func (testDevice) Grab() error { return nil }

func (d testDevice) Read() (capture.Frame, error) {
	if d.readErr != nil {
		return capture.Frame{}, d.readErr
	}
	return capture.Frame{Data: []byte{0xff, 0xd8}, Height: 10}, nil
}

func (testDevice) Close() error { return nil }

func verdict(v posture.Verdict) posture.Classifier {
	return posture.ClassifierFunc(func(context.Context, capture.Frame) (posture.Verdict, error) {
		return v, nil
	})
}

func newMonitor(t *testing.T, op capture.Opener, c posture.Classifier, interval time.Duration) *monitor.Monitor {
	t.Helper()
	m := monitor.NewWithConfig(monitor.Config{Opener: op, Classifier: c, Interval: interval, GrabInterval: -1})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// recorder collects events; hook runs after each append with the lock released.
type recorder struct {
	mu     sync.Mutex
	events []types.Event
	hook   func(n int, e types.Event) error
}

func (r *recorder) Encode(e types.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	n := len(r.events)
	hook := r.hook
	r.mu.Unlock()
	if hook != nil {
		return hook(n, e)
	}
	return nil
}

func (r *recorder) all() []types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}

func count(events []types.Event, typ string) int {
	n := 0
	for _, e := range events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

// failingSubscriber rejects every Subscribe.
type failingSubscriber struct{ err error }

func (f failingSubscriber) Subscribe(context.Context, string) (*monitor.Subscription, error) {
	return nil, f.err
}

func (failingSubscriber) Remove(*monitor.Subscription) {}

var errWrite = errors.New("broken pipe")

// memorySink records published events.
type memorySink struct {
	mu     sync.Mutex
	name   string
	events []types.Event
	closed bool
	block  chan struct{}
	err    error
}

func (s *memorySink) Name() string { return s.name }

func (s *memorySink) Publish(_ context.Context, e types.Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *memorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memorySink) snapshot() ([]types.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Event, len(s.events))
	copy(out, s.events)
	return out, s.closed
}
