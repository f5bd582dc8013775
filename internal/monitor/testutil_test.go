package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"postured/internal/capture"
	"postured/internal/posture"
)

// stubOpener hands out in-memory devices and tracks how many are open.
type stubOpener struct {
	mu      sync.Mutex
	openErr error
	readErr error
	open    int
	maxOpen int
	opens   int
	// block, when set, holds Read until it is closed; reading is signalled
	// as each Read starts.
	block   chan struct{}
	reading chan struct{}
}

func (o *stubOpener) Open(int) (capture.Device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.open++
	o.opens++
	if o.open > o.maxOpen {
		o.maxOpen = o.open
	}
	return &stubDevice{o: o}, nil
}

func (o *stubOpener) counts() (open, maxOpen, opens int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open, o.maxOpen, o.opens
}

type stubDevice struct{ o *stubOpener }

func (d *stubDevice) Grab() error { return nil }

func (d *stubDevice) Read() (capture.Frame, error) {
	d.o.mu.Lock()
	err, block, reading := d.o.readErr, d.o.block, d.o.reading
	d.o.mu.Unlock()
	if reading != nil {
		select {
		case reading <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return capture.Frame{}, err
	}
	return capture.Frame{Data: []byte{0xff, 0xd8}, Width: 4, Height: 4}, nil
}

func (d *stubDevice) Close() error {
	d.o.mu.Lock()
	d.o.open--
	d.o.mu.Unlock()
	return nil
}

func always(v posture.Verdict) posture.Classifier {
	return posture.ClassifierFunc(func(context.Context, capture.Frame) (posture.Verdict, error) {
		return v, nil
	})
}

func newTestMonitor(t *testing.T, op *stubOpener, c posture.Classifier, interval time.Duration) *Monitor {
	t.Helper()
	m := NewWithConfig(Config{
		Opener:       op,
		Classifier:   c,
		Interval:     interval,
		GrabInterval: -1,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func recv(t *testing.T, sub *Subscription, timeout time.Duration) Sample {
	t.Helper()
	select {
	case s, ok := <-sub.C:
		if !ok {
			t.Fatalf("subscription %s closed unexpectedly", sub.ID)
		}
		return s
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for sample on %s", sub.ID)
	}
	return Sample{}
}

func waitClosed(t *testing.T, sub *Subscription, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case _, ok := <-sub.C:
			if !ok {
				select {
				case <-sub.Done():
					return
				case <-deadline:
					t.Fatalf("done not closed for %s", sub.ID)
				}
			}
		case <-deadline:
			t.Fatalf("subscription %s not closed", sub.ID)
		}
	}
}
