package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"postured/internal/capture"
	"postured/internal/posture"
	"postured/internal/stream"
	"postured/pkg/types"
)

type stubDevice struct{}

func (stubDevice) Grab() error { return nil }
func (stubDevice) Read() (capture.Frame, error) {
	return capture.Frame{Data: []byte{0xff, 0xd8}, Height: 100}, nil
}
func (stubDevice) Close() error { return nil }

func pt(x, y float64) *posture.Point { return &posture.Point{X: x, Y: y} }

// stubHardware replaces the opener and detector for the duration of a test.
func stubHardware(t *testing.T, openErr error) {
	t.Helper()
	prevOpen, prevDet := fnNewOpener, fnNewDetector
	fnNewOpener = func(capture.BackendConfig) (capture.Opener, error) {
		return capture.OpenerFunc(func(int) (capture.Device, error) {
			if openErr != nil {
				return nil, openErr
			}
			return stubDevice{}, nil
		}), nil
	}
	fnNewDetector = func(string, time.Duration) posture.Detector {
		return posture.DetectorFunc(func(context.Context, capture.Frame) (posture.Landmarks, error) {
			return posture.Landmarks{
				Chin:          pt(0.5, 0.9),
				LeftShoulder:  pt(0.3, 0.5),
				RightShoulder: pt(0.7, 0.5),
				LeftEar:       pt(0.4, 0.2),
				RightEar:      pt(0.6, 0.2),
			}, nil
		})
	}
	t.Cleanup(func() { fnNewOpener, fnNewDetector = prevOpen, prevDet })
}

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func parseEvents(t *testing.T, out string) []types.Event {
	t.Helper()
	var evs []types.Event
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var e types.Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("bad line %q: %v", line, err)
		}
		evs = append(evs, e)
	}
	return evs
}

// memorySink records events published through the fanout.
type memorySink struct {
	mu     sync.Mutex
	events []types.Event
	closed bool
}

func (s *memorySink) Name() string { return "memory" }

func (s *memorySink) Publish(_ context.Context, e types.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
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
	return append([]types.Event(nil), s.events...), s.closed
}

var _ stream.Sink = (*memorySink)(nil)

func stubMQTT(t *testing.T, s stream.Sink, err error) *stream.MQTTConfig {
	t.Helper()
	got := &stream.MQTTConfig{}
	prev := fnNewMQTTSink
	fnNewMQTTSink = func(cfg stream.MQTTConfig, _ *zerolog.Logger) (stream.Sink, error) {
		*got = cfg
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	t.Cleanup(func() { fnNewMQTTSink = prev })
	return got
}
