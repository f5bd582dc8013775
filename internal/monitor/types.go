package monitor

import (
	"fmt"
	"sync"
	"time"

	"postured/internal/posture"
)

// Sample is the outcome of one tick. Err is non-nil whenever Verdict is
// Indeterminate: a capture error, a detection error or posture.ErrIndeterminate.
type Sample struct {
	Verdict posture.Verdict
	Err     error
	At      time.Time
}

// Schedule controls how the wait between ticks is measured.
type Schedule string

const (
	// FixedRate starts a tick every interval, measured from the previous tick start.
	FixedRate Schedule = "fixed_rate"
	// FixedDelay sleeps a full interval after each tick's work.
	FixedDelay Schedule = "fixed_delay"
)

// ParseSchedule maps a config string to a Schedule. Empty means fixed rate.
func ParseSchedule(s string) (Schedule, error) {
	switch Schedule(s) {
	case "", FixedRate:
		return FixedRate, nil
	case FixedDelay:
		return FixedDelay, nil
	default:
		return "", fmt.Errorf("unknown schedule %q", s)
	}
}

// Subscription is one consumer's stream. C yields one Sample per tick and is
// closed when the subscription ends for any reason.
type Subscription struct {
	ID string
	C  <-chan Sample

	ch       chan Sample
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newSubscription(id string) *Subscription {
	ch := make(chan Sample)
	return &Subscription{
		ID:   id,
		C:    ch,
		ch:   ch,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Done is closed after the sampling loop has exited and C is closed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) signalStop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Subscription) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}
