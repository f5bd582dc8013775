package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"postured/pkg/types"
)

// Sink receives a copy of stream events, e.g. a message broker.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e types.Event) error
	Close() error
}

const defaultQueueSize = 64

// Fanout delivers events to several sinks, each from its own goroutine and
// bounded queue. Publish never blocks; when a queue is full the event is
// dropped for that sink.
type Fanout struct {
	log    zerolog.Logger
	sinks  []Sink
	queues []chan types.Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewFanout starts one delivery goroutine per sink.
func NewFanout(lg *zerolog.Logger, sinks ...Sink) *Fanout {
	f := &Fanout{log: zerolog.Nop(), sinks: sinks}
	if lg != nil {
		f.log = lg.With().Str("component", "sink").Logger()
	}
	for _, s := range sinks {
		q := make(chan types.Event, defaultQueueSize)
		f.queues = append(f.queues, q)
		f.wg.Add(1)
		go f.deliver(s, q)
	}
	return f
}

func (f *Fanout) Name() string { return "fanout" }

// Len returns the number of sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

func (f *Fanout) Publish(_ context.Context, e types.Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return errors.New("fanout closed")
	}
	for i, q := range f.queues {
		select {
		case q <- e:
		default:
			sinkDroppedTotal.WithLabelValues(f.sinks[i].Name()).Inc()
			f.log.Warn().Str("sink", f.sinks[i].Name()).Msg("sink queue full, dropping event")
		}
	}
	return nil
}

func (f *Fanout) deliver(s Sink, q <-chan types.Event) {
	defer f.wg.Done()
	for e := range q {
		if err := s.Publish(context.Background(), e); err != nil {
			sinkErrorsTotal.WithLabelValues(s.Name()).Inc()
			f.log.Warn().Err(err).Str("sink", s.Name()).Msg("publish failed")
		}
	}
}

// Close drains the queues and closes every sink.
func (f *Fanout) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	for _, q := range f.queues {
		close(q)
	}
	f.mu.Unlock()
	f.wg.Wait()
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
