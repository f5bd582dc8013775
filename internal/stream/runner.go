package stream

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"postured/internal/monitor"
	"postured/pkg/types"
)

// Exit codes returned by Runner.Run.
const (
	ExitOK    = 0
	ExitError = 1
)

// Subscriber is the part of *monitor.Monitor a Runner needs.
type Subscriber interface {
	Subscribe(ctx context.Context, id string) (*monitor.Subscription, error)
	// Remove drops sub unless a newer subscription has taken its id.
	Remove(sub *monitor.Subscription)
}

// Runner consumes one subscription and writes its events to an Encoder.
type Runner struct {
	Monitor Subscriber
	Encoder Encoder
	// ID is the subscriber identity; empty lets the monitor generate one.
	ID string
	// Backoff is how long to wait after an error event before taking the
	// next sample. Usually the monitor interval.
	Backoff time.Duration
	// Sink, if set, receives a copy of every event. Its errors are logged only.
	Sink   Sink
	Logger *zerolog.Logger

	log zerolog.Logger
}

// Run streams until ctx is cancelled or the subscription ends, and returns a
// process exit code. Every event is flushed before the next sample is read.
func (r *Runner) Run(ctx context.Context) (code int) {
	r.log = zerolog.Nop()
	if r.Logger != nil {
		r.log = r.Logger.With().Str("component", "stream").Logger()
	}
	var sub *monitor.Subscription
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("stream loop panicked")
			if sub != nil {
				r.Monitor.Remove(sub)
			}
			_ = r.emit(ctx, ErrorEvent(types.CodeUnexpected, fmt.Sprintf("Unexpected error: %v", rec), time.Now()))
			code = ExitError
		}
	}()

	r.log.Info().Msg("starting posture monitoring")
	if err := r.emit(ctx, StatusEvent(MsgStarting, time.Now())); err != nil {
		return ExitError
	}
	sub, err := r.Monitor.Subscribe(ctx, r.ID)
	if err != nil {
		r.log.Error().Err(err).Msg("subscribe failed")
		_ = r.emit(ctx, SubscribeErrorEvent(err, time.Now()))
		return ExitError
	}
	r.log.Info().Str("subscriber", sub.ID).Msg("camera monitor active")
	if err := r.emit(ctx, StatusEvent(MsgActive, time.Now())); err != nil {
		r.Monitor.Remove(sub)
		return ExitError
	}

	for {
		select {
		case <-ctx.Done():
			return r.stop(ctx, sub)
		case s, ok := <-sub.C:
			if !ok || ctx.Err() != nil {
				return r.stop(ctx, sub)
			}
			ev := SampleEvent(s, time.Now())
			if err := r.emit(ctx, ev); err != nil {
				r.Monitor.Remove(sub)
				return ExitError
			}
			if ev.Type == types.EventPosture {
				r.log.Debug().Str("posture", ev.Posture).Msg("posture detected")
				continue
			}
			r.log.Warn().Int("code", ev.Code).Msg(ev.Message)
			if r.Backoff > 0 {
				t := time.NewTimer(r.Backoff)
				select {
				case <-ctx.Done():
					t.Stop()
					return r.stop(ctx, sub)
				case <-t.C:
				}
			}
		}
	}
}

func (r *Runner) stop(ctx context.Context, sub *monitor.Subscription) int {
	r.Monitor.Remove(sub)
	r.log.Info().Str("subscriber", sub.ID).Msg("unsubscribed from camera monitor")
	if err := r.emit(ctx, StatusEvent(MsgStopped, time.Now())); err != nil {
		return ExitError
	}
	return ExitOK
}

// emit writes ev to the encoder, then hands it to the sink.
func (r *Runner) emit(ctx context.Context, ev types.Event) error {
	eventsTotal.WithLabelValues(ev.Type, strconv.Itoa(ev.Code)).Inc()
	if err := r.Encoder.Encode(ev); err != nil {
		r.log.Error().Err(err).Msg("failed to write event")
		return err
	}
	if r.Sink != nil {
		if err := r.Sink.Publish(context.WithoutCancel(ctx), ev); err != nil {
			r.log.Warn().Err(err).Str("sink", r.Sink.Name()).Msg("sink publish failed")
		}
	}
	return nil
}
