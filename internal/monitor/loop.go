package monitor

import (
	"context"
	"fmt"
	"time"

	"postured/internal/capture"
	"postured/internal/posture"
)

// run is the sampling loop for one subscription. It exits, closing C, as soon
// as the subscription is no longer registered. Cancellation is only observed
// between ticks and while waiting; an in-flight read always completes.
func (m *Monitor) run(ctx context.Context, sub *Subscription) {
	defer m.wg.Done()
	defer close(sub.done)
	defer close(sub.ch)
	stopWatch := context.AfterFunc(ctx, func() { m.remove(sub) })
	defer stopWatch()

	for {
		if sub.stopped() || !m.registered(sub) {
			return
		}
		start := time.Now()
		s := m.sample(ctx, sub.ID)
		select {
		case sub.ch <- s:
		case <-sub.stop:
			return
		}
		wait := m.interval
		if m.schedule == FixedRate {
			wait = time.Until(start.Add(m.interval))
		}
		if wait <= 0 {
			continue
		}
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-sub.stop:
			t.Stop()
			return
		}
	}
}

// sample captures and classifies one frame. Classifier calls run on a context
// detached from ctx so an unsubscribe never aborts a detection midway.
func (m *Monitor) sample(ctx context.Context, id string) (s Sample) {
	start := time.Now()
	m.ticks.Add(1)
	defer func() {
		tickDuration.Observe(time.Since(start).Seconds())
		s.At = time.Now()
		if s.Err != nil {
			m.failures.Add(1)
			m.mu.Lock()
			m.lastErr = s.Err.Error()
			m.pub.Publish(Event{Name: EventTickFailed, SubscriberID: id, Fields: map[string]any{"error": s.Err.Error()}})
			m.mu.Unlock()
			m.log.Debug().Err(s.Err).Str("subscriber", id).Msg("tick failed")
		}
	}()

	frame, err := m.res.ReadFrame()
	if err != nil {
		ticksTotal.WithLabelValues(resultCaptureError).Inc()
		return Sample{Verdict: posture.Indeterminate, Err: capture.ErrFrameCaptureFailed(err)}
	}
	v, err := m.classify(context.WithoutCancel(ctx), frame)
	if err != nil {
		ticksTotal.WithLabelValues(resultDetectionError).Inc()
		return Sample{Verdict: posture.Indeterminate, Err: posture.ErrDetectionFailed(err)}
	}
	switch v {
	case posture.Leaning:
		ticksTotal.WithLabelValues(resultLeaning).Inc()
	case posture.Upright:
		ticksTotal.WithLabelValues(resultUpright).Inc()
	default:
		ticksTotal.WithLabelValues(resultIndeterminate).Inc()
		return Sample{Verdict: posture.Indeterminate, Err: posture.ErrIndeterminate}
	}
	return Sample{Verdict: v}
}

func (m *Monitor) classify(ctx context.Context, f capture.Frame) (v posture.Verdict, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = posture.Indeterminate, fmt.Errorf("classifier panic: %v", r)
		}
	}()
	return m.classifier.Classify(ctx, f)
}
