package monitor

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"postured/internal/capture"
	"postured/internal/posture"
)

// Monitor owns the shared capture resource and one sampling loop per subscriber.
type Monitor struct {
	// mu guards subs, closed, lastErr and every Acquire/Release call on res.
	mu      sync.Mutex
	subs    map[string]*Subscription
	closed  bool
	lastErr string
	// acquireErr is the most recent failed acquisition, cleared on success.
	acquireErr error

	res         *capture.Resource
	classifier  posture.Classifier
	interval    time.Duration
	schedule    Schedule
	cameraIndex int
	sensitivity float64
	pub         EventPublisher
	log         zerolog.Logger
	startTime   time.Time

	ticks    atomic.Uint64
	failures atomic.Uint64
	wg       sync.WaitGroup
}

// SetEventPublisher replaces the publisher. Nil restores the no-op default.
func (m *Monitor) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.pub = p
}

// Subscribe registers id and starts its sampling loop. An empty id is replaced
// by a generated UUID. The first subscriber acquires the camera; if that fails
// nothing is registered and the error satisfies both IsSubscriptionFailure and
// capture.IsCameraUnavailable. Subscribing an id that is already registered
// ends the previous stream and starts a fresh one without touching the camera.
// Cancelling ctx unsubscribes.
func (m *Monitor) Subscribe(ctx context.Context, id string) (*Subscription, error) {
	if id == "" {
		id = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if old, ok := m.subs[id]; ok {
		delete(m.subs, id)
		old.signalStop()
		m.log.Debug().Str("subscriber", id).Msg("replacing existing subscription")
	} else if len(m.subs) == 0 {
		if err := m.res.Acquire(); err != nil {
			m.acquireErr = err
			m.lastErr = err.Error()
			captureAcquireFailures.Inc()
			m.pub.Publish(Event{Name: EventCaptureFailed, SubscriberID: id, Fields: map[string]any{"error": err.Error()}})
			m.log.Warn().Err(err).Str("subscriber", id).Msg("camera acquisition failed")
			return nil, ErrSubscriptionFailure(id, err)
		}
		m.acquireErr = nil
		m.pub.Publish(Event{Name: EventCaptureAcquired, SubscriberID: id})
	}
	sub := newSubscription(id)
	m.subs[id] = sub
	subscribersGauge.Set(float64(len(m.subs)))
	m.pub.Publish(Event{Name: EventSubscribe, SubscriberID: id})
	m.log.Debug().Str("subscriber", id).Int("subscribers", len(m.subs)).Msg("subscribed")
	m.wg.Add(1)
	go m.run(ctx, sub)
	return sub, nil
}

// Unsubscribe removes id. An empty id removes every subscriber. Unknown ids
// are ignored.
func (m *Monitor) Unsubscribe(id string) {
	if id == "" {
		m.UnsubscribeAll()
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.subs[id]; ok {
		m.removeLocked(sub)
	}
}

// UnsubscribeAll removes every subscriber and releases the camera.
func (m *Monitor) UnsubscribeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeAllLocked()
}

func (m *Monitor) removeAllLocked() {
	ids := make([]string, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		m.removeLocked(m.subs[id])
	}
}

// Remove drops sub only if it is still the registered subscription for its
// id. A stream replaced by a later Subscribe with the same id is a no-op here.
func (m *Monitor) Remove(sub *Subscription) {
	if sub != nil {
		m.remove(sub)
	}
}

func (m *Monitor) remove(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.subs[sub.ID]; ok && cur == sub {
		m.removeLocked(sub)
	}
}

func (m *Monitor) removeLocked(sub *Subscription) {
	delete(m.subs, sub.ID)
	sub.signalStop()
	subscribersGauge.Set(float64(len(m.subs)))
	m.pub.Publish(Event{Name: EventUnsubscribe, SubscriberID: sub.ID})
	m.log.Debug().Str("subscriber", sub.ID).Int("subscribers", len(m.subs)).Msg("unsubscribed")
	if len(m.subs) == 0 {
		m.res.Release()
		m.pub.Publish(Event{Name: EventCaptureReleased, SubscriberID: sub.ID})
	}
}

// registered reports whether sub is the current subscription for its id and
// the camera is held.
func (m *Monitor) registered(sub *Subscription) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.subs[sub.ID]
	return ok && cur == sub && m.res.Active()
}

// Subscribers returns the registered ids in sorted order.
func (m *Monitor) Subscribers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribersLocked()
}

func (m *Monitor) subscribersLocked() []string {
	out := make([]string, 0, len(m.subs))
	for id := range m.subs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Active reports whether any subscriber is registered.
func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs) > 0
}

// CaptureOpen reports whether the camera handle is currently open.
func (m *Monitor) CaptureOpen() bool { return m.res.HandleOpen() }

// Ready reports whether the monitor accepts subscribers and the most recent
// camera acquisition did not fail.
func (m *Monitor) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed && m.acquireErr == nil
}

// Interval returns the tick interval.
func (m *Monitor) Interval() time.Duration { return m.interval }

// Close unsubscribes everyone, waits for all loops to exit and rejects
// further subscriptions.
func (m *Monitor) Close() error {
	m.mu.Lock()
	m.closed = true
	m.removeAllLocked()
	m.mu.Unlock()
	m.wg.Wait()
	m.res.Close()
	return nil
}
