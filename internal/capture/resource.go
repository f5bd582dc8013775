package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// DefaultGrabInterval is how often the hold strategy drains the device buffer.
const DefaultGrabInterval = 5 * time.Millisecond

// Options configures a Resource.
type Options struct {
	// Index is passed to the Opener.
	Index    int
	Strategy Strategy
	// GrabInterval applies to StrategyHold. Zero selects DefaultGrabInterval;
	// a negative value disables the grab loop.
	GrabInterval time.Duration
	Logger       *zerolog.Logger
}

// Resource is a reference-counted camera handle shared by all subscribers.
//
// With StrategyHold the device is open exactly while the count is positive.
// With StrategyOneShot no handle outlives a single ReadFrame.
type Resource struct {
	opener    Opener
	index     int
	strategy  Strategy
	grabEvery time.Duration
	log       zerolog.Logger

	// mu guards refs, h, retired and the grab loop lifecycle.
	mu       sync.Mutex
	refs     int
	h        *handle
	stopGrab chan struct{}
	// retired is the last released handle whose close may still be pending
	// behind an in-flight read. Acquire closes it before opening another.
	retired *handle

	// io serializes all device calls. Always taken after mu.
	io sync.Mutex

	seq    atomic.Uint64
	opens  atomic.Uint64
	closes atomic.Uint64
}

// handle.closed is guarded by Resource.io.
type handle struct {
	dev     Device
	closed  bool
	retired atomic.Bool
}

// NewResource returns an idle Resource. Nothing is opened until Acquire.
func NewResource(opener Opener, opts Options) *Resource {
	if opts.Strategy == "" {
		opts.Strategy = StrategyHold
	}
	if opts.GrabInterval == 0 {
		opts.GrabInterval = DefaultGrabInterval
	}
	lg := zerolog.Nop()
	if opts.Logger != nil {
		lg = opts.Logger.With().Str("component", "capture").Int("camera", opts.Index).Logger()
	}
	return &Resource{
		opener:    opener,
		index:     opts.Index,
		strategy:  opts.Strategy,
		grabEvery: opts.GrabInterval,
		log:       lg,
	}
}

// Acquire takes a reference. The first reference opens the device (hold) or
// probes it with an open/close pair (oneshot). On failure the count is left
// unchanged and the error reports IsCameraUnavailable.
func (r *Resource) Acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs > 0 {
		r.refs++
		return nil
	}
	r.io.Lock()
	r.reapLocked()
	dev, err := r.opener.Open(r.index)
	if err != nil {
		r.io.Unlock()
		r.log.Warn().Err(err).Msg("open failed")
		return ErrCameraUnavailable(r.index, err)
	}
	r.opens.Add(1)
	if r.strategy == StrategyOneShot {
		cerr := dev.Close()
		r.closes.Add(1)
		r.io.Unlock()
		if cerr != nil {
			r.log.Debug().Err(cerr).Msg("close after probe")
		}
		r.refs = 1
		return nil
	}
	r.io.Unlock()
	r.h = &handle{dev: dev}
	if r.grabEvery > 0 {
		r.stopGrab = make(chan struct{})
		go r.grabLoop(r.h, r.stopGrab)
	}
	r.refs = 1
	r.log.Debug().Str("strategy", string(r.strategy)).Msg("device opened")
	return nil
}

// Release drops a reference. Releasing with no outstanding references is a
// no-op. The last release stops the grab loop and retires the handle without
// waiting on device I/O: if a read is in flight, the handle is closed as soon
// as that read returns.
func (r *Resource) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs == 0 {
		return
	}
	r.refs--
	if r.refs > 0 {
		return
	}
	r.closeLocked()
}

// closeLocked retires the current handle. Called with mu held; never blocks on io.
func (r *Resource) closeLocked() {
	if r.stopGrab != nil {
		close(r.stopGrab)
		r.stopGrab = nil
	}
	h := r.h
	r.h = nil
	if h == nil {
		return
	}
	h.retired.Store(true)
	if r.io.TryLock() {
		r.closeHandle(h)
		r.io.Unlock()
		return
	}
	r.retired = h
	r.log.Debug().Msg("device busy, close deferred until read returns")
	go func() {
		r.io.Lock()
		defer r.io.Unlock()
		r.closeHandle(h)
	}()
}

// reapLocked closes the retired handle if its deferred close has not run yet.
// Called with mu and io held.
func (r *Resource) reapLocked() {
	if r.retired != nil {
		r.closeHandle(r.retired)
		r.retired = nil
	}
}

// closeHandle closes h once. Called with io held.
func (r *Resource) closeHandle(h *handle) {
	if h.closed {
		return
	}
	h.closed = true
	err := h.dev.Close()
	r.closes.Add(1)
	if err != nil {
		r.log.Warn().Err(err).Msg("close failed")
		return
	}
	r.log.Debug().Msg("device closed")
}

// ReadFrame returns the most recent frame. It fails with an error that
// reports IsFrameCaptureFailed when the Resource is not acquired or the
// device read fails.
func (r *Resource) ReadFrame() (Frame, error) {
	r.mu.Lock()
	refs, h := r.refs, r.h
	r.mu.Unlock()
	if refs == 0 {
		return Frame{}, ErrFrameCaptureFailed(errNotAcquired)
	}
	if r.strategy == StrategyOneShot {
		return r.readOnce()
	}
	if h == nil {
		return Frame{}, ErrFrameCaptureFailed(errNotAcquired)
	}
	r.io.Lock()
	defer r.io.Unlock()
	if h.closed {
		return Frame{}, ErrFrameCaptureFailed(errClosed)
	}
	f, err := h.dev.Read()
	if err != nil {
		return Frame{}, ErrFrameCaptureFailed(err)
	}
	return r.stamp(f)
}

func (r *Resource) readOnce() (Frame, error) {
	r.io.Lock()
	defer r.io.Unlock()
	dev, err := r.opener.Open(r.index)
	if err != nil {
		return Frame{}, ErrFrameCaptureFailed(ErrCameraUnavailable(r.index, err))
	}
	r.opens.Add(1)
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			r.log.Debug().Err(cerr).Msg("close after read")
		}
		r.closes.Add(1)
	}()
	f, err := dev.Read()
	if err != nil {
		return Frame{}, ErrFrameCaptureFailed(err)
	}
	return r.stamp(f)
}

func (r *Resource) stamp(f Frame) (Frame, error) {
	if len(f.Data) == 0 {
		return Frame{}, ErrFrameCaptureFailed(nil)
	}
	if f.ContentType == "" {
		f.ContentType = "image/jpeg"
	}
	if f.CapturedAt.IsZero() {
		f.CapturedAt = time.Now()
	}
	f.Seq = r.seq.Add(1)
	return f, nil
}

// grabLoop drains buffered frames while the handle is open. Grab errors are
// ignored; the next timed read reports real failures.
func (r *Resource) grabLoop(h *handle, stop <-chan struct{}) {
	t := time.NewTicker(r.grabEvery)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		if h.retired.Load() {
			return
		}
		r.io.Lock()
		if !h.closed {
			if err := h.dev.Grab(); err != nil {
				r.log.Trace().Err(err).Msg("grab")
			}
		}
		r.io.Unlock()
	}
}

// Refs returns the current reference count.
func (r *Resource) Refs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs
}

// Active reports whether at least one reference is held.
func (r *Resource) Active() bool { return r.Refs() > 0 }

// HandleOpen reports whether a long-lived device handle is currently open.
// Always false for StrategyOneShot outside of a read.
func (r *Resource) HandleOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.h != nil
}

// Strategy returns the configured strategy.
func (r *Resource) Strategy() Strategy { return r.strategy }

// Index returns the camera index.
func (r *Resource) Index() int { return r.index }

// Stats returns the total number of device opens and closes.
func (r *Resource) Stats() (opens, closes uint64) {
	return r.opens.Load(), r.closes.Load()
}

// Close force-releases every outstanding reference and, unlike Release,
// waits for the device to be closed.
func (r *Resource) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs > 0 {
		r.refs = 0
		r.closeLocked()
	}
	r.io.Lock()
	r.reapLocked()
	r.io.Unlock()
}
