package capture

import (
	"fmt"
	"time"
)

// Frame is one encoded image taken from a device.
type Frame struct {
	// Encoded image bytes (JPEG for camera backends).
	Data []byte
	// MIME type of Data, e.g. image/jpeg.
	ContentType string
	Width       int
	Height      int
	// Seq increases by one for every frame a Resource hands out.
	Seq        uint64
	CapturedAt time.Time
}

// Device is an open camera handle. Implementations need not be safe for
// concurrent use; Resource serializes all calls.
type Device interface {
	// Grab advances the device past one buffered frame without decoding it.
	Grab() error
	// Read returns the next frame.
	Read() (Frame, error)
	// Close releases the handle.
	Close() error
}

// Opener opens the camera identified by index.
type Opener interface {
	Open(index int) (Device, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(index int) (Device, error)

func (f OpenerFunc) Open(index int) (Device, error) { return f(index) }

// Strategy controls how long a device handle stays open.
type Strategy string

const (
	StrategyHold    Strategy = "hold"
	StrategyOneShot Strategy = "oneshot"
)

// ParseStrategy maps a config string to a Strategy. Empty means hold.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyHold:
		return StrategyHold, nil
	case StrategyOneShot:
		return StrategyOneShot, nil
	default:
		return "", fmt.Errorf("unknown capture strategy %q", s)
	}
}
