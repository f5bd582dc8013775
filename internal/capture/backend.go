package capture

import (
	"fmt"
	"time"
)

// Backend names accepted by NewOpener.
const (
	BackendAuto = "auto"
	BackendGocv = "gocv"
	BackendV4L2 = "v4l2"
	BackendFile = "file"
)

// BackendConfig selects and parameterizes a capture backend.
type BackendConfig struct {
	Backend string
	// Device overrides the v4l2 node path (default <DevDir>/video<index>).
	Device string
	DevDir string
	// Dir is the image directory for the file backend.
	Dir    string
	Width  int
	Height int
	// ReadTimeout bounds a single v4l2 frame wait.
	ReadTimeout time.Duration
}

// NewOpener returns the Opener for cfg.Backend. "auto" (or empty) picks gocv
// when this binary was built with the gocv tag and v4l2 otherwise.
func NewOpener(cfg BackendConfig) (Opener, error) {
	switch cfg.Backend {
	case "", BackendAuto:
		if gocvBuilt {
			return newGocvOpener(cfg), nil
		}
		return newV4L2Opener(cfg), nil
	case BackendGocv:
		return newGocvOpener(cfg), nil
	case BackendV4L2:
		return newV4L2Opener(cfg), nil
	case BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file backend requires a directory")
		}
		return NewFileOpener(cfg.Dir), nil
	default:
		return nil, fmt.Errorf("unknown capture backend %q", cfg.Backend)
	}
}

// ResolvedBackend reports the backend NewOpener would use for name.
func ResolvedBackend(name string) string {
	if name == "" || name == BackendAuto {
		if gocvBuilt {
			return BackendGocv
		}
		return BackendV4L2
	}
	return name
}
