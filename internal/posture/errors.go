package posture

import (
	"errors"
	"fmt"
)

// ErrIndeterminate is reported for frames without usable landmarks.
var ErrIndeterminate = errors.New("could not detect chin or shoulder position")

// detectionError signals that the landmark detector itself failed.
type detectionError struct{ err error }

func (e detectionError) Error() string { return fmt.Sprintf("posture detection failed: %v", e.err) }

func (e detectionError) Unwrap() error { return e.err }

// ErrDetectionFailed constructs a detectionError.
func ErrDetectionFailed(err error) error {
	if IsDetectionFailed(err) {
		return err
	}
	return detectionError{err: err}
}

// IsDetectionFailed reports whether err came from a failed detector call.
func IsDetectionFailed(err error) bool {
	var e detectionError
	return errors.As(err, &e)
}
