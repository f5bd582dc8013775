package capture

import (
	"errors"
	"fmt"
)

// cameraUnavailableError signals that the device could not be opened.
type cameraUnavailableError struct {
	index int
	err   error
}

func (e cameraUnavailableError) Error() string {
	return fmt.Sprintf("could not open camera %d: %v", e.index, e.err)
}

func (e cameraUnavailableError) Unwrap() error { return e.err }

// ErrCameraUnavailable constructs a cameraUnavailableError. An err that already
// reports IsCameraUnavailable is returned unchanged.
func ErrCameraUnavailable(index int, err error) error {
	if err == nil {
		err = errors.New("device not opened")
	}
	if IsCameraUnavailable(err) {
		return err
	}
	return cameraUnavailableError{index: index, err: err}
}

// IsCameraUnavailable reports whether err indicates the device cannot be opened.
func IsCameraUnavailable(err error) bool {
	var e cameraUnavailableError
	return errors.As(err, &e)
}

// frameCaptureError signals a single failed read.
type frameCaptureError struct{ err error }

func (e frameCaptureError) Error() string {
	return "failed to capture image from camera: " + e.err.Error()
}

func (e frameCaptureError) Unwrap() error { return e.err }

// ErrFrameCaptureFailed constructs a frameCaptureError.
func ErrFrameCaptureFailed(err error) error {
	if err == nil {
		err = errors.New("empty frame")
	}
	if IsFrameCaptureFailed(err) {
		return err
	}
	return frameCaptureError{err: err}
}

// IsFrameCaptureFailed reports whether err indicates a failed frame read.
func IsFrameCaptureFailed(err error) bool {
	var e frameCaptureError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a backend that is not compiled into this binary.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing backend.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

var (
	errNotAcquired = errors.New("capture resource not acquired")
	errClosed      = errors.New("capture device closed")
)
