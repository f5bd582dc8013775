// Package capture owns camera access for the posture monitor.
//
// A Resource wraps one Opener behind a reference count so that any number of
// subscribers share a single device handle:
//
//   - resource.go: Resource (Acquire/Release/ReadFrame) and the grab loop.
//   - device.go: Device/Opener interfaces, Strategy, Frame.
//   - errors.go: error types and helpers (IsCameraUnavailable, IsFrameCaptureFailed).
//   - backend.go: NewOpener selects a backend by name.
//
// Backends:
//
//   - gocv (OpenCV): enabled with `-tags=gocv`. Without the tag a stub fails
//     every Open with a dependency-unavailable error.
//   - v4l2: github.com/blackjack/webcam on linux, Motion-JPEG only.
//   - file: replays still images from a directory, in name order, looping.
//
// Two strategies are supported and fixed per Resource. StrategyHold keeps the
// device open while referenced and runs a grab loop that drains buffered
// frames so each timed read sees a fresh image. StrategyOneShot opens, reads
// and closes the device on every ReadFrame.
package capture
