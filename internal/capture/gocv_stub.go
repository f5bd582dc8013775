//go:build !gocv

package capture

var gocvBuilt = false

func newGocvOpener(BackendConfig) Opener {
	return OpenerFunc(func(index int) (Device, error) {
		return nil, ErrCameraUnavailable(index, ErrDependencyUnavailable("gocv support not built (missing 'gocv' build tag)"))
	})
}
