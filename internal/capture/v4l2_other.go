//go:build !linux

package capture

func newV4L2Opener(BackendConfig) Opener {
	return OpenerFunc(func(index int) (Device, error) {
		return nil, ErrCameraUnavailable(index, ErrDependencyUnavailable("v4l2 capture is only available on linux"))
	})
}
