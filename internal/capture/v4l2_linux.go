//go:build linux

package capture

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/blackjack/webcam"

	"postured/internal/registry"
)

const (
	defaultV4L2Width  = 640
	defaultV4L2Height = 480
)

type v4l2Opener struct {
	device  string
	devDir  string
	width   uint32
	height  uint32
	timeout uint32
}

func newV4L2Opener(cfg BackendConfig) Opener {
	o := &v4l2Opener{
		device:  cfg.Device,
		devDir:  cfg.DevDir,
		width:   defaultV4L2Width,
		height:  defaultV4L2Height,
		timeout: 2,
	}
	if o.devDir == "" {
		o.devDir = registry.DefaultDevDir
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		o.width, o.height = uint32(cfg.Width), uint32(cfg.Height)
	}
	if cfg.ReadTimeout > 0 {
		o.timeout = uint32((cfg.ReadTimeout + time.Second - 1) / time.Second)
	}
	return o
}

func (o *v4l2Opener) Open(index int) (Device, error) {
	path := o.device
	if path == "" {
		path = registry.DevicePath(o.devDir, index)
	}
	cam, err := webcam.Open(path)
	if err != nil {
		return nil, ErrCameraUnavailable(index, fmt.Errorf("%s: %w", path, err))
	}
	format, ok := pickMJPEG(cam.GetSupportedFormats())
	if !ok {
		_ = cam.Close()
		return nil, ErrCameraUnavailable(index, fmt.Errorf("%s: no Motion-JPEG format", path))
	}
	_, w, h, err := cam.SetImageFormat(format, o.width, o.height)
	if err != nil {
		_ = cam.Close()
		return nil, ErrCameraUnavailable(index, fmt.Errorf("%s: set format: %w", path, err))
	}
	// Small queue keeps grabbed frames close to real time.
	_ = cam.SetBufferCount(2)
	if err := cam.StartStreaming(); err != nil {
		_ = cam.Close()
		return nil, ErrCameraUnavailable(index, fmt.Errorf("%s: start streaming: %w", path, err))
	}
	return &v4l2Device{cam: cam, width: int(w), height: int(h), timeout: o.timeout}, nil
}

// pickMJPEG returns the first Motion-JPEG pixel format, lowest code first.
func pickMJPEG(formats map[webcam.PixelFormat]string) (webcam.PixelFormat, bool) {
	codes := make([]webcam.PixelFormat, 0, len(formats))
	for f := range formats {
		codes = append(codes, f)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, f := range codes {
		name := strings.ToUpper(formats[f])
		if strings.Contains(name, "MJPEG") || strings.Contains(name, "MOTION-JPEG") {
			return f, true
		}
	}
	return 0, false
}

type v4l2Device struct {
	cam           *webcam.Webcam
	width, height int
	timeout       uint32
}

// Grab dequeues at most one ready buffer without blocking.
func (d *v4l2Device) Grab() error {
	err := d.cam.WaitForFrame(0)
	var timeout *webcam.Timeout
	switch {
	case err == nil:
		_, err = d.cam.ReadFrame()
		return err
	case errors.As(err, &timeout):
		return nil
	default:
		return err
	}
}

func (d *v4l2Device) Read() (Frame, error) {
	if err := d.cam.WaitForFrame(d.timeout); err != nil {
		return Frame{}, err
	}
	data, err := d.cam.ReadFrame()
	if err != nil {
		return Frame{}, err
	}
	if len(data) == 0 {
		return Frame{}, errors.New("empty frame")
	}
	return Frame{
		Data:        append([]byte(nil), data...),
		ContentType: "image/jpeg",
		Width:       d.width,
		Height:      d.height,
		CapturedAt:  time.Now(),
	}, nil
}

func (d *v4l2Device) Close() error {
	_ = d.cam.StopStreaming()
	return d.cam.Close()
}
