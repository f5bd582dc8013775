//go:build gocv

package capture

import (
	"errors"
	"time"

	"gocv.io/x/gocv"
)

var gocvBuilt = true

type gocvOpener struct {
	width, height int
}

func newGocvOpener(cfg BackendConfig) Opener {
	return &gocvOpener{width: cfg.Width, height: cfg.Height}
}

func (o *gocvOpener) Open(index int) (Device, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, ErrCameraUnavailable(index, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, ErrCameraUnavailable(index, errors.New("device not opened"))
	}
	if o.width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(o.width))
	}
	if o.height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(o.height))
	}
	return &gocvDevice{vc: vc, img: gocv.NewMat()}, nil
}

type gocvDevice struct {
	vc  *gocv.VideoCapture
	img gocv.Mat
}

func (d *gocvDevice) Grab() error {
	d.vc.Grab(1)
	return nil
}

func (d *gocvDevice) Read() (Frame, error) {
	if ok := d.vc.Read(&d.img); !ok || d.img.Empty() {
		return Frame{}, errors.New("failed to read frame from webcam")
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, d.img)
	if err != nil {
		return Frame{}, err
	}
	defer buf.Close()
	data := append([]byte(nil), buf.GetBytes()...)
	return Frame{
		Data:        data,
		ContentType: "image/jpeg",
		Width:       d.img.Cols(),
		Height:      d.img.Rows(),
		CapturedAt:  time.Now(),
	}, nil
}

func (d *gocvDevice) Close() error {
	_ = d.img.Close()
	return d.vc.Close()
}
