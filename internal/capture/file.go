package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"time"

	"postured/internal/common/fsutil"
)

var imageExts = []string{".jpg", ".jpeg", ".png"}

// FileOpener replays still images from a directory. The camera index is
// ignored; every Open rescans the directory.
type FileOpener struct {
	dir string
}

// NewFileOpener returns an Opener over the images in dir.
func NewFileOpener(dir string) *FileOpener { return &FileOpener{dir: dir} }

func (o *FileOpener) Open(index int) (Device, error) {
	files, err := fsutil.ListFiles(o.dir, imageExts...)
	if err != nil {
		return nil, ErrCameraUnavailable(index, err)
	}
	if len(files) == 0 {
		return nil, ErrCameraUnavailable(index, fmt.Errorf("no images in %s", o.dir))
	}
	return &fileDevice{files: files}, nil
}

type fileDevice struct {
	files  []string
	next   int
	closed bool
}

// Grab is a no-op; a directory has no stale buffer to drain.
func (d *fileDevice) Grab() error {
	if d.closed {
		return errClosed
	}
	return nil
}

func (d *fileDevice) Read() (Frame, error) {
	if d.closed {
		return Frame{}, errClosed
	}
	path := d.files[d.next%len(d.files)]
	d.next++
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, err
	}
	if len(data) == 0 {
		return Frame{}, errors.New("empty frame")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("%s: %w", path, err)
	}
	return Frame{
		Data:        data,
		ContentType: http.DetectContentType(data),
		Width:       cfg.Width,
		Height:      cfg.Height,
		CapturedAt:  time.Now(),
	}, nil
}

func (d *fileDevice) Close() error {
	d.closed = true
	return nil
}
