package capture

import (
	"errors"
	"sync"
)

var errFakeRead = errors.New("fake read failure")

type fakeOpener struct {
	mu       sync.Mutex
	openErr  error
	readErr  error
	open     int
	maxOpen  int
	opens    int
	closes   int
	grabs    int
	overlaps int
	// block, when set, makes Read wait until it is closed.
	block   chan struct{}
	reading chan struct{}
}

func (o *fakeOpener) Open(index int) (Device, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.openErr != nil {
		return nil, o.openErr
	}
	o.open++
	o.opens++
	if o.open > o.maxOpen {
		o.maxOpen = o.open
	}
	return &fakeDevice{o: o}, nil
}

func (o *fakeOpener) snapshot() (opens, closes, grabs, maxOpen, overlaps int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens, o.closes, o.grabs, o.maxOpen, o.overlaps
}

type fakeDevice struct {
	o       *fakeOpener
	inRead  bool
	stateMu sync.Mutex
}

func (d *fakeDevice) Grab() error {
	d.o.mu.Lock()
	d.o.grabs++
	d.o.mu.Unlock()
	return nil
}

func (d *fakeDevice) Read() (Frame, error) {
	d.stateMu.Lock()
	d.inRead = true
	d.stateMu.Unlock()
	defer func() {
		d.stateMu.Lock()
		d.inRead = false
		d.stateMu.Unlock()
	}()
	d.o.mu.Lock()
	block, reading, readErr := d.o.block, d.o.reading, d.o.readErr
	d.o.mu.Unlock()
	if reading != nil {
		select {
		case reading <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	if readErr != nil {
		return Frame{}, readErr
	}
	return Frame{Data: []byte{0xff, 0xd8, 0xff}, Width: 2, Height: 2}, nil
}

func (d *fakeDevice) Close() error {
	d.stateMu.Lock()
	busy := d.inRead
	d.stateMu.Unlock()
	d.o.mu.Lock()
	defer d.o.mu.Unlock()
	if busy {
		d.o.overlaps++
	}
	d.o.open--
	d.o.closes++
	return nil
}
