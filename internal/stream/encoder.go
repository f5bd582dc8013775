package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"postured/pkg/types"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Encoder writes one event and flushes it before returning.
type Encoder interface {
	Encode(types.Event) error
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(types.Event) error

func (f EncoderFunc) Encode(e types.Event) error { return f(e) }

// NewEncoder returns a line encoder for format over w. After every line w is
// flushed if it implements Flush() error or http.Flusher.
func NewEncoder(w io.Writer, format string) (Encoder, error) {
	switch format {
	case "", FormatJSON:
		return &lineEncoder{w: w, render: renderJSON}, nil
	case FormatText:
		return &lineEncoder{w: w, render: renderText}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type lineEncoder struct {
	w      io.Writer
	render func(types.Event) ([]byte, error)
}

func (e *lineEncoder) Encode(ev types.Event) error {
	line, err := e.render(ev)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(append(line, '\n')); err != nil {
		return err
	}
	return flush(e.w)
}

func flush(w io.Writer) error {
	switch f := w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case http.Flusher:
		f.Flush()
	}
	return nil
}

func renderJSON(e types.Event) ([]byte, error) { return json.Marshal(e) }

// renderText produces "<RFC3339 time> <type> [code] <posture|message>".
func renderText(e types.Event) ([]byte, error) {
	body := e.Message
	if e.Type == types.EventPosture {
		body = e.Posture
	}
	return []byte(fmt.Sprintf("%s %s [%d] %s", eventTime(e).Format(time.RFC3339), e.Type, e.Code, body)), nil
}

func eventTime(e types.Event) time.Time {
	sec, frac := math.Modf(e.Timestamp)
	return time.Unix(int64(sec), int64(frac*1e9))
}
