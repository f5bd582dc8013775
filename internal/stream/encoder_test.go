package stream

import (
	"bufio"
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"postured/internal/posture"
	"postured/pkg/types"
)

func TestJSONEncoder_CompactLines(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, FormatJSON)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	at := time.Unix(1700000000, 500000000)
	if err := enc.Encode(PostureEvent(posture.Leaning, at)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Encode(PostureEvent(posture.Upright, at)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Encode(StatusEvent(MsgActive, at)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Encode(ErrorEvent(types.CodeCamera, "Camera hardware error: boom", at)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := strings.Join([]string{
		`{"timestamp":1700000000.5,"type":"posture","code":0,"is_leaning":true,"posture":"leaning"}`,
		`{"timestamp":1700000000.5,"type":"posture","code":0,"is_leaning":false,"posture":"upright"}`,
		`{"timestamp":1700000000.5,"type":"status","code":0,"message":"Camera monitor active"}`,
		`{"timestamp":1700000000.5,"type":"error","code":10,"message":"Camera hardware error: boom"}`,
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestTextEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, FormatText)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_ = enc.Encode(PostureEvent(posture.Upright, at))
	_ = enc.Encode(ErrorEvent(types.CodeDetection, "Posture detection error: x", at))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%q", lines)
	}
	if !strings.HasSuffix(lines[0], " posture [0] upright") {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], " error [3] Posture detection error: x") {
		t.Fatalf("unexpected line %q", lines[1])
	}
	ts := strings.Fields(lines[0])[0]
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil || !parsed.Equal(at) {
		t.Fatalf("timestamp %q: %v", ts, err)
	}
}

func TestEncoder_Flushes(t *testing.T) {
	var buf bytes.Buffer
	bw := bufio.NewWriterSize(&buf, 4096)
	enc, _ := NewEncoder(bw, FormatJSON)
	if err := enc.Encode(StatusEvent(MsgStarting, time.Now())); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("buffered writer not flushed")
	}

	rr := httptest.NewRecorder()
	enc, _ = NewEncoder(rr, FormatJSON)
	_ = enc.Encode(StatusEvent(MsgStarting, time.Now()))
	if !rr.Flushed {
		t.Fatalf("http response not flushed")
	}
}

func TestNewEncoder_UnknownFormat(t *testing.T) {
	if _, err := NewEncoder(&bytes.Buffer{}, "xml"); err == nil {
		t.Fatalf("expected error")
	}
}
