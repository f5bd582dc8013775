package posture

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postured/internal/capture"
)

func TestRemoteDetector_Detect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != LandmarksPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("content-type=%q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "jpegbytes" {
			t.Errorf("body=%q", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"chin":{"x":0.5,"y":0.8},"left_shoulder":{"x":0.3,"y":0.5},"right_shoulder":{"x":0.7,"y":0.55},"left_ear":{"x":0.35,"y":0.2},"right_ear":null}`)
	}))
	defer srv.Close()

	d := NewRemoteDetector(srv.URL+"/", time.Second)
	lm, err := d.Detect(context.Background(), capture.Frame{Data: []byte("jpegbytes")})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if lm.Chin == nil || lm.Chin.Y != 0.8 || lm.RightShoulder.Y != 0.55 {
		t.Fatalf("unexpected landmarks %+v", lm)
	}
	if lm.RightEar != nil || lm.Complete() {
		t.Fatalf("expected missing right ear")
	}
}

func TestRemoteDetector_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	d := NewRemoteDetector(srv.URL, time.Second)
	if _, err := d.Detect(context.Background(), capture.Frame{Data: []byte("x")}); !IsDetectionFailed(err) {
		t.Fatalf("expected detection failure on 503, got %v", err)
	}
	if _, err := d.Detect(context.Background(), capture.Frame{}); !IsDetectionFailed(err) {
		t.Fatalf("expected detection failure on empty frame, got %v", err)
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	defer bad.Close()
	if _, err := NewRemoteDetector(bad.URL, time.Second).Detect(context.Background(), capture.Frame{Data: []byte("x")}); !IsDetectionFailed(err) {
		t.Fatalf("expected detection failure on bad json, got %v", err)
	}
}

func TestRemoteDetector_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)
	d := NewRemoteDetector(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := d.Detect(context.Background(), capture.Frame{Data: []byte("x")})
	if !IsDetectionFailed(err) {
		t.Fatalf("expected detection failure on timeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not applied")
	}
}
