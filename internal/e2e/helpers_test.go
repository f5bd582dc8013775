package e2e

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"postured/internal/posture"
)

// writeFrames creates n small JPEG frames in a temp dir for the file backend.
func writeFrames(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 16, 100))
		for x := 0; x < 16; x++ {
			img.Set(x, i, color.RGBA{R: 200, A: 255})
		}
		f, err := os.Create(filepath.Join(dir, "frame"+string(rune('a'+i))+".jpg"))
		if err != nil {
			t.Fatalf("create frame: %v", err)
		}
		if err := jpeg.Encode(f, img, nil); err != nil {
			t.Fatalf("encode frame: %v", err)
		}
		_ = f.Close()
	}
	return dir
}

func pt(x, y float64) *posture.Point { return &posture.Point{X: x, Y: y} }

// landmarkServer answers the landmark endpoint with a chin below the
// shoulder line (leaning) and counts requests.
func landmarkServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != posture.LandmarksPath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			http.Error(w, "empty body", http.StatusBadRequest)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(posture.Landmarks{
			Chin:          pt(0.5, 0.9),
			LeftShoulder:  pt(0.3, 0.5),
			RightShoulder: pt(0.7, 0.5),
			LeftEar:       pt(0.4, 0.2),
			RightEar:      pt(0.6, 0.2),
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newRequest(t *testing.T, ctx context.Context, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}
