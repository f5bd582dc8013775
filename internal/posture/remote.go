package posture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"postured/internal/capture"
)

// LandmarksPath is the detection endpoint on the landmark service.
const LandmarksPath = "/v1/landmarks"

// DefaultDetectTimeout bounds one landmark request.
const DefaultDetectTimeout = 5 * time.Second

// RemoteDetector posts frames to a landmark sidecar over HTTP.
type RemoteDetector struct {
	client *resty.Client
}

// NewRemoteDetector returns a detector for the service at baseURL.
func NewRemoteDetector(baseURL string, timeout time.Duration) *RemoteDetector {
	if timeout <= 0 {
		timeout = DefaultDetectTimeout
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &RemoteDetector{client: client}
}

func (d *RemoteDetector) Detect(ctx context.Context, f capture.Frame) (Landmarks, error) {
	if len(f.Data) == 0 {
		return Landmarks{}, ErrDetectionFailed(errors.New("empty frame"))
	}
	ct := f.ContentType
	if ct == "" {
		ct = "image/jpeg"
	}
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", ct).
		SetBody(f.Data).
		Post(LandmarksPath)
	if err != nil {
		return Landmarks{}, ErrDetectionFailed(fmt.Errorf("landmark request: %w", err))
	}
	if resp.IsError() {
		return Landmarks{}, ErrDetectionFailed(fmt.Errorf("landmark service returned %s: %s",
			resp.Status(), strings.TrimSpace(resp.String())))
	}
	var lm Landmarks
	if err := json.Unmarshal(resp.Body(), &lm); err != nil {
		return Landmarks{}, ErrDetectionFailed(fmt.Errorf("decode landmarks: %w", err))
	}
	return lm, nil
}
