package posture

import (
	"bytes"
	"context"
	"image"

	"postured/internal/capture"
)

// Classifier maps a frame to a verdict. An error means the classifier could
// not run; Indeterminate with a nil error means nothing usable was in view.
type Classifier interface {
	Classify(ctx context.Context, f capture.Frame) (Verdict, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, f capture.Frame) (Verdict, error)

func (fn ClassifierFunc) Classify(ctx context.Context, f capture.Frame) (Verdict, error) {
	return fn(ctx, f)
}

// Detector locates landmarks in a frame.
type Detector interface {
	Detect(ctx context.Context, f capture.Frame) (Landmarks, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, f capture.Frame) (Landmarks, error)

func (fn DetectorFunc) Detect(ctx context.Context, f capture.Frame) (Landmarks, error) {
	return fn(ctx, f)
}

// LandmarkClassifier runs a Detector and applies Evaluate to the result.
type LandmarkClassifier struct {
	Detector    Detector
	Sensitivity float64
}

// NewLandmarkClassifier returns a classifier over d.
func NewLandmarkClassifier(d Detector, sensitivity float64) *LandmarkClassifier {
	return &LandmarkClassifier{Detector: d, Sensitivity: sensitivity}
}

func (c *LandmarkClassifier) Classify(ctx context.Context, f capture.Frame) (Verdict, error) {
	lm, err := c.Detector.Detect(ctx, f)
	if err != nil {
		return Indeterminate, ErrDetectionFailed(err)
	}
	return Evaluate(lm, c.Sensitivity, frameHeight(f)), nil
}

// frameHeight falls back to decoding the image header when the backend did
// not report dimensions.
func frameHeight(f capture.Frame) int {
	if f.Height > 0 {
		return f.Height
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(f.Data))
	if err != nil {
		return 0
	}
	return cfg.Height
}
