package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	ticksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postured",
			Subsystem: "monitor",
			Name:      "ticks_total",
			Help:      "Sampling ticks by result",
		},
		[]string{"result"},
	)

	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "postured",
			Subsystem: "monitor",
			Name:      "tick_duration_seconds",
			Help:      "Time to capture and classify one frame",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	subscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "postured",
			Subsystem: "monitor",
			Name:      "subscribers",
			Help:      "Currently registered subscribers",
		},
	)

	captureAcquireFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "postured",
			Subsystem: "capture",
			Name:      "acquire_failures_total",
			Help:      "Failed attempts to open the camera for a first subscriber",
		},
	)
)

func init() {
	prometheus.MustRegister(ticksTotal, tickDuration, subscribersGauge, captureAcquireFailures)
}

// Tick result labels.
const (
	resultLeaning        = "leaning"
	resultUpright        = "upright"
	resultIndeterminate  = "indeterminate"
	resultCaptureError   = "capture_error"
	resultDetectionError = "detection_error"
)
