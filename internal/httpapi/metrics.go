package httpapi

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postured",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "postured",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "postured",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "In-flight HTTP requests, open streams included",
		},
	)

	httpStreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "postured",
			Subsystem: "http",
			Name:      "stream_duration_seconds",
			Help:      "Lifetime of streamed responses (NDJSON and WebSocket) in seconds",
			Buckets:   []float64{1, 10, 60, 300, 1800, 3600, 4 * 3600, 24 * 3600},
		},
		[]string{"path", "status"},
	)

	streamClients = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "postured",
			Subsystem: "http",
			Name:      "stream_clients",
			Help:      "Connected stream clients by transport",
		},
		[]string{"transport"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInflight, httpStreamDuration, streamClients)
}

// statusRecorder wraps http.ResponseWriter to capture the status code and
// whether the handler streamed its response.
type statusRecorder struct {
	http.ResponseWriter
	status   int
	streamed bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the underlying writer so streamed lines are not buffered.
func (sr *statusRecorder) Flush() {
	sr.streamed = true
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack forwards to the underlying writer for WebSocket upgrades.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := sr.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	sr.status = http.StatusSwitchingProtocols
	sr.streamed = true
	return h.Hijack()
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// MetricsMiddleware instruments requests for Prometheus.
//
// Series are labelled by the chi route pattern once routing has run, so
// /stream and /ws stay one series each whatever id or format a client passes
// in the query, and paths no route matched share the "unmatched" label.
// A response the handler flushed or hijacked counts as a stream: it is
// observed once, when it ends, in postured_http_stream_duration_seconds
// rather than the request latency histogram. Current stream occupancy is
// postured_http_stream_clients.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInflight.Inc()
		defer httpInflight.Dec()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sr, r)
		dur := time.Since(start).Seconds()

		path := routeLabel(r)
		status := strconv.Itoa(sr.status)
		httpRequestsTotal.WithLabelValues(path, r.Method, status).Inc()
		if sr.streamed {
			httpStreamDuration.WithLabelValues(path, status).Observe(dur)
			return
		}
		httpRequestDuration.WithLabelValues(path, r.Method, status).Observe(dur)
	})
}

// routeLabel returns the matched chi route pattern, or "unmatched" so that
// arbitrary request paths never become label values.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
