package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"postured/internal/monitor"
	"postured/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Subscribe(ctx context.Context, id string) (*monitor.Subscription, error)
	Unsubscribe(id string)
	Remove(sub *monitor.Subscription)
	UnsubscribeAll()
	Subscribers() []string
	Status() types.MonitorStatus
	Ready() bool
	Interval() time.Duration
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(AccessLog)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id", "X-Log-Level"},
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		st := svc.Status()
		st.Process = processStatus()
		writeJSON(w, http.StatusOK, st)
	})

	r.Get("/subscribers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, types.SubscribersResponse{Subscribers: svc.Subscribers()})
	})

	r.Delete("/subscribers", func(w http.ResponseWriter, r *http.Request) {
		svc.UnsubscribeAll()
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/subscribers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		found := false
		for _, s := range svc.Subscribers() {
			if s == id {
				found = true
				break
			}
		}
		if !found {
			writeJSONError(w, http.StatusNotFound, "subscription not found")
			return
		}
		svc.Unsubscribe(id)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/stream", streamHandler(svc))
	r.Get("/ws", wsHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
