package stream

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postured",
			Subsystem: "stream",
			Name:      "events_total",
			Help:      "Stream events emitted by type and code",
		},
		[]string{"type", "code"},
	)

	sinkErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postured",
			Subsystem: "sink",
			Name:      "errors_total",
			Help:      "Failed sink publishes",
		},
		[]string{"sink"},
	)

	sinkDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postured",
			Subsystem: "sink",
			Name:      "dropped_total",
			Help:      "Events dropped because a sink queue was full",
		},
		[]string{"sink"},
	)
)

func init() {
	prometheus.MustRegister(eventsTotal, sinkErrorsTotal, sinkDroppedTotal)
}
