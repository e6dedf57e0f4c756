package events

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comfyrun",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of published envelopes by event type",
		},
		[]string{"type"},
	)

	droppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "comfyrun",
			Subsystem: "events",
			Name:      "dropped_subscribers_total",
			Help:      "Total number of subscribers dropped for falling behind",
		},
	)

	subscribersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "comfyrun",
			Subsystem: "events",
			Name:      "subscribers",
			Help:      "Number of live event stream subscribers",
		},
	)
)

func init() {
	prometheus.MustRegister(
		publishedTotal,
		droppedTotal,
		subscribersGauge,
	)
}
