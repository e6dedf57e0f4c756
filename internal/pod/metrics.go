package pod

import "github.com/prometheus/client_golang/prometheus"

var (
	podsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comfyrun",
			Subsystem: "pods",
			Name:      "created_total",
			Help:      "Pods created, by GPU type.",
		},
		[]string{"gpu"},
	)

	podsTerminatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "comfyrun",
			Subsystem: "pods",
			Name:      "terminated_total",
			Help:      "Pods terminated.",
		},
	)

	monitorOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "comfyrun",
			Subsystem: "pods",
			Name:      "monitor_outcomes_total",
			Help:      "Setup monitor terminal outcomes.",
		},
		[]string{"outcome"},
	)

	podsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "comfyrun",
			Subsystem: "pods",
			Name:      "by_status",
			Help:      "Tracked pods by lifecycle status.",
		},
		[]string{"status"},
	)

	podCostDollars = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "comfyrun",
			Subsystem: "pods",
			Name:      "cost_dollars",
			Help:      "Accumulated cost of active pods, by GPU type.",
		},
		[]string{"gpu"},
	)
)

func init() {
	prometheus.MustRegister(
		podsCreatedTotal,
		podsTerminatedTotal,
		monitorOutcomesTotal,
		podsByStatus,
		podCostDollars,
	)
}

func recordPodCreated(gpuID string) {
	podsCreatedTotal.WithLabelValues(gpuID).Inc()
}

func recordPodTerminated() {
	podsTerminatedTotal.Inc()
}

func recordMonitorOutcome(outcome string) {
	monitorOutcomesTotal.WithLabelValues(outcome).Inc()
}

func observeActiveCost(gpuID string, cost float64) {
	podCostDollars.WithLabelValues(gpuID).Set(cost)
}

func updatePodGauges(pods []*Pod) {
	counts := make(map[Status]int)
	for _, p := range pods {
		counts[p.Status()]++
	}
	for _, s := range []Status{StatusInitializing, StatusRunning, StatusStopped, StatusFailed, StatusTerminated} {
		podsByStatus.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
}
