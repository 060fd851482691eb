package lifecycle

import "github.com/prometheus/client_golang/prometheus"

var (
	sweptTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "lifecycle",
		Name:      "swept_total",
		Help:      "Services transitioned to expired by the daily sweep.",
	}, []string{"service_type"})

	notificationsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "lifecycle",
		Name:      "notifications_sent_total",
		Help:      "Threshold notifications recorded and emailed.",
	}, []string{"type"})

	renewalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Subsystem: "lifecycle",
		Name:      "renewals_total",
		Help:      "Autopay renewal attempts by outcome.",
	}, []string{"service_type", "outcome"})
)

func init() {
	prometheus.MustRegister(sweptTotal, notificationsSentTotal, renewalsTotal)
}
