package resolver

import "github.com/prometheus/client_golang/prometheus"

var resolvedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "zulubridge",
		Subsystem: "resolver",
		Name:      "resolved_total",
		Help:      "Resolved requests by route and resulting resource.",
	},
	[]string{"route", "resource"},
)

func init() {
	prometheus.MustRegister(resolvedTotal)
}
