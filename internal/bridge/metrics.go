package bridge

import "github.com/prometheus/client_golang/prometheus"

var (
	stateGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "zulubridge",
			Subsystem: "bridge",
			Name:      "state",
			Help:      "Orchestration state; 1 for the current state, 0 otherwise.",
		},
		[]string{"state"},
	)
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "bridge",
			Name:      "transitions_total",
			Help:      "Orchestration state transitions by destination state.",
		},
		[]string{"to"},
	)
	connectFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "bridge",
			Name:      "radio_connect_failures_total",
			Help:      "Radio connect attempts that failed or timed out.",
		},
	)
	linkLossTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "bridge",
			Name:      "radio_link_loss_total",
			Help:      "Times the radio link was found down while serving.",
		},
	)
	stallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "bridge",
			Name:      "credential_stalls_total",
			Help:      "Credentials that resolved to empty, stalling orchestration.",
		},
		[]string{"credential"},
	)
	versionMismatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "bridge",
			Name:      "version_mismatch_total",
			Help:      "Server version messages whose major version differs from ours.",
		},
	)
)

func init() {
	prometheus.MustRegister(stateGauge, transitionsTotal, connectFailuresTotal, linkLossTotal, stallsTotal, versionMismatchTotal)
}

func observeState(s State) {
	for _, st := range allStates {
		v := 0.0
		if st == s {
			v = 1
		}
		stateGauge.WithLabelValues(st.String()).Set(v)
	}
}
