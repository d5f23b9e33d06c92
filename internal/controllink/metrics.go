package controllink

import "github.com/prometheus/client_golang/prometheus"

var (
	framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "link",
			Name:      "frames_total",
			Help:      "Control-link frames moved, by direction and kind",
		},
		[]string{"dir", "kind"},
	)

	decodeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "link",
			Name:      "decode_errors_total",
			Help:      "Malformed frames dropped by the decoder",
		},
	)

	txDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "link",
			Name:      "tx_dropped_total",
			Help:      "Outgoing requests dropped because the queue was full",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(framesTotal, decodeErrorsTotal, txDroppedTotal)
}
