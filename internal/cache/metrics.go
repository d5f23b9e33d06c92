package cache

import "github.com/prometheus/client_golang/prometheus"

var (
	filenameOverflowTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "cache",
			Name:      "filename_overflow_total",
			Help:      "Filename document assemblies abandoned for lack of capacity.",
		},
	)
	slotDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "cache",
			Name:      "slot_dropped_total",
			Help:      "Iterated images released because the prefetch slot was occupied.",
		},
	)
	strayChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "cache",
			Name:      "stray_image_chunks_total",
			Help:      "Image chunks received while no fetch was active.",
		},
	)
	statusTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zulubridge",
			Subsystem: "cache",
			Name:      "status_truncated_total",
			Help:      "Status updates cut to the snapshot capacity.",
		},
	)
)

func init() {
	prometheus.MustRegister(filenameOverflowTotal, slotDroppedTotal, strayChunksTotal, statusTruncatedTotal)
}
