// Package metrics wires the feeds core's counters and histograms into
// prometheus/client_golang, the teacher's metrics dependency. Unlike the
// teacher, which bridges rcrowley/go-metrics into expvar, the feeds core
// exposes a pull-model /metrics endpoint directly (see api/httpapi).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RotationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feeds",
		Subsystem: "keyrotation",
		Name:      "rotations_total",
		Help:      "Key rotations grouped by trigger and outcome.",
	}, []string{"trigger", "outcome"})

	RotationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "feeds",
		Subsystem: "keyrotation",
		Name:      "duration_seconds",
		Help:      "Wall time spent inside triggerRotation.",
		Buckets:   prometheus.DefBuckets,
	})

	PipelineDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "feeds",
		Subsystem: "txpipeline",
		Name:      "duration_seconds",
		Help:      "Validate/apply duration per payload kind.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "phase"})

	CacheResult = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "feeds",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups grouped by repository method and result.",
	}, []string{"method", "result"})
)

func init() {
	prometheus.MustRegister(RotationsTotal, RotationDuration, PipelineDuration, CacheResult)
}
