// Package metrics exposes Prometheus instruments for reloads, mutations and
// navigation lookups.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	namespace = "vessel_ops"

	reloadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reload_total",
			Help:      "Total number of record store reloads by result",
		},
		[]string{"result"},
	)

	reloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Duration of record store reloads in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	reloadOverlapTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reload_overlap_total",
			Help:      "Reloads started while another reload was still in flight",
		},
	)

	records = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Number of records in the current snapshot by collection",
		},
		[]string{"collection"},
	)

	mutationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutation_total",
			Help:      "Total number of mutations sent to the remote API by operation and result",
		},
		[]string{"operation", "result"},
	)

	lookupFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_failure_total",
			Help:      "Navigation transitions rejected because the target record was unusable",
		},
		[]string{"transition"},
	)
)

func RecordReload(success bool, duration time.Duration) {
	reloadTotal.WithLabelValues(result(success)).Inc()
	reloadDuration.Observe(duration.Seconds())
}

func RecordReloadOverlap() {
	reloadOverlapTotal.Inc()
}

func RecordCollectionSize(collection string, size int) {
	records.WithLabelValues(collection).Set(float64(size))
}

func RecordMutation(operation string, success bool) {
	mutationTotal.WithLabelValues(operation, result(success)).Inc()
}

func RecordLookupFailure(transition string) {
	lookupFailureTotal.WithLabelValues(transition).Inc()
}

func result(success bool) string {
	if success {
		return ResultSuccess
	}
	return ResultFailure
}
