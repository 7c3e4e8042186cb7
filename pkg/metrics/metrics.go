package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gearguard"

type collectors struct {
	transitionTotal   *prometheus.CounterVec
	transitionLatency *prometheus.HistogramVec
	scrapTotal        *prometheus.CounterVec
	restoreTotal      *prometheus.CounterVec
	lockWait          *prometheus.HistogramVec
	requestsCreated   *prometheus.CounterVec
}

var singleton = sync.OnceValue(func() *collectors {
	return &collectors{
		transitionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_transitions_total",
			Help:      "Total number of stage transition calls by target stage and result.",
		}, []string{"to", "result"}),
		transitionLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_transition_duration_seconds",
			Help:      "Latency of stage transitions including lock wait.",
			Buckets: []float64{
				0.0005, 0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5,
			},
		}, []string{"result"}),
		scrapTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "equipment_scrapped_total",
			Help:      "Total number of equipment scrap writes by origin.",
		}, []string{"origin"}),
		restoreTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "equipment_restored_total",
			Help:      "Total number of equipment un-scrap writes by origin.",
		}, []string{"origin"}),
		lockWait: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a per-equipment lock.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"driver"}),
		requestsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_created_total",
			Help:      "Total number of maintenance requests created by type.",
		}, []string{"type"}),
	}
})

// Результаты переходов
const (
	ResultApplied = "applied"
	ResultNoop    = "noop"
	ResultError   = "error"
)

func ObserveTransition(to string, result string, started time.Time) {
	m := singleton()
	m.transitionTotal.WithLabelValues(to, result).Inc()
	m.transitionLatency.WithLabelValues(result).Observe(time.Since(started).Seconds())
}

func EquipmentScrapped(origin string) {
	singleton().scrapTotal.WithLabelValues(origin).Inc()
}

func EquipmentRestored(origin string) {
	singleton().restoreTotal.WithLabelValues(origin).Inc()
}

func ObserveLockWait(driver string, waited time.Duration) {
	singleton().lockWait.WithLabelValues(driver).Observe(waited.Seconds())
}

func RequestCreated(requestType string) {
	singleton().requestsCreated.WithLabelValues(requestType).Inc()
}
