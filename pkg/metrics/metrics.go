package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the booking engine's operational metrics.
type Metrics struct {
	SlotsAllocated   *prometheus.CounterVec
	AllocationErrors *prometheus.CounterVec
	StatusChanges    *prometheus.CounterVec
	DayResetRuns     prometheus.Counter
	DayResetFailures prometheus.Counter
	DayResetDuration prometheus.Histogram
}

// New creates and registers all booking metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		SlotsAllocated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_allocated_total",
			Help:      "Total number of appointment slots allocated",
		}, []string{"mode"}),
		AllocationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocation_errors_total",
			Help:      "Total number of failed slot allocations",
		}, []string{"mode", "reason"}),
		StatusChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "Total number of appointment status changes",
		}, []string{"status"}),
		DayResetRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "day_reset_runs_total",
			Help:      "Total number of day-boundary reset sweeps",
		}),
		DayResetFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "day_reset_failures_total",
			Help:      "Total number of failed day-boundary reset sweeps",
		}),
		DayResetDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "day_reset_duration_seconds",
			Help:      "Time spent running the day-boundary reset sweep",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
	}
}
