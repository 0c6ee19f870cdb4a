package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the revision engine. Counters are
// labelled by target entity type so one registration covers every engine
// instantiation.
type Metrics struct {
	EntitiesCreated    *prometheus.CounterVec
	RevisionsSubmitted *prometheus.CounterVec
	RevisionsApproved  *prometheus.CounterVec
	RevisionsRejected  *prometheus.CounterVec
	ReviewConflicts    *prometheus.CounterVec
	ReviewDuration     *prometheus.HistogramVec
}

// New creates a Metrics instance with all revision engine metrics registered.
func New() *Metrics {
	return &Metrics{
		EntitiesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dramcask_entities_created_total",
			Help: "Total number of revisable entities created",
		}, []string{"entity_type"}),
		RevisionsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dramcask_revisions_submitted_total",
			Help: "Total number of revisions submitted for review",
		}, []string{"entity_type"}),
		RevisionsApproved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dramcask_revisions_approved_total",
			Help: "Total number of revisions approved",
		}, []string{"entity_type"}),
		RevisionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dramcask_revisions_rejected_total",
			Help: "Total number of revisions rejected",
		}, []string{"entity_type"}),
		ReviewConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dramcask_review_conflicts_total",
			Help: "Total number of lost races on the single-pending-revision constraint",
		}, []string{"entity_type"}),
		ReviewDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dramcask_review_operation_duration_seconds",
			Help:    "Duration of revision engine operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"entity_type", "operation"}),
	}
}

// ObserveOperation records the duration of an engine operation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveOperation(entityType, operation string, start time.Time) {
	m.ReviewDuration.WithLabelValues(entityType, operation).Observe(time.Since(start).Seconds())
}
