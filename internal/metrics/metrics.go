// Package metrics exposes Prometheus instrumentation for settlement planning
// and commits.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "settlewise"

// Commit results.
const (
	CommitOK     = "ok"
	CommitEmpty  = "empty"
	CommitStale  = "stale"
	CommitFailed = "failed"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	plans          *prometheus.CounterVec
	planTransfers  prometheus.Histogram
	commits        *prometheus.CounterVec
	commitDuration prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		plans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Settlement plans computed, by result.",
		}, []string{"result"}),
		planTransfers: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_transfers",
			Help:      "Number of transfers in each computed plan.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		}),
		commits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_total",
			Help:      "Settlement plan commits, by result.",
		}, []string{"result"}),
		commitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "commit_duration_seconds",
			Help:      "Time spent committing a plan, including lock wait.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObservePlan records a planning call.
func (m *Metrics) ObservePlan(transfers int, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.plans.WithLabelValues("error").Inc()
		return
	case transfers == 0:
		m.plans.WithLabelValues("already_settled").Inc()
	default:
		m.plans.WithLabelValues("ok").Inc()
	}
	m.planTransfers.Observe(float64(transfers))
}

// ObserveCommit records a commit attempt.
func (m *Metrics) ObserveCommit(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
	m.commitDuration.Observe(took.Seconds())
}
