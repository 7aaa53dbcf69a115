package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus decision metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "gatehouse").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for evaluation duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// Metrics records authorization decisions. A nil *Metrics is valid and
// records nothing, so the gate never has to branch on observability being
// configured.
type Metrics struct {
	decisionsTotal *prometheus.CounterVec
	evalDuration   prometheus.Histogram
	queryFailures  prometheus.Counter
}

// NewMetrics registers and returns the decision metrics.
//
// Metrics collected:
//   - gatehouse_authz_decisions_total: Counter of decisions by outcome and reason
//   - gatehouse_authz_evaluation_duration_seconds: Histogram of evaluation latency
//   - gatehouse_authz_membership_query_failures_total: Counter of failed remote queries
func NewMetrics(cfg MetricsConfig) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "gatehouse"
	}
	if cfg.Buckets == nil {
		cfg.Buckets = prometheus.DefBuckets
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(cfg.Registry)
	return &Metrics{
		decisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "authz",
			Name:        "decisions_total",
			Help:        "Total number of authorization decisions",
			ConstLabels: cfg.ConstLabels,
		}, []string{"outcome", "reason"}),

		evalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "authz",
			Name:        "evaluation_duration_seconds",
			Help:        "Policy evaluation duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		queryFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   "authz",
			Name:        "membership_query_failures_total",
			Help:        "Total number of failed remote membership queries",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// ObserveDecision records one evaluation.
func (m *Metrics) ObserveDecision(d Decision, elapsed time.Duration) {
	if m == nil {
		return
	}

	outcome, reason := "allow", ""
	if !d.Allowed {
		outcome, reason = "deny", string(d.Reason)
	}
	m.decisionsTotal.WithLabelValues(outcome, reason).Inc()
	m.evalDuration.Observe(elapsed.Seconds())

	if d.Reason == DenyMembershipQueryFailed {
		m.queryFailures.Inc()
	}
}
