package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Logins          prometheus.Counter
	DomainRejected  prometheus.Counter
	CheckIns        prometheus.Counter
	CheckOuts       prometheus.Counter
	CheckInConflict prometheus.Counter

	SessionValidation prometheus.Histogram
}

// New creates all metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkin_logins_total",
			Help: "Total number of successful domain-validated logins",
		}),
		DomainRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkin_domain_rejected_total",
			Help: "Total number of logins rejected by email domain validation",
		}),
		CheckIns: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkin_check_ins_total",
			Help: "Total number of successful check-ins",
		}),
		CheckOuts: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkin_check_outs_total",
			Help: "Total number of successful check-outs",
		}),
		CheckInConflict: factory.NewCounter(prometheus.CounterOpts{
			Name: "checkin_check_in_conflicts_total",
			Help: "Total number of check-in attempts rejected by the per-day uniqueness constraint",
		}),
		SessionValidation: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkin_session_validation_seconds",
			Help:    "Latency of session validation including the store lookup",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
