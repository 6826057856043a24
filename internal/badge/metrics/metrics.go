package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BadgesIssued     *prometheus.CounterVec
	BadgesCertified  prometheus.Counter
	BadgesTerminated *prometheus.CounterVec
	ResolveDuration  prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		BadgesIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "insignia_badges_issued_total",
			Help: "Total number of badges issued, by role",
		}, []string{"role"}),
		BadgesCertified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "insignia_badges_certified_total",
			Help: "Total number of student badges certified",
		}),
		BadgesTerminated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "insignia_badges_terminated_total",
			Help: "Total number of badges terminated, by mode (burn or revoke)",
		}, []string{"mode"}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "insignia_resolve_metadata_duration_seconds",
			Help:    "Duration of metadata resolution (read critical path)",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}

func (m *Metrics) IncrementIssued(role string) {
	m.BadgesIssued.WithLabelValues(role).Inc()
}

func (m *Metrics) IncrementCertified() {
	m.BadgesCertified.Inc()
}

func (m *Metrics) IncrementTerminated(mode string) {
	m.BadgesTerminated.WithLabelValues(mode).Inc()
}

func (m *Metrics) ObserveResolve(start time.Time) {
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}
