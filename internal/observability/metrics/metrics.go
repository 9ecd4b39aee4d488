package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetrics exposes counters/histograms for citizen query flows.
type QueryMetrics struct {
	queriesTotal  *prometheus.CounterVec
	queryLatency  *prometheus.HistogramVec
	bookingsTotal *prometheus.CounterVec
	casesTotal    *prometheus.CounterVec
}

func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	m := &QueryMetrics{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civitas",
			Subsystem: "queries",
			Name:      "processed_total",
			Help:      "Total processed citizen queries",
		}, []string{"case_type"}),
		queryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "civitas",
			Subsystem: "queries",
			Name:      "latency_seconds",
			Help:      "Latency of query processing including classification",
			Buckets:   prometheus.DefBuckets,
		}, []string{"case_type"}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civitas",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total appointment bookings and cancellations",
		}, []string{"operation", "outcome"}),
		casesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "civitas",
			Subsystem: "casework",
			Name:      "created_total",
			Help:      "Total complex cases created",
		}, []string{"department", "priority"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.queriesTotal, m.queryLatency, m.bookingsTotal, m.casesTotal)
	return m
}

// QueryProcessed records one processed query with its total latency.
func (m *QueryMetrics) QueryProcessed(caseType string, duration time.Duration) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(caseType).Inc()
	m.queryLatency.WithLabelValues(caseType).Observe(duration.Seconds())
}

// ObserveBooking records a schedule or cancel attempt.
func (m *QueryMetrics) ObserveBooking(operation string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.bookingsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveCaseCreated records a new complex case.
func (m *QueryMetrics) ObserveCaseCreated(department, priority string) {
	if m == nil {
		return
	}
	m.casesTotal.WithLabelValues(department, priority).Inc()
}
