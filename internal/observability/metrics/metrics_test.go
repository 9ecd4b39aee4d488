package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestQueryMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQueryMetrics(reg)
	m.QueryProcessed("SIMPLE_INFO", 120*time.Millisecond)
	m.ObserveBooking("schedule", true)
	m.ObserveBooking("cancel", false)
	m.ObserveCaseCreated("complaints", "HIGH")
}

func TestQueryMetricsNilSafe(t *testing.T) {
	var m *QueryMetrics
	m.QueryProcessed("APPOINTMENT", time.Second)
	m.ObserveBooking("schedule", false)
	m.ObserveCaseCreated("legal", "LOW")
}
