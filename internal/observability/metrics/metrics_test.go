package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestClinicMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClinicMetrics(reg)
	m.ObserveTransition("pending_to_confirmed")
	m.ObserveMessage("created")
	m.ObserveEmail("sent")
	m.ObserveOutboxDispatch(3)
	m.ObserveHTTPLatency("GET", "/appointments", 0.05)
}

func TestClinicMetricsNilSafe(t *testing.T) {
	var m *ClinicMetrics
	m.ObserveTransition("pending_to_cancelled")
	m.ObserveMessage("deleted")
	m.ObserveEmail("failed")
	m.ObserveOutboxDispatch(1)
	m.ObserveHTTPLatency("GET", "/messages", 0.1)
}

func TestClinicMetricsDispatchIgnoresNonPositive(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClinicMetrics(reg)
	m.ObserveOutboxDispatch(0)
	m.ObserveOutboxDispatch(-4)
}
