package metrics

import "github.com/prometheus/client_golang/prometheus"

// ClinicMetrics exposes counters for the clinic's core flows.
type ClinicMetrics struct {
	appointmentTransitions *prometheus.CounterVec
	messagesTotal          *prometheus.CounterVec
	emailsTotal            *prometheus.CounterVec
	outboxDispatched       prometheus.Counter
	httpLatency            *prometheus.HistogramVec
}

func NewClinicMetrics(reg prometheus.Registerer) *ClinicMetrics {
	m := &ClinicMetrics{
		appointmentTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medconnect",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Appointment lifecycle transitions",
		}, []string{"transition"}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medconnect",
			Subsystem: "messages",
			Name:      "total",
			Help:      "Messages created, read and deleted",
		}, []string{"op"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "medconnect",
			Subsystem: "notify",
			Name:      "emails_total",
			Help:      "Reminder emails by outcome",
		}, []string{"status"}),
		outboxDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "medconnect",
			Subsystem: "events",
			Name:      "outbox_dispatched_total",
			Help:      "Outbox entries delivered to subscribers",
		}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "medconnect",
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "Latency of HTTP request handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.appointmentTransitions, m.messagesTotal, m.emailsTotal, m.outboxDispatched, m.httpLatency)
	return m
}

func (m *ClinicMetrics) ObserveTransition(transition string) {
	if m == nil {
		return
	}
	m.appointmentTransitions.WithLabelValues(transition).Inc()
}

func (m *ClinicMetrics) ObserveMessage(op string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(op).Inc()
}

func (m *ClinicMetrics) ObserveEmail(status string) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(status).Inc()
}

func (m *ClinicMetrics) ObserveOutboxDispatch(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.outboxDispatched.Add(float64(n))
}

func (m *ClinicMetrics) ObserveHTTPLatency(method, route string, seconds float64) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, route).Observe(seconds)
}
