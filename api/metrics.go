package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/leave-dashboard/leave"
)

// Compile-time assertion that Metrics observes the request lifecycle.
var _ leave.Observer = (*Metrics)(nil)

// Metrics holds the server's Prometheus instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	submitted        *prometheus.CounterVec
	decided          *prometheus.CounterVec
	conflictWarnings prometheus.Counter
	remindersSent    prometheus.Counter
	pendingRequests  prometheus.Gauge
}

// NewMetrics creates and registers all instruments under namespace
// (defaults to "leave" if empty).
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "leave"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "submitted_total",
			Help:      "Leave requests submitted, by leave type.",
		}, []string{"type"}),
		decided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "decided_total",
			Help:      "Leave requests decided, by resulting status.",
		}, []string{"status"}),
		conflictWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "conflict_warnings_total",
			Help:      "Conflict warnings returned to requesters and approvers.",
		}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Approval reminders emitted by the scheduler.",
		}),
		pendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "pending",
			Help:      "Pending requests seen by the last reminder scan.",
		}),
	}

	m.registry.MustRegister(
		m.submitted,
		m.decided,
		m.conflictWarnings,
		m.remindersSent,
		m.pendingRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RequestSubmitted(t leave.LeaveType) {
	m.submitted.WithLabelValues(string(t)).Inc()
}

func (m *Metrics) RequestDecided(s leave.Status) {
	m.decided.WithLabelValues(string(s)).Inc()
}

func (m *Metrics) ConflictWarnings(n int) {
	m.conflictWarnings.Add(float64(n))
}

func (m *Metrics) RemindersSent(n int) {
	m.remindersSent.Add(float64(n))
}

func (m *Metrics) SetPending(n int) {
	m.pendingRequests.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
