package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
	outboundDuration    *prometheus.HistogramVec

	complaintsSubmitted    *prometheus.CounterVec
	complaintStatusChanges *prometheus.CounterVec
	verificationDecisions  *prometheus.CounterVec
	agencyReviews          *prometheus.CounterVec
	queueDepth             prometheus.Gauge
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		httpErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "Total number of HTTP requests that ended with an error envelope",
			},
			[]string{"method", "path", "code"},
		),
		outboundDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "outbound_request_duration_seconds",
				Help:    "Duration of calls to external collaborators",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"service", "outcome"},
		),
		complaintsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complaints_submitted_total",
				Help: "Complaints submitted, by routing state at submission",
			},
			[]string{"routing_state"},
		),
		complaintStatusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "complaint_status_changes_total",
				Help: "Complaint status transitions applied by departments",
			},
			[]string{"from_status", "to_status"},
		),
		verificationDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migrant_verification_decisions_total",
				Help: "Agency decisions on migrant verification requests",
			},
			[]string{"decision"},
		),
		agencyReviews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agency_reviews_total",
				Help: "Government reviews of agencies",
			},
			[]string{"action"},
		),
		queueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "classification_queue_depth",
				Help: "Complaints waiting for classification",
			},
		),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records a completed HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(method, path, code).Inc()
}

// RecordOutbound observes one call to an external service.
func (m *Metrics) RecordOutbound(service string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.outboundDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

// ComplaintSubmitted counts a new complaint.
func (m *Metrics) ComplaintSubmitted(routingState string) {
	if m == nil {
		return
	}
	m.complaintsSubmitted.WithLabelValues(routingState).Inc()
}

// ComplaintStatusChanged counts a status transition.
func (m *Metrics) ComplaintStatusChanged(from, to string) {
	if m == nil {
		return
	}
	m.complaintStatusChanges.WithLabelValues(from, to).Inc()
}

// VerificationDecided counts an agency decision.
func (m *Metrics) VerificationDecided(decision string) {
	if m == nil {
		return
	}
	m.verificationDecisions.WithLabelValues(decision).Inc()
}

// AgencyReviewed counts a government review.
func (m *Metrics) AgencyReviewed(action string) {
	if m == nil {
		return
	}
	m.agencyReviews.WithLabelValues(action).Inc()
}

// SetQueueDepth reports the classification backlog.
func (m *Metrics) SetQueueDepth(n int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
