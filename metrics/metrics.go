package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the workflow, validation and pipeline
// paths. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsSubmitted   prometheus.Counter
	RequestsApproved    prometheus.Counter
	TransitionsRejected *prometheus.CounterVec
	ValidationIssues    *prometheus.GaugeVec
	PipelineDuration    *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "mdm_workflow_requests_submitted_total",
			Help: "Total number of material requests submitted",
		}),
		RequestsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "mdm_workflow_requests_approved_total",
			Help: "Total number of material requests approved",
		}),
		TransitionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mdm_workflow_transitions_rejected_total",
			Help: "Workflow operations refused, by error code",
		}, []string{"code"}),
		ValidationIssues: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mdm_validation_issues",
			Help: "Affected keys reported by the last validation run, by rule and column",
		}, []string{"rule", "column"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mdm_pipeline_duration_seconds",
			Help:    "Duration of load and compute pipelines",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"pipeline"}),
	}
}

// IncrementSubmitted records a successful submission.
func (m *Metrics) IncrementSubmitted() {
	if m == nil {
		return
	}
	m.RequestsSubmitted.Inc()
}

// IncrementApproved records a successful approval.
func (m *Metrics) IncrementApproved() {
	if m == nil {
		return
	}
	m.RequestsApproved.Inc()
}

// IncrementRejected records a refused workflow operation.
func (m *Metrics) IncrementRejected(code string) {
	if m == nil {
		return
	}
	m.TransitionsRejected.WithLabelValues(code).Inc()
}

// ResetValidationIssues clears the gauges before a new validation run.
func (m *Metrics) ResetValidationIssues() {
	if m == nil {
		return
	}
	m.ValidationIssues.Reset()
}

// SetValidationIssues records the affected key count of one rule.
func (m *Metrics) SetValidationIssues(rule, column string, n int) {
	if m == nil {
		return
	}
	m.ValidationIssues.WithLabelValues(rule, column).Set(float64(n))
}

// ObservePipeline records the duration of a pipeline.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePipeline(name string, start time.Time) {
	if m == nil {
		return
	}
	m.PipelineDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
