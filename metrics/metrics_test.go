package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"material-master/metrics"
)

func TestCounters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.IncrementSubmitted()
	m.IncrementSubmitted()
	m.IncrementApproved()
	m.IncrementRejected("invalid_state")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsApproved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsRejected.WithLabelValues("invalid_state")))
}

func TestValidationIssues(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.SetValidationIssues("enum", "BaseUnit", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ValidationIssues.WithLabelValues("enum", "BaseUnit")))

	m.ResetValidationIssues()
	assert.Equal(t, 0, testutil.CollectAndCount(m.ValidationIssues))
}

func TestPipelineDuration(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.ObservePipeline("simulate", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(m.PipelineDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.IncrementSubmitted()
		m.IncrementApproved()
		m.IncrementRejected("not_found")
		m.ResetValidationIssues()
		m.SetValidationIssues("required", "Vendor", 1)
		m.ObservePipeline("validate", time.Now())
	})
}
