// Package prometheus implements ports.MetricsCollector with
// Prometheus counters, gauges and histograms. Metrics are exposed via
// promhttp on the HTTP server's /metrics endpoint.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aescanero/awo/pkg/domain"
)

// Collector implements ports.MetricsCollector using Prometheus.
type Collector struct {
	decisions            *prometheus.CounterVec
	breakerTrips         prometheus.Counter
	workflows            *prometheus.CounterVec
	workflowDuration     *prometheus.HistogramVec
	steps                *prometheus.CounterVec
	stepDuration         prometheus.Histogram
	engineTasks          *prometheus.CounterVec
	engineTaskAttempts   prometheus.Histogram
	engineTaskDuration   prometheus.Histogram
	engineRejections     prometheus.Counter
	engineRunning        prometheus.Gauge
	compensationFailures prometheus.Counter
}

// NewCollector creates a new Prometheus metrics collector.
func NewCollector() *Collector {
	return &Collector{
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awo_admission_decisions_total",
				Help: "Total number of admission decisions by verdict",
			},
			[]string{"verdict"},
		),
		breakerTrips: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "awo_breaker_trips_total",
				Help: "Total number of circuit breaker open transitions",
			},
		),
		workflows: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awo_workflows_total",
				Help: "Total number of workflows by pattern and success",
			},
			[]string{"pattern", "success"},
		),
		workflowDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "awo_workflow_duration_seconds",
				Help:    "Workflow execution duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"pattern"},
		),
		steps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awo_workflow_steps_total",
				Help: "Total number of workflow steps by terminal status",
			},
			[]string{"status"},
		),
		stepDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "awo_workflow_step_duration_seconds",
				Help:    "Workflow step duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),
		engineTasks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "awo_engine_tasks_total",
				Help: "Total number of engine tasks by success",
			},
			[]string{"success"},
		),
		engineTaskAttempts: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "awo_engine_task_attempts",
				Help:    "Attempts per engine task",
				Buckets: []float64{1, 2, 3, 4, 5, 8, 10},
			},
		),
		engineTaskDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "awo_engine_task_duration_seconds",
				Help:    "Engine task duration in seconds including retries",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
		),
		engineRejections: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "awo_engine_rejections_total",
				Help: "Total number of tasks rejected at capacity",
			},
		),
		engineRunning: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "awo_engine_running",
				Help: "Number of tasks currently holding an engine slot",
			},
		),
		compensationFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "awo_compensation_failures_total",
				Help: "Total number of failed saga compensations",
			},
		),
	}
}

// RecordDecision counts one admission decision.
func (c *Collector) RecordDecision(verdict domain.Verdict) {
	c.decisions.WithLabelValues(string(verdict)).Inc()
}

// RecordBreakerOpened counts one closed/half-open to open transition.
func (c *Collector) RecordBreakerOpened() {
	c.breakerTrips.Inc()
}

// RecordWorkflow counts one terminal workflow and its duration.
func (c *Collector) RecordWorkflow(pattern domain.Pattern, success bool, duration time.Duration) {
	c.workflows.WithLabelValues(string(pattern), strconv.FormatBool(success)).Inc()
	c.workflowDuration.WithLabelValues(string(pattern)).Observe(duration.Seconds())
}

// RecordStep counts one step reaching a terminal status.
func (c *Collector) RecordStep(status domain.StepStatus, duration time.Duration) {
	c.steps.WithLabelValues(string(status)).Inc()
	c.stepDuration.Observe(duration.Seconds())
}

// RecordEngineTask counts one engine task with its attempt count.
func (c *Collector) RecordEngineTask(success bool, attempts int, duration time.Duration) {
	c.engineTasks.WithLabelValues(strconv.FormatBool(success)).Inc()
	c.engineTaskAttempts.Observe(float64(attempts))
	c.engineTaskDuration.Observe(duration.Seconds())
}

// RecordEngineRejection counts one fail-fast capacity rejection.
func (c *Collector) RecordEngineRejection() {
	c.engineRejections.Inc()
}

// RecordCompensationFailure counts one failed saga compensation.
func (c *Collector) RecordCompensationFailure() {
	c.compensationFailures.Inc()
}

// SetEngineRunning sets the engine slot occupancy gauge.
func (c *Collector) SetEngineRunning(count int) {
	c.engineRunning.Set(float64(count))
}
