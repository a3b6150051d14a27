// ============================================================================
// Task Engine Metrics - Prometheus Monitoring
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Collect and expose task-engine metrics for Prometheus monitoring,
// following a RED/USE-methodology Collector shape, themed onto the
// task-dispatch engine's own vocabulary (tasks, not jobs; per-family
// counters instead of a single queue).
//
// Metric Categories:
//
//   1. Task Counters - cumulative, monotonically increasing:
//      - taskengine_tasks_submitted_total
//      - taskengine_tasks_completed_total
//      - taskengine_tasks_failed_total
//      - taskengine_tasks_retried_total
//      - taskengine_tasks_canceled_total
//
//   2. Performance Metrics (Histogram):
//      - taskengine_task_latency_seconds: settle latency from submit to
//        terminal completion
//      - taskengine_scheduler_tick_duration_seconds: time spent promoting a
//        batch of due scheduled tasks
//
//   3. Status Metrics (Gauge):
//      - taskengine_tasks_pending: current queued-but-not-started tasks
//      - taskengine_tasks_in_flight: current executing tasks
//      - taskengine_scheduler_upcoming_tasks: tasks currently held by the
//        scheduler manager
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for the task-dispatch engine.
type Collector struct {
	tasksSubmitted *prometheus.CounterVec
	tasksCompleted *prometheus.CounterVec
	tasksFailed    *prometheus.CounterVec
	tasksRetried   *prometheus.CounterVec
	tasksCanceled  *prometheus.CounterVec

	taskLatency         *prometheus.HistogramVec
	schedulerTickLength prometheus.Histogram

	tasksPending          *prometheus.GaugeVec
	tasksInFlight         *prometheus.GaugeVec
	schedulerUpcomingGage prometheus.Gauge
}

// NewCollector creates and registers a metrics collector. family labels
// every per-manager metric (e.g. "work", "access:db-conn", "conveyor:ingest").
func NewCollector() *Collector {
	c := &Collector{
		tasksSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskengine_tasks_submitted_total",
			Help: "Total number of tasks submitted, by family.",
		}, []string{"family"}),
		tasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskengine_tasks_completed_total",
			Help: "Total number of tasks completed successfully, by family.",
		}, []string{"family"}),
		tasksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskengine_tasks_failed_total",
			Help: "Total number of tasks settled as failed, by family.",
		}, []string{"family"}),
		tasksRetried: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskengine_tasks_retried_total",
			Help: "Total number of attempts that ended non-terminally and were re-queued, by family.",
		}, []string{"family"}),
		tasksCanceled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskengine_tasks_canceled_total",
			Help: "Total number of tasks settled canceled, by family and cause.",
		}, []string{"family", "cause"}),
		taskLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskengine_task_latency_seconds",
			Help:    "Time from submission to terminal settlement, by family.",
			Buckets: prometheus.DefBuckets,
		}, []string{"family"}),
		schedulerTickLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "taskengine_scheduler_tick_duration_seconds",
			Help:    "Time spent promoting one batch of due scheduled tasks.",
			Buckets: prometheus.DefBuckets,
		}),
		tasksPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskengine_tasks_pending",
			Help: "Current number of queued-but-not-started tasks, by family.",
		}, []string{"family"}),
		tasksInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskengine_tasks_in_flight",
			Help: "Current number of executing tasks, by family.",
		}, []string{"family"}),
		schedulerUpcomingGage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskengine_scheduler_upcoming_tasks",
			Help: "Current number of scheduled tasks awaiting their fire time.",
		}),
	}

	prometheus.MustRegister(
		c.tasksSubmitted, c.tasksCompleted, c.tasksFailed, c.tasksRetried, c.tasksCanceled,
		c.taskLatency, c.schedulerTickLength,
		c.tasksPending, c.tasksInFlight, c.schedulerUpcomingGage,
	)

	return c
}

func (c *Collector) RecordSubmit(family string) {
	c.tasksSubmitted.WithLabelValues(family).Inc()
}

func (c *Collector) RecordCompleted(family string, latency time.Duration) {
	c.tasksCompleted.WithLabelValues(family).Inc()
	c.taskLatency.WithLabelValues(family).Observe(latency.Seconds())
}

func (c *Collector) RecordFailed(family string, latency time.Duration) {
	c.tasksFailed.WithLabelValues(family).Inc()
	c.taskLatency.WithLabelValues(family).Observe(latency.Seconds())
}

func (c *Collector) RecordRetried(family string) {
	c.tasksRetried.WithLabelValues(family).Inc()
}

func (c *Collector) RecordCanceled(family, cause string) {
	c.tasksCanceled.WithLabelValues(family, cause).Inc()
}

func (c *Collector) ObserveSchedulerTick(d time.Duration) {
	c.schedulerTickLength.Observe(d.Seconds())
}

func (c *Collector) SetPending(family string, n int) {
	c.tasksPending.WithLabelValues(family).Set(float64(n))
}

func (c *Collector) SetInFlight(family string, n int) {
	c.tasksInFlight.WithLabelValues(family).Set(float64(n))
}

func (c *Collector) SetSchedulerUpcoming(n int) {
	c.schedulerUpcomingGage.Set(float64(n))
}

// StartServer starts the Prometheus metrics HTTP server, blocking until it
// exits or fails.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
