package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the ingestion pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	eventsConsumed  *prometheus.CounterVec
	tasksLaunched   prometheus.Counter
	taskFailures    prometheus.Counter
	scaleChanges    *prometheus.CounterVec
	quizGenerated   prometheus.Counter
	quizFailed      prometheus.Counter
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	eventsConsumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_events_total",
		Help: "Object events consumed from the pipeline queue by outcome",
	}, []string{"outcome"})

	tasksLaunched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_tasks_launched_total",
		Help: "Quiz generation tasks launched",
	})

	taskFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_task_failures_total",
		Help: "Quiz generation task launches that failed",
	})

	scaleChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeline_scale_changes_total",
		Help: "Execution pool capacity changes by direction",
	}, []string{"direction"})

	quizGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quizzes_generated_total",
		Help: "Quizzes generated successfully",
	})

	quizFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quizzes_failed_total",
		Help: "Quiz generation runs that failed",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, eventsConsumed, tasksLaunched, taskFailures, scaleChanges, quizGenerated, quizFailed, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		eventsConsumed:  eventsConsumed,
		tasksLaunched:   tasksLaunched,
		taskFailures:    taskFailures,
		scaleChanges:    scaleChanges,
		quizGenerated:   quizGenerated,
		quizFailed:      quizFailed,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObservePipelineEvent counts a consumed queue message by outcome
// (processed, discarded, retried, dropped).
func (m *MetricsService) ObservePipelineEvent(outcome string) {
	if m == nil {
		return
	}
	m.eventsConsumed.WithLabelValues(outcome).Inc()
}

// ObserveTaskLaunch counts a task launch attempt.
func (m *MetricsService) ObserveTaskLaunch(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.taskFailures.Inc()
		return
	}
	m.tasksLaunched.Inc()
}

// ObserveScaleChange counts a pool capacity change.
func (m *MetricsService) ObserveScaleChange(direction string) {
	if m == nil {
		return
	}
	m.scaleChanges.WithLabelValues(direction).Inc()
}

// ObserveQuizGeneration counts a generation run outcome.
func (m *MetricsService) ObserveQuizGeneration(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.quizFailed.Inc()
		return
	}
	m.quizGenerated.Inc()
}
