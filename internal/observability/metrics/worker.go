package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	jobsInFlight prometheus.Gauge
	queueLag     *prometheus.HistogramVec
	engineBuilds *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	jobsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docconv",
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Total processed conversion jobs by status.",
		},
		[]string{"service", "status"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docconv",
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Conversion job duration in seconds by status.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	jobsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docconv",
			Subsystem: "worker",
			Name:      "jobs_in_flight",
			Help:      "Number of in-flight conversion jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docconv",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between job submission and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	engineBuilds := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docconv",
			Subsystem: "worker",
			Name:      "engine_builds_total",
			Help:      "Total conversion engine constructions by OCR setting and status.",
		},
		[]string{"service", "ocr", "status"},
	)

	registry.MustRegister(jobsTotal, jobDuration, jobsInFlight, queueLag, engineBuilds)

	return &WorkerMetrics{
		registry:     registry,
		jobsTotal:    jobsTotal,
		jobDuration:  jobDuration,
		jobsInFlight: jobsInFlight,
		queueLag:     queueLag,
		engineBuilds: engineBuilds,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartJob() {
	m.jobsInFlight.Inc()
}

func (m *WorkerMetrics) FinishJob(service string, duration time.Duration, err error) {
	m.jobsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.jobsTotal.WithLabelValues(service, status).Inc()
	m.jobDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordEngineBuild(service string, ocr bool, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.engineBuilds.WithLabelValues(service, strconv.FormatBool(ocr), status).Inc()
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
