package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/document-converter/internal/core/domain"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	conversionsTotal   *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	engineBuildsTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docconv",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docconv",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docconv",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	conversionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docconv",
			Subsystem: "convert",
			Name:      "conversions_total",
			Help:      "Total synchronous conversions by outcome and requested options.",
		},
		[]string{"service", "status", "ocr", "table_mode"},
	)
	conversionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docconv",
			Subsystem: "convert",
			Name:      "duration_seconds",
			Help:      "End-to-end conversion duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "status"},
	)
	engineBuildsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docconv",
			Subsystem: "engine",
			Name:      "builds_total",
			Help:      "Total conversion engine constructions by outcome.",
		},
		[]string{"service", "ocr", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		conversionsTotal,
		conversionDuration,
		engineBuildsTotal,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		conversionsTotal:   conversionsTotal,
		conversionDuration: conversionDuration,
		engineBuildsTotal:  engineBuildsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &metricsStatusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordConversion(service string, opts domain.ConversionOptions, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.conversionsTotal.WithLabelValues(
		service,
		status,
		strconv.FormatBool(opts.OCREnabled),
		string(opts.TableMode),
	).Inc()
	m.conversionDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordEngineBuild(service string, ocr bool, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.engineBuildsTotal.WithLabelValues(service, strconv.FormatBool(ocr), status).Inc()
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/jobs/"):
		return "/v1/jobs/{job_id}"
	default:
		return path
	}
}

type metricsStatusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *metricsStatusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *metricsStatusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}
