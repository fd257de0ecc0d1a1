package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/document-converter/internal/config"
	"github.com/kirillkom/document-converter/internal/core/domain"
	"github.com/kirillkom/document-converter/internal/core/ports"
	"github.com/kirillkom/document-converter/internal/observability/metrics"
)

const healthPath = "/health"

type Router struct {
	cfg       config.Config
	converter ports.DocumentConverter
	jobs      ports.JobSubmitter
	jobReader ports.JobReader
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	converter ports.DocumentConverter,
	jobs ports.JobSubmitter,
	jobReader ports.JobReader,
) *Router {
	return &Router{
		cfg:       cfg,
		converter: converter,
		jobs:      jobs,
		jobReader: jobReader,
	}
}

// WithMetrics attaches the prometheus registry; without it the router serves
// requests but records nothing.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(healthPath, rt.health)
	mux.HandleFunc("/convert", rt.convertDocument)
	mux.HandleFunc("/v1/jobs", rt.submitJob)
	mux.HandleFunc("/v1/jobs/", rt.getJobByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, time.Duration(rt.cfg.APIQueueWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

// health never touches the conversion engine.
func (rt *Router) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) convertDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	opts, err := parseConversionOptions(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	start := time.Now()
	bundle, err := rt.converter.HandleConvert(r.Context(), fileHeader.Filename, file, opts)
	if rt.metrics != nil {
		rt.metrics.RecordConversion("api", opts, time.Since(start), err)
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bundle)
}

func (rt *Router) submitJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	opts, err := parseConversionOptions(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	job, err := rt.jobs.Submit(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
		opts,
	)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

func (rt *Router) getJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/jobs/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "job id is required"})
		return
	}

	job, err := rt.jobReader.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func parseConversionOptions(r *http.Request) (domain.ConversionOptions, error) {
	opts := domain.DefaultConversionOptions()

	boolFields := map[string]*bool{
		"ocr_enabled": &opts.OCREnabled,
		"rag_clean":   &opts.RAGClean,
		"debug_mode":  &opts.DebugMode,
	}
	for field, target := range boolFields {
		raw := r.FormValue(field)
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, domain.WrapError(domain.ErrInvalidInput, "parse options", err)
		}
		*target = parsed
	}

	mode, err := domain.ParseTableMode(r.FormValue("table_mode"))
	if err != nil {
		return opts, domain.WrapError(domain.ErrInvalidInput, "parse options", err)
	}
	opts.TableMode = mode
	return opts, nil
}

// writeError logs full diagnostic detail server-side and returns a concise
// message to the client; internal stack context never crosses the boundary.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	attrs := []any{
		"request_id", requestIDFromContext(r.Context()),
		"path", r.URL.Path,
		"status", status,
		"error", err,
	}
	if status >= 500 {
		slog.Error("request failed", attrs...)
	} else {
		slog.Warn("request rejected", attrs...)
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
