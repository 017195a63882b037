package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsTotal        *prometheus.CounterVec
	documentChunks        *prometheus.HistogramVec
	summarizationDuration *prometheus.HistogramVec
	modelRetriesTotal     *prometheus.CounterVec
	failedChunksTotal     *prometheus.CounterVec
	secondPassesTotal     *prometheus.CounterVec
	keywordRequestsTotal  *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdigest",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docdigest",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total summarization runs by language, mode and outcome.",
		},
		[]string{"service", "language", "mode", "status"},
	)
	documentChunks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdigest",
			Subsystem: "pipeline",
			Name:      "chunks_per_document",
			Help:      "Distribution of first-pass chunks per document.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service", "language"},
	)
	summarizationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docdigest",
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Summarization duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"service", "language", "mode"},
	)
	modelRetriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "pipeline",
			Name:      "model_retries_total",
			Help:      "Total chunk-level model retries with reduced constraints.",
		},
		[]string{"service", "language"},
	)
	failedChunksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "pipeline",
			Name:      "failed_chunks_total",
			Help:      "Total chunks excluded from the merge after a failed retry.",
		},
		[]string{"service", "language"},
	)
	secondPassesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "pipeline",
			Name:      "second_passes_total",
			Help:      "Total runs that required a second compression pass.",
		},
		[]string{"service", "language", "mode"},
	)
	keywordRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docdigest",
			Subsystem: "keywords",
			Name:      "requests_total",
			Help:      "Total keyword ranking requests by language and kind.",
		},
		[]string{"service", "language", "kind"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsTotal,
		documentChunks,
		summarizationDuration,
		modelRetriesTotal,
		failedChunksTotal,
		secondPassesTotal,
		keywordRequestsTotal,
	)

	return &ServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		documentsTotal:        documentsTotal,
		documentChunks:        documentChunks,
		summarizationDuration: summarizationDuration,
		modelRetriesTotal:     modelRetriesTotal,
		failedChunksTotal:     failedChunksTotal,
		secondPassesTotal:     secondPassesTotal,
		keywordRequestsTotal:  keywordRequestsTotal,
	}
}

func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
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

// normalizePath keeps label cardinality bounded: unknown paths all
// land in one bucket.
func normalizePath(path string) string {
	switch path {
	case "/v1/summaries", "/v1/keywords", "/healthz", "/metrics":
		return path
	default:
		return "other"
	}
}

// RecordSummarization observes one completed or failed run.
func (m *ServerMetrics) RecordSummarization(service, language, mode, status string, chunks, passes, retries, failedChunks int, duration time.Duration) {
	m.documentsTotal.WithLabelValues(service, language, mode, status).Inc()
	m.summarizationDuration.WithLabelValues(service, language, mode).Observe(duration.Seconds())
	if chunks > 0 {
		m.documentChunks.WithLabelValues(service, language).Observe(float64(chunks))
	}
	if retries > 0 {
		m.modelRetriesTotal.WithLabelValues(service, language).Add(float64(retries))
	}
	if failedChunks > 0 {
		m.failedChunksTotal.WithLabelValues(service, language).Add(float64(failedChunks))
	}
	if passes > 1 {
		m.secondPassesTotal.WithLabelValues(service, language, mode).Inc()
	}
}

func (m *ServerMetrics) RecordKeywordRequest(service, language, kind string) {
	if kind == "" {
		kind = "word"
	}
	m.keywordRequestsTotal.WithLabelValues(service, language, kind).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
