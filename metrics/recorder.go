package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives measurements from the summarizer, the recommender, the
// PDF extractor and the orchestrator.
type Recorder interface {
	// RecordSummary records one generated summary after trimming.
	RecordSummary(limit, length int, duration time.Duration)

	// RecordGenerationError counts a failed model call for an operation
	// ("summary" or "questions").
	RecordGenerationError(operation string)

	// RecordQuestions records how many of the returned questions came from
	// the model and how many from the backup list.
	RecordQuestions(fromModel, fromBackup int)

	// RecordExtraction records a PDF extraction.
	RecordExtraction(pages int, failed bool, cacheHit bool)

	// RecordAction records an orchestrator action and its outcome.
	RecordAction(action, outcome string, duration time.Duration)
}

// PrometheusRecorder implements Recorder on its own registry so tests can
// create as many as they like.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	summaryLength    *prometheus.HistogramVec
	summaryExceeded  *prometheus.CounterVec
	summaryDuration  prometheus.Histogram
	generationErrors *prometheus.CounterVec
	questions        *prometheus.CounterVec
	pdfPages         prometheus.Histogram
	pdfExtractions   *prometheus.CounterVec
	actions          *prometheus.CounterVec
	actionDuration   *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder and registers its collectors,
// plus the Go runtime and process collectors.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		summaryLength: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "summary_length_chars",
			Help:    "Length of generated summaries in characters, by target limit",
			Buckets: []float64{10, 25, 50, 75, 100, 200, 300, 400, 500},
		}, []string{"limit"}),
		summaryExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "summary_limit_exceeded_total",
			Help: "Raw model outputs longer than the target limit before trimming",
		}, []string{"limit"}),
		summaryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "summary_generation_duration_seconds",
			Help:    "Time spent generating one summary",
			Buckets: prometheus.DefBuckets,
		}),
		generationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "generation_errors_total",
			Help: "Failed model calls by operation",
		}, []string{"operation"}),
		questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recommended_questions_total",
			Help: "Recommended questions returned, by source",
		}, []string{"source"}),
		pdfPages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pdf_pages_extracted",
			Help:    "Total pages of uploaded PDFs",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		pdfExtractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdf_extractions_total",
			Help: "PDF extractions by result",
		}, []string{"result"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_actions_total",
			Help: "Orchestrator actions by name and outcome",
		}, []string{"action", "outcome"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "session_action_duration_seconds",
			Help:    "Orchestrator action latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"action"}),
	}

	r.registry.MustRegister(
		r.summaryLength, r.summaryExceeded, r.summaryDuration, r.generationErrors,
		r.questions, r.pdfPages, r.pdfExtractions, r.actions, r.actionDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// RecordSummary implements Recorder. length is measured after trimming, so
// an exceeded count here means trimming failed to enforce the limit.
func (r *PrometheusRecorder) RecordSummary(limit, length int, duration time.Duration) {
	l := strconv.Itoa(limit)
	r.summaryLength.WithLabelValues(l).Observe(float64(length))
	if length > limit {
		r.summaryExceeded.WithLabelValues(l).Inc()
	}
	r.summaryDuration.Observe(duration.Seconds())
}

// RecordGenerationError implements Recorder.
func (r *PrometheusRecorder) RecordGenerationError(operation string) {
	r.generationErrors.WithLabelValues(operation).Inc()
}

// RecordQuestions implements Recorder.
func (r *PrometheusRecorder) RecordQuestions(fromModel, fromBackup int) {
	r.questions.WithLabelValues("model").Add(float64(fromModel))
	r.questions.WithLabelValues("backup").Add(float64(fromBackup))
}

// RecordExtraction implements Recorder.
func (r *PrometheusRecorder) RecordExtraction(pages int, failed bool, cacheHit bool) {
	switch {
	case failed:
		r.pdfExtractions.WithLabelValues("error").Inc()
		return
	case cacheHit:
		r.pdfExtractions.WithLabelValues("cache_hit").Inc()
	default:
		r.pdfExtractions.WithLabelValues("parsed").Inc()
	}
	r.pdfPages.Observe(float64(pages))
}

// RecordAction implements Recorder.
func (r *PrometheusRecorder) RecordAction(action, outcome string, duration time.Duration) {
	r.actions.WithLabelValues(action, outcome).Inc()
	r.actionDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordSummary(int, int, time.Duration) {}
func (NopRecorder) RecordGenerationError(string) {}
func (NopRecorder) RecordQuestions(int, int) {}
func (NopRecorder) RecordExtraction(int, bool, bool) {}
func (NopRecorder) RecordAction(string, string, time.Duration) {}
