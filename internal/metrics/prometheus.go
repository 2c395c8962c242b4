package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the MedAid server
type Metrics struct {
	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Request validation
	ValidationFailures *prometheus.CounterVec
	HistoryParseErrors prometheus.Counter

	// Model service calls
	ModelCalls        *prometheus.CounterVec
	ModelCallDuration *prometheus.HistogramVec

	// Speech synthesis
	SentencesSynthesized prometheus.Counter
	SentencesDropped     prometheus.Counter
	MergedAudioBytes     prometheus.Histogram
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medaid_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medaid_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~40s
		}, []string{"method", "route"}),

		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medaid_validation_failures_total",
			Help: "Requests rejected by input validation",
		}, []string{"route"}),
		HistoryParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "medaid_history_parse_errors_total",
			Help: "Chat requests whose history payload could not be parsed",
		}),

		ModelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medaid_model_calls_total",
			Help: "Calls to the external model services",
		}, []string{"operation", "outcome"}),
		ModelCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medaid_model_call_duration_seconds",
			Help:    "Latency of external model service calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		}, []string{"operation"}),

		SentencesSynthesized: factory.NewCounter(prometheus.CounterOpts{
			Name: "medaid_tts_sentences_synthesized_total",
			Help: "Sentences successfully synthesized to speech",
		}),
		SentencesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "medaid_tts_sentences_dropped_total",
			Help: "Sentences dropped because synthesis failed",
		}),
		MergedAudioBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "medaid_tts_merged_audio_bytes",
			Help:    "Size of merged WAV responses",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10), // 16KB to ~8MB
		}),
	}
}

// Outcome labels for ModelCalls.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ObserveModelCall records one external call.
func (m *Metrics) ObserveModelCall(operation string, seconds float64, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.ModelCalls.WithLabelValues(operation, outcome).Inc()
	m.ModelCallDuration.WithLabelValues(operation).Observe(seconds)
}
