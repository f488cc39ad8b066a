package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics.
type Metrics struct {
	// Provider metrics
	providerCallsTotal    *prometheus.CounterVec
	providerCallDuration  *prometheus.HistogramVec
	providerRateLimitHits *prometheus.CounterVec
	providerRetries       *prometheus.CounterVec

	// Analysis metrics
	analysesTotal       *prometheus.CounterVec
	analysisDuration    *prometheus.HistogramVec
	historySource       *prometheus.CounterVec
	signaturesPerWallet *prometheus.HistogramVec
	swapsDetected       *prometheus.HistogramVec

	// Roast metrics
	roastsGenerated   *prometheus.CounterVec
	roastLLMDuration  *prometheus.HistogramVec
	analysisCacheHits *prometheus.CounterVec

	// HTTP metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec

	// NATS metrics
	natsMessagesPublished *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		providerCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_calls_total",
				Help: "Total number of upstream provider calls by provider, method and status",
			},
			[]string{"provider", "method", "status"},
		),
		providerCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provider_call_duration_seconds",
				Help:    "Duration of upstream provider calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 20.0},
			},
			[]string{"provider", "method"},
		),
		providerRateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_rate_limit_hits_total",
				Help: "Total number of provider rate limit responses (429)",
			},
			[]string{"provider"},
		),
		providerRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_retries_total",
				Help: "Total number of provider retry attempts",
			},
			[]string{"provider", "reason"},
		),

		analysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_analyses_total",
				Help: "Total number of wallet analyses by outcome",
			},
			[]string{"outcome"},
		),
		analysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wallet_analysis_duration_seconds",
				Help:    "End-to-end duration of a wallet analysis",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
			},
			[]string{"source"},
		),
		historySource: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "history_source_total",
				Help: "History fetch strategy selected per analysis",
			},
			[]string{"source"},
		),
		signaturesPerWallet: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signatures_per_wallet",
				Help:    "Number of signatures fetched per analyzed wallet",
				Buckets: []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000},
			},
			[]string{},
		),
		swapsDetected: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "swaps_detected_per_wallet",
				Help:    "Number of swaps reconstructed per analyzed wallet",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
			[]string{},
		),

		roastsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roasts_generated_total",
				Help: "Total number of roasts generated by persona and status",
			},
			[]string{"persona", "status"},
		),
		roastLLMDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roast_llm_duration_seconds",
				Help:    "Duration of LLM roast generation calls",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"persona"},
		),
		analysisCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_cache_hits_total",
				Help: "Analysis cache lookups by layer and result",
			},
			[]string{"layer", "result"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		natsMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nats_messages_published_total",
				Help: "Total number of NATS messages published by subject prefix and status",
			},
			[]string{"subject", "status"},
		),
	}
}

// RecordProviderCall records a provider call with its duration.
// Safe to call on a nil receiver.
func (m *Metrics) RecordProviderCall(provider, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.providerCallsTotal.WithLabelValues(provider, method, status).Inc()
	m.providerCallDuration.WithLabelValues(provider, method).Observe(seconds)
}

// RecordRateLimitHit records a 429 from an upstream provider.
func (m *Metrics) RecordRateLimitHit(provider string) {
	if m == nil {
		return
	}
	m.providerRateLimitHits.WithLabelValues(provider).Inc()
}

// RecordProviderRetry records a retry attempt against a provider.
func (m *Metrics) RecordProviderRetry(provider, reason string) {
	if m == nil {
		return
	}
	m.providerRetries.WithLabelValues(provider, reason).Inc()
}

// RecordAnalysis records a completed analysis attempt.
func (m *Metrics) RecordAnalysis(outcome, source string, seconds float64) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(outcome).Inc()
	m.analysisDuration.WithLabelValues(source).Observe(seconds)
}

// RecordHistorySource records which history strategy served an analysis.
func (m *Metrics) RecordHistorySource(source string) {
	if m == nil {
		return
	}
	m.historySource.WithLabelValues(source).Inc()
}

// RecordSignatureCount records how many signatures an analysis saw.
func (m *Metrics) RecordSignatureCount(n int) {
	if m == nil {
		return
	}
	m.signaturesPerWallet.WithLabelValues().Observe(float64(n))
}

// RecordSwapCount records how many swaps an analysis reconstructed.
func (m *Metrics) RecordSwapCount(n int) {
	if m == nil {
		return
	}
	m.swapsDetected.WithLabelValues().Observe(float64(n))
}

// RecordRoast records an LLM roast generation attempt.
func (m *Metrics) RecordRoast(persona, status string, seconds float64) {
	if m == nil {
		return
	}
	m.roastsGenerated.WithLabelValues(persona, status).Inc()
	m.roastLLMDuration.WithLabelValues(persona).Observe(seconds)
}

// RecordCacheLookup records an analysis cache lookup for the given layer
// ("memory" or "db") and result ("hit" or "miss").
func (m *Metrics) RecordCacheLookup(layer, result string) {
	if m == nil {
		return
	}
	m.analysisCacheHits.WithLabelValues(layer, result).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration.
func (m *Metrics) RecordHTTPRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

// RecordNATSPublish records a NATS publish attempt.
func (m *Metrics) RecordNATSPublish(subject, status string) {
	if m == nil {
		return
	}
	m.natsMessagesPublished.WithLabelValues(subject, status).Inc()
}
