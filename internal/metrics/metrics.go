// Package metrics holds the Prometheus instruments of the extraction service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Extractions counts finished extraction requests by outcome:
	// "model", "fallback" or "no_text".
	Extractions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookworm_extractions_total",
		Help: "Extraction requests by outcome",
	}, []string{"outcome"})

	// LLMRequests counts model calls by prompt variant and result:
	// "ok", "error", "no_json", "schema" or "rejected".
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookworm_llm_requests_total",
		Help: "Language model calls by variant and result",
	}, []string{"variant", "result"})

	// LLMDuration measures model call latency.
	LLMDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookworm_llm_request_duration_seconds",
		Help:    "Language model call latency in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
	}, []string{"variant"})

	// OCRDuration measures text recognition latency per page region.
	OCRDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookworm_ocr_duration_seconds",
		Help:    "Text recognition latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"region"})

	// BreakerState is 0 for closed, 1 for half-open and 2 for open.
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bookworm_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	// BreakerTransitions counts breaker state changes.
	BreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookworm_circuit_breaker_transitions_total",
		Help: "Circuit breaker state transitions",
	}, []string{"name", "from", "to"})
)

// ObserveLLM records one model call.
func ObserveLLM(variant, result string, d time.Duration) {
	LLMRequests.WithLabelValues(variant, result).Inc()
	LLMDuration.WithLabelValues(variant).Observe(d.Seconds())
}

// ObserveOCR records one recognition call.
func ObserveOCR(region string, d time.Duration) {
	OCRDuration.WithLabelValues(region).Observe(d.Seconds())
}
