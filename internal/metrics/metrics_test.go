package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLLM(t *testing.T) {
	before := testutil.ToFloat64(LLMRequests.WithLabelValues("catalog", "ok"))
	ObserveLLM("catalog", "ok", 1500*time.Millisecond)
	after := testutil.ToFloat64(LLMRequests.WithLabelValues("catalog", "ok"))
	if after != before+1 {
		t.Errorf("Expected counter to grow by 1, got %v -> %v", before, after)
	}
}

func TestExtractionsCounter(t *testing.T) {
	Extractions.WithLabelValues("fallback").Inc()
	if got := testutil.ToFloat64(Extractions.WithLabelValues("fallback")); got < 1 {
		t.Errorf("Expected at least 1 fallback extraction, got %v", got)
	}
}

func TestMetricsLint(t *testing.T) {
	ObserveOCR("cover", 200*time.Millisecond)
	BreakerState.WithLabelValues("llm").Set(0)
	BreakerTransitions.WithLabelValues("llm", "closed", "open").Inc()

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer,
		"bookworm_extractions_total",
		"bookworm_llm_requests_total",
		"bookworm_llm_request_duration_seconds",
		"bookworm_ocr_duration_seconds",
		"bookworm_circuit_breaker_state",
		"bookworm_circuit_breaker_transitions_total",
	)
	if err != nil {
		t.Fatalf("GatherAndLint failed: %v", err)
	}
	for _, p := range problems {
		t.Errorf("Lint problem in %s: %s", p.Metric, p.Text)
	}
}
