package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordUpstreamError("dart", "standard")
	r.RecordUpstreamError("dart", "standard")
	r.RecordFallbackStep("income", "legacy")
	r.RecordSeverity("per", "green")
	r.RecordEvaluation("ok")

	if got := testutil.ToFloat64(r.upstreamErrors.WithLabelValues("dart", "standard")); got != 2 {
		t.Fatalf("unexpected upstream errors %v", got)
	}
	if got := testutil.ToFloat64(r.fallbackSteps.WithLabelValues("income", "legacy")); got != 1 {
		t.Fatalf("unexpected fallback hits %v", got)
	}
	if got := testutil.ToFloat64(r.evaluations.WithLabelValues("ok")); got != 1 {
		t.Fatalf("unexpected evaluations %v", got)
	}
}
