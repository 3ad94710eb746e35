package observe

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("create metrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(t.Context(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != meterName {
			t.Errorf("scope = %q, want %q", sm.Scope.Name, meterName)
		}
		for _, md := range sm.Metrics {
			out[md.Name] = md
		}
	}
	return out
}

func TestNewMetricsCreatesAllInstruments(t *testing.T) {
	m, _ := newTestMetrics(t)

	if m.STTDuration == nil || m.LLMDuration == nil || m.TTSDuration == nil {
		t.Error("histogram instrument is nil")
	}
	if m.ProviderRequests == nil || m.ProviderErrors == nil || m.Turns == nil || m.Reviews == nil {
		t.Error("counter instrument is nil")
	}
	if m.ActiveSessions == nil {
		t.Error("gauge instrument is nil")
	}
}

func TestCountersRecord(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := t.Context()

	m.Turns.Add(ctx, 1)
	m.Turns.Add(ctx, 2)
	m.ProviderRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", "llm"),
		attribute.String("status", "ok"),
	))

	got := collect(t, reader)

	turns, ok := got["hireloop.turns"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("hireloop.turns missing or wrong type: %+v", got["hireloop.turns"])
	}
	if len(turns.DataPoints) != 1 || turns.DataPoints[0].Value != 3 {
		t.Errorf("turns = %+v, want single point of 3", turns.DataPoints)
	}

	reqs, ok := got["hireloop.provider.requests"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("hireloop.provider.requests missing")
	}
	if len(reqs.DataPoints) != 1 {
		t.Fatalf("request points = %d, want 1", len(reqs.DataPoints))
	}
	if v, _ := reqs.DataPoints[0].Attributes.Value("kind"); v.AsString() != "llm" {
		t.Errorf("kind attribute = %q", v.AsString())
	}
}

func TestHistogramUsesLatencyBuckets(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := t.Context()

	m.LLMDuration.Record(ctx, 1.7)
	got := collect(t, reader)

	hist, ok := got["hireloop.llm.duration"].Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("hireloop.llm.duration missing")
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("points = %d, want 1", len(hist.DataPoints))
	}
	dp := hist.DataPoints[0]
	if dp.Count != 1 {
		t.Errorf("count = %d, want 1", dp.Count)
	}
	if len(dp.Bounds) != len(latencyBuckets) {
		t.Errorf("bounds = %v, want custom latency buckets", dp.Bounds)
	}
}

func TestActiveSessionsUpDown(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := t.Context()

	m.ActiveSessions.Add(ctx, 1)
	m.ActiveSessions.Add(ctx, 1)
	m.ActiveSessions.Add(ctx, -1)

	got := collect(t, reader)
	sum, ok := got["hireloop.active_sessions"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatal("hireloop.active_sessions missing")
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("active sessions = %+v, want 1", sum.DataPoints)
	}
}

func TestDefaultMetricsSingleton(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different instances")
	}
}
