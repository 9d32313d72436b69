package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestAlignDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.AlignDuration.Record(ctx, 0.123)
	m.AlignDuration.Record(ctx, 0.456)

	rm := collect(t, reader)
	met := findMetric(rm, "readbridge.align.duration")
	if met == nil {
		t.Fatal("metric readbridge.align.duration not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("metric is %T, not a float64 histogram", met.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("histogram has no data points")
	}
	if got := hist.DataPoints[0].Count; got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
}

func TestRecordSentenceTier(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSentenceTier(ctx, "high", 3)
	m.RecordSentenceTier(ctx, "none", 1)
	m.RecordSentenceTier(ctx, "low", 0) // zero counts must not emit

	rm := collect(t, reader)
	met := findMetric(rm, "readbridge.bridge_map.sentences")
	if met == nil {
		t.Fatal("metric readbridge.bridge_map.sentences not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric is %T, not an int64 sum", met.Data)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("got %d data points, want 2 (zero-count tier suppressed)", len(sum.DataPoints))
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}
}

func TestRecordOracleRequestAndError(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordOracleRequest(ctx, "glossary", "ok")
	m.RecordOracleRequest(ctx, "glossary", "error")
	m.RecordOracleError(ctx, "glossary")

	rm := collect(t, reader)
	if findMetric(rm, "readbridge.oracle.requests") == nil {
		t.Error("metric readbridge.oracle.requests not found")
	}
	if findMetric(rm, "readbridge.oracle.errors") == nil {
		t.Error("metric readbridge.oracle.errors not found")
	}
}

func TestRecordOracleOutcomes(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordOracleOutcomes(ctx, "glossary", 5, 2)
	m.RecordOracleOutcomes(ctx, "embedder", 0, 0) // no calls must not emit

	rm := collect(t, reader)
	met := findMetric(rm, "readbridge.oracle.requests")
	if met == nil {
		t.Fatal("metric readbridge.oracle.requests not found")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric is %T, not an int64 sum", met.Data)
	}
	if len(sum.DataPoints) != 2 {
		t.Errorf("got %d request data points, want 2 (ok and error)", len(sum.DataPoints))
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 5 {
		t.Errorf("request total = %d, want 5", total)
	}

	met = findMetric(rm, "readbridge.oracle.errors")
	if met == nil {
		t.Fatal("metric readbridge.oracle.errors not found")
	}
	sum, ok = met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric is %T, not an int64 sum", met.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 2 {
		t.Errorf("error data points = %v, want one point of value 2", sum.DataPoints)
	}
}

func TestRecordAnchors(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAnchors(ctx, "validated", 7)

	rm := collect(t, reader)
	met := findMetric(rm, "readbridge.bridge_map.anchors")
	if met == nil {
		t.Fatal("metric readbridge.bridge_map.anchors not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[int64])
	if !ok {
		t.Fatalf("metric is %T, not an int64 histogram", met.Data)
	}
	if len(hist.DataPoints) == 0 || hist.DataPoints[0].Count != 1 {
		t.Error("anchor histogram missing the recorded data point")
	}
}
