// Package observe provides the OpenTelemetry metric instruments for the
// alignment engine and the Prometheus exporter bridge that exposes them.
//
// The alignment core itself stays metric-free and pure; the job layer records
// per-run quality signals (anchor counts, confidence-tier distribution) from
// the aligner's report. These feed offline quality monitoring and are not
// part of the functional contract. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with a custom [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all engine metrics.
const meterName = "github.com/readbridge/readbridge"

// Metrics holds all OpenTelemetry metric instruments for the engine.
// All fields are safe for concurrent use.
type Metrics struct {
	// AlignDuration tracks alignment computation latency. Use with attribute:
	//   attribute.String("stage", "word_align" | "bridge_map")
	AlignDuration metric.Float64Histogram

	// AnchorsPerRun tracks how many anchors each mapping run produced.
	// Use with attribute: attribute.String("kind", "global" | "validated")
	AnchorsPerRun metric.Int64Histogram

	// SentenceOutcomes counts mapped sentences by confidence tier. Use with:
	//   attribute.String("tier", "high" | "medium" | "low" | "none" | "unresolved")
	SentenceOutcomes metric.Int64Counter

	// OracleRequests counts glossary/embedder oracle calls. Use with:
	//   attribute.String("oracle", ...), attribute.String("status", ...)
	OracleRequests metric.Int64Counter

	// OracleErrors counts oracle failures by oracle name.
	OracleErrors metric.Int64Counter

	// JobsInFlight tracks currently running alignment jobs.
	JobsInFlight metric.Int64UpDownCounter
}

// durationBuckets defines histogram bucket boundaries (in seconds) sized for
// whole-article alignment runs.
var durationBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30,
}

// anchorBuckets defines bucket boundaries for per-run anchor counts.
var anchorBuckets = []float64{
	0, 1, 2, 5, 10, 20, 50, 100, 250,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AlignDuration, err = m.Float64Histogram("readbridge.align.duration",
		metric.WithDescription("Latency of alignment computation by stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.AnchorsPerRun, err = m.Int64Histogram("readbridge.bridge_map.anchors",
		metric.WithDescription("Anchors per bridge-mapping run by kind."),
		metric.WithExplicitBucketBoundaries(anchorBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SentenceOutcomes, err = m.Int64Counter("readbridge.bridge_map.sentences",
		metric.WithDescription("Mapped sentences by confidence tier."),
	); err != nil {
		return nil, err
	}
	if met.OracleRequests, err = m.Int64Counter("readbridge.oracle.requests",
		metric.WithDescription("Oracle calls by oracle and status."),
	); err != nil {
		return nil, err
	}
	if met.OracleErrors, err = m.Int64Counter("readbridge.oracle.errors",
		metric.WithDescription("Oracle failures by oracle."),
	); err != nil {
		return nil, err
	}
	if met.JobsInFlight, err = m.Int64UpDownCounter("readbridge.jobs.in_flight",
		metric.WithDescription("Currently running alignment jobs."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails (should not happen with the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordOracleRequest records one oracle call with its outcome.
func (m *Metrics) RecordOracleRequest(ctx context.Context, oracle, status string) {
	m.OracleRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("oracle", oracle),
			attribute.String("status", status),
		),
	)
}

// RecordOracleError records one oracle failure.
func (m *Metrics) RecordOracleError(ctx context.Context, oracle string) {
	m.OracleErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("oracle", oracle)),
	)
}

// RecordOracleOutcomes records one run's worth of calls to an oracle:
// requests total calls, of which failed failed. Requests are counted by
// status; failures also feed the error counter.
func (m *Metrics) RecordOracleOutcomes(ctx context.Context, oracle string, requests, failed int64) {
	if ok := requests - failed; ok > 0 {
		m.OracleRequests.Add(ctx, ok,
			metric.WithAttributes(
				attribute.String("oracle", oracle),
				attribute.String("status", "ok"),
			),
		)
	}
	if failed > 0 {
		m.OracleRequests.Add(ctx, failed,
			metric.WithAttributes(
				attribute.String("oracle", oracle),
				attribute.String("status", "error"),
			),
		)
		m.OracleErrors.Add(ctx, failed,
			metric.WithAttributes(attribute.String("oracle", oracle)),
		)
	}
}

// RecordSentenceTier records n sentences that landed in the given confidence
// tier during one mapping run.
func (m *Metrics) RecordSentenceTier(ctx context.Context, tier string, n int64) {
	if n == 0 {
		return
	}
	m.SentenceOutcomes.Add(ctx, n,
		metric.WithAttributes(attribute.String("tier", tier)),
	)
}

// RecordAnchors records a per-run anchor count by kind.
func (m *Metrics) RecordAnchors(ctx context.Context, kind string, n int64) {
	m.AnchorsPerRun.Record(ctx, n,
		metric.WithAttributes(attribute.String("kind", kind)),
	)
}
