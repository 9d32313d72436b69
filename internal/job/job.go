// Package job orchestrates one end-to-end alignment run: word-to-audio
// alignment, bridge sentence mapping, and artifact persistence.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/readbridge/readbridge/internal/artifact"
	"github.com/readbridge/readbridge/internal/bridgemap"
	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/internal/observe"
	"github.com/readbridge/readbridge/internal/wordalign"
	"github.com/readbridge/readbridge/pkg/asr"
	"github.com/readbridge/readbridge/pkg/glossary"
	"github.com/readbridge/readbridge/pkg/provider/embeddings"
)

// Article is the input bundle for one alignment run: the two text renditions
// of an article plus the recogniser output for its audio track.
type Article struct {
	// ID identifies the article across tracks.
	ID string

	// TrackID identifies the audio track being aligned.
	TrackID string

	// TranslatedText is the canonical text in the learner's language, the
	// text actually narrated by the audio.
	TranslatedText string

	// BridgeText is the same article in the bridge language (English).
	BridgeText string

	// Language is the language of TranslatedText.
	Language lang.Language

	// Recognized is the ASR word list for the audio track.
	Recognized []asr.RecognizedWord
}

// Result is the computed pair of alignment artifacts.
type Result struct {
	Timestamps []wordalign.WordTimestamp
	Map        bridgemap.SentenceMap
	Report     bridgemap.Report
}

// Option configures a [Runner].
type Option func(*Runner)

// WithGlossary sets the dictionary oracle passed through to the bridge mapper.
func WithGlossary(g glossary.Glossary) Option {
	return func(r *Runner) { r.glossary = g }
}

// WithEmbedder sets the embedding provider for the semantic fallback.
func WithEmbedder(p embeddings.Provider) Option {
	return func(r *Runner) { r.embedder = p }
}

// WithStore sets the artifact store results are persisted to. Without a
// store, Run computes and returns results without persisting.
func WithStore(s *artifact.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithTuning overrides the alignment tuning constants.
func WithTuning(t bridgemap.Tuning) Option {
	return func(r *Runner) { r.tuning = t }
}

// WithWordAlignOptions passes options through to the word-to-audio aligner.
func WithWordAlignOptions(opts ...wordalign.Option) Option {
	return func(r *Runner) { r.wordOpts = opts }
}

// WithMetrics overrides the metrics sink, mainly for tests.
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// Runner executes alignment jobs. It is safe for concurrent use; each Run
// operates on its own state.
type Runner struct {
	glossary glossary.Glossary
	embedder embeddings.Provider
	store    *artifact.Store
	tuning   bridgemap.Tuning
	wordOpts []wordalign.Option
	metrics  *observe.Metrics
}

// New creates a Runner. All dependencies are optional: a bare Runner aligns
// using structural signals only and does not persist.
func New(opts ...Option) *Runner {
	r := &Runner{tuning: bridgemap.DefaultTuning()}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	return r
}

// Run executes one alignment job: it aligns the translated text to the
// recognised words, computes the sentence map against the bridge text, and
// persists both artifacts. Partial results are never persisted; if ctx is
// cancelled before the save, nothing is written.
func (r *Runner) Run(ctx context.Context, art Article) (*Result, error) {
	r.metrics.JobsInFlight.Add(ctx, 1)
	defer r.metrics.JobsInFlight.Add(ctx, -1)

	log := slog.With("article", art.ID, "track", art.TrackID, "language", art.Language)
	log.Info("alignment job started",
		"recognized_words", len(art.Recognized))

	start := time.Now()
	wa := wordalign.New(r.wordOpts...)
	timestamps := wa.Align(art.TranslatedText, art.Recognized)
	r.metrics.AlignDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", "word")))

	start = time.Now()
	mapper := bridgemap.New(
		bridgemap.WithGlossary(r.glossary),
		bridgemap.WithEmbedder(r.embedder),
		bridgemap.WithTuning(r.tuning),
	)
	m, report := mapper.ComputeMapReport(ctx, timestamps, art.BridgeText, art.Language)
	r.metrics.AlignDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage", "bridge")))

	r.metrics.RecordAnchors(ctx, "global", int64(report.GlobalAnchors))
	r.metrics.RecordAnchors(ctx, "validated", int64(report.ValidatedAnchors))
	for tier, n := range report.Tiers {
		r.metrics.RecordSentenceTier(ctx, string(tier), int64(n))
	}
	r.metrics.RecordOracleOutcomes(ctx, "glossary", int64(report.GlossaryLookups), int64(report.GlossaryErrors))
	r.metrics.RecordOracleOutcomes(ctx, "embedder", int64(report.EmbedRequests), int64(report.EmbedErrors))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("job: cancelled before save: %w", err)
	}

	if r.store != nil {
		if err := r.store.SaveAlignment(ctx, artifact.Alignment{
			ArticleID:  art.ID,
			TrackID:    art.TrackID,
			Timestamps: timestamps,
			Map:        m,
		}); err != nil {
			return nil, fmt.Errorf("job: %w", err)
		}
	}

	log.Info("alignment job finished",
		"words", len(timestamps),
		"translated_sentences", report.TranslatedSentences,
		"bridge_sentences", report.BridgeSentences,
		"validated_anchors", report.ValidatedAnchors,
		"unresolved", report.Unresolved)

	return &Result{Timestamps: timestamps, Map: m, Report: report}, nil
}
