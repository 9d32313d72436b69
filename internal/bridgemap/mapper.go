package bridgemap

import (
	"context"
	"log/slog"

	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/internal/textseg"
	"github.com/readbridge/readbridge/internal/wordalign"
	"github.com/readbridge/readbridge/pkg/glossary"
	"github.com/readbridge/readbridge/pkg/provider/embeddings"
)

// Option is a functional option for [Aligner].
type Option func(*Aligner)

// WithGlossary attaches the word→gloss oracle. When nil (the default),
// matching degrades to cognates, proper nouns, acronyms, and digits.
func WithGlossary(g glossary.Glossary) Option {
	return func(a *Aligner) {
		a.glossary = g
	}
}

// WithEmbedder attaches the optional semantic-fallback oracle. When nil (the
// default), unresolved sentences stay unresolved.
func WithEmbedder(p embeddings.Provider) Option {
	return func(a *Aligner) {
		a.embedder = p
	}
}

// WithTuning overrides scoring and anchoring constants. Zero fields keep
// their defaults.
func WithTuning(t Tuning) Option {
	return func(a *Aligner) {
		a.tuning = t.withDefaults()
	}
}

// Aligner computes sentence maps. It is read-only after construction and safe
// for concurrent use across articles.
type Aligner struct {
	glossary glossary.Glossary
	embedder embeddings.Provider
	tuning   Tuning
}

// New returns an Aligner with the supplied options applied over the defaults.
func New(opts ...Option) *Aligner {
	a := &Aligner{tuning: DefaultTuning()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// localMatch is a translated sentence's best bridge match within its search
// window.
type localMatch struct {
	bridge int
	res    matchResult
	ok     bool
}

// ComputeMap maps each translated sentence (recovered from the timestamp
// sequence) to its best bridge-sentence index, or [Unresolved]. The result
// always has exactly one entry per translated sentence; empty input on
// either side yields an empty map. It never fails: oracle errors degrade to
// weaker matching.
func (a *Aligner) ComputeMap(ctx context.Context, timestamps []wordalign.WordTimestamp, bridgeText string, language lang.Language) SentenceMap {
	m, _ := a.ComputeMapReport(ctx, timestamps, bridgeText, language)
	return m
}

// ComputeMapReport is [Aligner.ComputeMap] plus a telemetry report of anchor
// counts and the confidence-tier distribution.
func (a *Aligner) ComputeMapReport(ctx context.Context, timestamps []wordalign.WordTimestamp, bridgeText string, language lang.Language) (SentenceMap, Report) {
	report := Report{Tiers: map[Confidence]int{}}

	seg := textseg.New(language)
	translated := splitTimestamps(seg, timestamps)
	bridge := splitBridge(bridgeText)
	report.TranslatedSentences = len(translated)
	report.BridgeSentences = len(bridge)
	if len(translated) == 0 || len(bridge) == 0 {
		return SentenceMap{}, report
	}

	nT, nB := len(translated), len(bridge)
	lastT, lastB := nT-1, nB-1

	// Step 2: signal extraction (+ glossary translation).
	signals := a.extractSignals(ctx, translated, language, &report)

	// Step 4: global anchor search, only worthwhile when both sides are long
	// enough for drift to matter.
	var global []AnchorPoint
	if nT > a.tuning.MinSentencesForGlobal && nB > a.tuning.MinSentencesForGlobal {
		global = a.globalAnchors(signals, bridge)
	}
	report.GlobalAnchors = len(global)

	searchGuides := buildSearchGuides(global, lastT, lastB)

	// Step 5: windowed local search around the expected index.
	locals := make([]localMatch, nT)
	radius := searchRadius(nB)
	for ti := range translated {
		exp := expectedIndex(searchGuides, ti)
		lo, hi := exp-radius, exp+radius
		if lo < 0 {
			lo = 0
		}
		if hi > lastB {
			hi = lastB
		}
		for bi := lo; bi <= hi; bi++ {
			res, _ := scoreAgainst(&bridge[bi], signals[ti], a.tuning)
			if res.Score > locals[ti].res.Score {
				locals[ti] = localMatch{bridge: bi, res: res, ok: true}
			}
		}
	}

	// Step 6: anchor candidates, validated by weighted LIS.
	var candidates []AnchorPoint
	for ti, lm := range locals {
		if !lm.ok || !a.isAnchorCandidate(signals[ti], lm.res) {
			continue
		}
		candidates = append(candidates, AnchorPoint{Translated: ti, Bridge: lm.bridge, Score: lm.res.Score})
	}
	validated := weightedLIS(candidates)
	report.ValidatedAnchors = len(validated)

	guides := buildGuides(validated, lastT, lastB)
	realAt := make(map[int]AnchorPoint, len(validated))
	for _, v := range validated {
		realAt[v.Translated] = v
	}

	// Step 7: interpolate between validated anchors, preferring a sentence's
	// own nearby match. With no validated anchors at all there is nothing to
	// interpolate from, so non-matching sentences stay unresolved.
	m := make(SentenceMap, nT)
	tiers := make([]Confidence, nT)
	for ti := range translated {
		sig := signals[ti]
		lm := locals[ti]

		if v, ok := realAt[ti]; ok {
			m[ti] = int32(v.Bridge)
			tiers[ti] = tierFor(lm.res.Score, sig.Count, a.tuning)
			continue
		}

		lo, hi := bracket(guides, ti)
		interp := interpolate(lo.AnchorPoint, hi.AnchorPoint, ti)
		tol := overrideTolerance(hi.Bridge - lo.Bridge)

		switch {
		case lm.ok && lm.res.Score >= a.tuning.OverrideMinScore && abs(lm.bridge-interp) <= tol:
			m[ti] = int32(lm.bridge)
			tiers[ti] = tierFor(lm.res.Score, sig.Count, a.tuning)
		case len(validated) > 0:
			m[ti] = int32(interp)
			tiers[ti] = tierFor(lm.res.Score, sig.Count, a.tuning)
		default:
			m[ti] = Unresolved
			tiers[ti] = tierFor(0, sig.Count, a.tuning)
		}
	}

	// Step 8: optional semantic fallback for unresolved sentences.
	if a.embedder != nil {
		report.EmbedResolved = a.refineUnresolved(ctx, m, translated, bridge, guides, &report)
	}

	// Step 9: forward smoothing — clamp mapped indices that fall more than
	// one below the previous resolved index, so the reader never sees an
	// uncontrolled backward jump.
	prev := int32(Unresolved)
	for i := range m {
		if m[i] == Unresolved {
			continue
		}
		if prev != Unresolved && m[i] < prev-1 {
			m[i] = prev
		}
		prev = m[i]
	}

	for i := range m {
		if m[i] == Unresolved {
			report.Unresolved++
		}
		report.Tiers[tiers[i]]++
	}
	slog.Debug("bridge map computed",
		"translated", nT,
		"bridge", nB,
		"global_anchors", report.GlobalAnchors,
		"validated_anchors", report.ValidatedAnchors,
		"embed_resolved", report.EmbedResolved,
		"unresolved", report.Unresolved,
	)
	return m, report
}

// isAnchorCandidate applies the anchor-candidate rules to a local match:
// a solid score, a short sentence matching nearly all of its signal words,
// or a strong proper-noun/acronym hit.
func (a *Aligner) isAnchorCandidate(sig Signal, res matchResult) bool {
	if res.Score >= a.tuning.AnchorMinScore {
		return true
	}
	if sig.Count > 0 && sig.Count <= 3 &&
		float64(res.Matched)/float64(sig.Count) >= 0.8 {
		return true
	}
	return res.ProperHit && res.Score >= a.tuning.ProperNounAnchorMinScore
}

// tierFor classifies a sentence's match quality.
func tierFor(score float64, signalCount int, t Tuning) Confidence {
	switch {
	case score >= t.AnchorMinScore:
		return ConfidenceHigh
	case score >= t.OverrideMinScore:
		return ConfidenceMedium
	case score > 0 || signalCount == 0:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
