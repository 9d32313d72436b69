// Package bridgemap maps each sentence of the translated text onto the
// best-corresponding sentence of the independently generated English bridge
// text.
//
// Sentence counts, boundaries, and word order differ between the two sides
// and no 1:1 correspondence is guaranteed, so the mapping is best-effort:
// lexical scoring finds high-confidence anchor pairs, a weighted
// longest-increasing-subsequence keeps them monotonic, and the sentences in
// between are interpolated. Sentences with no usable evidence are marked
// [Unresolved] rather than guessed. The computation is a pure function of its
// inputs plus read-only calls to the glossary and embedder oracles; oracle
// absence or failure degrades matching power but never errors.
package bridgemap

import "math"

// Unresolved marks a translated sentence with no confident bridge
// counterpart. The reading UI decides the fallback display.
const Unresolved = -1

// SentenceMap is the persisted output artifact: indexed by
// translated-sentence index, each value is a bridge-sentence index or
// [Unresolved]. It is written once per computation and read-only afterwards;
// recomputation replaces it wholesale.
type SentenceMap []int32

// Confidence summarises how much lexical evidence supported one sentence's
// mapping.
type Confidence string

const (
	// ConfidenceHigh marks a match with strong lexical evidence.
	ConfidenceHigh Confidence = "high"

	// ConfidenceMedium marks a match with moderate lexical evidence.
	ConfidenceMedium Confidence = "medium"

	// ConfidenceLow marks a weak match, or a sentence that had no signal to
	// match against in the first place.
	ConfidenceLow Confidence = "low"

	// ConfidenceNone marks a sentence that had signal but matched nothing.
	ConfidenceNone Confidence = "none"
)

// AnchorPoint is a candidate correspondence between one translated sentence
// and one bridge sentence. Anchors only live within a single mapping
// computation; they are never persisted.
type AnchorPoint struct {
	Translated int
	Bridge     int
	Score      float64
}

// ContentWordSet holds the three disjoint signal bags extracted from one
// bridge sentence: lowercased content words, case-preserved proper nouns,
// and all-caps acronyms. ContentOrder lists the content words in first
// appearance order so that scans over them are deterministic.
type ContentWordSet struct {
	Content      map[string]struct{}
	ContentOrder []string
	ProperNouns  map[string]struct{}
	Acronyms     map[string]struct{}
}

// Tuning collects the empirically tuned scoring and anchoring constants.
// They are configuration defaults, not fixed law; tests and deployments may
// override individual values. The zero value of any field means "use the
// default".
type Tuning struct {
	// AcronymWeight is the score credit for an exact acronym hit.
	AcronymWeight float64

	// ProperNounWeight is the score credit for a proper-noun hit.
	ProperNounWeight float64

	// DictWeight is the score credit for a dictionary-translated word hit.
	DictWeight float64

	// CognateWeight is the score credit for a cognate hit.
	CognateWeight float64

	// GlobalAnchorMinScore is the minimum best score for a global anchor.
	GlobalAnchorMinScore float64

	// GlobalAnchorUniqueness is the required best-to-second-best score ratio
	// for a global anchor; prevents anchoring on generic words.
	GlobalAnchorUniqueness float64

	// AnchorMinScore qualifies a local match as an anchor candidate.
	AnchorMinScore float64

	// ProperNounAnchorMinScore qualifies a local match containing a
	// proper-noun or acronym hit as an anchor candidate.
	ProperNounAnchorMinScore float64

	// OverrideMinScore is the minimum local-match score that may override an
	// interpolated index (medium confidence from this value, high from
	// AnchorMinScore).
	OverrideMinScore float64

	// MinSignalWeight is the minimum combined signal weight for a sentence
	// to participate in the global anchor search.
	MinSignalWeight float64

	// MinSentencesForGlobal gates the global anchor search: it only runs
	// when both sides have more sentences than this.
	MinSentencesForGlobal int

	// SubsampleAbove switches the global search to every-3rd-sentence
	// subsampling when the translated side has more sentences than this.
	SubsampleAbove int

	// EmbedMinSimilarity is the minimum cosine similarity for the embedding
	// fallback to accept a candidate.
	EmbedMinSimilarity float64

	// EmbedMargin is the required best-to-second-best similarity ratio for
	// the embedding fallback.
	EmbedMargin float64

	// EmbedWindow is the bridge-sentence radius around the expected index
	// considered by the embedding fallback.
	EmbedWindow int
}

// DefaultTuning returns the default constants.
func DefaultTuning() Tuning {
	return Tuning{
		AcronymWeight:            2.5,
		ProperNounWeight:         2.0,
		DictWeight:               1.0,
		CognateWeight:            0.8,
		GlobalAnchorMinScore:     2.5,
		GlobalAnchorUniqueness:   1.4,
		AnchorMinScore:           1.5,
		ProperNounAnchorMinScore: 2.0,
		OverrideMinScore:         0.5,
		MinSignalWeight:          2.0,
		MinSentencesForGlobal:    5,
		SubsampleAbove:           50,
		EmbedMinSimilarity:       0.25,
		EmbedMargin:              1.15,
		EmbedWindow:              3,
	}
}

// withDefaults fills zero fields from DefaultTuning.
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.AcronymWeight == 0 {
		t.AcronymWeight = d.AcronymWeight
	}
	if t.ProperNounWeight == 0 {
		t.ProperNounWeight = d.ProperNounWeight
	}
	if t.DictWeight == 0 {
		t.DictWeight = d.DictWeight
	}
	if t.CognateWeight == 0 {
		t.CognateWeight = d.CognateWeight
	}
	if t.GlobalAnchorMinScore == 0 {
		t.GlobalAnchorMinScore = d.GlobalAnchorMinScore
	}
	if t.GlobalAnchorUniqueness == 0 {
		t.GlobalAnchorUniqueness = d.GlobalAnchorUniqueness
	}
	if t.AnchorMinScore == 0 {
		t.AnchorMinScore = d.AnchorMinScore
	}
	if t.ProperNounAnchorMinScore == 0 {
		t.ProperNounAnchorMinScore = d.ProperNounAnchorMinScore
	}
	if t.OverrideMinScore == 0 {
		t.OverrideMinScore = d.OverrideMinScore
	}
	if t.MinSignalWeight == 0 {
		t.MinSignalWeight = d.MinSignalWeight
	}
	if t.MinSentencesForGlobal == 0 {
		t.MinSentencesForGlobal = d.MinSentencesForGlobal
	}
	if t.SubsampleAbove == 0 {
		t.SubsampleAbove = d.SubsampleAbove
	}
	if t.EmbedMinSimilarity == 0 {
		t.EmbedMinSimilarity = d.EmbedMinSimilarity
	}
	if t.EmbedMargin == 0 {
		t.EmbedMargin = d.EmbedMargin
	}
	if t.EmbedWindow == 0 {
		t.EmbedWindow = d.EmbedWindow
	}
	return t
}

// Report summarises one mapping computation for telemetry: anchor counts,
// the confidence-tier distribution, and oracle call outcomes. It is advisory
// only and not persisted.
type Report struct {
	TranslatedSentences int
	BridgeSentences     int
	GlobalAnchors       int
	ValidatedAnchors    int
	EmbedResolved       int
	Tiers               map[Confidence]int
	Unresolved          int

	// GlossaryLookups counts glossary oracle calls issued during signal
	// extraction; GlossaryErrors counts how many of them failed.
	GlossaryLookups int
	GlossaryErrors  int

	// EmbedRequests counts embedding batch requests issued during the
	// semantic fallback; EmbedErrors counts how many of them failed.
	EmbedRequests int
	EmbedErrors   int
}

// searchRadius is the local-search window around the expected bridge index.
func searchRadius(numBridge int) int {
	r := int(math.Ceil(float64(numBridge) * 0.15))
	if r < 10 {
		r = 10
	}
	return r
}

// overrideTolerance bounds how far a local match may sit from the
// interpolated index and still override it.
func overrideTolerance(bridgeRange int) int {
	if bridgeRange < 0 {
		bridgeRange = -bridgeRange
	}
	tol := int(math.Ceil(float64(bridgeRange) * 0.15))
	if tol < 1 {
		tol = 1
	}
	if tol > 3 {
		tol = 3
	}
	return tol
}
