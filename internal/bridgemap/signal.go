package bridgemap

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/pkg/glossary"
)

// glossaryConcurrency bounds parallel glossary lookups per mapping run.
const glossaryConcurrency = 8

// Signal holds the lexical evidence extracted from one translated sentence.
// English and Source may overlap (digits appear in both; dictionary-translated
// words contribute to both); ProperNouns and Acronyms are disjoint from them.
type Signal struct {
	// English holds lowercased words expected to appear in the bridge text:
	// dictionary translations and digit tokens.
	English []string

	// Source holds lowercased source-language words kept as cognate
	// candidates.
	Source []string

	// ProperNouns holds case-preserved capitalized tokens not at sentence
	// start.
	ProperNouns []string

	// Acronyms holds all-caps 2–5-letter tokens.
	Acronyms []string

	// Count is the number of classified signal tokens.
	Count int

	// Weight is the combined signal weight: one per token, two for proper
	// nouns and acronyms.
	Weight float64
}

// extractSignals classifies the content words of every translated sentence
// and resolves dictionary translations for the source-word candidates.
//
// Glossary lookups have no ordering dependency, so they are batched through
// an errgroup with bounded concurrency. A nil or failing glossary degrades to
// cognate-only matching; failures are logged and counted on the report,
// never propagated.
func (a *Aligner) extractSignals(ctx context.Context, sentences []translatedSentence, language lang.Language, report *Report) []Signal {
	profile := lang.ProfileFor(language)

	signals := make([]Signal, len(sentences))
	type lookupSlot struct {
		sentence int
		word     string
	}
	var lookups []lookupSlot

	for si, s := range sentences {
		sig := &signals[si]
		for wi, w := range s.words {
			tok := trimToken(w.Text)
			if tok == "" || profile.IsFiller(tok) {
				continue
			}
			switch {
			case isDigitToken(tok):
				// Numbers are language-invariant anchors.
				sig.English = append(sig.English, tok)
				sig.Source = append(sig.Source, tok)
				sig.Count++
				sig.Weight++
			case isAcronymToken(tok):
				sig.Acronyms = append(sig.Acronyms, tok)
				sig.Count++
				sig.Weight += 2
			case wi > 0 && isCapitalizedToken(tok):
				// Names and places; never dictionary-translated.
				sig.ProperNouns = append(sig.ProperNouns, tok)
				sig.Count++
				sig.Weight += 2
			default:
				if len([]rune(tok)) < 4 {
					continue
				}
				lower := strings.ToLower(tok)
				sig.Source = append(sig.Source, lower)
				sig.Count++
				sig.Weight++
				lookups = append(lookups, lookupSlot{sentence: si, word: lower})
			}
		}
	}

	if a.glossary == nil || len(lookups) == 0 {
		return signals
	}
	report.GlossaryLookups = len(lookups)

	results := make([]string, len(lookups))
	var (
		errMu    sync.Mutex
		firstErr error
		errCount int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(glossaryConcurrency)
	for i, l := range lookups {
		g.Go(func() error {
			entry, err := a.glossary.Lookup(gctx, l.word, language)
			if err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errCount++
				errMu.Unlock()
				return nil // degrade, don't abort the batch
			}
			if entry != nil {
				results[i] = glossary.FirstGloss(entry.Gloss)
			}
			return nil
		})
	}
	_ = g.Wait()

	report.GlossaryErrors = errCount
	if errCount > 0 {
		slog.Warn("glossary lookups failed; falling back to cognate matching for affected words",
			"failed", errCount,
			"total", len(lookups),
			"err", firstErr,
		)
	}

	for i, l := range lookups {
		if results[i] != "" {
			signals[l.sentence].English = append(signals[l.sentence].English, results[i])
		}
	}
	return signals
}
