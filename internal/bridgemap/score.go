package bridgemap

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// matchResult is the outcome of scoring one translated sentence's signal
// against one bridge sentence.
type matchResult struct {
	// Score is the accumulated weighted credit.
	Score float64

	// Matched counts the signal tokens that were credited.
	Matched int

	// ProperHit reports whether a proper noun or acronym was credited.
	ProperHit bool
}

// scoreAgainst scores sig against bridge sentence b.
//
// Crediting order: acronyms (exact, case-sensitive), proper nouns
// (case-insensitive exact), dictionary-translated words (exact,
// case-insensitive), cognates from source words. A bridge content word may
// only be credited once across all passes; the claimed set is threaded
// through the passes and returned, keeping the function a pure fold over its
// inputs.
func scoreAgainst(b *bridgeSentence, sig Signal, t Tuning) (matchResult, map[string]struct{}) {
	var res matchResult
	claimed := make(map[string]struct{})

	claim := func(key string) bool {
		if _, ok := claimed[key]; ok {
			return false
		}
		claimed[key] = struct{}{}
		return true
	}

	for _, acr := range sig.Acronyms {
		if _, ok := b.content.Acronyms[acr]; !ok {
			continue
		}
		if claim(strings.ToLower(acr)) {
			res.Score += t.AcronymWeight
			res.Matched++
			res.ProperHit = true
		}
	}

	for _, pn := range sig.ProperNouns {
		lower := strings.ToLower(pn)
		_, inPropers := b.propersLower[lower]
		_, inContent := b.content.Content[lower]
		if !inPropers && !inContent {
			continue
		}
		if claim(lower) {
			res.Score += t.ProperNounWeight
			res.Matched++
			res.ProperHit = true
		}
	}

	for _, en := range sig.English {
		if _, ok := b.content.Content[en]; !ok {
			continue
		}
		if claim(en) {
			res.Score += t.DictWeight
			res.Matched++
		}
	}

	// Walk content words in sentence order so that which bridge word a
	// source word claims does not depend on map iteration order.
	for _, src := range sig.Source {
		for _, w := range b.content.ContentOrder {
			if _, taken := claimed[w]; taken {
				continue
			}
			if !isCognate(src, w) {
				continue
			}
			claimed[w] = struct{}{}
			res.Score += t.CognateWeight
			res.Matched++
			break
		}
	}

	return res, claimed
}

// isCognate reports whether two words across the two languages are similar
// enough in surface form to count as a translation-free matching signal.
//
// Identical words always qualify. Otherwise both must be at least 4 runes
// with a length difference of at most 3, and the normalised Levenshtein
// ratio must stay under a length-dependent ceiling: 0.20 by default, 0.25
// for long words, and 0.41 for short words sharing their first letter
// (admitting pairs like "Haus"/"house").
func isCognate(a, b string) bool {
	if a == b {
		return true
	}
	ar, br := []rune(a), []rune(b)
	la, lb := len(ar), len(br)
	if la < 4 || lb < 4 {
		return false
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > 3 {
		return false
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	ratio := float64(matchr.Levenshtein(a, b)) / float64(maxLen)

	threshold := 0.20
	if maxLen >= 8 {
		threshold = 0.25
	} else if la <= 6 && lb <= 6 && ar[0] == br[0] {
		threshold = 0.41
	}
	return ratio <= threshold
}
