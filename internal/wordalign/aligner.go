// Package wordalign maps speech-recogniser output back onto the canonical
// written text, producing exactly one timestamp per canonical word.
//
// The recogniser may mis-transcribe, merge, or split words, so the aligner
// walks the canonical word sequence with a cursor into the recognised words,
// fuzzy-matching within a small forward window. Canonical words with no
// acceptable recognised counterpart get a synthesised timestamp interpolated
// from their neighbours; the output never drops or invents words.
package wordalign

import (
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"

	"github.com/readbridge/readbridge/pkg/asr"
)

const (
	defaultWindow      = 3
	defaultMinScore    = 0.5
	defaultWordSeconds = 0.3
)

// Word is one whitespace token of the canonical text with its half-open byte
// range in the source string.
type Word struct {
	Text      string
	CharStart int
	CharEnd   int
}

// WordTimestamp is a canonical word with its position in the audio track in
// seconds. Start <= End always holds.
type WordTimestamp struct {
	Word
	Start float64
	End   float64
}

// Tokenize splits text on whitespace while preserving byte offsets. It is the
// single tokenisation used for canonical text throughout the engine.
func Tokenize(text string) []Word {
	var words []Word
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, Word{Text: text[start:i], CharStart: start, CharEnd: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, Word{Text: text[start:], CharStart: start, CharEnd: len(text)})
	}
	return words
}

// Option is a functional option for [Aligner].
type Option func(*Aligner)

// WithWindow sets how many not-yet-consumed recognised words are considered
// for each canonical word. Default: 3.
func WithWindow(n int) Option {
	return func(a *Aligner) {
		if n > 0 {
			a.window = n
		}
	}
}

// WithMinScore sets the fuzzy-match score a recognised word must reach to be
// accepted for a canonical word. Default: 0.5.
func WithMinScore(s float64) Option {
	return func(a *Aligner) {
		a.minScore = s
	}
}

// WithWordSeconds sets the assumed average word duration used when a
// timestamp must be extrapolated from a single neighbour or from nothing.
// Default: 0.3 s.
func WithWordSeconds(s float64) Option {
	return func(a *Aligner) {
		if s > 0 {
			a.wordSeconds = s
		}
	}
}

// Aligner aligns recogniser output to canonical text. It is read-only after
// construction and safe for concurrent use.
type Aligner struct {
	window      int
	minScore    float64
	wordSeconds float64
}

// New returns an Aligner with the supplied options applied over the defaults.
func New(opts ...Option) *Aligner {
	a := &Aligner{
		window:      defaultWindow,
		minScore:    defaultMinScore,
		wordSeconds: defaultWordSeconds,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Align maps recognized onto the canonical words of text. The returned slice
// always has exactly one element per canonical word, in text order, with
// Start <= End for every element. Empty text yields nil; empty recognised
// input yields uniform estimated timestamps.
func (a *Aligner) Align(text string, recognized []asr.RecognizedWord) []WordTimestamp {
	words := Tokenize(text)
	if len(words) == 0 {
		return nil
	}

	out := make([]WordTimestamp, len(words))
	cursor := 0
	prevEnd := 0.0
	havePrev := false

	for i, w := range words {
		bestIdx, bestScore := -1, 0.0
		limit := cursor + a.window
		if limit > len(recognized) {
			limit = len(recognized)
		}
		for j := cursor; j < limit; j++ {
			if s := matchScore(w.Text, recognized[j].Text); s > bestScore {
				bestIdx, bestScore = j, s
			}
		}

		var start, end float64
		if bestIdx >= 0 && bestScore >= a.minScore {
			start, end = recognized[bestIdx].Start, recognized[bestIdx].End
			cursor = bestIdx + 1
		} else {
			start, end = a.synthesize(i, recognized, cursor, prevEnd, havePrev)
		}
		if end < start {
			end = start
		}
		out[i] = WordTimestamp{Word: w, Start: start, End: end}
		prevEnd, havePrev = end, true
	}
	return out
}

// synthesize produces a timestamp for a canonical word with no acceptable
// recognised match. With evidence on both sides the word takes the first half
// of the gap; with one neighbour it extrapolates by the average word
// duration; with neither it falls back to a uniform estimate.
func (a *Aligner) synthesize(idx int, recognized []asr.RecognizedWord, cursor int, prevEnd float64, havePrev bool) (float64, float64) {
	haveNext := cursor < len(recognized)
	switch {
	case havePrev && haveNext:
		nextStart := recognized[cursor].Start
		if nextStart < prevEnd {
			// Out-of-order recogniser input; keep the timeline monotonic.
			return prevEnd, prevEnd
		}
		return prevEnd, prevEnd + (nextStart-prevEnd)/2
	case havePrev:
		return prevEnd, prevEnd + a.wordSeconds
	case haveNext:
		start := recognized[cursor].Start - a.wordSeconds
		if start < 0 {
			start = 0
		}
		return start, recognized[cursor].Start
	default:
		start := float64(idx) * a.wordSeconds
		return start, start + a.wordSeconds
	}
}

// matchScore is the fuzzy similarity between a canonical and a recognised
// word: 1.0 for an exact normalised match, 0.8 for substring containment in
// either direction, otherwise a normalised Levenshtein ratio.
func matchScore(canonical, recognized string) float64 {
	c := normalizeToken(canonical)
	r := normalizeToken(recognized)
	if c == "" || r == "" {
		return 0
	}
	if c == r {
		return 1.0
	}
	if strings.Contains(c, r) || strings.Contains(r, c) {
		return 0.8
	}
	maxLen := len([]rune(c))
	if n := len([]rune(r)); n > maxLen {
		maxLen = n
	}
	dist := matchr.Levenshtein(c, r)
	return 1.0 - float64(dist)/float64(maxLen)
}

// normalizeToken lowercases and strips non-letter, non-digit runes from both
// ends. Interior punctuation (hyphens, apostrophes) is kept.
func normalizeToken(tok string) string {
	return strings.ToLower(strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}))
}

// FindWordAtTime returns the index of the word whose [Start, End) range
// contains t. When t falls in a gap between words, the neighbour whose
// boundary is closer in absolute time wins (ties go to the earlier word).
// Runs in O(log n). Returns -1 for an empty slice.
func FindWordAtTime(timestamps []WordTimestamp, t float64) int {
	n := len(timestamps)
	if n == 0 {
		return -1
	}

	// First word whose End is after t.
	idx := sort.Search(n, func(i int) bool {
		return timestamps[i].End > t
	})
	if idx == n {
		return n - 1
	}
	if timestamps[idx].Start <= t {
		return idx
	}
	if idx == 0 {
		return 0
	}
	// Gap between idx-1 and idx: pick the closer boundary.
	if t-timestamps[idx-1].End <= timestamps[idx].Start-t {
		return idx - 1
	}
	return idx
}
