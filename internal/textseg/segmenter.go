// Package textseg splits raw article text into sentences.
//
// The segmenter is a deterministic rune scanner: a '.', '!', or '?' is a
// candidate boundary, and a small set of ordered rules decides whether it
// actually ends a sentence (abbreviations, ellipses, decimals, and lowercase
// continuations do not). Look-alike quotation marks and dash variants are
// normalised to their ASCII equivalents during scanning; this never changes
// the sentence count, only how individual runes are interpreted.
//
// The companion predicate [Segmenter.IsSentenceEndWord] applies the same
// rules to a single whitespace token plus optional lookahead, so callers that
// already hold a tokenised word sequence (the word aligner, the bridge
// aligner) never need to re-join and re-split text.
package textseg

import (
	"strings"
	"unicode"

	"github.com/readbridge/readbridge/internal/lang"
)

// Sentence is one trimmed sentence with its half-open byte range in the
// original text. Offsets refer to the untrimmed, unnormalised input.
type Sentence struct {
	Text  string
	Start int
	End   int
}

// Segmenter splits text into sentences using the abbreviation lists of a
// single language profile. It is read-only after construction and safe for
// concurrent use.
type Segmenter struct {
	profile lang.Profile
}

// New returns a Segmenter for the given language. Unknown languages fall back
// to the structural rules alone (single capitals, acronyms, digits, ellipses).
func New(language lang.Language) *Segmenter {
	return &Segmenter{profile: lang.ProfileFor(language)}
}

// normRune maps typographic quote and dash variants onto their ASCII
// equivalents. All other runes pass through unchanged.
func normRune(r rune) rune {
	switch r {
	case '“', '”', '„', '«', '»', '‹', '›':
		return '"'
	case '‘', '’', '‚':
		return '\''
	case '–', '—', '―':
		return '-'
	}
	return r
}

func isQuote(r rune) bool {
	r = normRune(r)
	return r == '"' || r == '\''
}

func isClosing(r rune) bool {
	r = normRune(r)
	switch r {
	case '"', '\'', ')', ']', '}':
		return true
	}
	return false
}

// Split segments text into sentences. It is total: empty or malformed input
// yields an empty slice, never a panic.
func (s *Segmenter) Split(text string) []Sentence {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	// Byte offset of each rune, plus the terminating offset, so sentence
	// ranges can be reported against the original string.
	offs := make([]int, len(runes)+1)
	pos := 0
	for i, r := range runes {
		offs[i] = pos
		pos += len(string(r))
	}
	offs[len(runes)] = pos

	var sentences []Sentence
	start := 0

	emit := func(endRune int) {
		raw := string(runes[start:endRune])
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := strings.Index(raw, trimmed)
			sentences = append(sentences, Sentence{
				Text:  trimmed,
				Start: offs[start] + lead,
				End:   offs[start] + lead + len(trimmed),
			})
		}
		start = endRune
	}

	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '!' || r == '?':
			end := s.absorbClosers(runes, i+1)
			emit(end)
			i = end

		case r == '.' || r == '…':
			dots := 1
			if r == '.' {
				for i+dots < len(runes) && runes[i+dots] == '.' {
					dots++
				}
			}
			isEllipsis := r == '…' || dots >= 3
			if isEllipsis {
				after := i + dots
				if s.upperAfterGap(runes, after) {
					end := s.absorbClosers(runes, after)
					emit(end)
					i = end
				} else {
					// Consumed as one boundary candidate; scanning continues.
					i = after
				}
				continue
			}
			if s.periodEndsSentence(runes, i) {
				end := s.absorbClosers(runes, i+1)
				emit(end)
				i = end
			} else {
				i++
			}

		default:
			i++
		}
	}
	emit(len(runes))
	return sentences
}

// upperAfterGap reports whether, skipping whitespace and quotes from runes[i]
// onward, the next rune is uppercase, a quote, a digit, or end-of-text. This
// is the ellipsis continuation test.
func (s *Segmenter) upperAfterGap(runes []rune, i int) bool {
	for ; i < len(runes); i++ {
		r := runes[i]
		if unicode.IsSpace(r) {
			continue
		}
		if isQuote(r) {
			return true
		}
		return unicode.IsUpper(r) || unicode.IsDigit(r)
	}
	return true
}

// periodEndsSentence applies the ordered abbreviation/continuation rules to a
// single '.' at runes[i].
func (s *Segmenter) periodEndsSentence(runes []rune, i int) bool {
	if tok := precedingToken(runes, i); tok != "" && s.isAbbreviationToken(tok) {
		return false
	}

	// Skip whitespace; a following lowercase letter means a decimal, URL
	// fragment, or abbreviation continuation.
	j := i + 1
	for j < len(runes) && unicode.IsSpace(runes[j]) {
		j++
	}
	if j < len(runes) && unicode.IsLower(runes[j]) {
		return false
	}
	return true
}

// isAbbreviationToken reports whether the token immediately preceding a '.'
// marks it as an abbreviation period: a profile-listed abbreviation (titles,
// weekday/month shorthands), a single capital letter, an all-caps acronym of
// at most four letters, or bare ordinal digits.
func (s *Segmenter) isAbbreviationToken(tok string) bool {
	if s.profile.IsAbbreviation(tok) {
		return true
	}
	runes := []rune(tok)
	if len(runes) == 1 && unicode.IsUpper(runes[0]) {
		return true
	}
	if len(runes) <= 4 && allUpperLetters(runes) {
		return true
	}
	return allDigits(runes)
}

// precedingToken extracts the run of letters/digits directly before runes[i],
// stripping any leading quotes or brackets.
func precedingToken(runes []rune, i int) string {
	end := i
	startTok := end
	for startTok > 0 {
		r := runes[startTok-1]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			startTok--
			continue
		}
		break
	}
	return string(runes[startTok:end])
}

// absorbClosers extends a sentence end past any closing quotes or brackets
// that immediately follow the terminal punctuation.
func (s *Segmenter) absorbClosers(runes []rune, i int) int {
	for i < len(runes) && isClosing(runes[i]) {
		i++
	}
	return i
}

func allUpperLetters(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func allDigits(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsSentenceEndWord applies the segmentation rules to a single whitespace
// token. next is the following token, or "" at end of text. Used by the word
// and bridge aligners to recover sentence boundaries from word sequences
// without re-joining text.
func (s *Segmenter) IsSentenceEndWord(word, next string) bool {
	runes := []rune(word)

	// Strip closing quotes/brackets absorbed into the word.
	for len(runes) > 0 && isClosing(runes[len(runes)-1]) {
		runes = runes[:len(runes)-1]
	}
	if len(runes) == 0 {
		return false
	}

	last := runes[len(runes)-1]
	if last == '!' || last == '?' {
		return true
	}

	ellipsis := last == '…'
	if !ellipsis && len(runes) >= 3 {
		ellipsis = runes[len(runes)-1] == '.' && runes[len(runes)-2] == '.' && runes[len(runes)-3] == '.'
	}
	if ellipsis {
		return s.nextStartsSentence(next)
	}

	if last != '.' {
		return false
	}

	core := runes[:len(runes)-1]
	end := len(core)
	startTok := end
	for startTok > 0 {
		r := core[startTok-1]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			startTok--
			continue
		}
		break
	}
	if tok := string(core[startTok:end]); tok != "" && s.isAbbreviationToken(tok) {
		return false
	}

	if next != "" {
		first := []rune(next)[0]
		if unicode.IsLower(first) {
			return false
		}
	}
	return true
}

// nextStartsSentence is the ellipsis lookahead: the next token starts a new
// sentence when it opens with an uppercase letter, a quote, or a digit, or
// when there is no next token.
func (s *Segmenter) nextStartsSentence(next string) bool {
	if next == "" {
		return true
	}
	for _, r := range next {
		if isQuote(r) {
			continue
		}
		return unicode.IsUpper(r) || unicode.IsDigit(r)
	}
	return true
}
