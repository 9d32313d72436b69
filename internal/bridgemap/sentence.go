package bridgemap

import (
	"strings"
	"unicode"

	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/internal/textseg"
	"github.com/readbridge/readbridge/internal/wordalign"
)

// translatedSentence is a contiguous half-open word-index range over the
// timestamp sequence.
type translatedSentence struct {
	words      []wordalign.WordTimestamp
	start, end int
}

func (s translatedSentence) text() string {
	parts := make([]string, 0, len(s.words))
	for _, w := range s.words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// bridgeSentence is one bridge-text sentence with its extracted signal bags.
// propersLower indexes ProperNouns lowercased for case-insensitive matching.
type bridgeSentence struct {
	textseg.Sentence
	content      ContentWordSet
	propersLower map[string]struct{}
}

// splitTimestamps recovers translated-sentence boundaries by cutting the
// timestamp sequence after every sentence-end word.
func splitTimestamps(seg *textseg.Segmenter, timestamps []wordalign.WordTimestamp) []translatedSentence {
	var sentences []translatedSentence
	start := 0
	for i := range timestamps {
		next := ""
		if i+1 < len(timestamps) {
			next = timestamps[i+1].Text
		}
		if seg.IsSentenceEndWord(timestamps[i].Text, next) {
			sentences = append(sentences, translatedSentence{
				words: timestamps[start : i+1],
				start: start,
				end:   i + 1,
			})
			start = i + 1
		}
	}
	if start < len(timestamps) {
		sentences = append(sentences, translatedSentence{
			words: timestamps[start:],
			start: start,
			end:   len(timestamps),
		})
	}
	return sentences
}

// splitBridge segments the bridge text and annotates each sentence with its
// content-word set, using the English filler stoplist.
func splitBridge(bridgeText string) []bridgeSentence {
	seg := textseg.New(lang.English)
	profile := lang.ProfileFor(lang.English)

	raw := seg.Split(bridgeText)
	sentences := make([]bridgeSentence, len(raw))
	for i, s := range raw {
		cw := extractContentWords(s.Text, profile)
		lower := make(map[string]struct{}, len(cw.ProperNouns))
		for pn := range cw.ProperNouns {
			lower[strings.ToLower(pn)] = struct{}{}
		}
		sentences[i] = bridgeSentence{Sentence: s, content: cw, propersLower: lower}
	}
	return sentences
}

// extractContentWords builds the three disjoint signal bags for one sentence.
// It is a pure function of the sentence text and the filler stoplist.
func extractContentWords(text string, profile lang.Profile) ContentWordSet {
	cw := ContentWordSet{
		Content:     map[string]struct{}{},
		ProperNouns: map[string]struct{}{},
		Acronyms:    map[string]struct{}{},
	}
	for i, field := range strings.Fields(text) {
		tok := trimToken(field)
		if tok == "" || profile.IsFiller(tok) {
			continue
		}
		switch {
		case isAcronymToken(tok):
			cw.Acronyms[tok] = struct{}{}
		case i > 0 && isCapitalizedToken(tok):
			cw.ProperNouns[tok] = struct{}{}
		default:
			if len([]rune(tok)) >= 2 || isDigitToken(tok) {
				lower := strings.ToLower(tok)
				if _, seen := cw.Content[lower]; !seen {
					cw.Content[lower] = struct{}{}
					cw.ContentOrder = append(cw.ContentOrder, lower)
				}
			}
		}
	}
	return cw
}

// trimToken strips non-letter, non-digit runes from both ends of a
// whitespace token, keeping interior punctuation.
func trimToken(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// isAcronymToken reports whether tok is an all-caps token of 2–5 letters.
func isAcronymToken(tok string) bool {
	runes := []rune(tok)
	if len(runes) < 2 || len(runes) > 5 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// isCapitalizedToken reports whether tok starts with an uppercase letter
// followed by at least one lowercase letter.
func isCapitalizedToken(tok string) bool {
	runes := []rune(tok)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// isDigitToken reports whether tok consists entirely of digits.
func isDigitToken(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
