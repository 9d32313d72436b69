package wordalign_test

import (
	"testing"

	"github.com/readbridge/readbridge/internal/wordalign"
	"github.com/readbridge/readbridge/pkg/asr"
)

func rec(text string, start, end float64) asr.RecognizedWord {
	return asr.RecognizedWord{Text: text, Start: start, End: end}
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	words := wordalign.Tokenize("  Der  Hund\tbellt.\n")
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3", len(words))
	}
	text := "  Der  Hund\tbellt.\n"
	for i, w := range words {
		if text[w.CharStart:w.CharEnd] != w.Text {
			t.Errorf("word %d: offsets [%d:%d] yield %q, want %q", i, w.CharStart, w.CharEnd, text[w.CharStart:w.CharEnd], w.Text)
		}
	}
	if words[2].Text != "bellt." {
		t.Errorf("word 2 = %q, want %q", words[2].Text, "bellt.")
	}

	if got := wordalign.Tokenize(""); got != nil {
		t.Errorf("Tokenize(\"\") = %v, want nil", got)
	}
}

func TestAlign_ExactMatch(t *testing.T) {
	t.Parallel()
	a := wordalign.New()
	got := a.Align("der Hund bellt", []asr.RecognizedWord{
		rec("der", 0.0, 0.2),
		rec("Hund", 0.2, 0.5),
		rec("bellt", 0.5, 0.9),
	})
	if len(got) != 3 {
		t.Fatalf("got %d timestamps, want 3", len(got))
	}
	if got[1].Start != 0.2 || got[1].End != 0.5 {
		t.Errorf("Hund = [%v, %v], want [0.2, 0.5]", got[1].Start, got[1].End)
	}
}

func TestAlign_OneTimestampPerWord(t *testing.T) {
	t.Parallel()
	a := wordalign.New()

	// Recogniser drops a word, mangles another, and adds an extra one. The
	// output stays one entry per canonical word with a monotone Start <= End.
	text := "die Katze schläft auf dem Sofa"
	got := a.Align(text, []asr.RecognizedWord{
		rec("die", 0.0, 0.2),
		rec("Katse", 0.2, 0.6), // mis-transcription
		rec("ähm", 0.6, 0.7),   // insertion
		rec("auf", 0.8, 1.0),
		rec("Sofa", 1.2, 1.6), // "dem" dropped
	})
	words := wordalign.Tokenize(text)
	if len(got) != len(words) {
		t.Fatalf("got %d timestamps for %d words", len(got), len(words))
	}
	for i, ts := range got {
		if ts.Text != words[i].Text {
			t.Errorf("entry %d = %q, want %q", i, ts.Text, words[i].Text)
		}
		if ts.End < ts.Start {
			t.Errorf("entry %d: End %v < Start %v", i, ts.End, ts.Start)
		}
	}
}

func TestAlign_EmptyInputs(t *testing.T) {
	t.Parallel()
	a := wordalign.New()

	if got := a.Align("", []asr.RecognizedWord{rec("word", 0, 1)}); got != nil {
		t.Errorf("empty text: got %v, want nil", got)
	}

	// No recognised words at all: every timestamp is estimated, still one per
	// canonical word.
	got := a.Align("one two three", nil)
	if len(got) != 3 {
		t.Fatalf("got %d timestamps, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start < got[i-1].Start {
			t.Errorf("estimated timestamps not monotone at %d: %v < %v", i, got[i].Start, got[i-1].Start)
		}
	}
}

func TestAlign_GapInterpolation(t *testing.T) {
	t.Parallel()
	a := wordalign.New()

	// "mumbled" has no acceptable match; with neighbours at 0.5 and 1.5 it
	// takes the first half of the gap.
	got := a.Align("she mumbled something", []asr.RecognizedWord{
		rec("she", 0.0, 0.5),
		rec("xxxxxxxxxx", 0.5, 1.5),
		rec("something", 1.5, 2.0),
	})
	if len(got) != 3 {
		t.Fatalf("got %d timestamps, want 3", len(got))
	}
	m := got[1]
	if m.Start != 0.5 {
		t.Errorf("mumbled Start = %v, want 0.5", m.Start)
	}
	if m.End < m.Start || m.End > 1.5 {
		t.Errorf("mumbled End = %v, want within [0.5, 1.5]", m.End)
	}
}

func TestAlign_CaseAndPunctuationInsensitive(t *testing.T) {
	t.Parallel()
	a := wordalign.New()
	got := a.Align(`"Hello," she said.`, []asr.RecognizedWord{
		rec("hello", 0.0, 0.4),
		rec("she", 0.5, 0.7),
		rec("said", 0.7, 1.0),
	})
	if got[0].Start != 0.0 || got[0].End != 0.4 {
		t.Errorf(`"Hello," = [%v, %v], want [0, 0.4]`, got[0].Start, got[0].End)
	}
	if got[2].Start != 0.7 {
		t.Errorf("said. Start = %v, want 0.7", got[2].Start)
	}
}

func TestFindWordAtTime(t *testing.T) {
	t.Parallel()
	ts := []wordalign.WordTimestamp{
		{Word: wordalign.Word{Text: "a"}, Start: 0.0, End: 0.5},
		{Word: wordalign.Word{Text: "b"}, Start: 0.5, End: 1.0},
		{Word: wordalign.Word{Text: "c"}, Start: 2.0, End: 2.5},
	}

	cases := []struct {
		t    float64
		want int
	}{
		{0.0, 0},
		{0.25, 0},
		{0.5, 1},  // boundary belongs to the later word's range
		{0.99, 1},
		{1.1, 1},  // gap, closer to b's end
		{1.9, 2},  // gap, closer to c's start
		{1.5, 1},  // equidistant: earlier word wins
		{3.0, 2},  // past the end
		{-1.0, 0}, // before the start
	}
	for _, c := range cases {
		if got := wordalign.FindWordAtTime(ts, c.t); got != c.want {
			t.Errorf("FindWordAtTime(%v) = %d, want %d", c.t, got, c.want)
		}
	}

	if got := wordalign.FindWordAtTime(nil, 1.0); got != -1 {
		t.Errorf("empty slice: got %d, want -1", got)
	}
}
