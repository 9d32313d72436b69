package textseg_test

import (
	"testing"

	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/internal/textseg"
)

func sentenceTexts(ss []textseg.Sentence) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.Text
	}
	return out
}

func TestSplit_Empty(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)
	if got := seg.Split(""); len(got) != 0 {
		t.Errorf("Split(\"\") = %v, want empty", got)
	}
	if got := seg.Split("   \n\t  "); len(got) != 0 {
		t.Errorf("Split(whitespace) = %v, want empty", got)
	}
}

func TestSplit_SimpleSentences(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)
	got := seg.Split("It rained. The match was cancelled! Why now?")
	want := []string{"It rained.", "The match was cancelled!", "Why now?"}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences %v, want %d", len(got), sentenceTexts(got), len(want))
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i].Text, want[i])
		}
	}
}

func TestSplit_AbbreviationDoesNotEnd(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)

	// An abbreviation period never ends a sentence, even before an uppercase
	// word: "Main St. He" stays one sentence, matching IsSentenceEndWord.
	got := seg.Split("Dr. Smith lives on Main St. He has a dog.")
	if len(got) != 1 {
		t.Fatalf("got %d sentences %v, want 1", len(got), sentenceTexts(got))
	}

	got = seg.Split("Dr. Smith has a dog. It barks.")
	want := []string{"Dr. Smith has a dog.", "It barks."}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", sentenceTexts(got), want)
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i].Text, want[i])
		}
	}
}

func TestSplit_GermanOrdinalAndAbbreviation(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.German)
	got := seg.Split("Am 3. Oktober feiern wir. Danach gehen wir z. B. ins Kino.")
	if len(got) != 2 {
		t.Fatalf("got %d sentences %v, want 2", len(got), sentenceTexts(got))
	}
	if got[0].Text != "Am 3. Oktober feiern wir." {
		t.Errorf("sentence 0 = %q", got[0].Text)
	}
}

func TestSplit_EllipsisContinuation(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)

	// Lowercase after the ellipsis: the sentence continues.
	got := seg.Split("He paused... and then kept walking.")
	if len(got) != 1 {
		t.Fatalf("continuation: got %d sentences %v, want 1", len(got), sentenceTexts(got))
	}

	// Uppercase after the ellipsis: boundary.
	got = seg.Split("He paused... Then he ran.")
	if len(got) != 2 {
		t.Fatalf("boundary: got %d sentences %v, want 2", len(got), sentenceTexts(got))
	}

	// Unicode ellipsis behaves like three dots.
	got = seg.Split("He paused… Then he ran.")
	if len(got) != 2 {
		t.Fatalf("unicode ellipsis: got %d sentences %v, want 2", len(got), sentenceTexts(got))
	}
}

func TestSplit_DecimalNumber(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)
	// "3." is digits before the period, treated as an ordinal/decimal marker.
	got := seg.Split("The value rose by 3. percent last year.")
	if len(got) != 1 {
		t.Fatalf("got %d sentences %v, want 1", len(got), sentenceTexts(got))
	}
}

func TestSplit_ClosingQuoteAbsorbed(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)
	got := seg.Split(`"Stop!" she said. Nobody moved.`)
	if len(got) != 3 {
		t.Fatalf("got %d sentences %v, want 3", len(got), sentenceTexts(got))
	}
	if got[0].Text != `"Stop!"` {
		t.Errorf("sentence 0 = %q, want %q", got[0].Text, `"Stop!"`)
	}
}

func TestSplit_TypographicQuotes(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.German)
	got := seg.Split("„Halt!“ rief sie. Niemand bewegte sich.")
	if len(got) != 3 {
		t.Fatalf("got %d sentences %v, want 3", len(got), sentenceTexts(got))
	}
}

func TestSplit_OffsetsMatchOriginal(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)
	text := "  First one.   Second one!  "
	got := seg.Split(text)
	if len(got) != 2 {
		t.Fatalf("got %d sentences %v, want 2", len(got), sentenceTexts(got))
	}
	for i, s := range got {
		if text[s.Start:s.End] != s.Text {
			t.Errorf("sentence %d: text[%d:%d] = %q, want %q", i, s.Start, s.End, text[s.Start:s.End], s.Text)
		}
	}
}

func TestSplit_OffsetsWithMultibyteRunes(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.German)
	text := "Müller aß Brötchen. Das war schön."
	got := seg.Split(text)
	if len(got) != 2 {
		t.Fatalf("got %d sentences %v, want 2", len(got), sentenceTexts(got))
	}
	for i, s := range got {
		if text[s.Start:s.End] != s.Text {
			t.Errorf("sentence %d: byte range mismatch: %q vs %q", i, text[s.Start:s.End], s.Text)
		}
	}
}

func TestSplit_NoTrailingPunctuation(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)
	got := seg.Split("First sentence. And a trailing fragment")
	if len(got) != 2 {
		t.Fatalf("got %d sentences %v, want 2", len(got), sentenceTexts(got))
	}
	if got[1].Text != "And a trailing fragment" {
		t.Errorf("fragment = %q", got[1].Text)
	}
}

func TestSplit_AcronymPeriod(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)
	// A short all-caps token before the period reads as an acronym, and the
	// lowercase continuation confirms it.
	got := seg.Split("She joined NASA. later that year she left.")
	if len(got) != 1 {
		t.Fatalf("got %d sentences %v, want 1", len(got), sentenceTexts(got))
	}
}

func TestIsSentenceEndWord(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)

	cases := []struct {
		word, next string
		want       bool
	}{
		{"walking.", "The", true},
		{"walking.", "", true},
		{"Dr.", "Smith", false},
		{"St.", "He", false},
		{"cancelled!", "Why", true},
		{"now?", "", true},
		{"paused...", "and", false},
		{"paused...", "Then", true},
		{"paused…", "Then", true},
		{"rose", "by", false},
		{"3.", "percent", false},
		{"said.\"", "Nobody", true},
		{"word.", "then", false},
		{"", "Next", false},
	}
	for _, c := range cases {
		if got := seg.IsSentenceEndWord(c.word, c.next); got != c.want {
			t.Errorf("IsSentenceEndWord(%q, %q) = %v, want %v", c.word, c.next, got, c.want)
		}
	}
}

func TestIsSentenceEndWord_AgreesWithSplit(t *testing.T) {
	t.Parallel()
	seg := textseg.New(lang.English)
	text := "It rained. The match was over! Dr. Smith went home."

	words := []string{"It", "rained.", "The", "match", "was", "over!", "Dr.", "Smith", "went", "home."}
	var boundaries int
	for i, w := range words {
		next := ""
		if i+1 < len(words) {
			next = words[i+1]
		}
		if seg.IsSentenceEndWord(w, next) {
			boundaries++
		}
	}
	if got := len(seg.Split(text)); got != boundaries {
		t.Errorf("Split found %d sentences, IsSentenceEndWord found %d boundaries", got, boundaries)
	}
}
