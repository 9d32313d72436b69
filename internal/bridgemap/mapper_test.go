package bridgemap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/readbridge/readbridge/internal/bridgemap"
	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/internal/wordalign"
	glossarymock "github.com/readbridge/readbridge/pkg/glossary/mock"
	embedmock "github.com/readbridge/readbridge/pkg/provider/embeddings/mock"
)

// timestampsFor fabricates a uniform timestamp sequence for the words of
// text, 0.3 s per word.
func timestampsFor(text string) []wordalign.WordTimestamp {
	words := wordalign.Tokenize(text)
	ts := make([]wordalign.WordTimestamp, len(words))
	for i, w := range words {
		ts[i] = wordalign.WordTimestamp{Word: w, Start: float64(i) * 0.3, End: float64(i)*0.3 + 0.3}
	}
	return ts
}

func TestComputeMap_EmptyInputs(t *testing.T) {
	t.Parallel()
	a := bridgemap.New()

	if m := a.ComputeMap(context.Background(), nil, "Some bridge text.", lang.German); len(m) != 0 {
		t.Errorf("empty timestamps: got %v, want empty map", m)
	}
	ts := timestampsFor("Der Hund bellt.")
	if m := a.ComputeMap(context.Background(), ts, "", lang.German); len(m) != 0 {
		t.Errorf("empty bridge: got %v, want empty map", m)
	}
}

func TestComputeMap_ProperNounsAndGlossary(t *testing.T) {
	t.Parallel()

	gl := glossarymock.New(map[lang.Language]map[string]string{
		lang.German: {
			"wohnt":    "lives",
			"arbeitet": "works",
		},
	})
	a := bridgemap.New(bridgemap.WithGlossary(gl))

	translated := "Herr Schmidt wohnt in Berlin. Die Stadt ist sehr alt. Frau Müller arbeitet bei der NASA."
	bridge := "Mr. Schmidt lives in Berlin. The city is very old. Mrs. Müller works at NASA."

	m, report := a.ComputeMapReport(context.Background(), timestampsFor(translated), bridge, lang.German)

	want := bridgemap.SentenceMap{0, 1, 2}
	if len(m) != len(want) {
		t.Fatalf("got %d entries %v, want %d", len(m), m, len(want))
	}
	for i := range want {
		if m[i] != want[i] {
			t.Errorf("m[%d] = %d, want %d", i, m[i], want[i])
		}
	}

	// The first and third sentences carry strong signal; the middle sentence
	// is placed by interpolation between them.
	if report.ValidatedAnchors < 2 {
		t.Errorf("ValidatedAnchors = %d, want at least 2", report.ValidatedAnchors)
	}
	if report.Unresolved != 0 {
		t.Errorf("Unresolved = %d, want 0", report.Unresolved)
	}
	if gl.Lookups == 0 {
		t.Error("glossary was never consulted")
	}
}

func TestComputeMap_GlossaryFailureDegrades(t *testing.T) {
	t.Parallel()

	gl := &glossarymock.Glossary{Err: errors.New("connection refused")}
	a := bridgemap.New(bridgemap.WithGlossary(gl))

	translated := "Herr Schmidt wohnt in Berlin. Die Stadt ist sehr alt. Frau Müller arbeitet bei der NASA."
	bridge := "Mr. Schmidt lives in Berlin. The city is very old. Mrs. Müller works at NASA."

	// Proper nouns and the acronym alone still anchor the map; the failing
	// oracle must not surface as an error or an empty result.
	m, report := a.ComputeMapReport(context.Background(), timestampsFor(translated), bridge, lang.German)
	want := bridgemap.SentenceMap{0, 1, 2}
	for i := range want {
		if m[i] != want[i] {
			t.Errorf("m[%d] = %d, want %d", i, m[i], want[i])
		}
	}

	// The failed lookups must still be accounted for on the report.
	if report.GlossaryLookups == 0 {
		t.Error("GlossaryLookups = 0, want > 0")
	}
	if report.GlossaryErrors != report.GlossaryLookups {
		t.Errorf("GlossaryErrors = %d, want %d (every lookup failed)",
			report.GlossaryErrors, report.GlossaryLookups)
	}
}

func TestComputeMap_NoSignalStaysUnresolved(t *testing.T) {
	t.Parallel()
	a := bridgemap.New()

	translated := "Der Mann geht nach Hause. Es regnet stark."
	bridge := "Quantum computing changes everything. Nobody knows why."

	m, report := a.ComputeMapReport(context.Background(), timestampsFor(translated), bridge, lang.German)
	if len(m) != 2 {
		t.Fatalf("got %d entries, want 2", len(m))
	}
	for i, v := range m {
		if v != bridgemap.Unresolved {
			t.Errorf("m[%d] = %d, want Unresolved", i, v)
		}
	}
	if report.Unresolved != 2 {
		t.Errorf("report.Unresolved = %d, want 2", report.Unresolved)
	}
}

func TestComputeMap_EmbedderResolvesLeftovers(t *testing.T) {
	t.Parallel()

	translated := "Der Mann geht nach Hause. Es regnet stark."
	bridge := "Quantum computing changes everything. Nobody knows why."

	emb := &embedmock.Provider{
		Vectors: map[string][]float32{
			"Der Mann geht nach Hause.":             {1, 0},
			"Quantum computing changes everything.": {0.9, 0},
			"Es regnet stark.":                      {0, 1},
			"Nobody knows why.":                     {0, 0.9},
		},
	}
	a := bridgemap.New(bridgemap.WithEmbedder(emb))

	m, report := a.ComputeMapReport(context.Background(), timestampsFor(translated), bridge, lang.German)
	want := bridgemap.SentenceMap{0, 1}
	for i := range want {
		if m[i] != want[i] {
			t.Errorf("m[%d] = %d, want %d", i, m[i], want[i])
		}
	}
	if report.EmbedResolved != 2 {
		t.Errorf("EmbedResolved = %d, want 2", report.EmbedResolved)
	}
	if len(emb.BatchCalls) != 2 {
		t.Errorf("EmbedBatch called %d times, want 2 (one batch per unresolved sentence)", len(emb.BatchCalls))
	}
	if report.EmbedRequests != 2 || report.EmbedErrors != 0 {
		t.Errorf("EmbedRequests = %d, EmbedErrors = %d, want 2 and 0",
			report.EmbedRequests, report.EmbedErrors)
	}
}

func TestComputeMap_EmbedderFailureLeavesUnresolved(t *testing.T) {
	t.Parallel()

	emb := &embedmock.Provider{Err: errors.New("model not loaded")}
	a := bridgemap.New(bridgemap.WithEmbedder(emb))

	m, report := a.ComputeMapReport(context.Background(),
		timestampsFor("Es regnet stark."),
		"Nobody knows why.",
		lang.German)
	if len(m) != 1 || m[0] != bridgemap.Unresolved {
		t.Errorf("got %v, want [Unresolved]", m)
	}
	if report.EmbedRequests != 1 || report.EmbedErrors != 1 {
		t.Errorf("EmbedRequests = %d, EmbedErrors = %d, want 1 and 1",
			report.EmbedRequests, report.EmbedErrors)
	}
}

func TestComputeMap_GlobalAnchorsLongArticle(t *testing.T) {
	t.Parallel()
	a := bridgemap.New()

	translated := "Heute besucht Anna Berger Hamburg. " +
		"Danach reist Bruno Keller weiter. " +
		"Dann trifft Clara Winter Doris. " +
		"Später besucht Emil Fischer Frankfurt. " +
		"Abends singt Greta Hoffmann laut. " +
		"Schließlich schläft Hugo Jäger zuhause."
	bridge := "Today Anna Berger visits Hamburg. " +
		"Afterwards Bruno Keller travels on. " +
		"Then Clara Winter meets Doris. " +
		"Later Emil Fischer visits Frankfurt. " +
		"In the evening Greta Hoffmann sings loudly. " +
		"Finally Hugo Jäger sleeps at home."

	m, report := a.ComputeMapReport(context.Background(), timestampsFor(translated), bridge, lang.German)

	if len(m) != 6 {
		t.Fatalf("got %d entries %v, want 6", len(m), m)
	}
	for i := range m {
		if m[i] != int32(i) {
			t.Errorf("m[%d] = %d, want %d", i, m[i], i)
		}
	}
	if report.GlobalAnchors == 0 {
		t.Error("expected global anchors for a long parallel article")
	}
	if report.ValidatedAnchors != 6 {
		t.Errorf("ValidatedAnchors = %d, want 6", report.ValidatedAnchors)
	}
}

func TestComputeMap_NeverJumpsBackward(t *testing.T) {
	t.Parallel()

	gl := glossarymock.New(map[lang.Language]map[string]string{
		lang.German: {"wohnt": "lives", "arbeitet": "works"},
	})
	a := bridgemap.New(bridgemap.WithGlossary(gl))

	translated := "Herr Schmidt wohnt in Berlin. Die Stadt ist sehr alt. Frau Müller arbeitet bei der NASA."
	bridge := "Mr. Schmidt lives in Berlin. The city is very old. Mrs. Müller works at NASA."

	m := a.ComputeMap(context.Background(), timestampsFor(translated), bridge, lang.German)

	prev := int32(bridgemap.Unresolved)
	for i, v := range m {
		if v == bridgemap.Unresolved {
			continue
		}
		if prev != bridgemap.Unresolved && v < prev-1 {
			t.Errorf("m[%d] = %d jumps backward past %d", i, v, prev)
		}
		prev = v
	}
}
