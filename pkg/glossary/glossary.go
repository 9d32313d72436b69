// Package glossary defines the word→gloss lookup oracle consumed by the
// bridge aligner.
//
// The aligner treats the glossary strictly as read-only signal: a missing
// entry, a nil glossary, or a lookup error all degrade to cognate-only
// matching and never fail the alignment. The dictionary's storage format is
// an implementation detail of each backend.
package glossary

import (
	"context"
	"strings"

	"github.com/readbridge/readbridge/internal/lang"
)

// Entry is one dictionary entry: the looked-up word and its English gloss.
// The gloss may list several senses separated by commas or semicolons.
type Entry struct {
	Word  string
	Gloss string
}

// Glossary looks up the English gloss for a single source-language word.
// Implementations must be safe for concurrent use.
type Glossary interface {
	// Lookup returns the entry for word in the given language, or (nil, nil)
	// when the dictionary has no entry. Errors indicate backend failure, not
	// absence.
	Lookup(ctx context.Context, word string, language lang.Language) (*Entry, error)
}

// FirstGloss extracts the first usable English word from a gloss: the gloss
// is cut at the first comma or semicolon and the first whitespace token of
// that piece is returned, lowercased. Returns "" for empty glosses.
func FirstGloss(gloss string) string {
	if i := strings.IndexAny(gloss, ",;"); i >= 0 {
		gloss = gloss[:i]
	}
	fields := strings.Fields(gloss)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(fields[0], `"'().`))
}
