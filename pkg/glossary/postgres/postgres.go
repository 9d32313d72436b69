// Package postgres implements glossary.Glossary on top of a PostgreSQL
// dictionary table.
//
// The expected schema is one row per headword:
//
//	CREATE TABLE IF NOT EXISTS glossary (
//	    word     TEXT NOT NULL,
//	    language TEXT NOT NULL,
//	    gloss    TEXT NOT NULL,
//	    PRIMARY KEY (word, language)
//	);
//
// Inflected forms are often stored as references ("inflection of Haus") rather
// than duplicated glosses; Lookup chases such references with a bounded depth
// and a visited set so that cyclic dictionary data cannot loop.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/pkg/glossary"
)

// maxInflectionDepth bounds the "inflection of X" reference chase.
const maxInflectionDepth = 4

// Compile-time interface check.
var _ glossary.Glossary = (*Glossary)(nil)

// Glossary is a PostgreSQL-backed [glossary.Glossary]. All methods are safe
// for concurrent use.
type Glossary struct {
	pool *pgxpool.Pool
}

// New connects to the dictionary database at dsn, verifies the connection,
// and ensures the glossary table exists.
func New(ctx context.Context, dsn string) (*Glossary, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("glossary postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("glossary postgres: ping: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS glossary (
		    word     TEXT NOT NULL,
		    language TEXT NOT NULL,
		    gloss    TEXT NOT NULL,
		    PRIMARY KEY (word, language)
		)`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("glossary postgres: migrate: %w", err)
	}
	return &Glossary{pool: pool}, nil
}

// Close releases the connection pool.
func (g *Glossary) Close() {
	g.pool.Close()
}

// Ping verifies database connectivity, for readiness checks.
func (g *Glossary) Ping(ctx context.Context) error {
	return g.pool.Ping(ctx)
}

// Lookup implements [glossary.Glossary]. Words are matched lowercased.
// Reference glosses ("inflection of X", "form of X") are resolved with an
// explicit depth-limited loop and a visited set.
func (g *Glossary) Lookup(ctx context.Context, word string, language lang.Language) (*glossary.Entry, error) {
	const q = `SELECT gloss FROM glossary WHERE word = $1 AND language = $2`

	current := strings.ToLower(word)
	visited := map[string]struct{}{current: {}}

	for depth := 0; depth <= maxInflectionDepth; depth++ {
		var gloss string
		err := g.pool.QueryRow(ctx, q, current, string(language)).Scan(&gloss)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("glossary postgres: lookup %q: %w", current, err)
		}

		ref, ok := inflectionTarget(gloss)
		if !ok {
			return &glossary.Entry{Word: word, Gloss: gloss}, nil
		}
		if _, seen := visited[ref]; seen {
			// Cyclic reference; return the raw gloss rather than nothing.
			return &glossary.Entry{Word: word, Gloss: gloss}, nil
		}
		visited[ref] = struct{}{}
		current = ref
	}
	return nil, nil
}

// inflectionTarget returns the referenced headword when gloss is a
// cross-reference of the form "inflection of X" or "<anything> form of X".
func inflectionTarget(gloss string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(gloss))

	var rest string
	switch {
	case strings.HasPrefix(lower, "inflection of "):
		rest = lower[len("inflection of "):]
	default:
		i := strings.Index(lower, " form of ")
		if i < 0 {
			return "", false
		}
		rest = lower[i+len(" form of "):]
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}
	return strings.Trim(fields[0], `"':;,.`), true
}
