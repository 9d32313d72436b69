// Package mock provides a map-backed test double for the glossary.Glossary
// interface. It also serves as the in-process fallback when no dictionary
// database is configured.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/pkg/glossary"
)

// Glossary is a mock implementation of [glossary.Glossary]. Entries are keyed
// by language and lowercased word. The zero value is an empty glossary.
type Glossary struct {
	mu      sync.RWMutex
	entries map[lang.Language]map[string]string

	// Err, when non-nil, is returned by every Lookup. Used to exercise
	// oracle-unavailable degradation paths.
	Err error

	// Lookups counts Lookup invocations.
	Lookups int
}

// New returns a Glossary pre-populated with entries: language → word → gloss.
// Words are matched case-insensitively.
func New(entries map[lang.Language]map[string]string) *Glossary {
	g := &Glossary{entries: make(map[lang.Language]map[string]string, len(entries))}
	for l, words := range entries {
		m := make(map[string]string, len(words))
		for w, gloss := range words {
			m[strings.ToLower(w)] = gloss
		}
		g.entries[l] = m
	}
	return g
}

// Add inserts or replaces a single entry.
func (g *Glossary) Add(language lang.Language, word, gloss string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.entries == nil {
		g.entries = make(map[lang.Language]map[string]string)
	}
	if g.entries[language] == nil {
		g.entries[language] = make(map[string]string)
	}
	g.entries[language][strings.ToLower(word)] = gloss
}

// Lookup implements [glossary.Glossary].
func (g *Glossary) Lookup(_ context.Context, word string, language lang.Language) (*glossary.Entry, error) {
	g.mu.Lock()
	g.Lookups++
	err := g.Err
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	gloss, ok := g.entries[language][strings.ToLower(word)]
	if !ok {
		return nil, nil
	}
	return &glossary.Entry{Word: word, Gloss: gloss}, nil
}
