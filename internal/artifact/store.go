// Package artifact persists the alignment outputs: the per-word timestamp
// list and the sentence map, stored alongside the article's audio metadata.
//
// Both artifacts are written wholesale in a single transaction after a
// completed computation; a cancelled job never leaves partial rows behind.
// A pgvector-backed sentence-embedding cache lets the semantic fallback skip
// re-embedding sentences it has seen before.
package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/readbridge/readbridge/internal/bridgemap"
	"github.com/readbridge/readbridge/internal/wordalign"
)

// Store is the PostgreSQL-backed artifact store. All methods are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn, registers pgvector types on
// every connection, and ensures the schema exists. embeddingDimensions must
// match the configured embedding model; changing it after the first
// migration requires a manual schema change.
func NewStore(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("artifact store: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("artifact store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("artifact store: ping: %w", err)
	}
	if err := migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("artifact store: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies database connectivity, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func migrate(ctx context.Context, pool *pgxpool.Pool, dims int) error {
	if dims <= 0 {
		dims = 1536
	}
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS alignments (
		    article_id   TEXT NOT NULL,
		    track_id     TEXT NOT NULL,
		    timestamps   JSONB NOT NULL,
		    sentence_map JSONB NOT NULL,
		    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		    PRIMARY KEY (article_id, track_id)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS sentence_embeddings (
		    text_hash TEXT NOT NULL,
		    model     TEXT NOT NULL,
		    embedding vector(%d) NOT NULL,
		    PRIMARY KEY (text_hash, model)
		)`, dims),
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Alignment is the persisted pair of artifacts for one audio track.
type Alignment struct {
	ArticleID  string
	TrackID    string
	Timestamps []wordalign.WordTimestamp
	Map        bridgemap.SentenceMap
}

// SaveAlignment stores (or wholesale replaces) the alignment for one track.
// The sentence map is immutable once written; recomputation goes through this
// same full replace.
func (s *Store) SaveAlignment(ctx context.Context, al Alignment) error {
	tsJSON, err := json.Marshal(al.Timestamps)
	if err != nil {
		return fmt.Errorf("artifact store: marshal timestamps: %w", err)
	}
	mapJSON, err := json.Marshal(al.Map)
	if err != nil {
		return fmt.Errorf("artifact store: marshal sentence map: %w", err)
	}

	const q = `
		INSERT INTO alignments (article_id, track_id, timestamps, sentence_map)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (article_id, track_id) DO UPDATE SET
		    timestamps   = EXCLUDED.timestamps,
		    sentence_map = EXCLUDED.sentence_map,
		    created_at   = now()`
	if _, err := s.pool.Exec(ctx, q, al.ArticleID, al.TrackID, tsJSON, mapJSON); err != nil {
		return fmt.Errorf("artifact store: save alignment: %w", err)
	}
	return nil
}

// LoadAlignment returns the stored alignment, or (nil, nil) when none exists.
func (s *Store) LoadAlignment(ctx context.Context, articleID, trackID string) (*Alignment, error) {
	const q = `SELECT timestamps, sentence_map FROM alignments WHERE article_id = $1 AND track_id = $2`

	var tsJSON, mapJSON []byte
	err := s.pool.QueryRow(ctx, q, articleID, trackID).Scan(&tsJSON, &mapJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("artifact store: load alignment: %w", err)
	}

	al := &Alignment{ArticleID: articleID, TrackID: trackID}
	if err := json.Unmarshal(tsJSON, &al.Timestamps); err != nil {
		return nil, fmt.Errorf("artifact store: unmarshal timestamps: %w", err)
	}
	if err := json.Unmarshal(mapJSON, &al.Map); err != nil {
		return nil, fmt.Errorf("artifact store: unmarshal sentence map: %w", err)
	}
	return al, nil
}

// CachedEmbedding returns the cached vector for text under model, or nil.
func (s *Store) CachedEmbedding(ctx context.Context, model, text string) ([]float32, error) {
	const q = `SELECT embedding FROM sentence_embeddings WHERE text_hash = $1 AND model = $2`

	var vec pgvector.Vector
	err := s.pool.QueryRow(ctx, q, textHash(text), model).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("artifact store: cached embedding: %w", err)
	}
	return vec.Slice(), nil
}

// PutEmbedding caches the vector for text under model.
func (s *Store) PutEmbedding(ctx context.Context, model, text string, embedding []float32) error {
	const q = `
		INSERT INTO sentence_embeddings (text_hash, model, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (text_hash, model) DO UPDATE SET embedding = EXCLUDED.embedding`
	if _, err := s.pool.Exec(ctx, q, textHash(text), model, pgvector.NewVector(embedding)); err != nil {
		return fmt.Errorf("artifact store: put embedding: %w", err)
	}
	return nil
}

// textHash keys cached embeddings by content rather than raw text.
func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
