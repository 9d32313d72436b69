package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"embeddings": {"openai", "ollama"},
}

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)

	// Embeddings ↔ storage dimensions
	if cfg.Providers.Embeddings.Name != "" && cfg.Storage.EmbeddingDimensions <= 0 {
		slog.Warn("providers.embeddings is configured but storage.embedding_dimensions is not set; semantic fallback results will not be cached")
	}

	// Oracle availability warnings
	if cfg.Glossary.PostgresDSN == "" {
		slog.Warn("glossary.postgres_dsn is empty; dictionary translation is disabled and matching relies on cognates, proper nouns, acronyms and digits")
	}
	if cfg.Providers.Embeddings.Name == "" {
		slog.Warn("no embeddings provider configured; sentences the lexical pass cannot place will stay unresolved")
	}

	// Align tuning ranges. Zero means default, so only reject negatives and
	// nonsensical ratios.
	if cfg.Align.Window < 0 {
		errs = append(errs, fmt.Errorf("align.window %d must not be negative", cfg.Align.Window))
	}
	if cfg.Align.MinMatchScore < 0 || cfg.Align.MinMatchScore > 1 {
		errs = append(errs, fmt.Errorf("align.min_match_score %.2f is out of range [0, 1]", cfg.Align.MinMatchScore))
	}
	if cfg.Align.WordSeconds < 0 {
		errs = append(errs, fmt.Errorf("align.word_seconds %.2f must not be negative", cfg.Align.WordSeconds))
	}
	if cfg.Align.EmbedMargin != 0 && cfg.Align.EmbedMargin < 1 {
		errs = append(errs, fmt.Errorf("align.embed_margin %.2f must be at least 1", cfg.Align.EmbedMargin))
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"align.acronym_weight", cfg.Align.AcronymWeight},
		{"align.proper_noun_weight", cfg.Align.ProperNounWeight},
		{"align.dict_weight", cfg.Align.DictWeight},
		{"align.cognate_weight", cfg.Align.CognateWeight},
		{"align.global_anchor_min_score", cfg.Align.GlobalAnchorMinScore},
		{"align.global_anchor_uniqueness", cfg.Align.GlobalAnchorUniqueness},
		{"align.anchor_min_score", cfg.Align.AnchorMinScore},
		{"align.proper_noun_anchor_min_score", cfg.Align.ProperNounAnchorMinScore},
		{"align.override_min_score", cfg.Align.OverrideMinScore},
		{"align.min_signal_weight", cfg.Align.MinSignalWeight},
		{"align.embed_min_similarity", cfg.Align.EmbedMinSimilarity},
	} {
		if f.val < 0 {
			errs = append(errs, fmt.Errorf("%s %.2f must not be negative", f.name, f.val))
		}
	}

	// Languages
	codesSeen := make(map[string]int, len(cfg.Languages))
	for i, l := range cfg.Languages {
		prefix := fmt.Sprintf("languages[%d]", i)
		if l.Code == "" {
			errs = append(errs, fmt.Errorf("%s.code is required", prefix))
			continue
		}
		if prev, ok := codesSeen[l.Code]; ok {
			errs = append(errs, fmt.Errorf("%s.code %q is a duplicate of languages[%d]", prefix, l.Code, prev))
		}
		codesSeen[l.Code] = i
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning for provider names that are set but not
// among the known implementations. Unknown names are not errors so new
// providers can roll out without a lockstep config schema change.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	if valid, ok := ValidProviderNames[kind]; ok && !slices.Contains(valid, name) {
		slog.Warn("unknown provider name", "kind", kind, "name", name, "known", valid)
	}
}
