// Package config provides the configuration schema and loader for the
// readbridge alignment job.
package config

import (
	"github.com/readbridge/readbridge/internal/bridgemap"
)

// LogLevel controls log verbosity for the alignment job.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure, typically loaded from a YAML
// file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Providers ProvidersConfig  `yaml:"providers"`
	Glossary  GlossaryConfig   `yaml:"glossary"`
	Storage   StorageConfig    `yaml:"storage"`
	ASR       ASRConfig        `yaml:"asr"`
	Align     AlignConfig      `yaml:"align"`
	Languages []LanguageConfig `yaml:"languages"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr, when non-empty, is the address the Prometheus /metrics
	// endpoint listens on (e.g., ":9090"). Empty disables the listener.
	MetricsAddr string `yaml:"metrics_addr"`
}

// ProvidersConfig declares the optional oracle backends.
type ProvidersConfig struct {
	// Embeddings enables the semantic-fallback oracle. An empty Name leaves
	// the feature off; unresolved sentences then stay unresolved.
	Embeddings ProviderEntry `yaml:"embeddings"`
}

// ProviderEntry is the common configuration block for a provider backend.
type ProviderEntry struct {
	// Name selects the implementation ("openai" or "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API, if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model (e.g., "text-embedding-3-small",
	// "nomic-embed-text").
	Model string `yaml:"model"`
}

// GlossaryConfig configures the bilingual dictionary oracle. An empty DSN
// disables dictionary translation; matching degrades to cognates, proper
// nouns, acronyms, and digits.
type GlossaryConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

// StorageConfig configures the artifact store.
type StorageConfig struct {
	// PostgresDSN is the connection string for the alignment artifact store.
	PostgresDSN string `yaml:"postgres_dsn"`

	// EmbeddingDimensions is the vector dimension of the embedding cache
	// column. Must match the configured embeddings model.
	EmbeddingDimensions int `yaml:"embedding_dimensions"`
}

// ASRConfig configures the whisper-server the job fetches recogniser output
// from when the audio pipeline hands over raw audio instead of word JSON.
type ASRConfig struct {
	ServerURL string `yaml:"server_url"`
	Language  string `yaml:"language"`
}

// AlignConfig exposes the alignment tuning constants. All thresholds are
// empirically tuned defaults, not fixed law; zero values keep the built-in
// default.
type AlignConfig struct {
	// Word-to-audio alignment.
	Window        int     `yaml:"window"`
	MinMatchScore float64 `yaml:"min_match_score"`
	WordSeconds   float64 `yaml:"word_seconds"`

	// Bridge mapping scores and gates.
	AcronymWeight            float64 `yaml:"acronym_weight"`
	ProperNounWeight         float64 `yaml:"proper_noun_weight"`
	DictWeight               float64 `yaml:"dict_weight"`
	CognateWeight            float64 `yaml:"cognate_weight"`
	GlobalAnchorMinScore     float64 `yaml:"global_anchor_min_score"`
	GlobalAnchorUniqueness   float64 `yaml:"global_anchor_uniqueness"`
	AnchorMinScore           float64 `yaml:"anchor_min_score"`
	ProperNounAnchorMinScore float64 `yaml:"proper_noun_anchor_min_score"`
	OverrideMinScore         float64 `yaml:"override_min_score"`
	MinSignalWeight          float64 `yaml:"min_signal_weight"`
	MinSentencesForGlobal    int     `yaml:"min_sentences_for_global"`
	SubsampleAbove           int     `yaml:"subsample_above"`
	EmbedMinSimilarity       float64 `yaml:"embed_min_similarity"`
	EmbedMargin              float64 `yaml:"embed_margin"`
	EmbedWindow              int     `yaml:"embed_window"`
}

// Tuning converts the configured overrides into a [bridgemap.Tuning]; zero
// fields keep the bridgemap defaults.
func (a AlignConfig) Tuning() bridgemap.Tuning {
	return bridgemap.Tuning{
		AcronymWeight:            a.AcronymWeight,
		ProperNounWeight:         a.ProperNounWeight,
		DictWeight:               a.DictWeight,
		CognateWeight:            a.CognateWeight,
		GlobalAnchorMinScore:     a.GlobalAnchorMinScore,
		GlobalAnchorUniqueness:   a.GlobalAnchorUniqueness,
		AnchorMinScore:           a.AnchorMinScore,
		ProperNounAnchorMinScore: a.ProperNounAnchorMinScore,
		OverrideMinScore:         a.OverrideMinScore,
		MinSignalWeight:          a.MinSignalWeight,
		MinSentencesForGlobal:    a.MinSentencesForGlobal,
		SubsampleAbove:           a.SubsampleAbove,
		EmbedMinSimilarity:       a.EmbedMinSimilarity,
		EmbedMargin:              a.EmbedMargin,
		EmbedWindow:              a.EmbedWindow,
	}
}

// LanguageConfig extends or overrides a language profile. Word lists are
// merged into the built-in profile for the code, so deployments can add
// domain-specific fillers without restating the defaults.
type LanguageConfig struct {
	// Code is the ISO 639-1 language code (e.g., "it").
	Code string `yaml:"code"`

	// Fillers are additional filler words, lowercased.
	Fillers []string `yaml:"fillers"`

	// Abbreviations are additional abbreviation tokens, lowercased, without
	// trailing periods.
	Abbreviations []string `yaml:"abbreviations"`
}
