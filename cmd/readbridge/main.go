// Command readbridge runs the alignment pipeline for one article track: it
// aligns the narrated translation to its recognised word timings and maps
// every translated sentence onto the English bridge text.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/readbridge/readbridge/internal/artifact"
	"github.com/readbridge/readbridge/internal/config"
	"github.com/readbridge/readbridge/internal/health"
	"github.com/readbridge/readbridge/internal/job"
	"github.com/readbridge/readbridge/internal/lang"
	"github.com/readbridge/readbridge/internal/observe"
	"github.com/readbridge/readbridge/internal/wordalign"
	"github.com/readbridge/readbridge/pkg/asr"
	"github.com/readbridge/readbridge/pkg/glossary"
	pgglossary "github.com/readbridge/readbridge/pkg/glossary/postgres"
	"github.com/readbridge/readbridge/pkg/provider/embeddings"
	ollamaembed "github.com/readbridge/readbridge/pkg/provider/embeddings/ollama"
	oaembed "github.com/readbridge/readbridge/pkg/provider/embeddings/openai"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	articleID := flag.String("article", "", "article identifier")
	trackID := flag.String("track", "", "audio track identifier")
	translatedPath := flag.String("translated", "", "path to the translated (narrated) text")
	bridgePath := flag.String("bridge", "", "path to the English bridge text")
	wordsPath := flag.String("words", "", "path to recogniser output (JSON array of words)")
	audioPath := flag.String("audio", "", "path to the audio file (sent to the ASR server instead of -words)")
	language := flag.String("language", "de", "ISO 639-1 code of the translated text")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "readbridge: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "readbridge: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("readbridge starting",
		"config", *configPath,
		"article", *articleID,
		"track", *trackID,
		"log_level", cfg.Server.LogLevel,
	)

	if *articleID == "" || *trackID == "" || *translatedPath == "" || *bridgePath == "" {
		fmt.Fprintln(os.Stderr, "readbridge: -article, -track, -translated and -bridge are required")
		return 2
	}
	if (*wordsPath == "") == (*audioPath == "") {
		fmt.Fprintln(os.Stderr, "readbridge: exactly one of -words or -audio is required")
		return 2
	}

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Language profiles from config ─────────────────────────────────────────
	registerLanguages(cfg.Languages)

	// ── Oracles and storage ───────────────────────────────────────────────────
	var checkers []health.Checker

	var gl glossary.Glossary
	if cfg.Glossary.PostgresDSN != "" {
		pg, err := pgglossary.New(ctx, cfg.Glossary.PostgresDSN)
		if err != nil {
			slog.Error("failed to connect glossary", "err", err)
			return 1
		}
		defer pg.Close()
		gl = pg
		checkers = append(checkers, health.PingChecker("glossary", pg))
	}

	var store *artifact.Store
	if cfg.Storage.PostgresDSN != "" {
		store, err = artifact.NewStore(ctx, cfg.Storage.PostgresDSN, cfg.Storage.EmbeddingDimensions)
		if err != nil {
			slog.Error("failed to open artifact store", "err", err)
			return 1
		}
		defer store.Close()
		checkers = append(checkers, health.PingChecker("storage", store))
	}

	embedder, err := buildEmbedder(cfg.Providers.Embeddings)
	if err != nil {
		slog.Error("failed to build embeddings provider", "err", err)
		return 1
	}
	if embedder != nil && store != nil {
		embedder = artifact.NewCachingProvider(embedder, store)
	}

	// ── Operational endpoint ──────────────────────────────────────────────────
	if cfg.Server.MetricsAddr != "" {
		h := health.New(checkers...)
		go func() {
			if err := h.Serve(ctx, cfg.Server.MetricsAddr); err != nil {
				slog.Warn("metrics server error", "err", err)
			}
		}()
	}

	// ── Inputs ────────────────────────────────────────────────────────────────
	art, err := loadArticle(ctx, cfg, *articleID, *trackID, *translatedPath, *bridgePath, *wordsPath, *audioPath, *language)
	if err != nil {
		slog.Error("failed to load inputs", "err", err)
		return 1
	}

	// ── Run the job ───────────────────────────────────────────────────────────
	runner := job.New(
		job.WithGlossary(gl),
		job.WithEmbedder(embedder),
		job.WithStore(store),
		job.WithTuning(cfg.Align.Tuning()),
		job.WithWordAlignOptions(wordAlignOptions(cfg.Align)...),
	)

	res, err := runner.Run(ctx, *art)
	if err != nil {
		slog.Error("alignment failed", "err", err)
		return 1
	}

	if store == nil {
		// No store configured: emit results on stdout so the caller can
		// persist them elsewhere.
		out := struct {
			Timestamps []wordalign.WordTimestamp `json:"timestamps"`
			Map        []int32                   `json:"sentence_map"`
		}{res.Timestamps, res.Map}
		if err := json.NewEncoder(os.Stdout).Encode(out); err != nil {
			slog.Error("failed to write results", "err", err)
			return 1
		}
	}

	slog.Info("done",
		"words", len(res.Timestamps),
		"sentences", res.Report.TranslatedSentences,
		"unresolved", res.Report.Unresolved,
	)
	return 0
}

// loadArticle reads the text inputs and obtains recognised words, either from
// a JSON file or by sending the audio to the configured whisper server.
func loadArticle(ctx context.Context, cfg *config.Config, articleID, trackID, translatedPath, bridgePath, wordsPath, audioPath, language string) (*job.Article, error) {
	translated, err := os.ReadFile(translatedPath)
	if err != nil {
		return nil, fmt.Errorf("read translated text: %w", err)
	}
	bridge, err := os.ReadFile(bridgePath)
	if err != nil {
		return nil, fmt.Errorf("read bridge text: %w", err)
	}

	var recognized []asr.RecognizedWord
	switch {
	case wordsPath != "":
		data, err := os.ReadFile(wordsPath)
		if err != nil {
			return nil, fmt.Errorf("read words: %w", err)
		}
		if err := json.Unmarshal(data, &recognized); err != nil {
			return nil, fmt.Errorf("parse words: %w", err)
		}
	default:
		if cfg.ASR.ServerURL == "" {
			return nil, errors.New("-audio requires asr.server_url in the config")
		}
		var opts []asr.ClientOption
		if cfg.ASR.Language != "" {
			opts = append(opts, asr.WithLanguage(cfg.ASR.Language))
		}
		client, err := asr.NewClient(cfg.ASR.ServerURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("asr client: %w", err)
		}
		f, err := os.Open(audioPath)
		if err != nil {
			return nil, fmt.Errorf("open audio: %w", err)
		}
		defer f.Close()
		recognized, err = client.Recognize(ctx, f)
		if err != nil {
			observe.DefaultMetrics().RecordOracleRequest(ctx, "asr", "error")
			observe.DefaultMetrics().RecordOracleError(ctx, "asr")
			return nil, fmt.Errorf("recognise audio: %w", err)
		}
		observe.DefaultMetrics().RecordOracleRequest(ctx, "asr", "ok")
	}

	return &job.Article{
		ID:             articleID,
		TrackID:        trackID,
		TranslatedText: string(translated),
		BridgeText:     string(bridge),
		Language:       lang.Language(language),
		Recognized:     recognized,
	}, nil
}

// buildEmbedder constructs the configured embeddings provider, or returns
// (nil, nil) when none is configured.
func buildEmbedder(entry config.ProviderEntry) (embeddings.Provider, error) {
	switch entry.Name {
	case "":
		return nil, nil
	case "openai":
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	case "ollama":
		return ollamaembed.New(entry.BaseURL, entry.Model)
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", entry.Name)
	}
}

// wordAlignOptions converts the configured word-alignment overrides; zero
// values keep the aligner defaults.
func wordAlignOptions(a config.AlignConfig) []wordalign.Option {
	var opts []wordalign.Option
	if a.Window > 0 {
		opts = append(opts, wordalign.WithWindow(a.Window))
	}
	if a.MinMatchScore > 0 {
		opts = append(opts, wordalign.WithMinScore(a.MinMatchScore))
	}
	if a.WordSeconds > 0 {
		opts = append(opts, wordalign.WithWordSeconds(a.WordSeconds))
	}
	return opts
}

// registerLanguages merges configured word lists into the built-in language
// profiles.
func registerLanguages(langs []config.LanguageConfig) {
	for _, lc := range langs {
		code := lang.Language(lc.Code)
		base := lang.ProfileFor(code)

		p := lang.Profile{
			Fillers:       make(map[string]struct{}, len(base.Fillers)+len(lc.Fillers)),
			Abbreviations: make(map[string]struct{}, len(base.Abbreviations)+len(lc.Abbreviations)),
		}
		for w := range base.Fillers {
			p.Fillers[w] = struct{}{}
		}
		for w := range base.Abbreviations {
			p.Abbreviations[w] = struct{}{}
		}
		for _, w := range lc.Fillers {
			p.Fillers[w] = struct{}{}
		}
		for _, w := range lc.Abbreviations {
			p.Abbreviations[w] = struct{}{}
		}
		lang.Register(code, p)
	}
}

// newLogger builds the process logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
