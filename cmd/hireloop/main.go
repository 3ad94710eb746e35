// Command hireloop is the main entry point for the hireloop interview server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/hireloop-ai/hireloop/internal/config"
	"github.com/hireloop-ai/hireloop/internal/observe"
	"github.com/hireloop-ai/hireloop/internal/resilience"
	"github.com/hireloop-ai/hireloop/internal/server"
	"github.com/hireloop-ai/hireloop/internal/session"
	"github.com/hireloop-ai/hireloop/internal/store"
	"github.com/hireloop-ai/hireloop/internal/store/postgres"
	"github.com/hireloop-ai/hireloop/internal/store/sqlite"
	"github.com/hireloop-ai/hireloop/pkg/provider/llm"
	"github.com/hireloop-ai/hireloop/pkg/provider/llm/anyllm"
	oaillm "github.com/hireloop-ai/hireloop/pkg/provider/llm/openai"
	"github.com/hireloop-ai/hireloop/pkg/provider/stt"
	"github.com/hireloop-ai/hireloop/pkg/provider/stt/whisper"
	"github.com/hireloop-ai/hireloop/pkg/provider/tts"
	"github.com/hireloop-ai/hireloop/pkg/provider/tts/elevenlabs"
	"github.com/hireloop-ai/hireloop/pkg/provider/tts/gtranslate"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "hireloop: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "hireloop: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("hireloop starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg, cfg.Interview.Language)

	providers, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	// ── Record store ──────────────────────────────────────────────────────────
	recs, err := openStore(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open record store", "err", err)
		return 1
	}
	defer func() {
		if err := recs.Close(); err != nil {
			slog.Warn("record store close error", "err", err)
		}
	}()

	printStartupSummary(cfg)

	// ── Serve ─────────────────────────────────────────────────────────────────
	srv := server.New(cfg, providers,
		server.WithLogger(logger),
		server.WithStore(recs),
	)

	slog.Info("server ready — press Ctrl+C to shut down")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages. language is the
// interview-wide default; a per-provider "language" option overrides it.
func registerBuiltinProviders(reg *config.Registry, language string) {
	// ── LLM ───────────────────────────────────────────────────────────────────
	// openai gets the native SDK client; the remaining backends share the
	// any-llm pattern of optional APIKey + optional BaseURL.
	reg.RegisterLLM("openai", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []oaillm.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaillm.WithBaseURL(entry.BaseURL))
		}
		return oaillm.New(entry.APIKey, entry.Model, opts...)
	})

	for _, providerName := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		reg.RegisterLLM(providerName, func(entry config.ProviderEntry) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(entry config.ProviderEntry) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.NewOllama(entry.Model, opts...)
	})

	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := entry.StringOption("language", language); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if voice := entry.StringOption("voice_id", ""); voice != "" {
			opts = append(opts, elevenlabs.WithVoice(voice))
		}
		if format := entry.StringOption("output_format", ""); format != "" {
			opts = append(opts, elevenlabs.WithOutputFormat(format))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})

	reg.RegisterTTS("gtranslate", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []gtranslate.Option
		if lang := entry.StringOption("language", language); lang != "" {
			opts = append(opts, gtranslate.WithLanguage(lang))
		}
		if entry.BaseURL != "" {
			opts = append(opts, gtranslate.WithBaseURL(entry.BaseURL))
		}
		return gtranslate.New(opts...), nil
	})
}

// buildProviders instantiates the configured provider stacks. A stack with
// fallbacks is wrapped in a breaker-guarded failover chain; a single-entry
// stack is used directly.
func buildProviders(cfg *config.Config, reg *config.Registry) (session.Providers, error) {
	var ps session.Providers

	breaker := resilience.BreakerConfig{
		Threshold: cfg.Interview.BreakerThreshold,
		Cooldown:  cfg.Interview.BreakerCooldown,
	}

	// LLM
	llmPrimary, err := reg.CreateLLM(cfg.Providers.LLM.ProviderEntry)
	if err != nil {
		return ps, fmt.Errorf("create llm provider %q: %w", cfg.Providers.LLM.Name, err)
	}
	if fbs := cfg.Providers.LLM.Fallbacks; len(fbs) > 0 {
		chain := resilience.NewLLMChain(cfg.Providers.LLM.Name, llmPrimary, breaker)
		for _, fb := range fbs {
			p, err := reg.CreateLLM(fb)
			if err != nil {
				return ps, fmt.Errorf("create llm fallback %q: %w", fb.Name, err)
			}
			chain.Append(fb.Name, p)
		}
		slog.Info("llm failover chain configured", "order", chain.Names())
		ps.LLM = chain
	} else {
		ps.LLM = llmPrimary
	}
	slog.Info("provider created", "kind", "llm", "name", cfg.Providers.LLM.Name)

	// STT
	sttPrimary, err := reg.CreateSTT(cfg.Providers.STT.ProviderEntry)
	if err != nil {
		return ps, fmt.Errorf("create stt provider %q: %w", cfg.Providers.STT.Name, err)
	}
	if fbs := cfg.Providers.STT.Fallbacks; len(fbs) > 0 {
		chain := resilience.NewSTTChain(cfg.Providers.STT.Name, sttPrimary, breaker)
		for _, fb := range fbs {
			p, err := reg.CreateSTT(fb)
			if err != nil {
				return ps, fmt.Errorf("create stt fallback %q: %w", fb.Name, err)
			}
			chain.Append(fb.Name, p)
		}
		slog.Info("stt failover chain configured", "order", chain.Names())
		ps.STT = chain
	} else {
		ps.STT = sttPrimary
	}
	slog.Info("provider created", "kind", "stt", "name", cfg.Providers.STT.Name)

	// TTS
	ttsPrimary, err := reg.CreateTTS(cfg.Providers.TTS.ProviderEntry)
	if err != nil {
		return ps, fmt.Errorf("create tts provider %q: %w", cfg.Providers.TTS.Name, err)
	}
	if fbs := cfg.Providers.TTS.Fallbacks; len(fbs) > 0 {
		chain := resilience.NewTTSChain(cfg.Providers.TTS.Name, ttsPrimary, breaker)
		for _, fb := range fbs {
			p, err := reg.CreateTTS(fb)
			if err != nil {
				return ps, fmt.Errorf("create tts fallback %q: %w", fb.Name, err)
			}
			chain.Append(fb.Name, p)
		}
		slog.Info("tts failover chain configured", "order", chain.Names())
		ps.TTS = chain
	} else {
		ps.TTS = ttsPrimary
	}
	slog.Info("provider created", "kind", "tts", "name", cfg.Providers.TTS.Name)

	return ps, nil
}

// openStore opens the record store selected by the storage config.
func openStore(ctx context.Context, cfg config.StorageConfig) (store.RecordStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		slog.Info("opening postgres record store")
		return postgres.New(ctx, cfg.DSN)
	case config.DriverSQLite:
		slog.Info("opening sqlite record store", "path", cfg.Path)
		return sqlite.Open(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config) {
	slog.Info("configuration summary",
		"llm", providerLabel(cfg.Providers.LLM),
		"stt", providerLabel(cfg.Providers.STT),
		"tts", providerLabel(cfg.Providers.TTS),
		"storage", string(cfg.Storage.Driver),
		"provider_timeout", cfg.Interview.ProviderTimeout,
		"static_dir", cfg.Server.StaticDir,
	)
}

func providerLabel(stack config.ProviderStack) string {
	label := stack.Name
	if stack.Model != "" {
		label += "/" + stack.Model
	}
	if n := len(stack.Fallbacks); n > 0 {
		label += fmt.Sprintf(" (+%d fallback)", n)
	}
	return label
}

// ── Logger ─────────────────────────────────────────────────────────────────────

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
