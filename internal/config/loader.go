package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [LoadFromReader] to warn about unrecognised provider names; an
// unrecognised name is not a validation failure because the [Registry] is
// extensible.
var ValidProviderNames = map[string][]string{
	"llm": {"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile"},
	"stt": {"whisper"},
	"tts": {"elevenlabs", "gtranslate"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
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

// LoadFromReader decodes a YAML config from r, applies defaults, and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	warnUnknownProviders(cfg)
	return cfg, nil
}

// ApplyDefaults fills zero-value fields of cfg with their documented
// defaults. Called by [LoadFromReader] after decoding; exported so tests and
// programmatic construction can use the same defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if cfg.Interview.ProviderTimeout <= 0 {
		cfg.Interview.ProviderTimeout = 30 * time.Second
	}
	if cfg.Interview.Language == "" {
		cfg.Interview.Language = "en"
	}
	if cfg.Interview.BreakerThreshold <= 0 {
		cfg.Interview.BreakerThreshold = 3
	}
	if cfg.Interview.BreakerCooldown <= 0 {
		cfg.Interview.BreakerCooldown = 20 * time.Second
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverSQLite
	}
	if cfg.Storage.Driver == DriverSQLite && cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/interviews.db"
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.StaticDir != "" {
		if info, err := os.Stat(cfg.Server.StaticDir); err != nil || !info.IsDir() {
			errs = append(errs, fmt.Errorf("server.static_dir %q is not a readable directory", cfg.Server.StaticDir))
		}
	}

	// Providers — the cascaded pipeline needs all three stages.
	if cfg.Providers.LLM.Name == "" {
		errs = append(errs, errors.New("providers.llm.name is required"))
	}
	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt.name is required"))
	}
	if cfg.Providers.TTS.Name == "" {
		errs = append(errs, errors.New("providers.tts.name is required"))
	}

	// Storage
	if !cfg.Storage.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("storage.driver %q is invalid; valid values: sqlite, postgres", cfg.Storage.Driver))
	}
	if cfg.Storage.Driver == DriverPostgres && cfg.Storage.DSN == "" {
		errs = append(errs, errors.New("storage.dsn is required when storage.driver is postgres"))
	}
	if cfg.Storage.Driver == DriverSQLite && cfg.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required when storage.driver is sqlite"))
	}

	return errors.Join(errs...)
}

// warnUnknownProviders logs a warning for every configured provider name,
// primary and fallbacks alike, not found in [ValidProviderNames]. Advisory
// only: an unknown name may be a typo, but it may also be a provider the
// embedding program registered itself, so it never fails validation.
func warnUnknownProviders(cfg *Config) {
	warnStack("llm", cfg.Providers.LLM)
	warnStack("stt", cfg.Providers.STT)
	warnStack("tts", cfg.Providers.TTS)
}

func warnStack(kind string, stack ProviderStack) {
	warnProviderName(kind, stack.Name)
	for _, fb := range stack.Fallbacks {
		warnProviderName(kind, fb.Name)
	}
}

func warnProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
