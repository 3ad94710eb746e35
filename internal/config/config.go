// Package config provides the configuration schema, loader, and provider
// registry for the hireloop interview server.
package config

import "time"

// LogLevel controls log verbosity for the server.
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

// StorageDriver selects the persistence backend for finished interviews.
type StorageDriver string

const (
	// DriverSQLite stores records in a local SQLite file.
	DriverSQLite StorageDriver = "sqlite"

	// DriverPostgres stores records in a PostgreSQL database.
	DriverPostgres StorageDriver = "postgres"
)

// IsValid reports whether d is a recognised storage driver.
func (d StorageDriver) IsValid() bool {
	return d == DriverSQLite || d == DriverPostgres
}

// Config is the root configuration structure for hireloop.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Interview InterviewConfig `yaml:"interview"`
	Storage   StorageConfig   `yaml:"storage"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// StaticDir, when non-empty, is served at the HTTP root so the browser
	// client can be hosted alongside the websocket endpoint.
	StaticDir string `yaml:"static_dir"`
}

// ProvidersConfig declares which provider implementation to use for each
// pipeline stage. Each stack selects named providers registered in the
// [Registry].
type ProvidersConfig struct {
	LLM ProviderStack `yaml:"llm"`
	STT ProviderStack `yaml:"stt"`
	TTS ProviderStack `yaml:"tts"`
}

// ProviderStack is a primary provider plus ordered fallbacks tried when the
// primary fails.
type ProviderStack struct {
	ProviderEntry `yaml:",inline"`

	// Fallbacks are tried in order after the primary.
	Fallbacks []ProviderEntry `yaml:"fallbacks"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "openai", "whisper", "elevenlabs").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "gpt-4o-mini", "whisper-1").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above. Values may be strings, numbers, booleans,
	// or nested maps.
	Options map[string]any `yaml:"options"`
}

// StringOption returns the named option as a string, or def if absent or not
// a string.
func (e ProviderEntry) StringOption(key, def string) string {
	if v, ok := e.Options[key].(string); ok && v != "" {
		return v
	}
	return def
}

// InterviewConfig tunes the interview pipeline itself.
type InterviewConfig struct {
	// ProviderTimeout bounds each STT, LLM, and TTS call. Default: 30s.
	ProviderTimeout time.Duration `yaml:"provider_timeout"`

	// Language is the BCP-47 language tag used for transcription and
	// synthesis (e.g., "en"). Default: "en".
	Language string `yaml:"language"`

	// BreakerThreshold is the number of consecutive provider failures that
	// opens a provider's circuit breaker. Default: 3.
	BreakerThreshold int `yaml:"breaker_threshold"`

	// BreakerCooldown is how long an open breaker waits before probing the
	// provider again. Default: 20s.
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// StorageConfig selects and configures the record store.
type StorageConfig struct {
	// Driver selects the backend. Default: "sqlite".
	Driver StorageDriver `yaml:"driver"`

	// DSN is the PostgreSQL connection string. Required when driver is
	// "postgres".
	DSN string `yaml:"dsn"`

	// Path is the SQLite database file path. Default: "data/interviews.db".
	Path string `yaml:"path"`
}
