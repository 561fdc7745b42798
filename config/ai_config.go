// ai_config.go holds the AI provider and application settings.
//
// Settings are stored in ~/.sqlchat/config.json alongside connection
// profiles. API keys can also come from environment variables (a .env
// file in the working directory is loaded first) or the OS keychain.

package config

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves an environment variable. os.LookupEnv in production.
type LookupFunc func(string) (string, bool)

// KeySource supplies stored API keys by provider name.
type KeySource interface {
	Get(provider string) (string, error)
}

// AIConfig holds the AI provider selection and credentials.
type AIConfig struct {
	Provider       string         `json:"provider"` // "groq", "openai", "anthropic", "gemini", "ollama", "placeholder"
	Temperature    float64        `json:"temperature"`
	TimeoutSeconds int            `json:"timeout_seconds"`
	Groq           ProviderConfig `json:"groq"`
	OpenAI         ProviderConfig `json:"openai"`
	Anthropic      ProviderConfig `json:"anthropic"`
	Gemini         ProviderConfig `json:"gemini"`
	Ollama         OllamaConfig   `json:"ollama"`
}

// ProviderConfig holds settings for a hosted, key-authenticated provider.
type ProviderConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url,omitempty"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host  string `json:"host"`
	Model string `json:"model"`
}

// TranscriptConfig controls the on-disk record of completed turns.
type TranscriptConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"` // defaults to ~/.sqlchat/transcripts.db
}

// TelemetryConfig controls OpenTelemetry trace/metric export.
type TelemetryConfig struct {
	Enabled bool `json:"enabled"`
}

// AppConfig is the top-level config file structure (~/.sqlchat/config.json).
type AppConfig struct {
	AI         AIConfig         `json:"ai"`
	LogLevel   string           `json:"log_level"`
	Transcript TranscriptConfig `json:"transcript"`
	Telemetry  TelemetryConfig  `json:"telemetry"`
}

// Provider names.
const (
	ProviderGroq        = "groq"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
	ProviderOllama      = "ollama"
	ProviderPlaceholder = "placeholder"
)

// keyEnvVars maps key-authenticated providers to their env var.
var keyEnvVars = map[string]string{
	ProviderGroq:      "GROQ_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// KeyEnvVar returns the environment variable holding the provider's API key.
func KeyEnvVar(provider string) string {
	return keyEnvVars[provider]
}

// DefaultAIConfig returns the defaults: Groq's hosted Mixtral at a low
// temperature.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider:       ProviderGroq,
		Temperature:    0.3,
		TimeoutSeconds: 60,
		Groq: ProviderConfig{
			Model: "mixtral-8x7b-32768",
		},
		OpenAI: ProviderConfig{
			Model: "gpt-4o",
		},
		Anthropic: ProviderConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Gemini: ProviderConfig{
			Model: "gemini-2.0-flash",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "llama3.2",
		},
	}
}

// Timeout returns the per-request HTTP timeout.
func (c AIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Hosted returns the settings of a key-authenticated provider, or nil.
func (c *AIConfig) Hosted(provider string) *ProviderConfig {
	switch provider {
	case ProviderGroq:
		return &c.Groq
	case ProviderOpenAI:
		return &c.OpenAI
	case ProviderAnthropic:
		return &c.Anthropic
	case ProviderGemini:
		return &c.Gemini
	}
	return nil
}

// ModelFor returns the configured model of any provider.
func (c *AIConfig) ModelFor(provider string) string {
	if provider == ProviderOllama {
		return c.Ollama.Model
	}
	if p := c.Hosted(provider); p != nil {
		return p.Model
	}
	return ""
}

// FillMissingKeys asks src for every hosted provider whose key is still
// empty. Lookup failures are ignored; the provider constructor reports
// the missing key later.
func (c *AIConfig) FillMissingKeys(src KeySource) {
	if src == nil {
		return
	}
	for provider := range keyEnvVars {
		p := c.Hosted(provider)
		if p.APIKey != "" {
			continue
		}
		if key, err := src.Get(provider); err == nil && key != "" {
			p.APIKey = key
		}
	}
}

// LoadDotEnv loads .env from the working directory into the process
// environment. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LoadAppConfig reads ~/.sqlchat/config.json; returns defaults if not found.
// Environment variables override file values.
func LoadAppConfig() (*AppConfig, error) {
	dir, err := Dir()
	if err != nil {
		cfg := DefaultAppConfig()
		applyEnv(cfg, os.LookupEnv)
		return cfg, nil
	}
	return LoadAppConfigFrom(filepath.Join(dir, "config.json"), os.LookupEnv)
}

// LoadAppConfigFrom reads the config at path and applies overrides from lookup.
func LoadAppConfigFrom(path string, lookup LookupFunc) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if lookup != nil {
		applyEnv(cfg, lookup)
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig, lookup LookupFunc) {
	for provider, env := range keyEnvVars {
		if v, ok := lookup(env); ok && v != "" {
			cfg.AI.Hosted(provider).APIKey = v
		}
	}
	if v, ok := lookup("OLLAMA_HOST"); ok && v != "" {
		cfg.AI.Ollama.Host = v
	}
	if v, ok := lookup("SQLCHAT_PROVIDER"); ok && v != "" {
		cfg.AI.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("SQLCHAT_MODEL"); ok && v != "" {
		cfg.AI.SetModel(cfg.AI.Provider, v)
	}
}

// SetModel sets the model of the named provider.
func (c *AIConfig) SetModel(provider, model string) {
	if provider == ProviderOllama {
		c.Ollama.Model = model
		return
	}
	if p := c.Hosted(provider); p != nil {
		p.Model = model
	}
}

// SaveAppConfig writes the config to ~/.sqlchat/config.json.
func SaveAppConfig(cfg *AppConfig) error {
	dir, err := ensureDir()
	if err != nil {
		return err
	}
	return SaveAppConfigTo(filepath.Join(dir, "config.json"), cfg)
}

// SaveAppConfigTo writes cfg as indented JSON with 0600 permissions.
func SaveAppConfigTo(path string, cfg *AppConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// SaveAISettings stores the provider selection, models and hosts of ai
// in ~/.sqlchat/config.json. API keys are not written; see
// UpdateAISettings.
func SaveAISettings(ai AIConfig) error {
	dir, err := ensureDir()
	if err != nil {
		return err
	}
	return UpdateAISettings(filepath.Join(dir, "config.json"), ai)
}

// UpdateAISettings rewrites the file at path with the non-secret AI
// settings of ai. Every other value, including keys already in the
// file, is kept as the file has it. Keys that came from the environment
// or the keychain therefore never reach the file.
func UpdateAISettings(path string, ai AIConfig) error {
	onDisk, err := LoadAppConfigFrom(path, nil)
	if err != nil {
		return err
	}

	onDisk.AI.Provider = ai.Provider
	onDisk.AI.Temperature = ai.Temperature
	onDisk.AI.TimeoutSeconds = ai.TimeoutSeconds
	for provider := range keyEnvVars {
		dst, src := onDisk.AI.Hosted(provider), ai.Hosted(provider)
		dst.Model = src.Model
		dst.BaseURL = src.BaseURL
	}
	onDisk.AI.Ollama = ai.Ollama

	return SaveAppConfigTo(path, onDisk)
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *AppConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// TranscriptPath returns the transcript database path.
func (c *AppConfig) TranscriptPath() (string, error) {
	if c.Transcript.Path != "" {
		return c.Transcript.Path, nil
	}
	dir, err := ensureDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "transcripts.db"), nil
}

// DefaultAppConfig returns the settings used when no config file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		AI:         DefaultAIConfig(),
		LogLevel:   "info",
		Transcript: TranscriptConfig{Enabled: true},
		Telemetry:  TelemetryConfig{Enabled: false},
	}
}
