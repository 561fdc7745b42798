package ai

import (
	"fmt"
	"strings"

	"github.com/DachengChen/sqlchat/config"
)

// SupportedProviders lists available provider names for display.
var SupportedProviders = []string{
	config.ProviderGroq,
	config.ProviderOpenAI,
	config.ProviderAnthropic,
	config.ProviderGemini,
	config.ProviderOllama,
	config.ProviderPlaceholder,
}

// NewProvider creates a logged provider from the AI config.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	timeout := cfg.Timeout()

	var p Provider
	switch cfg.Provider {
	case config.ProviderGroq, "":
		if cfg.Groq.APIKey == "" {
			return nil, missingKey("Groq", config.ProviderGroq)
		}
		p = NewGroq(cfg.Groq.APIKey, cfg.Groq.Model, cfg.Groq.BaseURL, timeout)

	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, missingKey("OpenAI", config.ProviderOpenAI)
		}
		p = NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, timeout)

	case config.ProviderAnthropic:
		if cfg.Anthropic.APIKey == "" {
			return nil, missingKey("Anthropic", config.ProviderAnthropic)
		}
		p = NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.BaseURL, timeout)

	case config.ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, missingKey("Gemini", config.ProviderGemini)
		}
		p = NewGemini(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, timeout)

	case config.ProviderOllama:
		p = NewOllama(cfg.Ollama.Host, cfg.Ollama.Model, timeout)

	case config.ProviderPlaceholder:
		p = NewPlaceholder()

	default:
		return nil, fmt.Errorf("unknown AI provider %q. Supported: %s",
			cfg.Provider, strings.Join(SupportedProviders, ", "))
	}

	return WithLogging(p), nil
}

func missingKey(display, provider string) error {
	return fmt.Errorf("%s API key not set. Set %s, add it to ~/.sqlchat/config.json, or run `sqlchat key set %s`",
		display, config.KeyEnvVar(provider), provider)
}
