// Package llm abstracts the generative model providers the analysis
// pipeline delegates judgment to. A provider is a black box mapping a prompt
// string to a text response; everything that makes that response trustworthy
// happens downstream in repair, align and aggregate.
package llm

import (
	"context"

	"github.com/dkorsak/veracity/internal/model"
)

// Provider defines the interface for generative model providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate sends a prompt and returns the raw text response. Failures
	// (network, quota) propagate to the caller as report-generation
	// failures; they are never swallowed here.
	Generate(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks if the provider is properly configured and
	// accessible
	IsAvailable(ctx context.Context) bool
}

// systemPrompt frames every request. Kept provider-independent so switching
// providers does not change analysis behavior.
const systemPrompt = "You are a meticulous fact-checking assistant. You analyze video content for misinformation and respond only with the exact JSON structure you are asked for."

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "gemini", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, test servers)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation; analysis responses are large
	MaxTokens int

	// Temperature, kept low for factual output
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Timeout:     60,
		MaxTokens:   8192,
		Temperature: 0.2,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	cfg := DefaultConfig()
	if mc.Provider != "" {
		cfg.Provider = mc.Provider
	}
	cfg.Model = mc.Model
	cfg.APIKey = mc.APIKey
	cfg.BaseURL = mc.BaseURL
	if mc.Timeout > 0 {
		cfg.Timeout = mc.Timeout
	}
	if mc.MaxTokens > 0 {
		cfg.MaxTokens = mc.MaxTokens
	}
	return cfg
}
