package model

import "time"

// Config holds the full application configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	YouTube     YouTubeConfig     `yaml:"youtube"`
	Output      OutputConfig      `yaml:"output"`
}

// LLMConfig configures the generative model provider.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, gemini, ollama
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"` // from environment only, never persisted
	BaseURL   string `yaml:"base_url"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// HTTPConfig configures outbound transcript/metadata fetches.
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy"`
}

// CacheConfig configures transcript and report caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel work and outbound request rates.
// Workers applies to whole-video batch runs; windows within a single video
// are always analyzed sequentially.
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// YouTubeConfig configures transcript and metadata acquisition.
type YouTubeConfig struct {
	APIKey      string `yaml:"-"` // YouTube Data API key, optional
	CaptionLang string `yaml:"caption_lang"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose  bool   `yaml:"verbose"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Timeout:   60,
			MaxTokens: 8192,
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "Veracity/0.1 (+https://github.com/dkorsak/veracity)",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".veracity-cache",
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		YouTube: YouTubeConfig{
			CaptionLang: "en",
		},
		Output: OutputConfig{
			LogLevel: "info",
		},
	}
}
