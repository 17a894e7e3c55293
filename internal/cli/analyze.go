package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkorsak/veracity/internal/cache"
	"github.com/dkorsak/veracity/internal/llm"
	"github.com/dkorsak/veracity/internal/logging"
	"github.com/dkorsak/veracity/internal/model"
	"github.com/dkorsak/veracity/internal/pipeline"
)

var (
	outJSON     string
	timeout     time.Duration
	userAgent   string
	captionLang string
	noCache     bool
	cacheDir    string
	llmProvider string
	llmModel    string
	httpProxy   string
	httpsProxy  string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <video>",
	Short: "Analyze a single video for misinformation",
	Long: `Analyze fetches a video's transcript and metadata, asks the configured
language model for a structured fact-check and produces a JSON report:
- Per-claim verdicts (Correct / False / Misleading) with timestamps
- Claim timestamps verified against the transcript
- Accuracy percentages and topic breakdown
- Educational recommendations for further reading

Accepts a full YouTube URL or a bare video ID.

Example:
  veracity analyze dQw4w9WgXcQ
  veracity analyze https://youtu.be/dQw4w9WgXcQ --out report.json
  veracity analyze dQw4w9WgXcQ --provider gemini --model gemini-1.5-pro`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "out", "", "output JSON path (default: stdout)")

	// HTTP flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout (batched long videos need more)")
	analyzeCmd.Flags().StringVar(&userAgent, "ua", "Veracity/0.1 (+https://github.com/dkorsak/veracity)", "HTTP User-Agent")
	analyzeCmd.Flags().StringVar(&captionLang, "lang", "en", "caption language to request")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable transcript/report caching")
	analyzeCmd.Flags().StringVar(&cacheDir, "cache-dir", ".veracity-cache", "cache directory")
	analyzeCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	analyzeCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, anthropic, gemini, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name (provider default if empty)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Output.LogLevel)
	analyzer, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.LLM.Provider)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	report, err := analyzer.Analyze(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	return writeReport(report, outJSON)
}

// buildConfig assembles the effective configuration from defaults, flags
// and environment variables.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.Cache.Enabled = !noCache
	cfg.Cache.Dir = cacheDir
	cfg.YouTube.CaptionLang = captionLang
	cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	cfg.Output.Verbose = verbose
	if verbose {
		cfg.Output.LogLevel = "debug"
	}

	cfg.LLM.Provider = llmProvider
	cfg.LLM.Model = llmModel

	// API keys come from the environment only
	switch llmProvider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "gemini", "google":
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return cfg, nil
}

// buildAnalyzer wires the provider, sources and cache into an analyzer.
func buildAnalyzer(cfg *model.Config, logger *slog.Logger) (*pipeline.Analyzer, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	return pipeline.NewAnalyzer(
		provider,
		pipeline.NewYouTubeTranscriptSource(cfg),
		pipeline.NewYouTubeMetadataSource(cfg),
		c,
		logger.With("component", "pipeline"),
	), nil
}

func writeReport(report *model.AnalysisReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote report: %s\n", path)
	}
	return nil
}
