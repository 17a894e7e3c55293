package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkorsak/veracity/internal/logging"
	"github.com/dkorsak/veracity/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	rps          float64
	burst        int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple videos from a file in parallel",
	Long: `Batch analyzes multiple videos concurrently:
- Read video URLs or IDs from input file (one per line)
- Analyze videos in parallel with configurable worker count
- Pace analysis starts to stay under provider rate limits
- Write one JSON report per video

Example:
  veracity batch videos.txt
  veracity batch videos.txt --concurrency 8 --output-dir ./reports
  veracity batch videos.txt --rps 1 --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./veracity-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&rps, "rps", 2, "analysis starts per second across all workers")
	batchCmd.Flags().IntVar(&burst, "burst", 5, "analysis start burst size")

	// Shared with analyze
	batchCmd.Flags().StringVar(&userAgent, "ua", "Veracity/0.1 (+https://github.com/dkorsak/veracity)", "HTTP User-Agent")
	batchCmd.Flags().StringVar(&captionLang, "lang", "en", "caption language to request")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable transcript/report caching")
	batchCmd.Flags().StringVar(&cacheDir, "cache-dir", ".veracity-cache", "cache directory")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "provider", "openai", "LLM provider (openai, anthropic, gemini, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "model", "", "LLM model name (provider default if empty)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency
	cfg.Concurrency.RequestsPerSecond = rps
	cfg.Concurrency.Burst = burst

	logger := logging.New(cfg.Output.LogLevel)
	analyzer, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "Timeout:    %v\n", batchTimeout)
	fmt.Fprintln(os.Stderr)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(analyzer, concurrency, rps, burst)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.VideoRef, result.Error)
			continue
		}

		successCount++
		path := filepath.Join(outputDir, result.Report.OriginalID+".json")
		if err := writeReport(result.Report, path); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.VideoRef, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "ok   %s (%d claims, %d%% accurate)\n",
			result.Report.OriginalID, len(result.Report.Timestamps), result.Report.Percentages.Overall)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:    %d videos\n", len(results))
	fmt.Fprintf(os.Stderr, "Success:  %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failures: %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "Output:   %s\n", outputDir)

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d videos failed", failureCount)
	}
	return nil
}
