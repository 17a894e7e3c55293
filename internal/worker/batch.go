package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dkorsak/veracity/internal/model"
)

// Analyzer analyzes a single video reference.
type Analyzer interface {
	Analyze(ctx context.Context, videoRef string) (*model.AnalysisReport, error)
}

// AnalyzeJob analyzes one video on the pool.
type AnalyzeJob struct {
	VideoRef string
	Analyzer Analyzer
	Pacer    *Pacer
}

// Execute waits for pacing clearance and runs the analysis.
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	if j.Pacer != nil {
		if err := j.Pacer.Wait(ctx); err != nil {
			return &AnalyzeResult{VideoRef: j.VideoRef, Error: err}
		}
	}

	report, err := j.Analyzer.Analyze(ctx, j.VideoRef)
	return &AnalyzeResult{
		VideoRef: j.VideoRef,
		Report:   report,
		Error:    err,
	}
}

// AnalyzeResult is the outcome for one video of a batch.
type AnalyzeResult struct {
	VideoRef string
	Report   *model.AnalysisReport
	Error    error
}

// GetError returns the analysis error, if any.
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many videos concurrently. One failed video never
// stops the batch; its result carries the error instead.
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	pacer       *Pacer
}

// NewBatchProcessor creates a batch processor with the given worker count
// and analysis start rate.
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		pacer:       NewPacer(requestsPerSecond, burst),
	}
}

// ProcessRefs analyzes the given video references concurrently.
func (b *BatchProcessor) ProcessRefs(ctx context.Context, refs []string) []*AnalyzeResult {
	if len(refs) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Cancel the pool if the caller's context ends first.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			pool.Shutdown()
		case <-done:
		}
	}()

	for _, ref := range refs {
		pool.Submit(&AnalyzeJob{
			VideoRef: ref,
			Analyzer: b.analyzer,
			Pacer:    b.pacer,
		})
	}

	results := pool.Wait()

	analyzeResults := make([]*AnalyzeResult, len(results))
	for i, result := range results {
		analyzeResults[i] = result.(*AnalyzeResult)
	}
	return analyzeResults
}

// ProcessFile reads video references from a file and analyzes them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalyzeResult, error) {
	refs, err := ReadRefsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read video references: %w", err)
	}
	return b.ProcessRefs(ctx, refs), nil
}

// ReadRefsFromFile reads video references, one per line. Blank lines and
// #-comments are skipped; duplicate lines are analyzed once.
func ReadRefsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var refs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			refs = append(refs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return refs, nil
}
