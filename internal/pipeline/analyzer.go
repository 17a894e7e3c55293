// Package pipeline orchestrates the analysis of a single video: fetch
// metadata and transcript, route to the right prompt strategy, recover the
// model output, merge batches, align claim timestamps and top up
// recommendations before the report is returned.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkorsak/veracity/internal/aggregate"
	"github.com/dkorsak/veracity/internal/align"
	"github.com/dkorsak/veracity/internal/cache"
	"github.com/dkorsak/veracity/internal/llm"
	"github.com/dkorsak/veracity/internal/model"
	"github.com/dkorsak/veracity/internal/repair"
	"github.com/dkorsak/veracity/internal/transcript"
)

// Transcript is the fetched caption track for a video. IsReal distinguishes
// genuine captions from a placeholder produced when none exist; placeholder
// text must never be fact-checked line by line.
type Transcript struct {
	Text   string `json:"text"`
	IsReal bool   `json:"is_real"`
}

// VideoMetadata is what we can learn about a video without captions.
// Duration is in seconds and may be zero when no source could provide it.
type VideoMetadata struct {
	Title    string `json:"title"`
	Duration int    `json:"duration"`
}

// TranscriptSource fetches the caption track for a video.
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoID string) (*Transcript, error)
}

// MetadataSource fetches title and duration for a video.
type MetadataSource interface {
	FetchMetadata(ctx context.Context, videoID string) (*VideoMetadata, error)
}

// Analyzer runs the full analysis for one video. All external capabilities
// are injected so tests can run without network or model access.
type Analyzer struct {
	provider    llm.Provider
	transcripts TranscriptSource
	metadata    MetadataSource
	cache       cache.Cache // nil disables caching
	logger      *slog.Logger
}

// NewAnalyzer creates an analyzer from its capabilities. The cache may be
// nil; the logger must not be.
func NewAnalyzer(provider llm.Provider, transcripts TranscriptSource, metadata MetadataSource, c cache.Cache, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		provider:    provider,
		transcripts: transcripts,
		metadata:    metadata,
		cache:       c,
		logger:      logger,
	}
}

// Analyze produces a report for the given video reference (URL or bare ID).
// Model and metadata failures are hard errors; a missing transcript is not.
func (a *Analyzer) Analyze(ctx context.Context, videoRef string) (*model.AnalysisReport, error) {
	videoID, err := ExtractVideoID(videoRef)
	if err != nil {
		return nil, err
	}
	log := a.logger.With("video_id", videoID)

	if report := a.cachedReport(videoID); report != nil {
		log.Info("report cache hit")
		return report, nil
	}

	meta, err := a.metadata.FetchMetadata(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	tr := a.fetchTranscript(ctx, videoID, log)

	report, err := a.runAnalysis(ctx, videoID, meta, tr, log)
	if err != nil {
		return nil, err
	}

	if tr != nil && tr.IsReal && len(report.Timestamps) > 0 {
		a.alignTimestamps(report, tr.Text, log)
	}

	if !report.IsFallback() && aggregate.NeedsAugmentation(report) {
		if err := a.augmentRecommendations(ctx, report, log); err != nil {
			return nil, err
		}
	}

	report.OriginalID = videoID
	a.storeReport(videoID, report)
	return report, nil
}

// runAnalysis picks the prompt strategy: batched windows for long videos
// with real captions, a metadata-only prompt when captions are missing or
// fake, a single full-content pass otherwise.
func (a *Analyzer) runAnalysis(ctx context.Context, videoID string, meta *VideoMetadata, tr *Transcript, log *slog.Logger) (*model.AnalysisReport, error) {
	if tr == nil || !tr.IsReal {
		log.Info("no usable transcript, analyzing metadata only")
		return a.generateReport(ctx, llm.BuildMetadataPrompt(videoID, meta.Title))
	}

	windows := transcript.SplitWindows(tr.Text, meta.Duration)
	if meta.Duration > transcript.WindowDuration && len(windows) > 1 {
		return a.analyzeWindows(ctx, meta.Title, windows, log)
	}

	return a.generateReport(ctx, llm.BuildAnalysisPrompt(meta.Title, tr.Text))
}

// analyzeWindows runs one model call per window, strictly in order, and
// merges the per-window reports.
func (a *Analyzer) analyzeWindows(ctx context.Context, title string, windows []model.Window, log *slog.Logger) (*model.AnalysisReport, error) {
	log.Info("analyzing in batches", "windows", len(windows))

	reports := make([]model.AnalysisReport, 0, len(windows))
	for i, w := range windows {
		report, err := a.generateReport(ctx, llm.BuildWindowPrompt(title, i, len(windows), w))
		if err != nil {
			return nil, fmt.Errorf("window %d of %d: %w", i+1, len(windows), err)
		}
		if report.IsFallback() {
			log.Warn("window response unparseable, contributing nothing", "window", i+1)
		}
		reports = append(reports, *report)
	}

	return aggregate.Merge(reports), nil
}

// generateReport issues one model call and recovers its output. The model
// call failing is a hard error; unparseable output is not.
func (a *Analyzer) generateReport(ctx context.Context, prompt string) (*model.AnalysisReport, error) {
	response, err := a.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	return repair.Recover(response), nil
}

// alignTimestamps corrects claim timestamps against the transcript. Any
// failure here is logged and swallowed: a report with the model's original
// timestamps beats no report.
func (a *Analyzer) alignTimestamps(report *model.AnalysisReport, transcriptText string, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("timestamp alignment failed", "panic", r)
		}
	}()

	segments := transcript.ParseSegments(transcriptText)
	if len(segments) == 0 {
		return
	}

	corrected := align.New(segments).ApplyCorrections(report)
	if corrected > 0 {
		log.Info("corrected claim timestamps", "count", corrected)
	}
}

// augmentRecommendations asks the model for additional recommendations when
// too few survived merging. The report is complete once this returns.
func (a *Analyzer) augmentRecommendations(ctx context.Context, report *model.AnalysisReport, log *slog.Logger) error {
	exclude := make([]string, 0, len(report.EducationalRecommendations))
	for _, rec := range report.EducationalRecommendations {
		exclude = append(exclude, rec.URL)
	}

	response, err := a.provider.Generate(ctx, llm.BuildRecommendationsPrompt(report.GeneralTopic, exclude))
	if err != nil {
		return fmt.Errorf("augment recommendations: %w", err)
	}

	extra := repair.Recover(response)
	if extra.IsFallback() {
		log.Warn("recommendation response unparseable, keeping report as is")
		return nil
	}

	aggregate.AppendRecommendations(report, extra.EducationalRecommendations)
	return nil
}

// fetchTranscript returns the cached or freshly fetched transcript, or nil
// when none could be obtained.
func (a *Analyzer) fetchTranscript(ctx context.Context, videoID string, log *slog.Logger) *Transcript {
	key := cache.TranscriptKey(videoID)
	if a.cache != nil {
		if data, found := a.cache.Get(key); found {
			var tr Transcript
			if err := json.Unmarshal(data, &tr); err == nil {
				return &tr
			}
		}
	}

	tr, err := a.transcripts.FetchTranscript(ctx, videoID)
	if err != nil {
		log.Warn("transcript fetch failed, degrading to metadata analysis", "error", err)
		return nil
	}

	if a.cache != nil && tr != nil {
		if data, err := json.Marshal(tr); err == nil {
			if err := a.cache.Set(key, data, 0); err != nil {
				log.Warn("transcript cache write failed", "error", err)
			}
		}
	}
	return tr
}

func (a *Analyzer) cachedReport(videoID string) *model.AnalysisReport {
	if a.cache == nil {
		return nil
	}
	data, found := a.cache.Get(cache.ReportKey(videoID))
	if !found {
		return nil
	}
	var report model.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil
	}
	return &report
}

func (a *Analyzer) storeReport(videoID string, report *model.AnalysisReport) {
	if a.cache == nil || report.IsFallback() {
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := a.cache.Set(cache.ReportKey(videoID), data, 24*time.Hour); err != nil {
		a.logger.Warn("report cache write failed", "video_id", videoID, "error", err)
	}
}
