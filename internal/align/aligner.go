// Package align corrects model-asserted claim timestamps against transcript
// ground truth. Models hallucinate timing; the aligner searches the segment
// index for the utterance a claim most plausibly refers to and moves the
// claim there when the model was far enough off.
package align

import (
	"math"
	"strings"

	"github.com/dkorsak/veracity/internal/model"
	"github.com/dkorsak/veracity/internal/transcript"
)

// Tuning constants for the search policy. Inherited heuristics; named here
// so they can be adjusted without touching the algorithm structure.
const (
	// SearchWindow bounds the windowed passes to segments whose start lies
	// within this many seconds of the asserted timestamp.
	SearchWindow = 120

	// SimilarityThreshold accepts a text match in the similarity passes.
	SimilarityThreshold = 0.6

	// CorrectionThreshold: a located timestamp within this many seconds of
	// the original is considered already correct and no correction applies.
	CorrectionThreshold = 10

	// scoreTieMargin: keyword scores within this margin are treated as a
	// tie, resolved by proximity to the asserted timestamp.
	scoreTieMargin = 0.3

	// mediumScoreThreshold separates medium from low keyword confidence.
	mediumScoreThreshold = 0.7

	// keywordScoreDivisor normalizes per-keyword length weight.
	keywordScoreDivisor = 4.0
)

// Confidence tiers for a located timestamp.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Match is a corrected timestamp with the confidence of the match that
// produced it.
type Match struct {
	Seconds    int
	Confidence Confidence
}

// Aligner locates claims in a transcript segment index. An aligner owns an
// immutable index for a single analysis run.
type Aligner struct {
	segments []model.Segment
}

// New creates an aligner over the given segment index.
func New(segments []model.Segment) *Aligner {
	return &Aligner{segments: segments}
}

// Locate finds the most plausible true timestamp for a claim asserted to
// occur at the given second. It returns nil when the index is empty or no
// pass produces a signal. Passes run in priority order: windowed similarity,
// windowed keywords, unbounded similarity, unbounded keywords.
func (a *Aligner) Locate(claim string, asserted int) *Match {
	if len(a.segments) == 0 {
		return nil
	}
	normalized := transcript.NormalizeText(claim)
	if normalized == "" {
		return nil
	}

	windowed := a.window(asserted)

	if seg := bestTextMatch(normalized, asserted, windowed); seg != nil {
		return &Match{Seconds: seg.Start, Confidence: ConfidenceHigh}
	}

	keywords := ExtractKeywords(claim)
	if seg, score := bestKeywordMatch(keywords, asserted, windowed, true); seg != nil {
		confidence := ConfidenceLow
		if score > mediumScoreThreshold {
			confidence = ConfidenceMedium
		}
		return &Match{Seconds: seg.Start, Confidence: confidence}
	}

	if seg := bestTextMatch(normalized, asserted, a.segments); seg != nil {
		return &Match{Seconds: seg.Start, Confidence: ConfidenceMedium}
	}

	if seg, _ := bestKeywordMatch(keywords, asserted, a.segments, false); seg != nil {
		return &Match{Seconds: seg.Start, Confidence: ConfidenceLow}
	}

	return nil
}

// ApplyCorrections runs alignment over every eligible claim in the report,
// rewriting timestamps that are off by more than CorrectionThreshold.
// Title claims are exempt. Returns the number of corrected claims.
func (a *Aligner) ApplyCorrections(report *model.AnalysisReport) int {
	if report == nil || len(a.segments) == 0 {
		return 0
	}

	corrected := 0
	for i := range report.Timestamps {
		claim := &report.Timestamps[i]
		if claim.IsTitleClaim() {
			continue
		}

		match := a.Locate(claim.Claim, *claim.TimestampInS)
		if match == nil {
			continue
		}
		if abs(match.Seconds-*claim.TimestampInS) <= CorrectionThreshold {
			continue
		}

		seconds := match.Seconds
		claim.TimestampInS = &seconds
		claim.TimestampInStr = transcript.FormatTimestamp(seconds)
		corrected++
	}
	return corrected
}

// window returns the segments whose start lies within SearchWindow seconds
// of the asserted timestamp.
func (a *Aligner) window(asserted int) []model.Segment {
	var out []model.Segment
	for _, seg := range a.segments {
		if abs(seg.Start-asserted) <= SearchWindow {
			out = append(out, seg)
		}
	}
	return out
}

// bestTextMatch accepts segments by similarity or mutual containment, and
// among accepted segments picks the one closest to the asserted timestamp.
func bestTextMatch(normalizedClaim string, asserted int, candidates []model.Segment) *model.Segment {
	var best *model.Segment
	for i := range candidates {
		seg := &candidates[i]
		if seg.SearchText == "" {
			continue
		}

		accepted := Similarity(normalizedClaim, seg.SearchText) > SimilarityThreshold ||
			strings.Contains(seg.SearchText, normalizedClaim) ||
			strings.Contains(normalizedClaim, seg.SearchText)
		if !accepted {
			continue
		}

		if best == nil || abs(seg.Start-asserted) < abs(best.Start-asserted) {
			best = seg
		}
	}
	return best
}

// bestKeywordMatch scores candidates by matched keyword weight. A segment
// qualifies with at least 2 matched keywords, or 1 when fewer than 3
// keywords were extracted. With preferProximity, scores within
// scoreTieMargin of each other are resolved by distance to the asserted
// timestamp; otherwise the highest score wins outright.
func bestKeywordMatch(keywords []string, asserted int, candidates []model.Segment, preferProximity bool) (*model.Segment, float64) {
	if len(keywords) == 0 {
		return nil, 0
	}
	required := 2
	if len(keywords) < 3 {
		required = 1
	}

	var best *model.Segment
	bestScore := 0.0

	for i := range candidates {
		seg := &candidates[i]
		matched, weight := matchKeywords(keywords, seg.SearchText)
		if matched < required {
			continue
		}
		score := weight / float64(len(keywords))

		if best == nil {
			best, bestScore = seg, score
			continue
		}

		diff := score - bestScore
		switch {
		case diff > scoreTieMargin:
			best, bestScore = seg, score
		case preferProximity && math.Abs(diff) <= scoreTieMargin:
			if abs(seg.Start-asserted) < abs(best.Start-asserted) {
				best, bestScore = seg, score
			}
		case !preferProximity && score > bestScore:
			best, bestScore = seg, score
		}
	}

	return best, bestScore
}

// matchKeywords counts keywords present in the segment text and sums their
// length weight.
func matchKeywords(keywords []string, searchText string) (matched int, weight float64) {
	for _, kw := range keywords {
		if strings.Contains(searchText, kw) {
			matched++
			weight += float64(len(kw)) / keywordScoreDivisor
		}
	}
	return matched, weight
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
