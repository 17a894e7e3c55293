// Package aggregate merges per-window analysis reports from a batched long
// video run into one coherent report. Merging never fails: windows with
// missing or malformed fields simply contribute nothing.
package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/dkorsak/veracity/internal/model"
	"github.com/dkorsak/veracity/internal/repair"
)

const (
	// MaxRecommendations caps the merged recommendation list.
	MaxRecommendations = 5

	// MinRecommendations is the threshold below which the orchestrator may
	// request additional recommendations from the model.
	MinRecommendations = 3
)

// Merge combines an ordered list of per-window reports into a single report.
// Derived fields (topic counts, percentage sums, the conclusion) are
// recomputed from the merged data rather than copied from any window.
func Merge(windows []model.AnalysisReport) *model.AnalysisReport {
	merged := &model.AnalysisReport{}
	if len(windows) == 0 {
		return merged
	}

	merged.GeneralTopic = dominantTopic(windows)
	merged.Timestamps = mergeTimestamps(windows)
	merged.Topics = mergeTopicCategories(windows)
	merged.Percentages = averagePercentages(windows)
	merged.EducationalRecommendations = mergeRecommendations(windows)
	merged.Conclusion = buildConclusion(merged)

	return merged
}

// dominantTopic picks the most frequent generalTopic across windows, with
// ties broken by first occurrence.
func dominantTopic(windows []model.AnalysisReport) string {
	counts := make(map[string]int)
	var order []string
	for _, w := range windows {
		if w.GeneralTopic == "" {
			continue
		}
		if counts[w.GeneralTopic] == 0 {
			order = append(order, w.GeneralTopic)
		}
		counts[w.GeneralTopic]++
	}

	best := ""
	for _, topic := range order {
		if best == "" || counts[topic] > counts[best] {
			best = topic
		}
	}
	return best
}

// mergeTimestamps concatenates claims in window order. The model analyzes
// the title once per window, so duplicate title claims appear; only the one
// with the longest explanation survives, moved to the front.
func mergeTimestamps(windows []model.AnalysisReport) []model.Claim {
	var all []model.Claim
	for _, w := range windows {
		all = append(all, w.Timestamps...)
	}

	var titleClaims []model.Claim
	var rest []model.Claim
	for _, c := range all {
		if c.TimestampInStr == model.TitleTimestamp {
			titleClaims = append(titleClaims, c)
		} else {
			rest = append(rest, c)
		}
	}

	if len(titleClaims) <= 1 {
		return all
	}

	keep := titleClaims[0]
	for _, c := range titleClaims[1:] {
		if len(c.Explanation) > len(keep.Explanation) {
			keep = c
		}
	}
	return append([]model.Claim{keep}, rest...)
}

// mergeTopicCategories unions categories by title, summing counts. Each
// window's topics pass through the post-parse validator first so malformed
// counts never leak into the merge.
func mergeTopicCategories(windows []model.AnalysisReport) model.Topics {
	counts := make(map[string]int)
	var order []string

	for _, w := range windows {
		normalized := w
		repair.Normalize(&normalized)

		for _, cat := range normalized.Topics.Categories {
			if _, seen := counts[cat.Title]; !seen {
				order = append(order, cat.Title)
			}
			counts[cat.Title] += cat.Count
		}
	}

	topics := model.Topics{Categories: make([]model.TopicCategory, 0, len(order))}
	for _, title := range order {
		topics.Categories = append(topics.Categories, model.TopicCategory{Title: title, Count: counts[title]})
	}
	topics.Count = len(topics.Categories)
	return topics
}

// averagePercentages takes the arithmetic mean of every field across
// windows, rounds, and forces the three non-overall fields to sum to 100.
func averagePercentages(windows []model.AnalysisReport) model.Percentages {
	n := float64(len(windows))
	var overall, falseInfo, verified, misleading float64
	for _, w := range windows {
		overall += float64(w.Percentages.Overall) / n
		falseInfo += float64(w.Percentages.FalseInformation) / n
		verified += float64(w.Percentages.VerifiedInformation) / n
		misleading += float64(w.Percentages.MisleadingInformation) / n
	}

	p := model.Percentages{
		Overall:               int(math.Round(overall)),
		FalseInformation:      int(math.Round(falseInfo)),
		VerifiedInformation:   int(math.Round(verified)),
		MisleadingInformation: int(math.Round(misleading)),
	}
	repair.FixPercentages(&p)
	return p
}

// mergeRecommendations deduplicates by URL (first occurrence wins), sorts by
// credibility descending and caps the list.
func mergeRecommendations(windows []model.AnalysisReport) []model.Recommendation {
	var all []model.Recommendation
	for _, w := range windows {
		all = append(all, w.EducationalRecommendations...)
	}
	return dedupeAndCap(all)
}

// AppendRecommendations merges extra recommendations into the report.
// Existing entries win URL deduplication; the combined list is re-sorted by
// credibility and capped at MaxRecommendations. This is the second phase of recommendation backfill:
// the orchestrator awaits the extra fetch and applies it before the report
// is returned to the caller.
func AppendRecommendations(report *model.AnalysisReport, extra []model.Recommendation) {
	combined := append(append([]model.Recommendation{}, report.EducationalRecommendations...), extra...)
	report.EducationalRecommendations = dedupeAndCap(combined)
}

// NeedsAugmentation reports whether the merged list is too thin and a
// recommendation backfill should run.
func NeedsAugmentation(report *model.AnalysisReport) bool {
	return len(report.EducationalRecommendations) < MinRecommendations
}

func dedupeAndCap(recs []model.Recommendation) []model.Recommendation {
	seen := make(map[string]bool)
	var unique []model.Recommendation
	for _, rec := range recs {
		if seen[rec.URL] {
			continue
		}
		seen[rec.URL] = true
		unique = append(unique, rec)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].CredibilityScore > unique[j].CredibilityScore
	})

	if len(unique) > MaxRecommendations {
		unique = unique[:MaxRecommendations]
	}
	return unique
}

// buildConclusion regenerates the overall conclusion from merged data so it
// reflects the whole video rather than any single window.
func buildConclusion(r *model.AnalysisReport) string {
	return fmt.Sprintf(
		"This video about %s contains %d notable claims. Overall, it is %d%% accurate with %d%% false information and %d%% misleading content.",
		r.GeneralTopic,
		len(r.Timestamps),
		r.Percentages.Overall,
		r.Percentages.FalseInformation,
		r.Percentages.MisleadingInformation,
	)
}
