package aggregate

import (
	"strings"
	"testing"

	"github.com/dkorsak/veracity/internal/model"
)

func intPtr(n int) *int { return &n }

func TestMerge_Percentages(t *testing.T) {
	windows := []model.AnalysisReport{
		{Percentages: model.Percentages{Overall: 80, FalseInformation: 10, VerifiedInformation: 70, MisleadingInformation: 20}},
		{Percentages: model.Percentages{Overall: 60, FalseInformation: 30, VerifiedInformation: 50, MisleadingInformation: 20}},
	}

	merged := Merge(windows)
	want := model.Percentages{Overall: 70, FalseInformation: 20, VerifiedInformation: 60, MisleadingInformation: 20}
	if merged.Percentages != want {
		t.Errorf("got %+v, want %+v", merged.Percentages, want)
	}
}

func TestMerge_PercentagesForcedTo100(t *testing.T) {
	// Averages of 33/33/33 round to a 99 sum; the largest field absorbs the
	// difference.
	windows := []model.AnalysisReport{
		{Percentages: model.Percentages{Overall: 50, FalseInformation: 33, VerifiedInformation: 33, MisleadingInformation: 33}},
		{Percentages: model.Percentages{Overall: 50, FalseInformation: 33, VerifiedInformation: 33, MisleadingInformation: 33}},
	}

	merged := Merge(windows)
	sum := merged.Percentages.FalseInformation + merged.Percentages.VerifiedInformation + merged.Percentages.MisleadingInformation
	if sum != 100 {
		t.Errorf("expected three-field sum 100, got %d (%+v)", sum, merged.Percentages)
	}
}

func TestMerge_TopicCategories(t *testing.T) {
	windows := []model.AnalysisReport{
		{Topics: model.Topics{Categories: []model.TopicCategory{{Title: "Health", Count: 3}}}},
		{Topics: model.Topics{Categories: []model.TopicCategory{{Title: "Health", Count: 2}, {Title: "Diet", Count: 1}}}},
	}

	merged := Merge(windows)
	if merged.Topics.Count != 2 {
		t.Fatalf("expected topic count 2, got %d", merged.Topics.Count)
	}
	if merged.Topics.Categories[0].Title != "Health" || merged.Topics.Categories[0].Count != 5 {
		t.Errorf("unexpected first category: %+v", merged.Topics.Categories[0])
	}
	if merged.Topics.Categories[1].Title != "Diet" || merged.Topics.Categories[1].Count != 1 {
		t.Errorf("unexpected second category: %+v", merged.Topics.Categories[1])
	}
}

func TestMerge_DominantTopic(t *testing.T) {
	windows := []model.AnalysisReport{
		{GeneralTopic: "Health"},
		{GeneralTopic: "Politics"},
		{GeneralTopic: "Politics"},
	}
	if merged := Merge(windows); merged.GeneralTopic != "Politics" {
		t.Errorf("expected Politics, got %q", merged.GeneralTopic)
	}

	// Tie broken by first occurrence.
	windows = []model.AnalysisReport{
		{GeneralTopic: "Health"},
		{GeneralTopic: "Politics"},
	}
	if merged := Merge(windows); merged.GeneralTopic != "Health" {
		t.Errorf("expected first-occurrence tiebreak Health, got %q", merged.GeneralTopic)
	}
}

func TestMerge_TitleClaimDeduplication(t *testing.T) {
	windows := []model.AnalysisReport{
		{Timestamps: []model.Claim{
			{TimestampInStr: model.TitleTimestamp, Claim: "title", Explanation: "short"},
			{TimestampInS: intPtr(30), TimestampInStr: "00:30", Claim: "first claim"},
		}},
		{Timestamps: []model.Claim{
			{TimestampInStr: model.TitleTimestamp, Claim: "title", Explanation: "a much longer explanation wins"},
			{TimestampInS: intPtr(330), TimestampInStr: "05:30", Claim: "second claim"},
		}},
	}

	merged := Merge(windows)
	if len(merged.Timestamps) != 3 {
		t.Fatalf("expected 3 claims after title dedup, got %d", len(merged.Timestamps))
	}
	first := merged.Timestamps[0]
	if first.TimestampInStr != model.TitleTimestamp {
		t.Error("expected surviving title claim at the front")
	}
	if first.Explanation != "a much longer explanation wins" {
		t.Errorf("expected longest explanation to survive, got %q", first.Explanation)
	}
	if merged.Timestamps[1].Claim != "first claim" || merged.Timestamps[2].Claim != "second claim" {
		t.Error("window order of non-title claims not preserved")
	}
}

func TestMerge_Recommendations(t *testing.T) {
	windows := []model.AnalysisReport{
		{EducationalRecommendations: []model.Recommendation{
			{Title: "A", URL: "https://a.example", CredibilityScore: 6},
			{Title: "B", URL: "https://b.example", CredibilityScore: 9},
		}},
		{EducationalRecommendations: []model.Recommendation{
			{Title: "A again", URL: "https://a.example", CredibilityScore: 10}, // duplicate URL, dropped
			{Title: "C", URL: "https://c.example", CredibilityScore: 7},
			{Title: "D", URL: "https://d.example", CredibilityScore: 8},
			{Title: "E", URL: "https://e.example", CredibilityScore: 5},
			{Title: "F", URL: "https://f.example", CredibilityScore: 4},
		}},
	}

	merged := Merge(windows)
	recs := merged.EducationalRecommendations
	if len(recs) != MaxRecommendations {
		t.Fatalf("expected %d recommendations, got %d", MaxRecommendations, len(recs))
	}
	if recs[0].URL != "https://b.example" {
		t.Errorf("expected highest credibility first, got %+v", recs[0])
	}
	// First occurrence of the duplicate URL wins, with its original score.
	for _, r := range recs {
		if r.URL == "https://a.example" && r.CredibilityScore != 6 {
			t.Errorf("duplicate URL should keep first occurrence, got %+v", r)
		}
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].CredibilityScore > recs[i-1].CredibilityScore {
			t.Errorf("recommendations not sorted by credibility: %+v", recs)
		}
	}
}

func TestAppendRecommendations(t *testing.T) {
	report := &model.AnalysisReport{
		EducationalRecommendations: []model.Recommendation{
			{Title: "Kept", URL: "https://kept.example", CredibilityScore: 5},
		},
	}
	if !NeedsAugmentation(report) {
		t.Fatal("expected report with one recommendation to need augmentation")
	}

	AppendRecommendations(report, []model.Recommendation{
		{Title: "Dup", URL: "https://kept.example", CredibilityScore: 9},
		{Title: "New", URL: "https://new.example", CredibilityScore: 8},
	})

	recs := report.EducationalRecommendations
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d", len(recs))
	}
	for _, r := range recs {
		if r.URL == "https://kept.example" && r.CredibilityScore != 5 {
			t.Errorf("existing entry should win deduplication, got %+v", r)
		}
	}
}

func TestMerge_MissingFieldsContributeZero(t *testing.T) {
	windows := []model.AnalysisReport{
		{}, // fallback window: everything empty
		{
			GeneralTopic: "Science",
			Percentages:  model.Percentages{Overall: 80, FalseInformation: 20, VerifiedInformation: 60, MisleadingInformation: 20},
			Timestamps:   []model.Claim{{TimestampInS: intPtr(10), TimestampInStr: "00:10", Claim: "c"}},
		},
	}

	merged := Merge(windows)
	if merged.GeneralTopic != "Science" {
		t.Errorf("expected Science, got %q", merged.GeneralTopic)
	}
	if merged.Percentages.Overall != 40 {
		t.Errorf("empty window should average in as zero, got overall %d", merged.Percentages.Overall)
	}
	if len(merged.Timestamps) != 1 {
		t.Errorf("expected 1 claim, got %d", len(merged.Timestamps))
	}
}

func TestMerge_Conclusion(t *testing.T) {
	windows := []model.AnalysisReport{
		{
			GeneralTopic: "Health",
			Percentages:  model.Percentages{Overall: 70, FalseInformation: 20, VerifiedInformation: 60, MisleadingInformation: 20},
			Timestamps:   []model.Claim{{TimestampInS: intPtr(5), TimestampInStr: "00:05", Claim: "a"}},
		},
	}

	merged := Merge(windows)
	for _, want := range []string{"Health", "1 notable claims", "70% accurate", "20% false information", "20% misleading"} {
		if !strings.Contains(merged.Conclusion, want) {
			t.Errorf("conclusion %q missing %q", merged.Conclusion, want)
		}
	}
}

func TestMerge_NoWindows(t *testing.T) {
	merged := Merge(nil)
	if merged == nil {
		t.Fatal("Merge must never return nil")
	}
	if len(merged.Timestamps) != 0 {
		t.Errorf("expected empty report, got %d claims", len(merged.Timestamps))
	}
}
