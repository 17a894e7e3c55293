package model

import (
	"encoding/json"
	"math"
)

// Label classifies the factual status of a single claim
type Label string

const (
	LabelCorrect    Label = "Correct"
	LabelFalse      Label = "False"
	LabelMisleading Label = "Misleading"
)

// TitleTimestamp is the literal timestampInStr value used when the model
// analyzes the video title rather than a point in the timeline. Title claims
// have no timestampInS and are exempt from alignment.
const TitleTimestamp = "title"

// AnalysisReport is the complete structured result of a video analysis.
// The JSON shape matches the persisted record exactly; OriginalID is attached
// post-hoc by the orchestrator and is never produced by the model.
type AnalysisReport struct {
	Conclusion   string      `json:"conclusion"`
	Percentages  Percentages `json:"percentages"`
	GeneralTopic string      `json:"generalTopic"`
	Topics       Topics      `json:"topics"`
	Timestamps   []Claim     `json:"timestamps"`

	EducationalRecommendations []Recommendation `json:"educationalRecommendations,omitempty"`

	OriginalID string `json:"originalId,omitempty"`

	// Set only when the model response could not be recovered into the
	// schema above; RawResponse carries the original text
	Error       string `json:"error,omitempty"`
	RawResponse string `json:"rawResponse,omitempty"`
}

// IsFallback reports whether this report is a parse-failure placeholder
// rather than a real analysis.
func (r *AnalysisReport) IsFallback() bool {
	return r.Error != ""
}

// Percentages holds the accuracy breakdown. FalseInformation,
// VerifiedInformation and MisleadingInformation always sum to exactly 100
// after validation; Overall is an independent score.
type Percentages struct {
	Overall               int `json:"overall"`
	FalseInformation      int `json:"falseInformation"`
	VerifiedInformation   int `json:"verifiedInformation"`
	MisleadingInformation int `json:"misleadingInformation"`
}

// UnmarshalJSON accepts fractional values. Models occasionally emit
// percentages like 33.3 despite being asked for integers; decode through
// floats and round to the nearest integer.
func (p *Percentages) UnmarshalJSON(data []byte) error {
	var raw struct {
		Overall               float64 `json:"overall"`
		FalseInformation      float64 `json:"falseInformation"`
		VerifiedInformation   float64 `json:"verifiedInformation"`
		MisleadingInformation float64 `json:"misleadingInformation"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Overall = int(math.Round(raw.Overall))
	p.FalseInformation = int(math.Round(raw.FalseInformation))
	p.VerifiedInformation = int(math.Round(raw.VerifiedInformation))
	p.MisleadingInformation = int(math.Round(raw.MisleadingInformation))
	return nil
}

// Topics groups the claim subjects the model identified.
// Invariant: Count == len(Categories) after validation.
type Topics struct {
	Categories []TopicCategory `json:"categories"`
	Count      int             `json:"count"`
}

// TopicCategory is a single topic with its mention count. Titles are unique
// within a report.
type TopicCategory struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Claim is a single timestamped factual assertion with its verdict.
type Claim struct {
	// TimestampInS is nil exactly when TimestampInStr is "title"
	TimestampInS   *int       `json:"timestampInS"`
	TimestampInStr string     `json:"timestampInStr"`
	Label          Label      `json:"label"`
	Claim          string     `json:"claim"`
	Explanation    string     `json:"explanation"`
	Source         string     `json:"source"`
	Validation     Validation `json:"validation"`
}

// IsTitleClaim reports whether this claim targets the video title instead of
// a timeline position.
func (c *Claim) IsTitleClaim() bool {
	return c.TimestampInStr == TitleTimestamp || c.TimestampInS == nil
}

// Validation carries the model's self-assessment of a claim verdict.
type Validation struct {
	IsValid     bool        `json:"isValid"`
	Confidence  int         `json:"confidence"`
	Explanation string      `json:"explanation"`
	References  []Reference `json:"references"`
}

// Reference is a cited source backing a claim verdict.
type Reference struct {
	Title            string `json:"title"`
	URL              string `json:"url,omitempty"`
	Author           string `json:"author,omitempty"`
	Publisher        string `json:"publisher,omitempty"`
	PublicationDate  string `json:"publicationDate,omitempty"`
	CredibilityScore int    `json:"credibilityScore"`
}

// RecommendationType classifies an educational recommendation.
type RecommendationType string

const (
	RecommendationArticle       RecommendationType = "Article"
	RecommendationVideo         RecommendationType = "Video"
	RecommendationCourse        RecommendationType = "Course"
	RecommendationBook          RecommendationType = "Book"
	RecommendationResearchPaper RecommendationType = "Research Paper"
	RecommendationWebsite       RecommendationType = "Website"
)

// Recommendation points viewers at trustworthy follow-up material.
type Recommendation struct {
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	URL               string             `json:"url"`
	Type              RecommendationType `json:"type"`
	AuthorOrPublisher string             `json:"authorOrPublisher"`
	CredibilityScore  int                `json:"credibilityScore"`
	RelevantTopics    []string           `json:"relevantTopics"`
}
