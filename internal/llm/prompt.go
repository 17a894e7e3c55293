package llm

import (
	"fmt"
	"strings"

	"github.com/dkorsak/veracity/internal/model"
)

// analysisSchema is the JSON contract every analysis prompt demands. The
// repair package tolerates deviations, but asking precisely keeps the
// failure rate down.
const analysisSchema = `{
  "conclusion": "Brief overall conclusion about the content's accuracy",
  "percentages": {
    "overall": 0-100 (overall accuracy score),
    "falseInformation": 0-100 (percentage of false information),
    "verifiedInformation": 0-100 (percentage of verified information),
    "misleadingInformation": 0-100 (percentage of misleading information)
  },
  "generalTopic": "The general topic of the content",
  "topics": {
    "categories": [
      {"title": "Topic category name", "count": Number of mentions}
    ],
    "count": Total number of topics identified
  },
  "timestamps": [
    {
      "timestampInS": timestamp in seconds, or null only for the title claim,
      "timestampInStr": "mm:ss, or the literal word title for the title claim",
      "label": "Correct" or "False" or "Misleading",
      "claim": "The specific claim made",
      "explanation": "Why this is correct/false/misleading",
      "source": "Source that verifies or contradicts this claim",
      "validation": {
        "isValid": true/false,
        "confidence": 0-100,
        "explanation": "Detailed explanation with reasoning",
        "references": [
          {
            "title": "Title of the reference",
            "url": "URL if applicable",
            "author": "Author name if applicable",
            "publisher": "Publisher name if applicable",
            "publicationDate": "Date of publication if applicable",
            "credibilityScore": 1-10
          }
        ]
      }
    }
  ],
  "educationalRecommendations": [
    {
      "title": "Resource title",
      "description": "What the viewer will learn",
      "url": "URL of the resource",
      "type": "Article" or "Video" or "Course" or "Book" or "Research Paper" or "Website",
      "authorOrPublisher": "Who produced it",
      "credibilityScore": 1-10,
      "relevantTopics": ["at least one topic"]
    }
  ]
}`

const analysisRules = `IMPORTANT:
1. Output valid JSON. All property names and string values in double quotes, never single quotes.
2. Ensure the three information percentages add up to exactly 100.
3. Every claim needs a full validation with at least one reference from a trustworthy source; only the title claim may have none.
4. References must be specific (not just "Wikipedia" but the specific article) and favor academic sources, government publications, peer-reviewed research, and established news organizations.
5. The title can be analyzed only once.
6. Analyze claims throughout the entire duration, evenly distributed over the timeline, and make sure each timestampInS matches when the claim is actually said.
7. All fields are required; avoid null values except where explicitly allowed.

DO NOT USE CODE BLOCKS AROUND THE JSON. RETURN ONLY THE CLEAN JSON OBJECT WITHOUT ANY FORMATTING OR CODE BLOCKS.`

// BuildAnalysisPrompt asks for a full-transcript misinformation analysis.
func BuildAnalysisPrompt(title, content string) string {
	return fmt.Sprintf(`Analyze the following content for misinformation:
Title: %s
Content: %s

Go through the entire content and provide a detailed analysis in the following JSON format:
%s

For videos longer than 5 minutes identify at least 8-10 distinct claims with timestamps; for shorter videos at least 5-6. Capture both correct and incorrect claims.

%s`, title, content, analysisSchema, analysisRules)
}

// BuildWindowPrompt narrows the analysis to one window of a long video.
func BuildWindowPrompt(title string, index, total int, w model.Window) string {
	return fmt.Sprintf(`Analyze this segment (%s-%s) of the video "%s" (part %d of %d) for misinformation:

%s

Focus on identifying 3-5 distinct claims made during this time segment. Provide the analysis in the following JSON format:
%s

%s`, w.StartTime, w.EndTime, title, index+1, total, w.Text, analysisSchema, analysisRules)
}

// BuildMetadataPrompt covers the no-transcript path: the model analyzes the
// video from its title and identifier using its own knowledge of the
// content.
func BuildMetadataPrompt(videoID, title string) string {
	return fmt.Sprintf(`Analyze this video for misinformation:
Video ID: %s
Title: %s

NOTE: This video does not have a transcript available. Analyze it directly using your knowledge of the video content, and base the timestamps on where key claims appear. Provide a thorough analysis with at least 5-10 specific claims in the following JSON format:
%s

%s`, videoID, title, analysisSchema, analysisRules)
}

// BuildRecommendationsPrompt requests additional educational resources when
// the merged report came up short. Already-used URLs are excluded so the
// backfill only adds new material.
func BuildRecommendationsPrompt(topic string, excludeURLs []string) string {
	exclude := "(none)"
	if len(excludeURLs) > 0 {
		exclude = "- " + strings.Join(excludeURLs, "\n- ")
	}

	return fmt.Sprintf(`Recommend trustworthy educational resources about: %s

Do not recommend any of these URLs, they are already included:
%s

Respond in the following JSON format:
{
  "educationalRecommendations": [
    {
      "title": "Resource title",
      "description": "What the viewer will learn",
      "url": "URL of the resource",
      "type": "Article" or "Video" or "Course" or "Book" or "Research Paper" or "Website",
      "authorOrPublisher": "Who produced it",
      "credibilityScore": 1-10,
      "relevantTopics": ["at least one topic"]
    }
  ]
}

Only include highly trustworthy resources from reputable publishers. Output valid JSON with double quotes only. DO NOT USE CODE BLOCKS AROUND THE JSON.`, topic, exclude)
}
