// Package repair recovers structured analysis reports from loosely formatted
// model output. Generative models are asked for strict JSON but routinely
// return fenced code blocks, single-quoted strings, bare keys or trailing
// commas; this package turns such near-JSON into a validated report without
// ever failing.
package repair

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/dkorsak/veracity/internal/model"
)

var (
	fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*\\n([\\s\\S]*?)\\n\\s*```")

	singleQuotedKeyRe = regexp.MustCompile(`'([^']*)'(\s*:)`)
	singleQuotedValRe = regexp.MustCompile(`(:\s*)'([^']*)'`)
	bareKeyRe         = regexp.MustCompile(`([{,]\s*)([A-Za-z0-9_]+)(\s*:)`)
	trailingCommaRe   = regexp.MustCompile(`,(\s*[}\]])`)
	whitespaceRunRe   = regexp.MustCompile(`\s+`)
)

// stage is one step of the fallback chain: a pure text transform followed by
// a strict parse attempt. Stages are tried in order; each is independently
// testable.
type stage struct {
	name      string
	transform func(string) string
}

var stages = []stage{
	{name: "strict", transform: func(s string) string { return s }},
	{name: "quotes", transform: normalizeQuotes},
	{name: "aggressive", transform: normalizeAggressive},
}

// Recover parses arbitrary model output into an analysis report. It never
// returns an error: if every repair stage fails, the result is a fallback
// report carrying the failure reason and the original text.
func Recover(text string) *model.AnalysisReport {
	candidate := extractFenced(text)

	for _, s := range stages {
		var report model.AnalysisReport
		if err := json.Unmarshal([]byte(s.transform(candidate)), &report); err == nil {
			Normalize(&report)
			return &report
		}
	}

	return &model.AnalysisReport{
		Error:       "failed to parse model response",
		RawResponse: text,
	}
}

// extractFenced returns the contents of the first fenced code block, or the
// whole text when no fence is present.
func extractFenced(text string) string {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// normalizeQuotes fixes the common model mistakes: single-quoted keys and
// values, unquoted identifier keys, and trailing commas before closing
// brackets.
func normalizeQuotes(s string) string {
	s = singleQuotedKeyRe.ReplaceAllString(s, `"${1}"${2}`)
	s = singleQuotedValRe.ReplaceAllString(s, `${1}"${2}"`)
	s = bareKeyRe.ReplaceAllString(s, `${1}"${2}"${3}`)
	s = trailingCommaRe.ReplaceAllString(s, "${1}")
	return s
}

// normalizeAggressive is the lossier last resort: collapse whitespace runs,
// replace every single quote with a double quote, then reapply bare-key
// quoting and trailing-comma removal. Apostrophes inside strings do not
// survive this, which is why it runs last.
func normalizeAggressive(s string) string {
	s = whitespaceRunRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "'", `"`)
	s = bareKeyRe.ReplaceAllString(s, `${1}"${2}"${3}`)
	s = trailingCommaRe.ReplaceAllString(s, "${1}")
	return s
}
