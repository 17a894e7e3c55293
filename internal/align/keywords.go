package align

import (
	"sort"
	"strings"

	"github.com/dkorsak/veracity/internal/transcript"
)

// MaxKeywords bounds how many keywords are extracted from a claim.
const MaxKeywords = 5

// minKeywordLength: only words longer than 3 characters carry enough signal
// to be worth matching on.
const minKeywordLength = 4

// stopWords are common words excluded from keyword extraction. Only words of
// minKeywordLength and longer appear here.
var stopWords = map[string]bool{
	"that": true, "this": true, "with": true, "from": true, "have": true,
	"been": true, "were": true, "they": true, "them": true, "then": true,
	"than": true, "there": true, "their": true, "these": true, "those": true,
	"which": true, "would": true, "could": true, "should": true, "about": true,
	"what": true, "when": true, "will": true, "your": true, "into": true,
	"over": true, "also": true, "just": true, "like": true, "said": true,
	"says": true, "very": true, "much": true, "more": true, "most": true,
	"some": true, "such": true, "because": true, "while": true, "where": true,
	"being": true, "does": true,
}

// ExtractKeywords picks up to MaxKeywords distinctive words from a claim,
// longest first. Short words and stop words are skipped.
func ExtractKeywords(claim string) []string {
	words := splitWords(transcript.NormalizeText(claim))

	seen := make(map[string]bool)
	var keywords []string
	for _, w := range words {
		if len(w) < minKeywordLength || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}

	// Longest first; stable so equal-length keywords keep claim order.
	sort.SliceStable(keywords, func(i, j int) bool {
		return len(keywords[i]) > len(keywords[j])
	})

	if len(keywords) > MaxKeywords {
		keywords = keywords[:MaxKeywords]
	}
	return keywords
}

func splitWords(text string) []string {
	return strings.Fields(text)
}
