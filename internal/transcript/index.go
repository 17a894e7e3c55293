// Package transcript turns raw caption text into timed, searchable segments
// and fixed-duration analysis windows. Transcript lines look like
// "[mm:ss] utterance" or "[hh:mm:ss] utterance"; anything else is ignored.
package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dkorsak/veracity/internal/model"
)

// lastSegmentPadding is the assumed duration of the final utterance, which
// has no successor to derive an end boundary from.
const lastSegmentPadding = 10

var timestampLineRe = regexp.MustCompile(`^\s*\[(?:(\d{1,2}):)?(\d{1,2}):(\d{2})\]\s*(.*)$`)

// ParseSegments builds the ordered segment index from raw transcript text.
// Lines without a recognizable timestamp prefix are skipped. An empty or
// unparseable transcript yields an empty index, which callers must treat as
// "no ground truth available" rather than an error.
func ParseSegments(text string) []model.Segment {
	var segments []model.Segment
	for _, line := range strings.Split(text, "\n") {
		start, utterance, ok := parseLine(line)
		if !ok {
			continue
		}
		segments = append(segments, model.Segment{
			Start:      start,
			Text:       utterance,
			SearchText: NormalizeText(utterance),
		})
	}

	for i := range segments {
		if i+1 < len(segments) {
			segments[i].End = segments[i+1].Start
		} else {
			segments[i].End = segments[i].Start + lastSegmentPadding
		}
	}

	return segments
}

// parseLine extracts the timestamp and utterance from a single transcript
// line.
func parseLine(line string) (seconds int, utterance string, ok bool) {
	m := timestampLineRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}

	hours := 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	minutes, _ := strconv.Atoi(m[2])
	secs, _ := strconv.Atoi(m[3])

	return hours*3600 + minutes*60 + secs, m[4], true
}

// NormalizeText lowercases the text and strips everything except letters,
// digits and spaces, collapsing whitespace runs. Matching is done on this
// form so punctuation and casing differences don't break alignment.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// FormatTimestamp renders seconds as zero-padded mm:ss. Minutes run past 59
// for content longer than an hour, matching the transcript line format.
func FormatTimestamp(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
