package transcript

import (
	"strings"

	"github.com/dkorsak/veracity/internal/model"
)

// WindowDuration is the fixed length of one analysis window in seconds.
// Long videos are split into windows of this size and each window is
// analyzed by the model independently.
const WindowDuration = 300

// SplitWindows splits a transcript into fixed-duration windows covering
// [0, totalDuration]. Each line is assigned to the window whose range
// contains its parsed timestamp; lines without a timestamp are dropped from
// every window.
func SplitWindows(text string, totalDuration int) []model.Window {
	if totalDuration <= 0 {
		return nil
	}

	count := (totalDuration + WindowDuration - 1) / WindowDuration
	lines := strings.Split(text, "\n")

	windows := make([]model.Window, 0, count)
	for i := 0; i < count; i++ {
		start := i * WindowDuration
		end := (i + 1) * WindowDuration
		if end > totalDuration {
			end = totalDuration
		}

		var collected []string
		for _, line := range lines {
			ts, _, ok := parseLine(line)
			if ok && ts >= start && ts < end {
				collected = append(collected, line)
			}
		}

		windows = append(windows, model.Window{
			StartTime: FormatTimestamp(start),
			EndTime:   FormatTimestamp(end),
			Text:      strings.Join(collected, "\n"),
		})
	}

	return windows
}
