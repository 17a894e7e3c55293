package transcript

import (
	"strings"
	"testing"
)

func TestSplitWindows_Boundaries(t *testing.T) {
	text := "[00:10] first window line\n" +
		"[04:59] still first window\n" +
		"[05:00] second window line\n" +
		"[09:59] still second window\n" +
		"[10:00] third window line\n" +
		"untimed line dropped everywhere"

	windows := SplitWindows(text, 700)
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows for a 700s transcript, got %d", len(windows))
	}

	bounds := []struct{ start, end string }{
		{"00:00", "05:00"},
		{"05:00", "10:00"},
		{"10:00", "11:40"},
	}
	for i, b := range bounds {
		if windows[i].StartTime != b.start || windows[i].EndTime != b.end {
			t.Errorf("window %d: got %s-%s, want %s-%s", i, windows[i].StartTime, windows[i].EndTime, b.start, b.end)
		}
	}

	if !strings.Contains(windows[0].Text, "first window line") || !strings.Contains(windows[0].Text, "still first window") {
		t.Errorf("window 0 missing expected lines: %q", windows[0].Text)
	}
	if !strings.Contains(windows[1].Text, "second window line") {
		t.Errorf("window 1 missing expected line: %q", windows[1].Text)
	}
	if strings.Contains(windows[1].Text, "third window") {
		t.Errorf("window 1 should not contain third window line: %q", windows[1].Text)
	}
	for i, w := range windows {
		if strings.Contains(w.Text, "untimed") {
			t.Errorf("window %d contains an untimed line", i)
		}
	}
}

func TestSplitWindows_ShortVideo(t *testing.T) {
	windows := SplitWindows("[00:30] only line", 200)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	if windows[0].StartTime != "00:00" || windows[0].EndTime != "03:20" {
		t.Errorf("unexpected bounds %s-%s", windows[0].StartTime, windows[0].EndTime)
	}
}

func TestSplitWindows_ZeroDuration(t *testing.T) {
	if windows := SplitWindows("[00:30] line", 0); windows != nil {
		t.Errorf("expected nil for zero duration, got %d windows", len(windows))
	}
}
