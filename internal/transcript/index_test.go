package transcript

import "testing"

func TestParseSegments_Basic(t *testing.T) {
	text := "[00:05] welcome to the show\n" +
		"[00:12] today we talk about the moon landing\n" +
		"no timestamp on this line\n" +
		"[01:00] it happened in 1969"

	segments := ParseSegments(text)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}

	if segments[0].Start != 5 || segments[0].End != 12 {
		t.Errorf("segment 0: got [%d,%d), want [5,12)", segments[0].Start, segments[0].End)
	}
	if segments[1].Start != 12 || segments[1].End != 60 {
		t.Errorf("segment 1: got [%d,%d), want [12,60)", segments[1].Start, segments[1].End)
	}
	// The last segment has no successor; it gets a fixed padding.
	if segments[2].Start != 60 || segments[2].End != 70 {
		t.Errorf("segment 2: got [%d,%d), want [60,70)", segments[2].Start, segments[2].End)
	}

	if segments[1].SearchText != "today we talk about the moon landing" {
		t.Errorf("unexpected search text: %q", segments[1].SearchText)
	}
}

func TestParseSegments_HoursFormat(t *testing.T) {
	segments := ParseSegments("[1:02:03] deep into the video")
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Start != 3723 {
		t.Errorf("expected start 3723, got %d", segments[0].Start)
	}
}

func TestParseSegments_NoTimestamps(t *testing.T) {
	segments := ParseSegments("just prose\nmore prose\n")
	if len(segments) != 0 {
		t.Errorf("expected empty index, got %d segments", len(segments))
	}

	if got := ParseSegments(""); len(got) != 0 {
		t.Errorf("expected empty index for empty transcript, got %d segments", len(got))
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  Multiple   spaces\tand\ttabs ", "multiple spaces and tabs"},
		{"It's 1969.", "its 1969"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{48, "00:48"},
		{300, "05:00"},
		{700, "11:40"},
		{3723, "62:03"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
