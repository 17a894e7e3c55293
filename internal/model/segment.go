package model

// Segment is a timestamped slice of transcript text. Segments are built once
// per analysis run and never mutated; End is derived as the next segment's
// Start (or Start+10 for the last segment) and is exclusive.
type Segment struct {
	Start      int    // seconds
	End        int    // seconds, exclusive
	Text       string // raw utterance text
	SearchText string // lowercased, punctuation-stripped text for matching
}

// Window is a fixed-duration slice of a long transcript, analyzed
// independently before aggregation. Consumed once and discarded.
type Window struct {
	StartTime string // formatted mm:ss
	EndTime   string // formatted mm:ss
	Text      string // transcript lines whose timestamps fall in the window
}
