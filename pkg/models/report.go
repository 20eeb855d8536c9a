package models

import "time"

// LineFailure describes one source line that did not become a question
type LineFailure struct {
	Line  int    `json:"line"`  // 1-based line number in the input
	Text  string `json:"text"`  // The trimmed line content
	Cause string `json:"cause"` // Why the line was skipped
	Fault bool   `json:"fault"` // True for internal faults, false for grammar mismatches
}

// Report summarizes a single conversion run
type Report struct {
	RunID     string        `json:"runId"`
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"durationNs"`
	Lines     int           `json:"lines"`  // Non-blank lines considered
	Parsed    int           `json:"parsed"` // Lines that became questions
	Failed    int           `json:"failed"` // Lines that were skipped
	Failures  []LineFailure `json:"failures"`
}
