package hoabrief

import (
	"context"
	"time"
)

// Report is the output artifact of one battery run: every question in
// battery order with its answer and citations, plus the document inventory
// the answers drew from.
type Report struct {
	Corpus      string      `json:"corpus"`
	Backend     string      `json:"backend"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Documents   []*Document `json:"documents"`
	Answers     []*Answer   `json:"answers"`
}

// Answered returns the number of answers that succeeded.
func (r *Report) Answered() int {
	var n int
	for _, a := range r.Answers {
		if a.Status == AnswerSucceeded {
			n++
		}
	}
	return n
}

// Failed returns the number of answers that failed.
func (r *Report) Failed() int {
	var n int
	for _, a := range r.Answers {
		if a.Status == AnswerFailed {
			n++
		}
	}
	return n
}

// ReportWriter persists a report. Each run produces exactly one new
// artifact; artifacts from prior runs are never appended to or modified.
type ReportWriter interface {
	// WriteReport renders and stores the report, returning the location of
	// the written artifact.
	WriteReport(ctx context.Context, report *Report) (string, error)
}
