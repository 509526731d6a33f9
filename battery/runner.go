// Package battery orchestrates a question battery run: it paces and retries
// backend queries, resolves cited files against the document registry, and
// derives the authority rank of every answer.
package battery

import (
	"context"
	"time"

	"github.com/hoabrief/hoabrief"
	"golang.org/x/time/rate"
)

// Runner answers a battery of questions against a corpus index. Questions
// run strictly sequentially: one question is fully resolved, retries
// included, before the next is asked. The corpus must be fully ingested
// before Run is called; nothing here mutates it.
type Runner struct {
	Index       hoabrief.CorpusIndex
	Documents   hoabrief.DocumentService
	Limiter     *rate.Limiter
	RetryDelays []time.Duration
	Log         LogFunc
}

// ProgressEvent reports progress during a battery run or an ingest.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	Name      string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting progress.
type ProgressFunc func(event ProgressEvent)

// Run asks every question in order and returns one answer per question,
// in battery order. A question whose retry budget is exhausted is recorded
// as failed and the battery continues; only context cancellation aborts
// the run early.
func (r *Runner) Run(ctx context.Context, corpusID, agentID string, battery []hoabrief.Question, progress ProgressFunc) ([]*hoabrief.Answer, error) {
	corpus := corpusID
	docs, err := r.Documents.FindDocuments(ctx, hoabrief.DocumentFilter{CorpusID: &corpus})
	if err != nil {
		return nil, err
	}

	byFileID := make(map[string]*hoabrief.Document, len(docs))
	byFilename := make(map[string]*hoabrief.Document, len(docs))
	for _, doc := range docs {
		if doc.BackendFileID != "" {
			byFileID[doc.BackendFileID] = doc
		}
		byFilename[doc.Filename] = doc
	}

	delays := r.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	total := len(battery)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	answers := make([]*hoabrief.Answer, 0, total)
	for i, q := range battery {
		answer := &hoabrief.Answer{
			QuestionID: q.ID,
			Question:   q.Text,
			Rank:       hoabrief.RankUnranked,
			Status:     hoabrief.AnswerInFlight,
		}

		if r.Limiter != nil {
			if err := r.Limiter.Wait(ctx); err != nil {
				return answers, err
			}
		}

		ask := func(ctx context.Context, question string) (*hoabrief.AskResult, error) {
			return r.Index.Ask(ctx, agentID, question)
		}
		result, attempts, err := AskWithRetryDelays(ctx, q.Text, ask, r.Log, delays)
		answer.Attempts = attempts

		if err != nil {
			if ctx.Err() != nil {
				return answers, ctx.Err()
			}
			answer.Status = hoabrief.AnswerFailed
			answer.Err = err.Error()
			answers = append(answers, answer)
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: i + 1,
					Total:     total,
					Name:      q.Text,
					Error:     err,
				})
			}
			continue
		}

		answer.Response = result.Text
		answer.Citations = r.resolveCitations(result.CitedFiles, byFileID, byFilename)
		hoabrief.SortCitations(answer.Citations)
		answer.Rank = hoabrief.ResolveRank(answer.Citations)
		answer.NeedsReview = len(answer.Citations) == 0
		answer.Status = hoabrief.AnswerSucceeded
		answers = append(answers, answer)

		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: i + 1,
				Total:     total,
				Name:      q.Text,
			})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	return answers, nil
}

// resolveCitations maps backend file references onto registry documents.
// References are matched by backend file ID first, then by filename.
// References matching no known document are dropped with a log line; a
// hallucinated filename must not reach the report.
func (r *Runner) resolveCitations(cited []hoabrief.CitedFile, byFileID, byFilename map[string]*hoabrief.Document) []hoabrief.Citation {
	var citations []hoabrief.Citation
	seen := make(map[string]bool)
	for _, cf := range cited {
		doc, ok := byFileID[cf.FileID]
		if !ok {
			doc, ok = byFilename[cf.Filename]
		}
		if !ok {
			r.logf("  drop citation %q: no matching document", cf.Filename)
			continue
		}
		if seen[doc.ID] {
			continue
		}
		seen[doc.ID] = true
		citations = append(citations, hoabrief.Citation{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			Category:   doc.Category,
			Rank:       doc.Rank,
		})
	}
	return citations
}

func (r *Runner) logf(format string, args ...any) {
	if r.Log != nil {
		r.Log(format, args...)
	}
}
