package main

import (
	"fmt"

	"github.com/hoabrief/hoabrief"
	"github.com/hoabrief/hoabrief/battery"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	ranking, err := loadRanking(c.Ranking)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	corpora, err := deps.Corpora.FindCorpora(deps.Ctx, hoabrief.CorpusFilter{Name: &c.Corpus})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}
	if len(corpora) == 0 {
		fmt.Fprintf(deps.Stderr, "error: corpus %q not found. Run 'hoabrief run' to ingest documents first.\n", c.Corpus)
		return hoabrief.Errorf(hoabrief.ENOTFOUND, "corpus %q not found", c.Corpus)
	}
	corpus := corpora[0]

	docs, err := deps.Documents.FindDocuments(deps.Ctx, hoabrief.DocumentFilter{CorpusID: &corpus.ID})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintf(deps.Stderr, "error: corpus %q has no documents. Run 'hoabrief run' to ingest documents first.\n", c.Corpus)
		return hoabrief.Errorf(hoabrief.ENOTFOUND, "corpus %q has no documents", c.Corpus)
	}

	backendID, err := deps.Index.EnsureCorpus(deps.Ctx, c.Corpus)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	agentID, err := ensureAgent(deps, c.BackendFlags, ranking, corpus, backendID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	runner := &battery.Runner{
		Index:       deps.Index,
		Documents:   deps.Documents,
		RetryDelays: battery.RetryDelays(c.Retries, c.RetryDelay),
		Log:         stderrLog(deps),
	}

	question := []hoabrief.Question{{ID: 1, Text: c.Question}}
	answers, err := runner.Run(deps.Ctx, corpus.ID, agentID, question, nil)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}

	answer := answers[0]
	if answer.Status == hoabrief.AnswerFailed {
		fmt.Fprintf(deps.Stderr, "error: %s\n", answer.Err)
		return hoabrief.Errorf(hoabrief.EUNAVAILABLE, "question failed after %d attempt(s): %s", answer.Attempts, answer.Err)
	}

	fmt.Fprintln(deps.Stdout, answer.Response)
	if len(answer.Citations) > 0 {
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Sources:")
		for _, cit := range answer.Citations {
			fmt.Fprintf(deps.Stdout, "  %d. %s (%s)\n", cit.Rank, cit.Filename, cit.Category)
		}
	}
	if answer.NeedsReview {
		fmt.Fprintln(deps.Stderr, "warning: answer cites no documents; verify before relying on it")
	}

	return nil
}
