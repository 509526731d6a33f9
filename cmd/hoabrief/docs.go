package main

import (
	"fmt"

	"github.com/hoabrief/hoabrief"
)

// Run executes the docs command.
func (c *DocsCmd) Run(deps *Dependencies) error {
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

	docs, err := deps.Documents.FindDocuments(deps.Ctx, hoabrief.DocumentFilter{
		CorpusID: &corpus.ID,
		SortBy:   hoabrief.SortByRank,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", hoabrief.ErrorMessage(err))
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintf(deps.Stderr, "error: corpus %q has no documents. Run 'hoabrief run' to ingest documents first.\n", c.Corpus)
		return hoabrief.Errorf(hoabrief.ENOTFOUND, "corpus %q has no documents", c.Corpus)
	}

	if c.Full {
		// Print each document's extracted text (what the backend ingested)
		for _, doc := range docs {
			fmt.Fprintf(deps.Stdout, "=== %s (%s, rank %d) ===\n\n%s\n\n", doc.Filename, doc.Category, doc.Rank, doc.Content)
		}
		return nil
	}

	// Print summary listing in rank order
	fmt.Fprintf(deps.Stdout, "Documents in %s (%d total):\n\n", c.Corpus, len(docs))
	for _, doc := range docs {
		fmt.Fprintf(deps.Stdout, "  %2d. %-45s %s\n", doc.Rank, doc.Category, doc.Filename)
	}

	return nil
}
