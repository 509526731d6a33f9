package battery

import (
	"context"

	"github.com/hoabrief/hoabrief"
	"golang.org/x/sync/errgroup"
)

// Ingestor loads source files, classifies them against the authority
// ranking, and ingests them into the corpus index and the document
// registry. Re-ingesting an unchanged file is a no-op; a changed file
// replaces its backend file instead of duplicating it.
type Ingestor struct {
	Loader       hoabrief.Loader
	Ranking      *hoabrief.Ranking
	Index        hoabrief.CorpusIndex
	Documents    hoabrief.DocumentService
	TokenCounter hoabrief.TokenCounter
	Concurrency  int
	Log          LogFunc
}

// IngestResult holds the outcome of an ingest operation. Ingested,
// Unchanged, and Failed count this run's files; Bytes, Tokens, and
// Documents describe the resulting corpus as a whole.
type IngestResult struct {
	Ingested  int
	Unchanged int
	Failed    int
	Bytes     int
	Tokens    int
	Documents []*hoabrief.Document
}

// ingestTask is one file headed for the backend.
type ingestTask struct {
	position int
	doc      *hoabrief.Document
	existing *hoabrief.Document // nil for new files
}

// ingestOutcome holds the backend result for a single task.
type ingestOutcome struct {
	task   ingestTask
	fileID string
	err    error
}

// IngestDirectory loads every parseable document under dir into the corpus.
// corpusID keys the document registry; backendID addresses the corpus in
// the index (the two coincide for backends that live in the registry).
// Backend uploads run concurrently under a bounded group; registry writes
// are applied sequentially afterwards. The progress callback, if provided,
// receives events as uploads complete.
func (ing *Ingestor) IngestDirectory(ctx context.Context, corpusID, backendID, dir string, progress ProgressFunc) (*IngestResult, error) {
	files, err := ing.Loader.Load(ctx, dir)
	if err != nil {
		return nil, err
	}

	corpus := corpusID
	existing, err := ing.Documents.FindDocuments(ctx, hoabrief.DocumentFilter{CorpusID: &corpus})
	if err != nil {
		return nil, err
	}
	byFilename := make(map[string]*hoabrief.Document, len(existing))
	for _, doc := range existing {
		byFilename[doc.Filename] = doc
	}

	result := &IngestResult{}

	// Partition files into backend tasks and unchanged skips.
	var tasks []ingestTask
	for _, f := range files {
		category, rank := ing.Ranking.Classify(f.Filename, f.Content)

		prev := byFilename[f.Filename]
		if prev != nil && prev.ContentHash == hoabrief.HashContent(f.Content) && prev.BackendFileID != "" {
			// Content is already in the backend. Classification can still
			// drift when the ranking file changes between runs.
			if prev.Category != category || prev.Rank != rank {
				if err := ing.reclassify(ctx, prev, category, rank); err != nil {
					result.Failed++
					ing.logf("  reclassify %s: %v", f.Filename, err)
					continue
				}
			}
			result.Unchanged++
			continue
		}

		doc := &hoabrief.Document{
			CorpusID: corpusID,
			Filename: f.Filename,
			Category: category,
			Rank:     rank,
			Content:  f.Content,
		}
		if prev != nil {
			// Carry the stale backend file ID so the index replaces it.
			doc.BackendFileID = prev.BackendFileID
		}
		tasks = append(tasks, ingestTask{position: len(tasks), doc: doc, existing: prev})
	}

	total := len(tasks)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	outcomes := ing.uploadAll(ctx, backendID, tasks)

	// Apply registry writes in input order.
	var completed int
	for _, outcome := range outcomes {
		completed++
		name := outcome.task.doc.Filename

		if outcome.err == nil {
			outcome.err = ing.record(ctx, outcome.task, outcome.fileID)
		}
		if outcome.err != nil {
			result.Failed++
			ing.logf("  ingest %s: %v", name, outcome.err)
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: completed,
					Total:     total,
					Name:      name,
					Error:     outcome.err,
				})
			}
			continue
		}

		result.Ingested++
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: completed,
				Total:     total,
				Name:      name,
			})
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}

	// The final inventory, in rank order, sizes the corpus for the report
	// and the prompt budget.
	docs, err := ing.Documents.FindDocuments(ctx, hoabrief.DocumentFilter{
		CorpusID: &corpus,
		SortBy:   hoabrief.SortByRank,
	})
	if err != nil {
		return nil, err
	}
	result.Documents = docs
	for _, doc := range docs {
		result.Bytes += len(doc.Content)
		if ing.TokenCounter != nil {
			if tokens, err := ing.TokenCounter.CountTokens(ctx, doc.Content); err == nil {
				result.Tokens += tokens
			}
		}
	}

	return result, nil
}

// uploadAll pushes every task to the backend under a bounded group and
// returns the outcomes ordered by task position.
func (ing *Ingestor) uploadAll(ctx context.Context, backendID string, tasks []ingestTask) []ingestOutcome {
	concurrency := ing.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	outcomeCh := make(chan ingestOutcome, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, task := range tasks {
			task := task
			g.Go(func() error {
				fileID, err := ing.Index.IngestDocument(gctx, backendID, task.doc)
				outcomeCh <- ingestOutcome{task: task, fileID: fileID, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(outcomeCh)
	}()

	outcomes := make([]ingestOutcome, len(tasks))
	for outcome := range outcomeCh {
		outcomes[outcome.task.position] = outcome
	}
	return outcomes
}

// record persists a successful backend upload to the registry.
func (ing *Ingestor) record(ctx context.Context, task ingestTask, fileID string) error {
	if task.existing == nil {
		task.doc.BackendFileID = fileID
		return ing.Documents.CreateDocument(ctx, task.doc)
	}

	_, err := ing.Documents.UpdateDocument(ctx, task.existing.ID, hoabrief.DocumentUpdate{
		Content:       &task.doc.Content,
		Category:      &task.doc.Category,
		Rank:          &task.doc.Rank,
		BackendFileID: &fileID,
	})
	return err
}

// reclassify updates a document's category and rank without touching its
// content or backend file.
func (ing *Ingestor) reclassify(ctx context.Context, doc *hoabrief.Document, category string, rank int) error {
	_, err := ing.Documents.UpdateDocument(ctx, doc.ID, hoabrief.DocumentUpdate{
		Category: &category,
		Rank:     &rank,
	})
	return err
}

func (ing *Ingestor) logf(format string, args ...any) {
	if ing.Log != nil {
		ing.Log(format, args...)
	}
}
