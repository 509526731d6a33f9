// Package openai implements the retrieval backend on the OpenAI Assistants
// API: a vector store holds the corpus, an assistant with the file_search
// tool answers questions, and file-citation annotations identify the
// documents an answer drew from.
package openai

import (
	"context"
	"errors"
	"time"

	"github.com/hoabrief/hoabrief"
	"github.com/patrickmn/go-cache"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is the model used for answering questions.
const DefaultModel = "gpt-4o-mini"

const (
	defaultPollInterval = time.Second

	// Backend file metadata is immutable, so cached filenames only need
	// to survive the run that looks them up.
	fileCacheTTL = 15 * time.Minute
)

// Ensure Index implements hoabrief.CorpusIndex at compile time.
var _ hoabrief.CorpusIndex = (*Index)(nil)

// Index implements hoabrief.CorpusIndex using OpenAI vector stores,
// files, and assistants.
type Index struct {
	client *openai.Client
	model  string
	poll   time.Duration

	// filenames caches file ID → filename lookups so repeated citations
	// of the same file don't re-fetch metadata.
	filenames *cache.Cache
}

// Option configures an Index.
type Option func(*Index)

// WithModel sets the model used for answering.
// Defaults to DefaultModel if not specified.
func WithModel(model string) Option {
	return func(i *Index) {
		i.model = model
	}
}

// WithPollInterval sets the interval for indexing and run status polls.
// Defaults to one second if not specified.
func WithPollInterval(d time.Duration) Option {
	return func(i *Index) {
		i.poll = d
	}
}

// NewIndex creates a new Index backed by the given client.
func NewIndex(client *openai.Client, opts ...Option) *Index {
	idx := &Index{
		client: client,
		model:  DefaultModel,
		poll:   defaultPollInterval,
	}
	for _, opt := range opts {
		opt(idx)
	}

	idx.filenames = cache.New(fileCacheTTL, 2*fileCacheTTL)

	return idx
}

// EnsureCorpus returns the ID of the vector store with the given name,
// creating it if absent.
func (i *Index) EnsureCorpus(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", hoabrief.Errorf(hoabrief.EINVALID, "corpus name required")
	}

	var after *string
	for {
		list, err := i.client.ListVectorStores(ctx, openai.Pagination{After: after})
		if err != nil {
			return "", classifyErr(err, "list vector stores")
		}
		for _, vs := range list.VectorStores {
			if vs.Name == name {
				return vs.ID, nil
			}
		}
		if !list.HasMore || list.LastID == nil {
			break
		}
		after = list.LastID
	}

	vs, err := i.client.CreateVectorStore(ctx, openai.VectorStoreRequest{Name: name})
	if err != nil {
		return "", classifyErr(err, "create vector store")
	}

	return vs.ID, nil
}

// IngestDocument uploads the document content and attaches it to the
// vector store. If the document carries a backend file ID from a prior
// ingest, the stale file is deleted first so the store never holds two
// copies of the same filename.
func (i *Index) IngestDocument(ctx context.Context, corpusID string, doc *hoabrief.Document) (string, error) {
	if corpusID == "" {
		return "", hoabrief.Errorf(hoabrief.EINVALID, "corpus ID required")
	}
	if err := doc.Validate(); err != nil {
		return "", err
	}

	if doc.BackendFileID != "" {
		if err := i.client.DeleteFile(ctx, doc.BackendFileID); err != nil && !isNotFound(err) {
			return "", classifyErr(err, "delete stale file")
		}
	}

	file, err := i.client.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    doc.Filename,
		Bytes:   []byte(doc.Content),
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return "", classifyErr(err, "upload file")
	}

	if _, err := i.client.CreateVectorStoreFile(ctx, corpusID, openai.VectorStoreFileRequest{
		FileID: file.ID,
	}); err != nil {
		return "", classifyErr(err, "attach file to vector store")
	}

	return file.ID, nil
}

// WaitReady polls the vector store until no files remain in progress.
// A file that fails indexing is fatal: answering against a partial corpus
// would silently drop sources.
func (i *Index) WaitReady(ctx context.Context, corpusID string) error {
	ticker := time.NewTicker(i.poll)
	defer ticker.Stop()

	for {
		vs, err := i.client.RetrieveVectorStore(ctx, corpusID)
		if err != nil {
			return classifyErr(err, "retrieve vector store")
		}

		if vs.FileCounts.Failed > 0 {
			return hoabrief.Errorf(hoabrief.EINTERNAL, "%d file(s) failed indexing in vector store %s", vs.FileCounts.Failed, corpusID)
		}
		if vs.FileCounts.InProgress == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// classifyErr maps OpenAI client errors onto domain error codes. Rate
// limits, server errors, and transport failures are transient
// (EUNAVAILABLE); everything else is reported as-is with context.
func classifyErr(err error, op string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return hoabrief.Errorf(hoabrief.EUNAVAILABLE, "%s: %s", op, apiErr.Message)
		}
		return hoabrief.Errorf(hoabrief.EINTERNAL, "%s: %s", op, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500 {
			return hoabrief.Errorf(hoabrief.EUNAVAILABLE, "%s: %v", op, err)
		}
		return hoabrief.Errorf(hoabrief.EINTERNAL, "%s: %v", op, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Transport-level failure with no HTTP response.
	return hoabrief.Errorf(hoabrief.EUNAVAILABLE, "%s: %v", op, err)
}

func isNotFound(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 404
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 404
	}
	return false
}
