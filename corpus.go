package hoabrief

import (
	"context"
	"time"
)

// Corpus represents a named document set tracked in the local registry and
// mirrored in the retrieval backend.
type Corpus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BackendID string    `json:"backendId"`
	AgentID   string    `json:"agentId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the corpus contains invalid fields.
func (c *Corpus) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "corpus name required")
	}
	return nil
}

// CorpusService represents a service for managing corpus records.
type CorpusService interface {
	// CreateCorpus creates a new corpus record.
	CreateCorpus(ctx context.Context, corpus *Corpus) error

	// FindCorpusByID retrieves a corpus by ID.
	// Returns ENOTFOUND if corpus does not exist.
	FindCorpusByID(ctx context.Context, id string) (*Corpus, error)

	// FindCorpora retrieves corpora matching the filter.
	FindCorpora(ctx context.Context, filter CorpusFilter) ([]*Corpus, error)

	// UpdateCorpus updates an existing corpus.
	// Returns ENOTFOUND if corpus does not exist.
	UpdateCorpus(ctx context.Context, id string, upd CorpusUpdate) (*Corpus, error)

	// DeleteCorpus permanently removes a corpus and all associated documents.
	// Returns ENOTFOUND if corpus does not exist.
	DeleteCorpus(ctx context.Context, id string) error
}

// CorpusFilter represents a filter for FindCorpora.
type CorpusFilter struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// CorpusUpdate represents fields that can be updated on a corpus.
type CorpusUpdate struct {
	BackendID *string `json:"backendId"`
	AgentID   *string `json:"agentId"`
}

// CitedFile identifies a backend file referenced by an answer.
type CitedFile struct {
	FileID   string `json:"fileId"`
	Filename string `json:"filename"`
}

// AskResult holds the backend's answer to a single question together with
// the files it cited as evidence.
type AskResult struct {
	Text       string      `json:"text"`
	CitedFiles []CitedFile `json:"citedFiles"`
}

// CorpusIndex is the retrieval backend the analysis runs against. The
// backend owns embedding, semantic retrieval, and answer synthesis;
// callers own authority bookkeeping.
//
// Calls may be slow and may fail transiently. Transient failures are
// reported as EUNAVAILABLE and are safe to retry.
type CorpusIndex interface {
	// EnsureCorpus returns the backend ID of the named corpus, creating it
	// if it does not exist. Repeated calls with the same name return the
	// same corpus.
	EnsureCorpus(ctx context.Context, name string) (string, error)

	// IngestDocument uploads a document into the corpus and returns the
	// backend file ID. Ingest is idempotent by filename: re-ingesting a
	// filename already present replaces the stored file rather than
	// duplicating it.
	IngestDocument(ctx context.Context, corpusID string, doc *Document) (string, error)

	// WaitReady blocks until the corpus has finished indexing all ingested
	// documents, or the context is canceled.
	WaitReady(ctx context.Context, corpusID string) error

	// EnsureAgent returns the ID of the named answering agent bound to the
	// corpus, creating or rebinding it as needed. The instructions encode
	// the authority-resolution policy for the whole run.
	EnsureAgent(ctx context.Context, name, corpusID, instructions string, temperature float32) (string, error)

	// VerifyAgent confirms the agent is attached to the expected corpus.
	// Returns EMISCONFIGURED if the binding is broken; answering through a
	// misbound agent would produce ungrounded answers.
	VerifyAgent(ctx context.Context, agentID, corpusID string) error

	// Ask answers a single question against the corpus through the agent.
	Ask(ctx context.Context, agentID, question string) (*AskResult, error)
}
