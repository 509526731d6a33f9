package hoabrief

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Document represents one source file ingested into a corpus.
// Documents are created at ingest time and never mutated within a run.
type Document struct {
	ID            string    `json:"id"`
	CorpusID      string    `json:"corpusId"`
	Filename      string    `json:"filename"`
	Category      string    `json:"category"`
	Rank          int       `json:"rank"`
	Content       string    `json:"content"`
	ContentHash   string    `json:"contentHash"`
	BackendFileID string    `json:"backendFileId"`
	IngestedAt    time.Time `json:"ingestedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.CorpusID == "" {
		return Errorf(EINVALID, "document corpus ID required")
	}
	if d.Filename == "" {
		return Errorf(EINVALID, "document filename required")
	}
	if d.Rank < 0 {
		return Errorf(EINVALID, "document rank must not be negative")
	}
	return nil
}

// HashContent computes the xxHash of document content as a hex string. The
// registry stores it on every document; change detection at ingest time
// compares it against the incoming file.
func HashContent(content string) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}

// DocumentService represents a service for managing ingested documents.
type DocumentService interface {
	// CreateDocument creates a new document.
	CreateDocument(ctx context.Context, doc *Document) error

	// FindDocumentByID retrieves a document by ID.
	// Returns ENOTFOUND if document does not exist.
	FindDocumentByID(ctx context.Context, id string) (*Document, error)

	// FindDocuments retrieves documents matching the filter.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)

	// UpdateDocument updates an existing document.
	// Returns ENOTFOUND if document does not exist.
	UpdateDocument(ctx context.Context, id string, upd DocumentUpdate) (*Document, error)

	// DeleteDocument permanently removes a document.
	// Returns ENOTFOUND if document does not exist.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteDocumentsByCorpus removes all documents for a corpus.
	DeleteDocumentsByCorpus(ctx context.Context, corpusID string) error
}

// SortOrder represents the sort order for document queries.
type SortOrder string

// SortOrder constants for DocumentFilter.
const (
	SortByIngestedAt SortOrder = "ingested_at"
	SortByRank       SortOrder = "rank"
)

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	ID       *string `json:"id"`
	CorpusID *string `json:"corpusId"`
	Filename *string `json:"filename"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`

	SortBy SortOrder `json:"sortBy"`
}

// DocumentUpdate represents fields that can be updated on a document.
type DocumentUpdate struct {
	Category      *string `json:"category"`
	Rank          *int    `json:"rank"`
	Content       *string `json:"content"`
	BackendFileID *string `json:"backendFileId"`
}
