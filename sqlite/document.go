package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hoabrief/hoabrief"
)

// Compile-time interface verification.
var _ hoabrief.DocumentService = (*DocumentService)(nil)

// DocumentService implements hoabrief.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// CreateDocument creates a new document.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *hoabrief.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	doc.ID = uuid.New().String()
	doc.IngestedAt = time.Now().UTC()
	doc.ContentHash = hoabrief.HashContent(doc.Content)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, corpus_id, filename, category, authority_rank, content, content_hash, backend_file_id, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.CorpusID, doc.Filename, doc.Category, doc.Rank, doc.Content, doc.ContentHash,
		doc.BackendFileID, doc.IngestedAt.Format(time.RFC3339))

	return err
}

// FindDocumentByID retrieves a document by ID.
func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*hoabrief.Document, error) {
	var doc hoabrief.Document
	var ingestedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, corpus_id, filename, category, authority_rank, content, content_hash, backend_file_id, ingested_at
		FROM documents
		WHERE id = ?
	`, id).Scan(&doc.ID, &doc.CorpusID, &doc.Filename, &doc.Category, &doc.Rank,
		&doc.Content, &doc.ContentHash, &doc.BackendFileID, &ingestedAt)

	if err == sql.ErrNoRows {
		return nil, hoabrief.Errorf(hoabrief.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}

	if doc.IngestedAt, err = scanTime("ingested_at", ingestedAt); err != nil {
		return nil, err
	}

	return &doc, nil
}

// FindDocuments retrieves documents matching the filter.
func (s *DocumentService) FindDocuments(ctx context.Context, filter hoabrief.DocumentFilter) ([]*hoabrief.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, corpus_id, filename, category, authority_rank, content, content_hash, backend_file_id, ingested_at FROM documents WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.CorpusID != nil {
		query.WriteString(" AND corpus_id = ?")
		args = append(args, *filter.CorpusID)
	}
	if filter.Filename != nil {
		query.WriteString(" AND filename = ?")
		args = append(args, *filter.Filename)
	}

	switch filter.SortBy {
	case hoabrief.SortByRank:
		query.WriteString(" ORDER BY authority_rank ASC, filename ASC")
	default:
		query.WriteString(" ORDER BY ingested_at DESC")
	}

	args = paginate(&query, args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*hoabrief.Document
	for rows.Next() {
		var doc hoabrief.Document
		var ingestedAt string

		if err := rows.Scan(&doc.ID, &doc.CorpusID, &doc.Filename, &doc.Category, &doc.Rank,
			&doc.Content, &doc.ContentHash, &doc.BackendFileID, &ingestedAt); err != nil {
			return nil, err
		}

		if doc.IngestedAt, err = scanTime("ingested_at", ingestedAt); err != nil {
			return nil, err
		}

		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// UpdateDocument updates an existing document.
func (s *DocumentService) UpdateDocument(ctx context.Context, id string, upd hoabrief.DocumentUpdate) (*hoabrief.Document, error) {
	// First check if document exists
	doc, err := s.FindDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Apply updates
	if upd.Category != nil {
		doc.Category = *upd.Category
	}
	if upd.Rank != nil {
		doc.Rank = *upd.Rank
	}
	if upd.Content != nil {
		doc.Content = *upd.Content
		doc.ContentHash = hoabrief.HashContent(doc.Content)
	}
	if upd.BackendFileID != nil {
		doc.BackendFileID = *upd.BackendFileID
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE documents
		SET category = ?, authority_rank = ?, content = ?, content_hash = ?, backend_file_id = ?
		WHERE id = ?
	`, doc.Category, doc.Rank, doc.Content, doc.ContentHash, doc.BackendFileID, id)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// DeleteDocument permanently removes a document.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return hoabrief.Errorf(hoabrief.ENOTFOUND, "document not found")
	}

	return nil
}

// DeleteDocumentsByCorpus removes all documents for a corpus.
func (s *DocumentService) DeleteDocumentsByCorpus(ctx context.Context, corpusID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE corpus_id = ?", corpusID)
	return err
}
