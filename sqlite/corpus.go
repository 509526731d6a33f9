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
var _ hoabrief.CorpusService = (*CorpusService)(nil)

// CorpusService implements hoabrief.CorpusService using SQLite.
type CorpusService struct {
	db *DB
}

// NewCorpusService creates a new CorpusService.
func NewCorpusService(db *DB) *CorpusService {
	return &CorpusService{db: db}
}

// CreateCorpus creates a new corpus record.
func (s *CorpusService) CreateCorpus(ctx context.Context, corpus *hoabrief.Corpus) error {
	if err := corpus.Validate(); err != nil {
		return err
	}

	corpus.ID = uuid.New().String()
	now := time.Now().UTC()
	corpus.CreatedAt = now
	corpus.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corpora (id, name, backend_id, agent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, corpus.ID, corpus.Name, corpus.BackendID, corpus.AgentID,
		corpus.CreatedAt.Format(time.RFC3339), corpus.UpdatedAt.Format(time.RFC3339))

	return err
}

// FindCorpusByID retrieves a corpus by ID.
func (s *CorpusService) FindCorpusByID(ctx context.Context, id string) (*hoabrief.Corpus, error) {
	var corpus hoabrief.Corpus
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, backend_id, agent_id, created_at, updated_at
		FROM corpora
		WHERE id = ?
	`, id).Scan(&corpus.ID, &corpus.Name, &corpus.BackendID, &corpus.AgentID, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, hoabrief.Errorf(hoabrief.ENOTFOUND, "corpus not found")
	}
	if err != nil {
		return nil, err
	}

	if corpus.CreatedAt, err = scanTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if corpus.UpdatedAt, err = scanTime("updated_at", updatedAt); err != nil {
		return nil, err
	}

	return &corpus, nil
}

// FindCorpora retrieves corpora matching the filter.
func (s *CorpusService) FindCorpora(ctx context.Context, filter hoabrief.CorpusFilter) ([]*hoabrief.Corpus, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, name, backend_id, agent_id, created_at, updated_at FROM corpora WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY created_at DESC")

	args = paginate(&query, args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var corpora []*hoabrief.Corpus
	for rows.Next() {
		var corpus hoabrief.Corpus
		var createdAt, updatedAt string

		if err := rows.Scan(&corpus.ID, &corpus.Name, &corpus.BackendID, &corpus.AgentID,
			&createdAt, &updatedAt); err != nil {
			return nil, err
		}

		if corpus.CreatedAt, err = scanTime("created_at", createdAt); err != nil {
			return nil, err
		}
		if corpus.UpdatedAt, err = scanTime("updated_at", updatedAt); err != nil {
			return nil, err
		}

		corpora = append(corpora, &corpus)
	}

	return corpora, rows.Err()
}

// UpdateCorpus updates an existing corpus.
func (s *CorpusService) UpdateCorpus(ctx context.Context, id string, upd hoabrief.CorpusUpdate) (*hoabrief.Corpus, error) {
	// First check if corpus exists
	corpus, err := s.FindCorpusByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Apply updates
	if upd.BackendID != nil {
		corpus.BackendID = *upd.BackendID
	}
	if upd.AgentID != nil {
		corpus.AgentID = *upd.AgentID
	}

	corpus.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE corpora
		SET backend_id = ?, agent_id = ?, updated_at = ?
		WHERE id = ?
	`, corpus.BackendID, corpus.AgentID, corpus.UpdatedAt.Format(time.RFC3339), id)

	if err != nil {
		return nil, err
	}

	return corpus, nil
}

// DeleteCorpus permanently removes a corpus. Associated documents are
// removed by the foreign key cascade.
func (s *CorpusService) DeleteCorpus(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM corpora WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return hoabrief.Errorf(hoabrief.ENOTFOUND, "corpus not found")
	}

	return nil
}
