package mock

import (
	"context"

	"github.com/hoabrief/hoabrief"
)

var _ hoabrief.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of hoabrief.DocumentService.
type DocumentService struct {
	CreateDocumentFn          func(ctx context.Context, doc *hoabrief.Document) error
	FindDocumentByIDFn        func(ctx context.Context, id string) (*hoabrief.Document, error)
	FindDocumentsFn           func(ctx context.Context, filter hoabrief.DocumentFilter) ([]*hoabrief.Document, error)
	UpdateDocumentFn          func(ctx context.Context, id string, upd hoabrief.DocumentUpdate) (*hoabrief.Document, error)
	DeleteDocumentFn          func(ctx context.Context, id string) error
	DeleteDocumentsByCorpusFn func(ctx context.Context, corpusID string) error
}

func (s *DocumentService) CreateDocument(ctx context.Context, doc *hoabrief.Document) error {
	return s.CreateDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocumentByID(ctx context.Context, id string) (*hoabrief.Document, error) {
	return s.FindDocumentByIDFn(ctx, id)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter hoabrief.DocumentFilter) ([]*hoabrief.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) UpdateDocument(ctx context.Context, id string, upd hoabrief.DocumentUpdate) (*hoabrief.Document, error) {
	return s.UpdateDocumentFn(ctx, id, upd)
}

func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	return s.DeleteDocumentFn(ctx, id)
}

func (s *DocumentService) DeleteDocumentsByCorpus(ctx context.Context, corpusID string) error {
	return s.DeleteDocumentsByCorpusFn(ctx, corpusID)
}
