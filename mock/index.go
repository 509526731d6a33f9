package mock

import (
	"context"

	"github.com/hoabrief/hoabrief"
)

var _ hoabrief.CorpusIndex = (*CorpusIndex)(nil)

// CorpusIndex is a mock implementation of hoabrief.CorpusIndex.
type CorpusIndex struct {
	EnsureCorpusFn   func(ctx context.Context, name string) (string, error)
	IngestDocumentFn func(ctx context.Context, corpusID string, doc *hoabrief.Document) (string, error)
	WaitReadyFn      func(ctx context.Context, corpusID string) error
	EnsureAgentFn    func(ctx context.Context, name, corpusID, instructions string, temperature float32) (string, error)
	VerifyAgentFn    func(ctx context.Context, agentID, corpusID string) error
	AskFn            func(ctx context.Context, agentID, question string) (*hoabrief.AskResult, error)
}

func (i *CorpusIndex) EnsureCorpus(ctx context.Context, name string) (string, error) {
	return i.EnsureCorpusFn(ctx, name)
}

func (i *CorpusIndex) IngestDocument(ctx context.Context, corpusID string, doc *hoabrief.Document) (string, error) {
	return i.IngestDocumentFn(ctx, corpusID, doc)
}

func (i *CorpusIndex) WaitReady(ctx context.Context, corpusID string) error {
	return i.WaitReadyFn(ctx, corpusID)
}

func (i *CorpusIndex) EnsureAgent(ctx context.Context, name, corpusID, instructions string, temperature float32) (string, error) {
	return i.EnsureAgentFn(ctx, name, corpusID, instructions, temperature)
}

func (i *CorpusIndex) VerifyAgent(ctx context.Context, agentID, corpusID string) error {
	return i.VerifyAgentFn(ctx, agentID, corpusID)
}

func (i *CorpusIndex) Ask(ctx context.Context, agentID, question string) (*hoabrief.AskResult, error) {
	return i.AskFn(ctx, agentID, question)
}
