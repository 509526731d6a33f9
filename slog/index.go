// Package slog provides logging decorators for the corpus index.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/hoabrief/hoabrief"
)

// Ensure LoggingCorpusIndex implements hoabrief.CorpusIndex.
var _ hoabrief.CorpusIndex = (*LoggingCorpusIndex)(nil)

// LoggingCorpusIndex wraps a CorpusIndex with debug logging of backend
// operations: durations, ingest sizes, citation counts, and errors.
type LoggingCorpusIndex struct {
	next   hoabrief.CorpusIndex
	logger *slog.Logger
}

// NewLoggingCorpusIndex creates a new LoggingCorpusIndex.
func NewLoggingCorpusIndex(next hoabrief.CorpusIndex, logger *slog.Logger) *LoggingCorpusIndex {
	return &LoggingCorpusIndex{next: next, logger: logger}
}

// EnsureCorpus delegates to the wrapped index and logs the operation.
func (s *LoggingCorpusIndex) EnsureCorpus(ctx context.Context, name string) (corpusID string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("ensure corpus",
			"name", name,
			"corpusID", corpusID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.EnsureCorpus(ctx, name)
}

// IngestDocument delegates to the wrapped index and logs the operation.
func (s *LoggingCorpusIndex) IngestDocument(ctx context.Context, corpusID string, doc *hoabrief.Document) (fileID string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("ingest document",
			"filename", doc.Filename,
			"bytes", len(doc.Content),
			"fileID", fileID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.IngestDocument(ctx, corpusID, doc)
}

// WaitReady delegates to the wrapped index and logs the operation.
func (s *LoggingCorpusIndex) WaitReady(ctx context.Context, corpusID string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("corpus ready",
			"corpusID", corpusID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.WaitReady(ctx, corpusID)
}

// EnsureAgent delegates to the wrapped index and logs the operation.
func (s *LoggingCorpusIndex) EnsureAgent(ctx context.Context, name, corpusID, instructions string, temperature float32) (agentID string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("ensure agent",
			"name", name,
			"corpusID", corpusID,
			"agentID", agentID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.EnsureAgent(ctx, name, corpusID, instructions, temperature)
}

// VerifyAgent delegates to the wrapped index and logs the operation.
func (s *LoggingCorpusIndex) VerifyAgent(ctx context.Context, agentID, corpusID string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("verify agent",
			"agentID", agentID,
			"corpusID", corpusID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.VerifyAgent(ctx, agentID, corpusID)
}

// Ask delegates to the wrapped index and logs the operation.
func (s *LoggingCorpusIndex) Ask(ctx context.Context, agentID, question string) (result *hoabrief.AskResult, err error) {
	defer func(begin time.Time) {
		var citations int
		if result != nil {
			citations = len(result.CitedFiles)
		}
		s.logger.Info("ask",
			"agentID", agentID,
			"citations", citations,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Ask(ctx, agentID, question)
}
