package hoabrief

import "context"

// TokenCounter measures how many model tokens a piece of text costs.
// Ingest uses it to size the corpus against the prompt budget of backends
// that send every document with each question.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
