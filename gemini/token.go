package gemini

import (
	"context"

	"github.com/hoabrief/hoabrief"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ hoabrief.TokenCounter = (*TokenCounter)(nil)

// TokenCounter measures text against the Gemini prompt budget using the
// local Gemini tokenizer; no API call is made.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter builds a TokenCounter for the given model. Counting is
// model-specific, so the model here should match the one used to answer.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the token count of text. Empty text counts as zero
// without touching the tokenizer.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	res, err := tc.tok.CountTokens([]*genai.Content{
		genai.NewContentFromText(text, "user"),
	}, nil)
	if err != nil {
		return 0, err
	}

	return int(res.TotalTokens), nil
}
