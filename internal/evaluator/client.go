package evaluator

import (
	"context"
	"time"
)

// Client defines the interface for language-model evaluator providers.
type Client interface {
	ScoreTrait(ctx context.Context, prompt string) (ScoreResponse, error)
	Model() string
}

// ScoreResponse contains the raw evaluator answer for one prompt.
type ScoreResponse struct {
	Answer string
}

// Config holds configuration for the evaluator.
type Config struct {
	Provider   string
	APIKey     string
	Model      string
	MaxTokens  int
	MaxRetries int
	RetryDelay time.Duration
	RateLimit  int // Requests per minute
}
