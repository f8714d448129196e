// Package evaluator scores (post, trait) pairs against a language-model
// backed judge. Providers sit behind the Client interface; the Evaluator
// adds rate limiting and retry with bounded exponential backoff on top.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"moltscope/internal/common"
	"moltscope/internal/model"
	"moltscope/internal/service"
)

// Evaluator implements the service.Evaluator interface using LLM APIs.
type Evaluator struct {
	client        Client
	logger        *slog.Logger
	rateLimiter   *rateLimiter
	retryOpts     service.RetryOptions
	rateLimitHits atomic.Int64
}

// New creates an evaluator for the configured provider.
func New(cfg Config, logger *slog.Logger) (*Evaluator, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator client: %w", err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 5
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 2 * time.Second
	}

	return &Evaluator{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}, nil
}

// NewWithClient creates an evaluator around an existing client.
// Used by tests to inject a mock.
func NewWithClient(client Client, logger *slog.Logger, retryOpts service.RetryOptions, rateLimit int) *Evaluator {
	return &Evaluator{
		client:      client,
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(rateLimit),
	}
}

// ScorePair evaluates one post against one trait and returns a binary
// score. Transient evaluator failures are retried; exhausting retries
// surfaces common.ErrMaxRetries, which the caller records as a failed pair.
func (e *Evaluator) ScorePair(ctx context.Context, post model.Post, trait model.Trait) (int, error) {
	prompt := buildPrompt(post, trait)

	var score int

	err := common.WithRetry(ctx, func() error {
		// Each attempt takes its own rate-limit token
		if err := e.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}

		response, err := e.client.ScoreTrait(ctx, prompt)
		if err != nil {
			if errors.Is(err, common.ErrRateLimit) {
				e.rateLimitHits.Add(1)
				e.logger.Warn("evaluator rate limited",
					"post_id", post.ID,
					"trait", trait.Name)
				return err
			}
			e.logger.Warn("evaluator attempt failed",
				"error", err,
				"post_id", post.ID,
				"trait", trait.Name)
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: %v", common.ErrEvaluator, err),
				Retryable: true,
			}
		}

		parsed, err := parseAnswer(response.Answer)
		if err != nil {
			// Malformed answers are transient; ask again
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: %v", common.ErrEvaluator, err),
				Retryable: true,
			}
		}

		score = parsed
		return nil
	}, e.retryOpts)

	if err != nil {
		return 0, fmt.Errorf("scoring post %s for trait %q failed: %w", post.ID, trait.Name, err)
	}

	e.logger.Debug("pair scored",
		"post_id", post.ID,
		"trait", trait.Name,
		"score", score)

	return score, nil
}

// Model returns the evaluator model identifier used for cached scores.
func (e *Evaluator) Model() string {
	return e.client.Model()
}

// RateLimitHits returns how many rate-limit rejections were seen so far.
func (e *Evaluator) RateLimitHits() int64 {
	return e.rateLimitHits.Load()
}

// Close stops background goroutines and cleans up resources.
func (e *Evaluator) Close() error {
	if e.rateLimiter != nil {
		e.rateLimiter.Close()
	}
	return nil
}
