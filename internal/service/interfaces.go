// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"moltscope/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Post operations
	SavePosts(ctx context.Context, posts []model.Post) error
	GetPosts(ctx context.Context) ([]model.Post, error)
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	CountPosts(ctx context.Context) (int, error)

	// Trait score cache operations
	SaveTraitScore(ctx context.Context, score *model.TraitScore) error
	GetTraitScore(ctx context.Context, postID, trait, taxonomyVersion string) (*model.TraitScore, error)
	GetTraitScores(ctx context.Context, taxonomyVersion string) ([]model.TraitScore, error)
	GetScoredPairs(ctx context.Context, taxonomyVersion string) (map[model.Pair]model.ScoreStatus, error)
	InvalidateTaxonomyVersion(ctx context.Context, taxonomyVersion string) (int64, error)
	CountTraitScores(ctx context.Context, taxonomyVersion string) (int, error)

	// Run history
	RecordRun(ctx context.Context, stats *model.RunStats) error
	GetRuns(ctx context.Context, limit int) ([]model.RunStats, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Evaluator scores a single (post, trait) pair using a language model.
type Evaluator interface {
	ScorePair(ctx context.Context, post model.Post, trait model.Trait) (int, error)
	Model() string
	Close() error
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
