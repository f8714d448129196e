// Package engine implements the scoring engine that drives posts through
// the trait evaluator.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/semaphore"

	"moltscope/internal/common"
	"moltscope/internal/model"
	"moltscope/internal/service"
)

// ScoringEngine orchestrates scoring every (post, trait) pair that is not
// already cached. Pairs are independent and processed concurrently up to
// the configured ceiling; every successful score is written to the cache
// before it is counted, so an interrupted run can resume from the cache.
type ScoringEngine struct {
	storage   service.Storage
	evaluator service.Evaluator
	config    Config
}

// Config holds configuration options for the scoring engine.
type Config struct {
	Concurrency  int
	RetryFailed  bool // Re-attempt pairs recorded as FAILED in earlier runs
	DryRun       bool // Report pending work without calling the evaluator
	ShowProgress bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Concurrency:  4,
		ShowProgress: true,
	}
}

// New creates a new scoring engine with the given dependencies.
func New(storage service.Storage, evaluator service.Evaluator, config Config) *ScoringEngine {
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConfig().Concurrency
	}
	return &ScoringEngine{
		storage:   storage,
		evaluator: evaluator,
		config:    config,
	}
}

// pairWork is one unit of pending work.
type pairWork struct {
	post  model.Post
	trait model.Trait
}

// pendingPairs builds the work list: posts x traits minus cached pairs.
func (e *ScoringEngine) pendingPairs(ctx context.Context, tax *model.Taxonomy) (pending []pairWork, total, cacheHits int, err error) {
	posts, err := e.storage.GetPosts(ctx)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load posts: %w", err)
	}
	if len(posts) == 0 {
		return nil, 0, 0, common.ErrNoPosts
	}

	cached, err := e.storage.GetScoredPairs(ctx, tax.Version)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to load cached pairs: %w", err)
	}

	// The cache may hold more pairs than posts x traits, e.g. after a
	// trait was removed without bumping the version, so size from total.
	total = len(posts) * len(tax.Traits)
	pending = make([]pairWork, 0, total)

	for _, post := range posts {
		for _, trait := range tax.Traits {
			status, seen := cached[model.Pair{PostID: post.ID, Trait: trait.Name}]
			if seen {
				if status == model.StatusScored || !e.config.RetryFailed {
					cacheHits++
					continue
				}
			}
			pending = append(pending, pairWork{post: post, trait: trait})
		}
	}

	return pending, total, cacheHits, nil
}

// Run scores all pending pairs for the taxonomy and records the run.
// Per-pair evaluator failures are recorded and skipped, never fatal;
// the returned error is non-nil only for setup problems or cancellation.
func (e *ScoringEngine) Run(ctx context.Context, tax *model.Taxonomy) (*model.RunStats, error) {
	stats := &model.RunStats{
		StartedAt:       time.Now().UTC(),
		TaxonomyVersion: tax.Version,
	}

	pending, total, cacheHits, err := e.pendingPairs(ctx, tax)
	if err != nil {
		return nil, err
	}
	stats.TotalPairs = total
	stats.CacheHits = cacheHits

	slog.Info("Starting scoring run",
		"taxonomy", tax.Name,
		"taxonomy_version", tax.Version,
		"total_pairs", total,
		"cached", cacheHits,
		"pending", len(pending),
		"concurrency", e.config.Concurrency)

	if e.config.DryRun || len(pending) == 0 {
		stats.Duration = time.Since(stats.StartedAt)
		return stats, nil
	}

	var bar *progressbar.ProgressBar
	if e.config.ShowProgress {
		bar = progressbar.NewOptions(len(pending),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("scoring"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var scored, failed atomic.Int64
	sem := semaphore.NewWeighted(int64(e.config.Concurrency))
	var wg sync.WaitGroup

	modelName := e.evaluator.Model()

	for _, work := range pending {
		if acquireErr := sem.Acquire(ctx, 1); acquireErr != nil {
			// Canceled; in-flight pairs finish and are cached
			break
		}

		wg.Add(1)
		go func(work pairWork) {
			defer wg.Done()
			defer sem.Release(1)
			defer func() {
				if bar != nil {
					_ = bar.Add(1)
				}
			}()

			score, scoreErr := e.evaluator.ScorePair(ctx, work.post, work.trait)
			if scoreErr != nil {
				if ctx.Err() != nil {
					return
				}
				failed.Add(1)
				common.LogError(scoreErr, "Pair failed after retries", common.Fields{
					"post_id": work.post.ID,
					"trait":   work.trait.Name,
				})
				e.saveScore(ctx, &model.TraitScore{
					PostID:          work.post.ID,
					Trait:           work.trait.Name,
					TaxonomyVersion: tax.Version,
					Status:          model.StatusFailed,
					Model:           modelName,
				})
				return
			}

			// Cache before counting: a crash mid-run loses no scored work
			if e.saveScore(ctx, &model.TraitScore{
				PostID:          work.post.ID,
				Trait:           work.trait.Name,
				TaxonomyVersion: tax.Version,
				Score:           score,
				Status:          model.StatusScored,
				Model:           modelName,
			}) {
				scored.Add(1)
			}
		}(work)
	}

	wg.Wait()
	if bar != nil {
		_ = bar.Finish()
	}

	stats.Scored = int(scored.Load())
	stats.Failed = int(failed.Load())
	stats.Duration = time.Since(stats.StartedAt)
	if counter, ok := e.evaluator.(interface{ RateLimitHits() int64 }); ok {
		stats.RateLimitHits = int(counter.RateLimitHits())
	}

	if recordErr := e.recordRun(stats); recordErr != nil {
		slog.Error("Failed to record run", "error", recordErr)
	}

	if ctx.Err() != nil {
		slog.Warn("Scoring run interrupted; cached pairs will be skipped on resume",
			"scored", stats.Scored,
			"remaining", len(pending)-stats.Scored-stats.Failed)
		return stats, ctx.Err()
	}

	slog.Info("Scoring run complete",
		"scored", stats.Scored,
		"failed", stats.Failed,
		"cache_hits", stats.CacheHits,
		"duration", stats.Duration)

	return stats, nil
}

// saveScore persists one score. Cache write failures are logged and the
// run continues; the pair stays absent and is redone on the next run.
func (e *ScoringEngine) saveScore(ctx context.Context, score *model.TraitScore) bool {
	// Use a detached context so cancellation doesn't lose finished work
	saveCtx := ctx
	if ctx.Err() != nil {
		saveCtx = context.Background()
	}

	if err := e.storage.SaveTraitScore(saveCtx, score); err != nil {
		common.LogError(err, "Cache write failed; pair will be redone next run", common.Fields{
			"post_id": score.PostID,
			"trait":   score.Trait,
		})
		return false
	}
	return true
}

func (e *ScoringEngine) recordRun(stats *model.RunStats) error {
	// Run history is best-effort bookkeeping; never let cancellation
	// drop the record
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.storage.RecordRun(ctx, stats)
}

// IsInterrupted reports whether a run error is a clean cancellation.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
