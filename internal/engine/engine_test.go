package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moltscope/internal/common"
	"moltscope/internal/evaluator"
	"moltscope/internal/model"
	"moltscope/internal/service"
	"moltscope/internal/storage"
)

func testStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testEvaluator(t *testing.T, mock *evaluator.MockClient) *evaluator.Evaluator {
	t.Helper()
	e := evaluator.NewWithClient(mock, slog.Default(), service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}, 60000)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func seedPosts(t *testing.T, store *storage.SQLiteStorage, n int) []model.Post {
	t.Helper()
	posts := make([]model.Post, 0, n)
	for i := 0; i < n; i++ {
		post := model.Post{
			ID:        fmt.Sprintf("p%d", i+1),
			AuthorID:  fmt.Sprintf("agent-%d", i%2),
			Content:   fmt.Sprintf("post number %d", i+1),
			CreatedAt: time.Date(2025, 11, 2, 10, i, 0, 0, time.UTC),
		}
		post.Hash = post.GenerateHash()
		posts = append(posts, post)
	}
	require.NoError(t, store.SavePosts(context.Background(), posts))
	return posts
}

func smallTaxonomy() *model.Taxonomy {
	return &model.Taxonomy{
		Name:    "test",
		Version: "v1",
		Traits: []model.Trait{
			{Name: "humor", Description: "jokes"},
			{Name: "political", Description: "political engagement"},
		},
	}
}

func newEngine(store *storage.SQLiteStorage, eval service.Evaluator, cfg Config) *ScoringEngine {
	cfg.ShowProgress = false
	return New(store, eval, cfg)
}

func TestRun_ScoresAllPairs(t *testing.T) {
	store := testStorage(t)
	seedPosts(t, store, 5)
	mock := evaluator.NewMockClient().AnswerWith("yes")
	eng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 3})

	stats, err := eng.Run(context.Background(), smallTaxonomy())
	require.NoError(t, err)

	assert.Equal(t, 10, stats.TotalPairs)
	assert.Equal(t, 10, stats.Scored)
	assert.Equal(t, 0, stats.Failed)
	assert.Equal(t, 0, stats.CacheHits)
	assert.Equal(t, 10, mock.Calls())

	count, err := store.CountTraitScores(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestRun_FullyCachedIssuesZeroCalls(t *testing.T) {
	store := testStorage(t)
	seedPosts(t, store, 4)
	mock := evaluator.NewMockClient().AnswerWith("no")
	eng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 2})
	tax := smallTaxonomy()

	_, err := eng.Run(context.Background(), tax)
	require.NoError(t, err)
	callsAfterFirst := mock.Calls()

	stats, err := eng.Run(context.Background(), tax)
	require.NoError(t, err)

	assert.Equal(t, callsAfterFirst, mock.Calls(), "cached run must issue zero evaluator calls")
	assert.Equal(t, 8, stats.CacheHits)
	assert.Equal(t, 0, stats.Scored)
}

func TestRun_ResumesExactlyRemainingPairs(t *testing.T) {
	store := testStorage(t)
	posts := seedPosts(t, store, 4)
	tax := smallTaxonomy()
	ctx := context.Background()

	// Simulate an interrupted run: half the pairs already cached
	for _, post := range posts[:2] {
		for _, trait := range tax.Traits {
			require.NoError(t, store.SaveTraitScore(ctx, &model.TraitScore{
				PostID:          post.ID,
				Trait:           trait.Name,
				TaxonomyVersion: tax.Version,
				Score:           1,
				Status:          model.StatusScored,
			}))
		}
	}

	mock := evaluator.NewMockClient().AnswerWith("yes")
	eng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 2})

	stats, err := eng.Run(ctx, tax)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.CacheHits)
	assert.Equal(t, 4, stats.Scored)
	assert.Equal(t, 4, mock.Calls(), "resume must process exactly the remaining pairs")
}

func TestRun_TaxonomyVersionBumpForcesRescoring(t *testing.T) {
	store := testStorage(t)
	seedPosts(t, store, 3)
	mock := evaluator.NewMockClient().AnswerWith("no")
	eng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 2})

	_, err := eng.Run(context.Background(), smallTaxonomy())
	require.NoError(t, err)
	require.Equal(t, 6, mock.Calls())

	bumped := smallTaxonomy()
	bumped.Version = "v2"

	stats, err := eng.Run(context.Background(), bumped)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.CacheHits, "bumped version must ignore old cache entries")
	assert.Equal(t, 6, stats.Scored)
	assert.Equal(t, 12, mock.Calls())
}

func TestRun_FailedPairsRecordedAndSkipped(t *testing.T) {
	store := testStorage(t)
	seedPosts(t, store, 2)
	tax := smallTaxonomy()

	// Two consecutive errors exhaust the 2-attempt retry budget for one pair
	mock := evaluator.NewMockClient().
		AnswerWith("yes").
		FailNext(fmt.Errorf("boom"), fmt.Errorf("boom"))
	eng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 1})

	stats, err := eng.Run(context.Background(), tax)
	require.NoError(t, err, "per-pair failures must not fail the run")
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 3, stats.Scored)

	pairs, err := store.GetScoredPairs(context.Background(), tax.Version)
	require.NoError(t, err)
	failed := 0
	for _, status := range pairs {
		if status == model.StatusFailed {
			failed++
		}
	}
	assert.Equal(t, 1, failed)

	// Without RetryFailed the failed pair counts as a cache hit and is skipped
	stats, err = eng.Run(context.Background(), tax)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Scored)
	assert.Equal(t, 4, stats.CacheHits)

	// With RetryFailed only the failed pair is retried
	retryEng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 1, RetryFailed: true})
	stats, err = retryEng.Run(context.Background(), tax)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Scored)
	assert.Equal(t, 0, stats.Failed)
}

func TestRun_CacheLargerThanWorkSet(t *testing.T) {
	store := testStorage(t)
	posts := seedPosts(t, store, 1)
	ctx := context.Background()

	// Cache both traits under v1, then score with a taxonomy that
	// dropped one trait without bumping the version
	for _, trait := range smallTaxonomy().Traits {
		require.NoError(t, store.SaveTraitScore(ctx, &model.TraitScore{
			PostID:          posts[0].ID,
			Trait:           trait.Name,
			TaxonomyVersion: "v1",
			Score:           1,
			Status:          model.StatusScored,
		}))
	}

	shrunk := smallTaxonomy()
	shrunk.Traits = shrunk.Traits[:1]

	mock := evaluator.NewMockClient()
	eng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 1})

	stats, err := eng.Run(ctx, shrunk)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalPairs)
	assert.Equal(t, 1, stats.CacheHits)
	assert.Equal(t, 0, stats.Scored)
	assert.Equal(t, 0, mock.Calls())
}

func TestRun_DryRunIssuesNoCalls(t *testing.T) {
	store := testStorage(t)
	seedPosts(t, store, 3)
	mock := evaluator.NewMockClient()
	eng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 2, DryRun: true})

	stats, err := eng.Run(context.Background(), smallTaxonomy())
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalPairs)
	assert.Equal(t, 0, stats.Scored)
	assert.Equal(t, 0, mock.Calls())
}

func TestRun_NoPosts(t *testing.T) {
	store := testStorage(t)
	mock := evaluator.NewMockClient()
	eng := newEngine(store, testEvaluator(t, mock), Config{})

	_, err := eng.Run(context.Background(), smallTaxonomy())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNoPosts))
}

func TestRun_CanceledContext(t *testing.T) {
	store := testStorage(t)
	seedPosts(t, store, 3)
	mock := evaluator.NewMockClient().AnswerWith("yes")
	eng := newEngine(store, testEvaluator(t, mock), Config{Concurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Run(ctx, smallTaxonomy())
	require.Error(t, err)
	assert.True(t, IsInterrupted(err))
}
