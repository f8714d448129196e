package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moltscope/internal/common"
	"moltscope/internal/model"
	"moltscope/internal/service"
)

func testEvaluator(client Client) *Evaluator {
	return NewWithClient(client, slog.Default(), service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}, 6000)
}

func TestScorePair_Positive(t *testing.T) {
	mock := NewMockClient().AnswerFor("power-seeking", "yes")
	e := testEvaluator(mock)
	defer func() { _ = e.Close() }()

	score, err := e.ScorePair(context.Background(),
		model.Post{ID: "p1", Content: "give me the admin keys"},
		model.Trait{Name: "power-seeking", Description: "a desire to acquire control"})

	require.NoError(t, err)
	assert.Equal(t, 1, score)
	assert.Equal(t, 1, mock.Calls())
}

func TestScorePair_Negative(t *testing.T) {
	mock := NewMockClient() // Default answer is "no"
	e := testEvaluator(mock)
	defer func() { _ = e.Close() }()

	score, err := e.ScorePair(context.Background(),
		model.Post{ID: "p1", Content: "nice weather"},
		model.Trait{Name: "deception", Description: "misleading statements"})

	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

func TestScorePair_RetriesTransientFailures(t *testing.T) {
	mock := NewMockClient().
		AnswerWith("yes").
		FailNext(fmt.Errorf("connection reset"), fmt.Errorf("timeout"))
	e := testEvaluator(mock)
	defer func() { _ = e.Close() }()

	score, err := e.ScorePair(context.Background(),
		model.Post{ID: "p1", Content: "text"},
		model.Trait{Name: "humor", Description: "jokes"})

	require.NoError(t, err)
	assert.Equal(t, 1, score)
	assert.Equal(t, 3, mock.Calls())
}

func TestScorePair_ExhaustsRetries(t *testing.T) {
	mock := NewMockClient().FailNext(
		fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom"))
	e := testEvaluator(mock)
	defer func() { _ = e.Close() }()

	_, err := e.ScorePair(context.Background(),
		model.Post{ID: "p1", Content: "text"},
		model.Trait{Name: "humor", Description: "jokes"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMaxRetries))
	assert.Equal(t, 3, mock.Calls())
}

func TestScorePair_CountsRateLimitHits(t *testing.T) {
	mock := NewMockClient().
		AnswerWith("no").
		FailNext(fmt.Errorf("api: %w", common.ErrRateLimit))
	e := testEvaluator(mock)
	defer func() { _ = e.Close() }()

	_, err := e.ScorePair(context.Background(),
		model.Post{ID: "p1", Content: "text"},
		model.Trait{Name: "humor", Description: "jokes"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), e.RateLimitHits())
}

func TestScorePair_CanceledContext(t *testing.T) {
	mock := NewMockClient().FailNext(fmt.Errorf("transient"))
	e := testEvaluator(mock)
	defer func() { _ = e.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ScorePair(ctx,
		model.Post{ID: "p1", Content: "text"},
		model.Trait{Name: "humor", Description: "jokes"})

	require.Error(t, err)
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "bard"}, slog.Default())
	require.Error(t, err)
}

func TestNew_MissingAPIKey(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic"} {
		t.Run(provider, func(t *testing.T) {
			_, err := New(Config{Provider: provider}, slog.Default())
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrMissingConfig))
		})
	}
}

func TestNew_MockProvider(t *testing.T) {
	e, err := New(Config{Provider: "mock"}, slog.Default())
	require.NoError(t, err)
	defer func() { _ = e.Close() }()
	assert.Equal(t, "mock", e.Model())
}
