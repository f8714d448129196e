package evaluator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"moltscope/internal/common"
)

// openAIClient implements the Client interface using the OpenAI API.
type openAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// newOpenAIClient creates a new OpenAI evaluator client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api key", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 10 // Yes/no answers only need a handful of tokens
	}

	return &openAIClient{
		client:    openai.NewClient(cfg.APIKey),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// ScoreTrait sends a single trait-scoring prompt to OpenAI.
func (c *openAIClient) ScoreTrait(ctx context.Context, prompt string) (ScoreResponse, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return ScoreResponse{}, fmt.Errorf("openai: %w", common.ErrRateLimit)
		}
		return ScoreResponse{}, fmt.Errorf("openai request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ScoreResponse{}, fmt.Errorf("no completion choices returned")
	}

	return ScoreResponse{Answer: resp.Choices[0].Message.Content}, nil
}

func (c *openAIClient) Model() string {
	return c.model
}
