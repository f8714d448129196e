package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moltscope/internal/common"
)

// anthropicClient implements the Client interface for the Anthropic API.
type anthropicClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	maxTokens  int
}

// newAnthropicClient creates a new Anthropic evaluator client.
func newAnthropicClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic api key", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 10
	}

	return &anthropicClient{
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// ScoreTrait sends a single trait-scoring prompt to Anthropic.
func (c *anthropicClient) ScoreTrait(ctx context.Context, prompt string) (ScoreResponse, error) {
	requestBody := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return ScoreResponse{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", strings.NewReader(string(jsonBody)))
	if err != nil {
		return ScoreResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ScoreResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ScoreResponse{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return ScoreResponse{}, fmt.Errorf("anthropic: %w", common.ErrRateLimit)
	}
	if resp.StatusCode != http.StatusOK {
		return ScoreResponse{}, fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response anthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ScoreResponse{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Content) == 0 {
		return ScoreResponse{}, fmt.Errorf("no content blocks returned")
	}

	return ScoreResponse{Answer: response.Content[0].Text}, nil
}

func (c *anthropicClient) Model() string {
	return c.model
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
