package evaluator

import (
	"fmt"
	"strings"
)

// newClient creates a raw evaluator client based on the provided configuration.
func newClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unsupported evaluator provider: %s", cfg.Provider)
	}
}
