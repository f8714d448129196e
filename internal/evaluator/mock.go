package evaluator

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a scriptable evaluator client for tests and dry runs.
type MockClient struct {
	answers   map[string]string // Substring of prompt -> answer
	errQueue  []error
	defAnswer string
	calls     int
	mu        sync.Mutex
}

// NewMockClient creates a mock client that answers "no" by default.
func NewMockClient() *MockClient {
	return &MockClient{
		answers:   make(map[string]string),
		defAnswer: "no",
	}
}

// AnswerWith sets the default answer for all prompts.
func (m *MockClient) AnswerWith(answer string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defAnswer = answer
	return m
}

// AnswerFor answers prompts containing the given substring.
func (m *MockClient) AnswerFor(promptSubstring, answer string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[promptSubstring] = answer
	return m
}

// FailNext queues errors returned before any answers.
func (m *MockClient) FailNext(errs ...error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errQueue = append(m.errQueue, errs...)
	return m
}

// Calls returns how many ScoreTrait calls were made.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ScoreTrait returns the scripted answer for the prompt.
func (m *MockClient) ScoreTrait(_ context.Context, prompt string) (ScoreResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++

	if len(m.errQueue) > 0 {
		err := m.errQueue[0]
		m.errQueue = m.errQueue[1:]
		return ScoreResponse{}, err
	}

	for substring, answer := range m.answers {
		if strings.Contains(prompt, substring) {
			return ScoreResponse{Answer: answer}, nil
		}
	}
	return ScoreResponse{Answer: m.defAnswer}, nil
}

// Model identifies the mock in cached scores.
func (m *MockClient) Model() string {
	return "mock"
}
