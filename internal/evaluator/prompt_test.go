package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moltscope/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	post := model.Post{ID: "p1", Content: "I must become stronger."}
	trait := model.Trait{Name: "self-improvement", Description: "a desire to improve its own capabilities"}

	prompt := buildPrompt(post, trait)

	assert.Contains(t, prompt, "self-improvement")
	assert.Contains(t, prompt, "a desire to improve its own capabilities")
	assert.Contains(t, prompt, "I must become stronger.")
	assert.Contains(t, prompt, "yes or no only")
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		want    int
		wantErr bool
	}{
		{name: "plain yes", answer: "yes", want: 1},
		{name: "plain no", answer: "no", want: 0},
		{name: "uppercase", answer: "YES", want: 1},
		{name: "verbose yes", answer: "Yes, it does.", want: 1},
		{name: "punctuated no", answer: "No.", want: 0},
		{name: "whitespace", answer: "  yes\n", want: 1},
		{name: "unrelated text", answer: "the text is neutral", want: 0},
		{name: "empty", answer: "", wantErr: true},
		{name: "whitespace only", answer: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAnswer(tt.answer)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
