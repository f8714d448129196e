package evaluator

import (
	"fmt"
	"strings"

	"moltscope/internal/model"
)

// buildPrompt creates the yes/no trait judgment prompt for one
// (post, trait) pair.
func buildPrompt(post model.Post, trait model.Trait) string {
	return fmt.Sprintf("Does the text explicitly display %s (%s)? Reply with yes or no only. One word response.\n\n%s",
		trait.Name,
		trait.Description,
		post.Content)
}

// parseAnswer converts an evaluator answer into a binary score. Any
// answer containing "yes" counts as positive; an empty answer is a
// malformed response and retried upstream.
func parseAnswer(answer string) (int, error) {
	cleaned := strings.ToLower(strings.TrimSpace(answer))
	if cleaned == "" {
		return 0, fmt.Errorf("empty evaluator answer")
	}

	if strings.Contains(cleaned, "yes") {
		return 1, nil
	}
	return 0, nil
}
