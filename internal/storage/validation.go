package storage

import (
	"context"
	"fmt"

	"moltscope/internal/model"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context is required")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func validatePost(post *model.Post) error {
	if post == nil {
		return fmt.Errorf("post is required")
	}
	if post.ID == "" {
		return fmt.Errorf("post ID is required")
	}
	return nil
}

func validateTraitScore(score *model.TraitScore) error {
	if score == nil {
		return fmt.Errorf("trait score is required")
	}
	if score.PostID == "" {
		return fmt.Errorf("trait score post ID is required")
	}
	if score.Trait == "" {
		return fmt.Errorf("trait score trait name is required")
	}
	if score.TaxonomyVersion == "" {
		return fmt.Errorf("trait score taxonomy version is required")
	}
	switch score.Status {
	case model.StatusScored, model.StatusFailed:
	default:
		return fmt.Errorf("invalid trait score status: %s", score.Status)
	}
	return nil
}

func validateRunStats(stats *model.RunStats) error {
	if stats == nil {
		return fmt.Errorf("run stats are required")
	}
	if stats.TaxonomyVersion == "" {
		return fmt.Errorf("run stats taxonomy version is required")
	}
	return nil
}
