package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moltscope/internal/common"
	"moltscope/internal/model"
)

// SaveTraitScore writes one score to the cache. The write is a single
// atomic upsert on the (post_id, trait, taxonomy_version) key, so
// concurrent writers for distinct pairs never corrupt each other and a
// pair is either fully cached or absent.
func (s *SQLiteStorage) SaveTraitScore(ctx context.Context, score *model.TraitScore) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTraitScore(score); err != nil {
		return err
	}

	if score.ScoredAt.IsZero() {
		score.ScoredAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO trait_scores (post_id, trait, taxonomy_version, score, status, model, scored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id, trait, taxonomy_version) DO UPDATE SET
			score = excluded.score,
			status = excluded.status,
			model = excluded.model,
			scored_at = excluded.scored_at
	`,
		score.PostID,
		score.Trait,
		score.TaxonomyVersion,
		score.Score,
		string(score.Status),
		score.Model,
		score.ScoredAt,
	)
	if err != nil {
		return fmt.Errorf("%w: pair (%s, %s): %v", common.ErrCacheWrite, score.PostID, score.Trait, err)
	}

	return nil
}

// GetTraitScore returns the cached score for one pair, or common.ErrNotFound.
func (s *SQLiteStorage) GetTraitScore(ctx context.Context, postID, trait, taxonomyVersion string) (*model.TraitScore, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(postID, "postID"); err != nil {
		return nil, err
	}
	if err := validateString(trait, "trait"); err != nil {
		return nil, err
	}
	if err := validateString(taxonomyVersion, "taxonomyVersion"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT post_id, trait, taxonomy_version, score, status, COALESCE(model, ''), scored_at
		FROM trait_scores
		WHERE post_id = ? AND trait = ? AND taxonomy_version = ?
	`, postID, trait, taxonomyVersion)

	score, err := scanTraitScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pair (%s, %s, %s): %w", postID, trait, taxonomyVersion, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// GetTraitScores returns all cached scores for a taxonomy version.
func (s *SQLiteStorage) GetTraitScores(ctx context.Context, taxonomyVersion string) ([]model.TraitScore, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(taxonomyVersion, "taxonomyVersion"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, trait, taxonomy_version, score, status, COALESCE(model, ''), scored_at
		FROM trait_scores
		WHERE taxonomy_version = ?
		ORDER BY post_id, trait
	`, taxonomyVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to query trait scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var scores []model.TraitScore
	for rows.Next() {
		score, err := scanTraitScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}

	return scores, rows.Err()
}

// GetScoredPairs returns the cached (post, trait) keys for a taxonomy
// version with their status. The engine subtracts this set from
// posts x traits to find the remaining work, which is what makes an
// interrupted run resumable.
func (s *SQLiteStorage) GetScoredPairs(ctx context.Context, taxonomyVersion string) (map[model.Pair]model.ScoreStatus, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(taxonomyVersion, "taxonomyVersion"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT post_id, trait, status
		FROM trait_scores
		WHERE taxonomy_version = ?
	`, taxonomyVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to query scored pairs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pairs := make(map[model.Pair]model.ScoreStatus)
	for rows.Next() {
		var pair model.Pair
		var status string
		if err := rows.Scan(&pair.PostID, &pair.Trait, &status); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs[pair] = model.ScoreStatus(status)
	}

	return pairs, rows.Err()
}

// InvalidateTaxonomyVersion deletes every cached score for a taxonomy
// version, forcing re-classification on the next run.
func (s *SQLiteStorage) InvalidateTaxonomyVersion(ctx context.Context, taxonomyVersion string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(taxonomyVersion, "taxonomyVersion"); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM trait_scores WHERE taxonomy_version = ?
	`, taxonomyVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate taxonomy version %s: %w", taxonomyVersion, err)
	}

	return result.RowsAffected()
}

// CountTraitScores returns the number of cached scores for a taxonomy version.
func (s *SQLiteStorage) CountTraitScores(ctx context.Context, taxonomyVersion string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(taxonomyVersion, "taxonomyVersion"); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM trait_scores WHERE taxonomy_version = ?
	`, taxonomyVersion).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trait scores: %w", err)
	}
	return count, nil
}

func scanTraitScore(row rowScanner) (model.TraitScore, error) {
	var score model.TraitScore
	var status string

	err := row.Scan(&score.PostID, &score.Trait, &score.TaxonomyVersion,
		&score.Score, &status, &score.Model, &score.ScoredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TraitScore{}, err
		}
		return model.TraitScore{}, fmt.Errorf("failed to scan trait score: %w", err)
	}

	score.Status = model.ScoreStatus(status)
	score.ScoredAt = score.ScoredAt.UTC()
	return score, nil
}
