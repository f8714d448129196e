package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"moltscope/internal/model"
)

// RecordRun appends one scoring run to the run history. A run ID is
// assigned when the caller didn't set one.
func (s *SQLiteStorage) RecordRun(ctx context.Context, stats *model.RunStats) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRunStats(stats); err != nil {
		return err
	}

	if stats.RunID == "" {
		stats.RunID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, taxonomy_version, started_at, duration_ms,
			total_pairs, cache_hits, scored, failed, rate_limit_hits)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		stats.RunID,
		stats.TaxonomyVersion,
		stats.StartedAt.UTC(),
		stats.Duration.Milliseconds(),
		stats.TotalPairs,
		stats.CacheHits,
		stats.Scored,
		stats.Failed,
		stats.RateLimitHits,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	return nil
}

// GetRuns returns the most recent runs, newest first.
func (s *SQLiteStorage) GetRuns(ctx context.Context, limit int) ([]model.RunStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, taxonomy_version, started_at, duration_ms,
			total_pairs, cache_hits, scored, failed, rate_limit_hits
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.RunStats
	for rows.Next() {
		var stats model.RunStats
		var durationMs int64
		if err := rows.Scan(&stats.RunID, &stats.TaxonomyVersion, &stats.StartedAt,
			&durationMs, &stats.TotalPairs, &stats.CacheHits,
			&stats.Scored, &stats.Failed, &stats.RateLimitHits); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		stats.StartedAt = stats.StartedAt.UTC()
		stats.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, stats)
	}

	return runs, rows.Err()
}
