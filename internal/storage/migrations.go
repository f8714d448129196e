package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS posts (
					id TEXT PRIMARY KEY,
					author_id TEXT NOT NULL,
					parent_id TEXT,
					content TEXT NOT NULL,
					created_at DATETIME,
					hash TEXT NOT NULL,
					ingested_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_posts_created ON posts(created_at)`,

				`CREATE TABLE IF NOT EXISTS trait_scores (
					post_id TEXT NOT NULL,
					trait TEXT NOT NULL,
					taxonomy_version TEXT NOT NULL,
					score INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL,
					model TEXT,
					scored_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (post_id, trait, taxonomy_version)
				)`,
				`CREATE INDEX idx_trait_scores_version ON trait_scores(taxonomy_version)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add run history",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS runs (
					id TEXT PRIMARY KEY,
					taxonomy_version TEXT NOT NULL,
					started_at DATETIME NOT NULL,
					duration_ms INTEGER NOT NULL DEFAULT 0,
					total_pairs INTEGER NOT NULL DEFAULT 0,
					cache_hits INTEGER NOT NULL DEFAULT 0,
					scored INTEGER NOT NULL DEFAULT 0,
					failed INTEGER NOT NULL DEFAULT 0,
					rate_limit_hits INTEGER NOT NULL DEFAULT 0
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Index posts by author for rollup queries",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author_id)`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the current schema version of the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
