package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"moltscope/internal/config"
	"moltscope/internal/evaluator"
	"moltscope/internal/model"
	"moltscope/internal/service"
	"moltscope/internal/storage"
	"moltscope/internal/taxonomy"
)

// initStorage opens the score database with proper path expansion and
// runs any pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/moltscope/moltscope.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// createEvaluator builds the configured LLM evaluator from viper settings.
func createEvaluator(logger *slog.Logger) (service.Evaluator, error) {
	cfg := evaluator.Config{
		Provider:   viper.GetString("evaluator.provider"),
		APIKey:     viper.GetString("evaluator.api_key"),
		Model:      viper.GetString("evaluator.model"),
		MaxTokens:  viper.GetInt("evaluator.max_tokens"),
		MaxRetries: viper.GetInt("evaluator.max_retries"),
		RateLimit:  viper.GetInt("evaluator.rate_limit"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if delay := viper.GetDuration("evaluator.retry_delay"); delay > 0 {
		cfg.RetryDelay = delay
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return evaluator.New(cfg, logger)
}

// loadTaxonomy loads the taxonomy from the given path, falling back to
// the configured path, then to the built-in default taxonomy.
func loadTaxonomy(path string) (*model.Taxonomy, error) {
	if path == "" {
		path = viper.GetString("taxonomy.path")
	}
	if path == "" {
		return taxonomy.Default(), nil
	}

	tax, err := taxonomy.Load(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	return tax, nil
}
