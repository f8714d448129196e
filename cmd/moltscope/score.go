package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"moltscope/internal/common"
	"moltscope/internal/engine"
)

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score stored posts against the trait taxonomy",
		Long: `Evaluate every (post, trait) pair with the configured LLM.

Pairs already scored for the current taxonomy version are served from
the cache and never re-sent. Each result is cached as soon as it
arrives, so an interrupted run resumes where it left off.`,
		RunE: runScore,
	}

	cmd.Flags().String("taxonomy", "", "taxonomy YAML file (default: built-in taxonomy)")
	cmd.Flags().Int("concurrency", 0, "number of concurrent evaluator requests")
	cmd.Flags().Bool("retry-failed", false, "re-attempt pairs that failed in previous runs")
	cmd.Flags().Bool("dry-run", false, "report what would be scored without calling the evaluator")

	return cmd
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	taxonomyPath, _ := cmd.Flags().GetString("taxonomy")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	retryFailed, _ := cmd.Flags().GetBool("retry-failed")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	tax, err := loadTaxonomy(taxonomyPath)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	eval, err := createEvaluator(slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create evaluator: %w", err)
	}
	defer func() { _ = eval.Close() }()

	engineCfg := engine.DefaultConfig()
	if concurrency > 0 {
		engineCfg.Concurrency = concurrency
	}
	engineCfg.RetryFailed = retryFailed
	engineCfg.DryRun = dryRun

	stats, err := engine.New(store, eval, engineCfg).Run(ctx, tax)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoPosts):
			return fmt.Errorf("nothing to score, ingest a snapshot first: %w", err)
		case engine.IsInterrupted(err) && stats != nil:
			slog.Warn("Scoring interrupted, completed work was cached",
				"scored", stats.Scored,
				"failed", stats.Failed)
			return err
		default:
			return fmt.Errorf("scoring run failed: %w", err)
		}
	}

	slog.Info("Scoring run complete",
		"run_id", stats.RunID,
		"taxonomy_version", stats.TaxonomyVersion,
		"total_pairs", stats.TotalPairs,
		"cache_hits", stats.CacheHits,
		"scored", stats.Scored,
		"failed", stats.Failed,
		"rate_limit_hits", stats.RateLimitHits,
		"duration", stats.Duration.Round(time.Millisecond))

	if stats.Failed > 0 {
		slog.Warn("Some pairs could not be scored; re-run with --retry-failed to attempt them again",
			"failed", stats.Failed)
	}

	return nil
}
