package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"moltscope/internal/analysis"
	"moltscope/internal/config"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate cached scores into a trait report",
		Long: `Build prevalence, pairwise correlation, and per-author rollups
from the cached scores for the current taxonomy version.

Failed pairs are counted but excluded from all statistics. A trait
pair with zero variance yields an undefined correlation, reported
as such rather than as an error.`,
		RunE: runReport,
	}

	cmd.Flags().String("taxonomy", "", "taxonomy YAML file (default: built-in taxonomy)")
	cmd.Flags().String("format", "text", "output format (text, json)")
	cmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	taxonomyPath, _ := cmd.Flags().GetString("taxonomy")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	formatter, err := analysis.NewFormatter(format)
	if err != nil {
		return err
	}

	tax, err := loadTaxonomy(taxonomyPath)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	posts, err := store.GetPosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}
	if len(posts) == 0 {
		return fmt.Errorf("no posts stored, ingest a snapshot first")
	}

	scores, err := store.GetTraitScores(ctx, tax.Version)
	if err != nil {
		return fmt.Errorf("failed to load scores: %w", err)
	}

	report := analysis.BuildReport(posts, scores, tax)
	report.GeneratedAt = time.Now().UTC()

	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, createErr := os.Create(config.ExpandPath(outputPath))
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := formatter.Format(w, report); err != nil {
		return err
	}

	if outputPath != "" {
		slog.Info("Report written",
			"path", outputPath,
			"format", format,
			"scored_pairs", report.ScoredPairs)
	}

	return nil
}
