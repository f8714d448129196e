package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"moltscope/internal/common"
)

func invalidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Delete cached scores for a taxonomy version",
		Long: `Remove every cached score recorded under the given taxonomy
version. The next scoring run will re-evaluate those pairs from
scratch. Scores under other versions are untouched.`,
		RunE: runInvalidate,
	}

	cmd.Flags().String("taxonomy-version", "", "taxonomy version whose scores to delete (required)")

	return cmd
}

func runInvalidate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	version, _ := cmd.Flags().GetString("taxonomy-version")
	if version == "" {
		return common.NewUserError("--taxonomy-version is required", nil)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	deleted, err := store.InvalidateTaxonomyVersion(ctx, version)
	if err != nil {
		return fmt.Errorf("failed to invalidate scores: %w", err)
	}

	slog.Info("Cached scores invalidated",
		"taxonomy_version", version,
		"deleted", deleted)

	return nil
}
