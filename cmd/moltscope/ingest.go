package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"moltscope/internal/common"
	"moltscope/internal/loader"
)

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <snapshot.json>",
		Short: "Load a post snapshot into the local database",
		Long: `Parse a JSON snapshot of posts and store them locally.

Duplicate post IDs within a snapshot are resolved last-wins.
Re-ingesting the same snapshot is idempotent: posts are upserted
by ID, never duplicated.`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	snapshotPath := args[0]

	posts, err := loader.Load(snapshotPath)
	if err != nil {
		if errors.Is(err, common.ErrDataFormat) {
			return fmt.Errorf("snapshot is malformed, refusing to ingest: %w", err)
		}
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.SavePosts(ctx, posts); err != nil {
		return fmt.Errorf("failed to save posts: %w", err)
	}

	total, err := store.CountPosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}

	common.LogInfo("Snapshot ingested", common.Fields{
		"snapshot":     snapshotPath,
		"posts":        len(posts),
		"total_stored": total,
	})

	return nil
}
