package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	kaimono "github.com/mfujimori/kaimono"
	"github.com/mfujimori/kaimono/internal/source/feed"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one incremental sync cycle",
	Long: `Run one incremental sync cycle against the purchase feed.

Example:
  kaimono sync --feed export.json`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.FeedPath == "" {
		return fmt.Errorf("no feed configured (--feed or KAIMONO_FEED)")
	}

	client, err := kaimono.New(cfg, feed.New(cfg.FeedPath))
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	start := time.Now()
	fmt.Println("Synchronizing purchase history...")

	outcome, err := client.Sync(context.Background())
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if outcome.Window == nil {
		fmt.Println("Already up to date.")
		return nil
	}

	fmt.Printf("Window %s: fetched %d, persisted %d, skipped %d (took %s)\n",
		outcome.Window, outcome.Fetched, outcome.Persisted, outcome.Skipped,
		time.Since(start).Round(time.Millisecond))
	return nil
}
