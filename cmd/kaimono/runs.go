package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kaimono "github.com/mfujimori/kaimono"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the sync cycle journal",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Number of runs to show (0 for all)")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := kaimono.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	runs, err := client.Runs(runsLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No sync runs recorded.")
		return nil
	}

	for _, r := range runs {
		window := "-"
		if r.WindowStart != nil && r.WindowEnd != nil {
			window = r.WindowStart.String() + ".." + r.WindowEnd.String()
		}
		line := fmt.Sprintf("%s  %-6s  window=%-22s  fetched=%d persisted=%d skipped=%d",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, window,
			r.Fetched, r.Persisted, r.Skipped)
		if r.Error != "" {
			line += "  error=" + r.Error
		}
		fmt.Println(line)
	}
	return nil
}
