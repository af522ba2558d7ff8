package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kaimono "github.com/mfujimori/kaimono"
)

var listLegacy bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted purchase records",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listLegacy, "legacy", false, "Read from the legacy normalized tables instead of logs")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := kaimono.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	var logs []kaimono.Log
	if listLegacy {
		logs, err = client.LegacyLogs()
	} else {
		logs, err = client.Logs()
	}
	if err != nil {
		return err
	}

	if len(logs) == 0 {
		fmt.Println("No purchase records.")
		return nil
	}

	for _, l := range logs {
		fmt.Printf("%s  %8d  %s\n", l.PurchasedAt, l.Price, l.Name)
	}
	fmt.Printf("%d records\n", len(logs))
	return nil
}
