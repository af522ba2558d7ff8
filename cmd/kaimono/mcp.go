package main

import (
	"fmt"

	"github.com/spf13/cobra"

	kaimono "github.com/mfujimori/kaimono"
	"github.com/mfujimori/kaimono/internal/source/feed"
	"github.com/mfujimori/kaimono/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve purchase tools over the Model Context Protocol (stdio)",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var source kaimono.Source
	if cfg.FeedPath != "" {
		source = feed.New(cfg.FeedPath)
	}

	client, err := kaimono.New(cfg, source)
	if err != nil {
		return fmt.Errorf("initialize client: %w", err)
	}
	defer client.Close()

	return mcp.NewServer(client).Run()
}
