package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	kaimono "github.com/mfujimori/kaimono"
)

var (
	cfgDBPath string
	cfgFeed   string
	cfgDebug  bool
	cfgFile   string
)

var rootCmd = &cobra.Command{
	Use:   "kaimono",
	Short: "Kaimono - purchase history synchronization CLI",
	Long: `Kaimono keeps a local purchase-history database in sync with an
external feed that can only be queried by date range.

Each sync cycle resolves the date window still missing locally, fetches
it and persists the new records in one atomic transaction.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db", "", "Path to local database (default: ./data/kaimono.db)")
	rootCmd.PersistentFlags().StringVar(&cfgFeed, "feed", "", "Path to the purchase-history JSON export")
	rootCmd.PersistentFlags().BoolVar(&cfgDebug, "debug", false, "Log sync cycle phases to stderr")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/kaimono/config.yaml)")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers configuration: flags > environment > config file >
// defaults.
func loadConfig() (kaimono.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("KAIMONO")
	v.AutomaticEnv()
	v.SetDefault("db_path", "")
	v.SetDefault("feed", "")
	v.SetDefault("debug", false)
	v.SetDefault("debug_log", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "kaimono"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return kaimono.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := kaimono.Config{
		DBPath:       v.GetString("db_path"),
		FeedPath:     v.GetString("feed"),
		Debug:        v.GetBool("debug"),
		DebugLogPath: v.GetString("debug_log"),
	}

	if cfgDBPath != "" {
		cfg.DBPath = cfgDBPath
	}
	if cfgFeed != "" {
		cfg.FeedPath = cfgFeed
	}
	if cfgDebug {
		cfg.Debug = true
	}

	return cfg, nil
}
