package kaimono

import (
	"os"
	"path/filepath"
	"time"
)

// Config configures the kaimono client.
type Config struct {
	// DBPath is the path to the local SQLite database.
	DBPath string

	// FeedPath is the path to a purchase-history export consumed by the
	// file-backed source. Leave empty when wiring a custom Source.
	FeedPath string

	// FetchTimeout bounds one source fetch. The external feed runs at
	// browser-automation latency, so the default is generous.
	FetchTimeout time.Duration

	// Debug enables verbose logging of sync cycle phases.
	Debug bool

	// DebugLogPath is the path to write debug logs.
	// Defaults to stderr if empty.
	DebugLogPath string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DBPath:       filepath.Join("data", "kaimono.db"),
		FetchTimeout: 5 * time.Minute,
	}
}

// ConfigFromEnv reads configuration from environment variables.
//
//	KAIMONO_DB_PATH    → DBPath
//	KAIMONO_FEED       → FeedPath
//	KAIMONO_DEBUG      → Debug (any non-empty value enables)
//	KAIMONO_DEBUG_LOG  → DebugLogPath
func ConfigFromEnv() Config {
	return Config{
		DBPath:       os.Getenv("KAIMONO_DB_PATH"),
		FeedPath:     os.Getenv("KAIMONO_FEED"),
		Debug:        os.Getenv("KAIMONO_DEBUG") != "",
		DebugLogPath: os.Getenv("KAIMONO_DEBUG_LOG"),
	}
}

// Validate checks the configuration for errors.
// Returns *ValidationError for invalid fields.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return &ValidationError{Field: "DBPath", Message: "required: path to SQLite database"}
	}
	if c.FetchTimeout < 0 {
		return &ValidationError{Field: "FetchTimeout", Message: "must be non-negative"}
	}
	return nil
}

// WithDefaults fills in default values for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.DBPath == "" {
		c.DBPath = defaults.DBPath
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = defaults.FetchTimeout
	}
	return c
}
