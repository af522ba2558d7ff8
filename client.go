package kaimono

import (
	"context"
	"fmt"
)

// Client is the main interface for interacting with the purchase history.
// It exposes the two entry points the presentation layer needs — list the
// persisted records and run one sync cycle — plus the legacy read adapter
// and operational surfaces.
type Client struct {
	store  *Store
	syncer *Syncer
	config Config
	debug  *DebugLogger
}

// New creates a new kaimono client. source may be nil for a read-only
// client; Sync then fails with ErrNoSource.
func New(cfg Config, source Source) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug, err := NewDebugLogger(cfg.Debug, cfg.DebugLogPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	store, err := NewStore(cfg.DBPath)
	if err != nil {
		debug.Close()
		return nil, fmt.Errorf("client: %w", err)
	}

	return &Client{
		store:  store,
		syncer: NewSyncer(store, source, debug),
		config: cfg,
		debug:  debug,
	}, nil
}

// Logs returns every persisted purchase event ordered by date.
func (c *Client) Logs() ([]Log, error) {
	return Run(c.store, AllLogs())
}

// LegacyLogs returns the normalized Category→Item→History data projected
// into the Log shape. Read-only migration adapter.
func (c *Client) LegacyLogs() ([]Log, error) {
	return Run(c.store, LegacyLogs())
}

// Sync runs one incremental sync cycle against the configured source.
func (c *Client) Sync(ctx context.Context) (SyncOutcome, error) {
	if c.config.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.FetchTimeout)
		defer cancel()
	}
	return c.syncer.Run(ctx)
}

// Runs returns journaled sync cycles, newest first. limit <= 0 returns all.
func (c *Client) Runs(limit int) ([]SyncRun, error) {
	return c.store.Runs(limit)
}

// Stats returns store statistics.
func (c *Client) Stats() (*StoreStats, error) {
	return c.store.Stats()
}

// Store exposes the underlying store for composing custom units of work.
func (c *Client) Store() *Store {
	return c.store
}

// Close releases the store and the debug log.
func (c *Client) Close() error {
	err := c.store.Close()
	if cerr := c.debug.Close(); err == nil {
		err = cerr
	}
	return err
}
