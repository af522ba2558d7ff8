// Package kaimono incrementally synchronizes a local purchase-history store
// with an external feed that can only be queried by date range.
//
// The engine resolves the minimal window still missing from the store,
// fetches it through a Source collaborator, maps the raw records into the
// persisted Log shape and commits them as one atomic transaction. Re-running
// a cycle with no new upstream data is a zero-count no-op.
package kaimono

import "time"

// Log is the steady-state persisted purchase event. The schema evolved from
// a normalized Category→Item→History model into this flattened row; the
// legacy tables survive for migration compatibility (see LegacyLogs).
type Log struct {
	ID          int64
	Hash        string
	Name        string
	Price       int64
	PurchasedAt Date
}

// NewLog is the creation payload for Log. Hash is the content fingerprint
// of the upstream record and the deduplication key.
type NewLog struct {
	Hash        string
	Name        string
	Price       int64
	PurchasedAt Date
}

// Category groups items in the legacy normalized model.
type Category struct {
	ID   int64
	Name string
}

// NewCategory is the creation payload for Category.
type NewCategory struct {
	Name string
}

// Item is a purchasable product in the legacy normalized model.
// CategoryID is nullable; later schema revisions dropped the grouping.
type Item struct {
	ID         int64
	CategoryID *int64
	Hash       string
	Name       string
}

// NewItem is the creation payload for Item.
type NewItem struct {
	CategoryID *int64
	Hash       string
	Name       string
}

// History is one purchase of an Item in the legacy normalized model.
type History struct {
	ID          int64
	ItemID      int64
	Price       int64
	PurchasedAt Date
}

// NewHistory is the creation payload for History.
type NewHistory struct {
	ItemID      int64
	Price       int64
	PurchasedAt Date
}

// RawRecord is one purchase event as reported by the external source.
// Hash, name, price and date are carried into the Log shape unchanged.
type RawRecord struct {
	Hash        string `json:"hash"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	PurchasedAt Date   `json:"purchased_at"`
}

// SyncOutcome summarizes one completed sync cycle.
type SyncOutcome struct {
	// RunID identifies the journal entry written for this cycle.
	RunID string

	// Window is the fetch window that was resolved, nil when nothing
	// needed fetching.
	Window *Range

	// Fetched counts raw records returned by the source.
	Fetched int

	// Persisted counts rows committed to the store.
	Persisted int

	// Skipped counts records dropped as already present, including a
	// whole batch rolled back after an in-transaction duplicate.
	Skipped int
}

// SyncRun is one journaled sync cycle, newest first from Client.Runs.
type SyncRun struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	WindowStart *Date
	WindowEnd   *Date
	Fetched     int
	Persisted   int
	Skipped     int
	Status      string
	Error       string
}

// Sync run journal statuses.
const (
	RunStatusDone   = "done"
	RunStatusNoop   = "noop"
	RunStatusFailed = "failed"
)

// StoreStats reports store-level counters for the stats surfaces.
type StoreStats struct {
	LogCount      int
	LegacyCount   int
	LastSync      time.Time
	SchemaVersion string
}
