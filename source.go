package kaimono

import "context"

// Source opens sessions against the external purchase-history feed. The
// feed has no cursor and no webhook; it can only be queried by date range,
// at browser-automation latency.
type Source interface {
	// Open acquires a session. The caller must Close it on every exit
	// path regardless of success or failure.
	Open(ctx context.Context) (SourceSession, error)
}

// SourceSession is one live handle on the external feed.
type SourceSession interface {
	// OldestDate reports the earliest date the source can still return
	// records for. Queried once per sync cycle; it is the floor for an
	// empty store's first fetch.
	OldestDate(ctx context.Context) (Date, error)

	// Fetch returns every purchase event inside the closed range,
	// ascending by date. The range must already have passed the
	// no-today validity check; the session may itself reject ranges
	// violating it.
	Fetch(ctx context.Context, r Range) ([]RawRecord, error)

	// Close releases the session.
	Close() error
}
