// Package feed implements a purchase source backed by a JSON export file.
//
// The export is a JSON array of raw records ({hash, name, price,
// purchased_at}). It stands in for the browser-driven feed wherever one is
// impractical: the CLI, tests, and offline replays of previously captured
// history.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	kaimono "github.com/mfujimori/kaimono"
)

// Feed opens sessions over a JSON purchase-history export.
type Feed struct {
	path string
}

// New creates a feed over the export at path. The file is read per
// session, so the feed can be reused across sync cycles while the export
// grows.
func New(path string) *Feed {
	return &Feed{path: path}
}

// Open reads and sorts the export into a session.
func (f *Feed) Open(ctx context.Context) (kaimono.SourceSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var records []kaimono.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", f.path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("feed %s contains no records", f.path)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PurchasedAt.Before(records[j].PurchasedAt)
	})

	return &session{id: uuid.NewString(), records: records}, nil
}

// session is one handle over a loaded export.
type session struct {
	id      string
	records []kaimono.RawRecord
	closed  bool
}

// OldestDate returns the date of the earliest record in the export.
func (s *session) OldestDate(ctx context.Context) (kaimono.Date, error) {
	if s.closed {
		return kaimono.Date{}, fmt.Errorf("session %s is closed", s.id)
	}
	if err := ctx.Err(); err != nil {
		return kaimono.Date{}, err
	}
	return s.records[0].PurchasedAt, nil
}

// Fetch returns the records inside the range, ascending by date. Ranges
// reaching into today are the caller's bug and are rejected outright.
func (s *session) Fetch(ctx context.Context, r kaimono.Range) ([]kaimono.RawRecord, error) {
	if s.closed {
		return nil, fmt.Errorf("session %s is closed", s.id)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.ValidateForFetch(kaimono.DateOf(nowFunc())); err != nil {
		return nil, err
	}

	var out []kaimono.RawRecord
	for _, rec := range s.records {
		if r.Contains(rec.PurchasedAt) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Close releases the session.
func (s *session) Close() error {
	s.closed = true
	return nil
}
