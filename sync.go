package kaimono

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// phase names one state of the sync cycle. The cycle is a straight line
// through these states with failed reachable from any of them.
type phase string

const (
	phaseResolving  phase = "resolving_range"
	phaseFetching   phase = "fetching"
	phaseMapping    phase = "mapping"
	phasePersisting phase = "persisting"
	phaseDone       phase = "done"
	phaseFailed     phase = "failed"
)

// Syncer drives one incremental sync cycle: resolve the missing window,
// fetch it from the source, map the raw records into the Log shape and
// persist them in a single transaction. One cycle runs to completion
// before another may start against the same store.
type Syncer struct {
	store  *Store
	source Source
	debug  *DebugLogger

	// now is replaceable in tests; "yesterday" is derived from it once
	// per cycle.
	now func() time.Time
}

// NewSyncer creates a syncer over the given store and source.
func NewSyncer(store *Store, source Source, debug *DebugLogger) *Syncer {
	return &Syncer{
		store:  store,
		source: source,
		debug:  debug,
		now:    time.Now,
	}
}

// Run executes one sync cycle. An empty window is a zero-count success and
// never touches the source's fetch path. A duplicate-hash constraint during
// the persist transaction rolls the whole batch back and downgrades to a
// success with the batch counted as skipped; everything else surfaces as a
// failure with no partial commit. The cycle is journaled either way.
func (s *Syncer) Run(ctx context.Context) (SyncOutcome, error) {
	started := s.now()
	outcome := SyncOutcome{RunID: ulid.Make().String()}

	if s.source == nil {
		return s.fail(outcome, started, ErrNoSource)
	}

	session, err := s.source.Open(ctx)
	if err != nil {
		return s.fail(outcome, started, &SourceError{Op: "open", Err: err})
	}
	defer func() { _ = session.Close() }()

	// ResolvingRange
	s.debug.LogPhase(string(phaseResolving), "querying floor date and most recent record")
	floor, err := session.OldestDate(ctx)
	if err != nil {
		return s.fail(outcome, started, &SourceError{Op: "oldest date", Err: err})
	}

	mostRecent, err := Run(s.store, MostRecentLog())
	if err != nil {
		return s.fail(outcome, started, err)
	}

	today := DateOf(s.now())
	window, ok := resolveWindow(recentDate(mostRecent), floor, today)
	if !ok {
		s.debug.LogPhase(string(phaseDone), "already synced through yesterday")
		s.journal(outcome, started, RunStatusNoop, nil)
		return outcome, nil
	}
	if err := window.ValidateForFetch(today); err != nil {
		return s.fail(outcome, started, err)
	}
	outcome.Window = &window

	// Fetching
	s.debug.LogPhase(string(phaseFetching), window.String())
	records, err := session.Fetch(ctx, window)
	if err != nil {
		return s.fail(outcome, started, &SourceError{Op: "fetch", Err: err})
	}
	outcome.Fetched = len(records)

	// Mapping: carry hash/name/price/date through unchanged, dropping
	// records whose hash is already persisted so the cycle does not lean
	// on the unique constraint for routine overlaps.
	s.debug.LogPhase(string(phaseMapping), fmt.Sprintf("%d records fetched", len(records)))
	hashes, err := Run(s.store, LogHashes())
	if err != nil {
		return s.fail(outcome, started, err)
	}

	batch := make([]NewLog, 0, len(records))
	for _, rec := range records {
		if _, dup := hashes[rec.Hash]; dup {
			outcome.Skipped++
			continue
		}
		batch = append(batch, NewLog{
			Hash:        rec.Hash,
			Name:        rec.Name,
			Price:       rec.Price,
			PurchasedAt: rec.PurchasedAt,
		})
	}

	if len(batch) == 0 {
		s.debug.LogPhase(string(phaseDone), "nothing new after mapping")
		s.journal(outcome, started, RunStatusDone, nil)
		s.markSynced()
		return outcome, nil
	}

	// Last cancellation point: once the persist transaction starts it
	// runs to completion or rolls back.
	if err := ctx.Err(); err != nil {
		return s.fail(outcome, started, err)
	}

	// Persisting: one composed unit of work, all rows or none.
	s.debug.LogPhase(string(phasePersisting), fmt.Sprintf("%d new records", len(batch)))
	ops := make([]Op[Log], len(batch))
	for i, n := range batch {
		ops[i] = CreateLog(n)
	}

	created, err := Run(s.store, All(ops))
	if err != nil {
		if IsConstraint(err) {
			// Off-by-one overlap or a concurrent writer beat us to a
			// hash. The batch rolled back; the next cycle will
			// re-resolve and pick up anything genuinely missing.
			s.debug.LogPhase(string(phaseDone), "duplicate during persist, batch rolled back")
			outcome.Skipped += len(batch)
			s.journal(outcome, started, RunStatusDone, err)
			return outcome, nil
		}
		return s.fail(outcome, started, err)
	}
	outcome.Persisted = len(created)

	s.debug.LogPhase(string(phaseDone), fmt.Sprintf("persisted %d", outcome.Persisted))
	s.journal(outcome, started, RunStatusDone, nil)
	s.markSynced()
	return outcome, nil
}

func (s *Syncer) fail(outcome SyncOutcome, started time.Time, err error) (SyncOutcome, error) {
	s.debug.LogError(string(phaseFailed), err)
	s.journal(outcome, started, RunStatusFailed, err)
	return outcome, err
}

// journal records the cycle in sync_runs. Best-effort: a journal failure
// never changes the cycle's outcome.
func (s *Syncer) journal(outcome SyncOutcome, started time.Time, status string, cause error) {
	run := SyncRun{
		ID:         outcome.RunID,
		StartedAt:  started,
		FinishedAt: s.now(),
		Fetched:    outcome.Fetched,
		Persisted:  outcome.Persisted,
		Skipped:    outcome.Skipped,
		Status:     status,
	}
	if outcome.Window != nil {
		run.WindowStart = &outcome.Window.Start
		run.WindowEnd = &outcome.Window.End
	}
	if cause != nil {
		run.Error = cause.Error()
	}
	if err := s.store.recordRun(run); err != nil {
		s.debug.LogError("journal", err)
	}
}

// markSynced stamps the last successful cycle time. Best-effort.
func (s *Syncer) markSynced() {
	if err := s.store.SetMetadata(metaLastSync, s.now().UTC().Format(time.RFC3339)); err != nil {
		s.debug.LogError("mark synced", err)
	}
}

func recentDate(l *Log) *Date {
	if l == nil {
		return nil
	}
	return &l.PurchasedAt
}
