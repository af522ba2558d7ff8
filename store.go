package kaimono

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	sqlite "modernc.org/sqlite"

	"github.com/mfujimori/kaimono/internal/store/migrations"
)

const schemaVersion = "3"

// metadata keys
const (
	metaSchemaVersion = "schema_version"
	metaLastSync      = "last_sync"
)

// Store manages the local SQLite purchase-history database.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
	path   string
}

// NewStore opens or creates a local purchase-history store.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	// Foreign keys must be on for every pooled connection; deletes are
	// expected to fail loudly when children still reference the row.
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO metadata (key, value) VALUES (?, ?)
	`, metaSchemaVersion, schemaVersion)
	return err
}

// Run executes a composed unit of work inside a single transaction: every
// write in the chain commits together or none do. Failures are classified
// into PersistenceError kinds; the transaction always rolls back on error.
func Run[T any](s *Store, op Op[T]) (T, error) {
	var zero T

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return zero, ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return zero, &PersistenceError{Op: "begin", Kind: KindTransport, Err: err}
	}
	defer tx.Rollback() // no-op if committed

	v, err := op(tx)
	if err != nil {
		return zero, classify("run", err)
	}

	if err := tx.Commit(); err != nil {
		return zero, &PersistenceError{Op: "commit", Kind: KindTransport, Err: err}
	}
	return v, nil
}

// classify maps driver errors onto the persistence taxonomy. Already
// classified errors pass through unchanged.
func classify(op string, err error) error {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return &PersistenceError{Op: op, Kind: KindNotFound, Err: err}
	}

	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == 19 { // SQLITE_CONSTRAINT
		return &PersistenceError{Op: op, Kind: KindConstraint, Err: err}
	}
	return &PersistenceError{Op: op, Kind: KindTransport, Err: err}
}

// GetMetadata returns the value stored under key, or "" when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetMetadata upserts a metadata key.
func (s *Store) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// recordRun journals one sync cycle. Journal writes are best-effort and
// never fail the cycle that produced them.
func (s *Store) recordRun(run SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	var start, end *string
	if run.WindowStart != nil {
		v := run.WindowStart.String()
		start = &v
	}
	if run.WindowEnd != nil {
		v := run.WindowEnd.String()
		end = &v
	}

	_, err := s.db.Exec(`
		INSERT INTO sync_runs (id, started_at, finished_at, window_start, window_end, fetched, persisted, skipped, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		start,
		end,
		run.Fetched,
		run.Persisted,
		run.Skipped,
		run.Status,
		nullString(run.Error),
	)
	return err
}

// Runs returns journaled sync cycles, newest first. limit <= 0 returns all.
func (s *Store) Runs(limit int) ([]SyncRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT id, started_at, finished_at, window_start, window_end, fetched, persisted, skipped, status, error
		FROM sync_runs ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var (
			run        SyncRun
			startedAt  string
			finishedAt string
			winStart   sql.NullString
			winEnd     sql.NullString
			runErr     sql.NullString
		)
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &winStart, &winEnd,
			&run.Fetched, &run.Persisted, &run.Skipped, &run.Status, &runErr); err != nil {
			return nil, err
		}
		run.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		run.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
		if winStart.Valid {
			d, err := ParseDate(winStart.String)
			if err == nil {
				run.WindowStart = &d
			}
		}
		if winEnd.Valid {
			d, err := ParseDate(winEnd.String)
			if err == nil {
				run.WindowEnd = &d
			}
		}
		if runErr.Valid {
			run.Error = runErr.String
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Stats returns store statistics.
func (s *Store) Stats() (*StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var logCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM logs").Scan(&logCount); err != nil {
		return nil, err
	}

	var legacyCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM histories").Scan(&legacyCount); err != nil {
		return nil, err
	}

	var lastSyncStr sql.NullString
	s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", metaLastSync).Scan(&lastSyncStr)

	var lastSync time.Time
	if lastSyncStr.Valid {
		lastSync, _ = time.Parse(time.RFC3339, lastSyncStr.String)
	}

	return &StoreStats{
		LogCount:      logCount,
		LegacyCount:   legacyCount,
		LastSync:      lastSync,
		SchemaVersion: schemaVersion,
	}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
