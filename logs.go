package kaimono

import (
	"database/sql"
	"errors"
)

// Log repository. Every operation returns an unevaluated Op; compose them
// with Bind/Then and hand the result to Run to execute atomically.

// CreateLog inserts one purchase event and returns the persisted row
// including its assigned id. Fails with a constraint error when the hash
// is already present.
func CreateLog(n NewLog) Op[Log] {
	return func(tx *sql.Tx) (Log, error) {
		res, err := tx.Exec(`
			INSERT INTO logs (hash, name, price, purchased_at)
			VALUES (?, ?, ?, ?)
		`, n.Hash, n.Name, n.Price, n.PurchasedAt.String())
		if err != nil {
			return Log{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return Log{}, err
		}
		return Log{
			ID:          id,
			Hash:        n.Hash,
			Name:        n.Name,
			Price:       n.Price,
			PurchasedAt: n.PurchasedAt,
		}, nil
	}
}

// FindLog looks a log up by id. Absence is a nil result, not an error.
func FindLog(id int64) Op[*Log] {
	return func(tx *sql.Tx) (*Log, error) {
		row := tx.QueryRow(`
			SELECT id, hash, name, price, purchased_at FROM logs WHERE id = ?
		`, id)
		return scanLog(row)
	}
}

// UpdateLog rewrites the full row keyed by ID. A false result means no row
// matched (already deleted); callers treat that as non-fatal.
func UpdateLog(l Log) Op[bool] {
	return func(tx *sql.Tx) (bool, error) {
		res, err := tx.Exec(`
			UPDATE logs SET hash = ?, name = ?, price = ?, purchased_at = ?
			WHERE id = ?
		`, l.Hash, l.Name, l.Price, l.PurchasedAt.String(), l.ID)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
}

// DeleteLog removes a row by id with the same not-found semantics as
// UpdateLog.
func DeleteLog(id int64) Op[bool] {
	return func(tx *sql.Tx) (bool, error) {
		res, err := tx.Exec(`DELETE FROM logs WHERE id = ?`, id)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
}

// AllLogs returns every persisted purchase event ordered by date then id.
// The read is unbounded; record volume is personal-scale.
func AllLogs() Op[[]Log] {
	return func(tx *sql.Tx) ([]Log, error) {
		rows, err := tx.Query(`
			SELECT id, hash, name, price, purchased_at
			FROM logs ORDER BY purchased_at, id
		`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var logs []Log
		for rows.Next() {
			l, err := scanLogRows(rows)
			if err != nil {
				return nil, err
			}
			logs = append(logs, *l)
		}
		return logs, rows.Err()
	}
}

// MostRecentLog returns the latest purchase by date, id breaking ties.
// A nil result means the store is empty.
func MostRecentLog() Op[*Log] {
	return func(tx *sql.Tx) (*Log, error) {
		row := tx.QueryRow(`
			SELECT id, hash, name, price, purchased_at
			FROM logs ORDER BY purchased_at DESC, id DESC LIMIT 1
		`)
		return scanLog(row)
	}
}

// LogHashes returns the set of persisted content fingerprints. The sync
// cycle loads it once to skip records already present instead of relying
// on the unique constraint alone.
func LogHashes() Op[map[string]struct{}] {
	return func(tx *sql.Tx) (map[string]struct{}, error) {
		rows, err := tx.Query(`SELECT hash FROM logs`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		hashes := make(map[string]struct{})
		for rows.Next() {
			var h string
			if err := rows.Scan(&h); err != nil {
				return nil, err
			}
			hashes[h] = struct{}{}
		}
		return hashes, rows.Err()
	}
}

// scanner abstracts the Scan method shared by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanLogFrom(sc scanner) (*Log, error) {
	var (
		l           Log
		purchasedAt string
	)
	err := sc.Scan(&l.ID, &l.Hash, &l.Name, &l.Price, &purchasedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	l.PurchasedAt, err = ParseDate(purchasedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanLog(row *sql.Row) (*Log, error)       { return scanLogFrom(row) }
func scanLogRows(rows *sql.Rows) (*Log, error) { return scanLogFrom(rows) }
