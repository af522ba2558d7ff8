package kaimono

import (
	"database/sql"
	"errors"
)

// Legacy normalized model: Category → Item → History. Retained for
// migration compatibility; the sync engine writes only to logs. Deletes do
// not cascade — children must go before parents or the store reports a
// constraint violation.

// CreateCategory inserts one category and returns it with its assigned id.
func CreateCategory(n NewCategory) Op[Category] {
	return func(tx *sql.Tx) (Category, error) {
		res, err := tx.Exec(`INSERT INTO categories (name) VALUES (?)`, n.Name)
		if err != nil {
			return Category{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return Category{}, err
		}
		return Category{ID: id, Name: n.Name}, nil
	}
}

// FindCategory looks a category up by id; nil when absent.
func FindCategory(id int64) Op[*Category] {
	return func(tx *sql.Tx) (*Category, error) {
		var c Category
		err := tx.QueryRow(`SELECT id, name FROM categories WHERE id = ?`, id).
			Scan(&c.ID, &c.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
}

// CategoryByName returns the first category with the given name; nil when
// absent. Name uniqueness is a soft invariant enforced by EnsureCategory,
// not by the schema.
func CategoryByName(name string) Op[*Category] {
	return func(tx *sql.Tx) (*Category, error) {
		var c Category
		err := tx.QueryRow(`SELECT id, name FROM categories WHERE name = ? LIMIT 1`, name).
			Scan(&c.ID, &c.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
}

// EnsureCategory looks a category up by name and creates it on first
// reference.
func EnsureCategory(name string) Op[Category] {
	return Bind(CategoryByName(name), func(found *Category) Op[Category] {
		if found != nil {
			return Pure(*found)
		}
		return CreateCategory(NewCategory{Name: name})
	})
}

// AllCategories returns every category ordered by id.
func AllCategories() Op[[]Category] {
	return func(tx *sql.Tx) ([]Category, error) {
		rows, err := tx.Query(`SELECT id, name FROM categories ORDER BY id`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var cats []Category
		for rows.Next() {
			var c Category
			if err := rows.Scan(&c.ID, &c.Name); err != nil {
				return nil, err
			}
			cats = append(cats, c)
		}
		return cats, rows.Err()
	}
}

// UpdateCategory rewrites the row keyed by ID; false when no row matched.
func UpdateCategory(c Category) Op[bool] {
	return func(tx *sql.Tx) (bool, error) {
		res, err := tx.Exec(`UPDATE categories SET name = ? WHERE id = ?`, c.Name, c.ID)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
}

// DeleteCategory removes a category; fails with a constraint error while
// items still reference it.
func DeleteCategory(id int64) Op[bool] {
	return func(tx *sql.Tx) (bool, error) {
		res, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
}

// CreateItem inserts one item and returns it with its assigned id.
func CreateItem(n NewItem) Op[Item] {
	return func(tx *sql.Tx) (Item, error) {
		res, err := tx.Exec(`
			INSERT INTO items (category_id, hash, name) VALUES (?, ?, ?)
		`, n.CategoryID, n.Hash, n.Name)
		if err != nil {
			return Item{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return Item{}, err
		}
		return Item{ID: id, CategoryID: n.CategoryID, Hash: n.Hash, Name: n.Name}, nil
	}
}

// FindItem looks an item up by id; nil when absent.
func FindItem(id int64) Op[*Item] {
	return func(tx *sql.Tx) (*Item, error) {
		var (
			i     Item
			catID sql.NullInt64
		)
		err := tx.QueryRow(`SELECT id, category_id, hash, name FROM items WHERE id = ?`, id).
			Scan(&i.ID, &catID, &i.Hash, &i.Name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if catID.Valid {
			i.CategoryID = &catID.Int64
		}
		return &i, nil
	}
}

// AllItems returns every item ordered by id.
func AllItems() Op[[]Item] {
	return func(tx *sql.Tx) ([]Item, error) {
		rows, err := tx.Query(`SELECT id, category_id, hash, name FROM items ORDER BY id`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var items []Item
		for rows.Next() {
			var (
				i     Item
				catID sql.NullInt64
			)
			if err := rows.Scan(&i.ID, &catID, &i.Hash, &i.Name); err != nil {
				return nil, err
			}
			if catID.Valid {
				v := catID.Int64
				i.CategoryID = &v
			}
			items = append(items, i)
		}
		return items, rows.Err()
	}
}

// UpdateItem rewrites the row keyed by ID; false when no row matched.
func UpdateItem(i Item) Op[bool] {
	return func(tx *sql.Tx) (bool, error) {
		res, err := tx.Exec(`
			UPDATE items SET category_id = ?, hash = ?, name = ? WHERE id = ?
		`, i.CategoryID, i.Hash, i.Name, i.ID)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
}

// DeleteItem removes an item; fails with a constraint error while
// histories still reference it.
func DeleteItem(id int64) Op[bool] {
	return func(tx *sql.Tx) (bool, error) {
		res, err := tx.Exec(`DELETE FROM items WHERE id = ?`, id)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
}

// CreateHistory inserts one purchase and returns it with its assigned id.
func CreateHistory(n NewHistory) Op[History] {
	return func(tx *sql.Tx) (History, error) {
		res, err := tx.Exec(`
			INSERT INTO histories (item_id, price, purchased_at) VALUES (?, ?, ?)
		`, n.ItemID, n.Price, n.PurchasedAt.String())
		if err != nil {
			return History{}, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return History{}, err
		}
		return History{ID: id, ItemID: n.ItemID, Price: n.Price, PurchasedAt: n.PurchasedAt}, nil
	}
}

// FindHistory looks a history row up by id; nil when absent.
func FindHistory(id int64) Op[*History] {
	return func(tx *sql.Tx) (*History, error) {
		var (
			h           History
			purchasedAt string
		)
		err := tx.QueryRow(`
			SELECT id, item_id, price, purchased_at FROM histories WHERE id = ?
		`, id).Scan(&h.ID, &h.ItemID, &h.Price, &purchasedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		h.PurchasedAt, err = ParseDate(purchasedAt)
		if err != nil {
			return nil, err
		}
		return &h, nil
	}
}

// UpdateHistory rewrites the row keyed by ID; false when no row matched.
func UpdateHistory(h History) Op[bool] {
	return func(tx *sql.Tx) (bool, error) {
		res, err := tx.Exec(`
			UPDATE histories SET item_id = ?, price = ?, purchased_at = ? WHERE id = ?
		`, h.ItemID, h.Price, h.PurchasedAt.String(), h.ID)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
}

// DeleteHistory removes a history row; false when no row matched.
func DeleteHistory(id int64) Op[bool] {
	return func(tx *sql.Tx) (bool, error) {
		res, err := tx.Exec(`DELETE FROM histories WHERE id = ?`, id)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	}
}

// MostRecentHistory returns the latest legacy purchase by date, id breaking
// ties; nil when the legacy tables are empty.
func MostRecentHistory() Op[*History] {
	return func(tx *sql.Tx) (*History, error) {
		var (
			h           History
			purchasedAt string
		)
		err := tx.QueryRow(`
			SELECT id, item_id, price, purchased_at
			FROM histories ORDER BY purchased_at DESC, id DESC LIMIT 1
		`).Scan(&h.ID, &h.ItemID, &h.Price, &purchasedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		h.PurchasedAt, err = ParseDate(purchasedAt)
		if err != nil {
			return nil, err
		}
		return &h, nil
	}
}

// LegacyLogs projects the normalized Item×History join into Log-shaped
// records. Read-only; the id is the history row's id.
func LegacyLogs() Op[[]Log] {
	return func(tx *sql.Tx) ([]Log, error) {
		rows, err := tx.Query(`
			SELECT h.id, i.hash, i.name, h.price, h.purchased_at
			FROM histories h
			JOIN items i ON i.id = h.item_id
			ORDER BY h.purchased_at, h.id
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
