package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ItemRow represents a row in the items table.
type ItemRow struct {
	List     string
	Position int
	ID       string
	Name     string
	Author   string
	Link     string
	Note     string
	Type     string
	Status   string
	Kind     string
	AddedAt  time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	List    string `json:"list"`
	Name    string `json:"name"`
	Author  string `json:"author"`
	Status  string `json:"status"`
	Snippet string `json:"snippet"`
}

// StatRow counts the items of one list in one status.
type StatRow struct {
	List   string `json:"list"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ReplaceList swaps every row of list, its FTS entries, and its stored
// checksum within a transaction.
func (db *DB) ReplaceList(list, checksum string, rows []ItemRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := ftsDeleteList(tx, list); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM items WHERE list = ?`, list); err != nil {
		return fmt.Errorf("index: clear list: %w", err)
	}

	if len(rows) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO items (list, position, id, name, author, link, note, type, status, kind, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare item insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range rows {
			if _, err := stmt.Exec(list, r.Position, r.ID, r.Name, r.Author, r.Link, r.Note,
				r.Type, r.Status, r.Kind, r.AddedAt); err != nil {
				return fmt.Errorf("index: insert item: %w", err)
			}
			if err := ftsInsert(tx, list, r); err != nil {
				return err
			}
		}
	}

	_, err = tx.Exec(`
		INSERT INTO list_checksums (list, checksum) VALUES (?, ?)
		ON CONFLICT(list) DO UPDATE SET checksum = excluded.checksum
	`, list, checksum)
	if err != nil {
		return fmt.Errorf("index: store checksum: %w", err)
	}

	return tx.Commit()
}

// ListChecksum returns the checksum recorded for list, or "" when the list
// has never been indexed.
func (db *DB) ListChecksum(list string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM list_checksums WHERE list = ?`, list).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: list checksum: %w", err)
	}
	return cs, nil
}

// Stats counts indexed items per list and status.
func (db *DB) Stats() ([]StatRow, error) {
	rows, err := db.conn.Query(`
		SELECT list, status, count(*)
		FROM items
		GROUP BY list, status
		ORDER BY list DESC, status
	`)
	if err != nil {
		return nil, fmt.Errorf("index: stats: %w", err)
	}
	defer rows.Close()

	var out []StatRow
	for rows.Next() {
		var r StatRow
		if err := rows.Scan(&r.List, &r.Status, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
