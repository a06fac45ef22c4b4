//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			list UNINDEXED,
			position UNINDEXED,
			name,
			author,
			note,
			link,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, list string, r ItemRow) error {
	_, err := tx.Exec(`INSERT INTO items_fts (list, position, name, author, note, link) VALUES (?, ?, ?, ?, ?, ?)`,
		list, r.Position, r.Name, r.Author, r.Note, r.Link)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsDeleteList(tx *sql.Tx, list string) error {
	if _, err := tx.Exec(`DELETE FROM items_fts WHERE list = ?`, list); err != nil {
		return fmt.Errorf("index: clear fts: %w", err)
	}
	return nil
}

// matchExpr quotes every word of query as an FTS5 string so punctuation in
// user input never reaches the query syntax. Words are ANDed.
func matchExpr(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// Search performs an FTS5 full-text search and returns matching items with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	expr := matchExpr(query)
	if expr == "" {
		return nil, nil
	}
	rows, err := db.conn.Query(`
		SELECT i.id, i.list, i.name, i.author, i.status,
		       snippet(items_fts, 4, '<b>', '</b>', '...', 32)
		FROM items_fts f
		JOIN items i ON i.list = f.list AND i.position = f.position
		WHERE items_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, expr, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.List, &r.Name, &r.Author, &r.Status, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
