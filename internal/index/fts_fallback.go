//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the items table.
	return nil
}

func ftsInsert(_ *sql.Tx, _ string, _ ItemRow) error { return nil }

func ftsDeleteList(_ *sql.Tx, _ string) error { return nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
// Every word of query must appear in one of the text columns. Inbox hits
// come first, each list in its own order.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, nil
	}

	where := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)*4+1)
	for _, term := range terms {
		where = append(where, `(name LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\' OR note LIKE ? ESCAPE '\' OR link LIKE ? ESCAPE '\')`)
		like := "%" + likeEscaper.Replace(term) + "%"
		args = append(args, like, like, like, like)
	}
	args = append(args, limit)

	rows, err := db.conn.Query(`
		SELECT id, list, name, author, status, substr(note, 1, 200)
		FROM items
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY CASE list WHEN 'inbox' THEN 0 ELSE 1 END, position
		LIMIT ?
	`, args...)
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
