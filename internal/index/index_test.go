package index

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testStore(t *testing.T) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func newItem(t *testing.T, name, author string) models.Item {
	t.Helper()
	it, err := models.New(models.NewItemParams{Name: name, Author: author, Type: "other"})
	if err != nil {
		t.Fatal(err)
	}
	return it
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM items`).Scan(&count); err != nil {
		t.Fatalf("items table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM list_checksums`).Scan(&count); err != nil {
		t.Fatalf("list_checksums table missing: %v", err)
	}
}

func TestReplaceListAndChecksum(t *testing.T) {
	db := testDB(t)
	rows := []ItemRow{
		{Position: 0, ID: "a", Name: "Dune", Status: "todo", AddedAt: time.Now()},
		{Position: 1, ID: "b", Name: "Hyperion", Status: "doing", AddedAt: time.Now()},
	}
	if err := db.ReplaceList("inbox", "abc123", rows); err != nil {
		t.Fatalf("ReplaceList: %v", err)
	}
	cs, err := db.ListChecksum("inbox")
	if err != nil {
		t.Fatal(err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want abc123", cs)
	}

	// Replacing drops rows that are no longer present.
	if err := db.ReplaceList("inbox", "def456", rows[:1]); err != nil {
		t.Fatal(err)
	}
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM items WHERE list = 'inbox'`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("inbox rows = %d, want 1", count)
	}
}

func TestListChecksum_Unknown(t *testing.T) {
	db := testDB(t)
	cs, err := db.ListChecksum("archive")
	if err != nil {
		t.Fatal(err)
	}
	if cs != "" {
		t.Errorf("checksum = %q, want empty", cs)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceList("inbox", "1", []ItemRow{
		{Position: 0, ID: "a", Name: "Dune", Author: "Frank Herbert", Status: "todo"},
		{Position: 1, ID: "b", Name: "Neuromancer", Author: "William Gibson", Status: "todo"},
	})
	_ = db.ReplaceList("archive", "2", []ItemRow{
		{Position: 0, ID: "c", Name: "Children of Dune", Author: "Frank Herbert", Status: "done"},
	})

	results, err := db.Search("dune", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	ids := map[string]string{}
	for _, r := range results {
		ids[r.ID] = r.List
	}
	if ids["a"] != "inbox" || ids["c"] != "archive" {
		t.Errorf("unexpected hits: %v", ids)
	}

	results, err = db.Search("gibson", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Name != "Neuromancer" {
		t.Errorf("author search = %+v", results)
	}

	// Every word has to match.
	results, err = db.Search("children dune", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "c" {
		t.Errorf("multi-word search = %+v", results)
	}

	results, err = db.Search(`dune-"50%"`, 10)
	if err != nil {
		t.Fatalf("punctuation in query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("punctuation search = %+v", results)
	}
}

func TestStats(t *testing.T) {
	db := testDB(t)
	_ = db.ReplaceList("inbox", "1", []ItemRow{
		{Position: 0, ID: "a", Status: "todo"},
		{Position: 1, ID: "b", Status: "todo"},
		{Position: 2, ID: "c", Status: "doing"},
	})
	_ = db.ReplaceList("archive", "2", []ItemRow{{Position: 0, ID: "d", Status: "done"}})

	stats, err := db.Stats()
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]int{}
	for _, s := range stats {
		got[s.List+"/"+s.Status] = s.Count
	}
	if got["inbox/todo"] != 2 || got["inbox/doing"] != 1 || got["archive/done"] != 1 {
		t.Errorf("stats = %v", got)
	}
}

func TestSync_LeavesLegacyFileUntouched(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	legacy := `{"name":"Old","type":"other","status":"todo","author":"","link":"","added_at":"2024-05-01T10:00:00Z","started_at":null,"finished_at":null,"note":"","kind":"normal","_v":1}` + "\n"
	if err := os.WriteFile(store.Path(storage.Inbox), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(store.Path(storage.Inbox))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != legacy {
		t.Errorf("sync rewrote the list file:\n%s", raw)
	}
	results, err := db.Search("old", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("results = %+v", results)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	store := testStore(t)
	logger := quietLogger()

	if err := store.SaveItems(storage.Inbox, []models.Item{newItem(t, "Dune", "Herbert")}); err != nil {
		t.Fatal(err)
	}

	changed, err := Sync(db, store, logger)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	// The archive file does not exist yet, so only the inbox is indexed.
	if len(changed) != 1 || changed[0] != storage.Inbox {
		t.Errorf("changed = %v, want [inbox]", changed)
	}

	// A second sync with no file changes touches nothing.
	changed, err = Sync(db, store, logger)
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 0 {
		t.Errorf("second sync changed = %v, want none", changed)
	}

	if err := store.AppendItem(storage.Archive, newItem(t, "Solaris", "Lem")); err != nil {
		t.Fatal(err)
	}
	changed, _ = Sync(db, store, logger)
	if len(changed) != 1 || changed[0] != storage.Archive {
		t.Errorf("changed = %v, want [archive]", changed)
	}

	results, err := db.Search("solaris", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].List != "archive" {
		t.Errorf("results = %+v", results)
	}
}
