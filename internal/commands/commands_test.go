package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/apperr"
)

// cliEnv runs folio commands against a private data dir.
type cliEnv struct {
	t    *testing.T
	home string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv(internal.EnvHome, home)
	return &cliEnv{t: t, home: home}
}

func (e *cliEnv) runWithInput(input string, args ...string) (string, error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	root := New("test")
	root.Writer = &out
	root.ErrWriter = &errOut
	root.Reader = strings.NewReader(input)
	err := root.Run(context.Background(), append([]string{"folio"}, args...))
	return out.String(), err
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	return e.runWithInput("", args...)
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("folio %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("output missing %q:\n%s", want, got)
	}
}

func TestAddAndList(t *testing.T) {
	e := newCLIEnv(t)

	out := e.mustRun("add", "--author", "Rob Pike", "--link", "https://go.dev/talks", "Concurrency", "is", "not", "parallelism")
	assertContains(t, out, "Added to inbox: Concurrency is not parallelism")

	e.mustRun("add", "--reference", "Effective Go")

	out = e.mustRun("list")
	assertContains(t, out, "Inbox (1/30)")
	assertContains(t, out, "Archive (1)")
	assertContains(t, out, "Rob Pike")
	assertContains(t, out, "done (ref)")

	out = e.mustRun("list", "--inbox")
	if strings.Contains(out, "Archive") {
		t.Errorf("--inbox printed the archive:\n%s", out)
	}

	if _, err := os.Stat(filepath.Join(e.home, "inbox.jsonl")); err != nil {
		t.Errorf("inbox file not written: %v", err)
	}
}

func TestListJSON(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "First")

	out := e.mustRun("list", "--json")
	assertContains(t, out, `"display_id": 1`)
	assertContains(t, out, `"name": "First"`)
}

func TestListInvalidStatus(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("list", "--status", "later")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestInboxFullPrintsRemediation(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("config", "set", "max_items", "1")
	e.mustRun("add", "a")

	_, err := e.run("add", "b")
	if !errors.Is(err, apperr.ErrInboxFull) {
		t.Fatalf("err = %v, want inbox full", err)
	}

	var buf bytes.Buffer
	PrintError(&buf, err)
	assertContains(t, buf.String(), "Error: inbox limit (1) reached")
	assertContains(t, buf.String(), "Options:")
	assertContains(t, buf.String(), "folio config set max_items 11")
}

func TestStatusShortcuts(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "a")
	e.mustRun("add", "b")

	out := e.mustRun("start", "2")
	assertContains(t, out, "b: todo -> doing")

	out = e.mustRun("finish", "1")
	assertContains(t, out, "a: todo -> done, moved to archive")

	// b is now #1 in the inbox and a is #2 in the archive.
	out = e.mustRun("reset", "2")
	assertContains(t, out, "a: done -> todo, moved back to inbox")

	out = e.mustRun("set-status", "1", "doing")
	assertContains(t, out, "(unchanged)")
}

func TestSetStatusUsage(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("set-status", "1")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestShowNotFound(t *testing.T) {
	e := newCLIEnv(t)
	_, err := e.run("show", "9")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
	var buf bytes.Buffer
	PrintError(&buf, err)
	assertContains(t, buf.String(), "folio list")
}

func TestEditAndShow(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "Draft title")

	if _, err := e.run("edit", "1"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("edit without fields: err = %v", err)
	}

	out := e.mustRun("edit", "--name", "Final title", "--note", "read twice", "--type", "video", "1")
	assertContains(t, out, "Updated #1: Final title")

	out = e.mustRun("show", "1")
	assertContains(t, out, "Final title")
	assertContains(t, out, "read twice")
	assertContains(t, out, "video")
}

func TestDeleteConfirmation(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "keep me")

	out, err := e.runWithInput("n\n", "delete", "1")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Cancelled.")
	assertContains(t, e.mustRun("list"), "keep me")

	out, err = e.runWithInput("y\n", "delete", "1")
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, out, "Deleted: keep me")

	e.mustRun("add", "gone")
	assertContains(t, e.mustRun("delete", "--yes", "1"), "Deleted: gone")
	assertContains(t, e.mustRun("list"), "Inbox (0/30)")
}

func TestArchiveAndMarkRef(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "a")
	e.mustRun("add", "b")

	assertContains(t, e.mustRun("archive", "1"), "Archived: a")
	assertContains(t, e.mustRun("archive", "2"), "Already in the archive: a")

	assertContains(t, e.mustRun("mark-ref", "1"), "b is now reference material (moved to archive)")
	assertContains(t, e.mustRun("mark-ref", "2"), "b is now a normal item")
	assertContains(t, e.mustRun("list"), "Inbox (0/30)")
}

func TestConfigCommands(t *testing.T) {
	e := newCLIEnv(t)

	assertContains(t, e.mustRun("config", "list"), "max_items = 30")
	assertContains(t, e.mustRun("config", "set", "archive_on_overflow", "any"), "archive_on_overflow = any")
	if out := e.mustRun("config", "get", "archive_on_overflow"); out != "any\n" {
		t.Errorf("get = %q", out)
	}

	if _, err := e.run("config", "set", "max_items", "0"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("max_items 0: err = %v", err)
	}
	if _, err := e.run("config", "get", "colour"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown key: err = %v", err)
	}

	assertContains(t, e.mustRun("config", "reset"), "archive_on_overflow = abort")
}

func TestImport(t *testing.T) {
	e := newCLIEnv(t)
	path := filepath.Join(t.TempDir(), "reading.md")
	md := "## Videos\n- [Go Proverbs](https://go-proverbs.github.io) - Rob Pike talk\n\n## Podcasts\n- Go Time 300\n"
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	out := e.mustRun("import", "--dry-run", path)
	assertContains(t, out, "2 entries")
	assertContains(t, out, "Go Proverbs")
	assertContains(t, e.mustRun("list"), "Inbox (0/30)")

	out = e.mustRun("import", path)
	assertContains(t, out, "Imported 2 items (0 to archive)")

	// Entries without a link cannot be matched, so only Go Proverbs repeats.
	out = e.mustRun("import", path)
	assertContains(t, out, "Imported 1 items")
	assertContains(t, out, "Skipped Go Proverbs")
}

func TestSearchStatsReindex(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "--note", "all about gophers", "Go memory model")
	e.mustRun("add", "Rust book")

	out := e.mustRun("search", "gophers")
	assertContains(t, out, "[inbox] Go memory model")
	if strings.Contains(out, "Rust") {
		t.Errorf("unexpected match:\n%s", out)
	}
	assertContains(t, e.mustRun("search", "nothing-like-this"), "No matches.")

	assertContains(t, e.mustRun("stats"), "inbox")
	assertContains(t, e.mustRun("reindex"), "Index is up to date.")
}
