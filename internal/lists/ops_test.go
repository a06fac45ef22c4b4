package lists

import (
	"errors"
	"testing"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

func TestArchiveItem(t *testing.T) {
	inbox := []models.Item{item("A", models.StatusDoing), item("B", models.StatusTodo)}
	archive := []models.Item{item("X", models.StatusDone)}

	res := ArchiveItem(1, inbox, archive)
	if !res.ItemFound || !res.Moved {
		t.Fatalf("res = %+v", res)
	}
	assertNames(t, "inbox", res.Inbox, "B")
	assertNames(t, "archive", res.Archive, "X", "A")
	if res.Archive[1].Status != models.StatusDoing {
		t.Errorf("archive keeps status, got %s", res.Archive[1].Status)
	}
	assertNames(t, "input inbox", inbox, "A", "B")

	res = ArchiveItem(3, inbox, archive)
	if !res.ItemFound || res.Moved || res.Location != LocationArchive {
		t.Errorf("already archived: %+v", res)
	}

	res = ArchiveItem(9, inbox, archive)
	if res.ItemFound {
		t.Error("out of range id found")
	}
}

func TestRemoveItem(t *testing.T) {
	inbox := []models.Item{item("A", models.StatusTodo)}
	archive := []models.Item{item("X", models.StatusDone), item("Y", models.StatusDone)}

	res := RemoveItem(2, inbox, archive)
	if !res.ItemFound || res.Item.Name != "X" {
		t.Fatalf("res = %+v", res)
	}
	assertNames(t, "archive", res.Archive, "Y")
	assertNames(t, "input archive", archive, "X", "Y")

	if RemoveItem(0, inbox, archive).ItemFound {
		t.Error("id 0 found")
	}
}

func TestToggleReference(t *testing.T) {
	inbox := []models.Item{item("A", models.StatusDoing)}
	archive := []models.Item{item("X", models.StatusDone)}

	res := ToggleReference(1, inbox, archive)
	if !res.Moved || res.Item.Kind != models.KindReference {
		t.Fatalf("res = %+v", res)
	}
	assertNames(t, "inbox", res.Inbox)
	assertNames(t, "archive", res.Archive, "X", "A")
	if res.Archive[1].Status != models.StatusDoing {
		t.Errorf("status changed to %s", res.Archive[1].Status)
	}

	// Toggling back leaves the item in the archive.
	res = ToggleReference(2, res.Inbox, res.Archive)
	if res.Moved || res.Item.Kind != models.KindNormal {
		t.Fatalf("res = %+v", res)
	}
	assertNames(t, "archive", res.Archive, "X", "A")
}

func TestReplaceItem(t *testing.T) {
	inbox := []models.Item{item("A", models.StatusTodo)}
	edited := inbox[0].Clone()
	edited.Name = "A2"
	edited.Author = "Rob Pike"

	res, err := ReplaceItem(1, edited, inbox, nil)
	if err != nil {
		t.Fatalf("ReplaceItem: %v", err)
	}
	assertNames(t, "inbox", res.Inbox, "A2")
	assertNames(t, "input", inbox, "A")

	edited.Name = ""
	if _, err := ReplaceItem(1, edited, inbox, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestReplaceItem_KeepsStatusAndKind(t *testing.T) {
	inbox := []models.Item{item("A", models.StatusTodo)}
	archive := []models.Item{item("X", models.StatusDone)}

	asRef := inbox[0].Clone()
	asRef.Kind = models.KindReference
	res, err := ReplaceItem(1, asRef, inbox, archive)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("reference in inbox: err = %v, want ErrValidation", err)
	}
	if res.Inbox[0].Kind != models.KindNormal || inbox[0].Kind != models.KindNormal {
		t.Error("rejected edit leaked into the lists")
	}

	done := inbox[0].Clone()
	done.Status = models.StatusDone
	if _, err := ReplaceItem(1, done, inbox, archive); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("status edit: err = %v, want ErrValidation", err)
	}

	reopened := archive[0].Clone()
	reopened.Status = models.StatusTodo
	if _, err := ReplaceItem(2, reopened, inbox, archive); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("archive status edit: err = %v, want ErrValidation", err)
	}
}

func TestFind(t *testing.T) {
	inbox := []models.Item{item("A", models.StatusTodo)}
	archive := []models.Item{item("X", models.StatusDone)}
	it, loc, ok := Find(2, inbox, archive)
	if !ok || loc != LocationArchive || it.Name != "X" {
		t.Errorf("Find(2) = %+v, %v, %v", it, loc, ok)
	}
	if _, _, ok := Find(3, inbox, archive); ok {
		t.Error("Find(3) ok")
	}
}
