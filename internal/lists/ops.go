package lists

import (
	"errors"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// AddResult is the outcome of AddItem. When Archived is set the item went
// straight to the archive and Inbox is the input unchanged.
type AddResult struct {
	Item     models.Item
	Archived bool
	Inbox    []models.Item
	Evicted  []models.Item
}

// AddItem validates item and places it: reference items are marked done
// and routed to the archive without touching capacity, everything else is
// admitted into the inbox under settings.
func AddItem(inbox []models.Item, item models.Item, settings Settings) (AddResult, error) {
	return addItemAt(inbox, item, settings, time.Now().UTC())
}

func addItemAt(inbox []models.Item, item models.Item, settings Settings, now time.Time) (AddResult, error) {
	if err := item.Validate(); err != nil {
		return AddResult{}, err
	}

	if item.IsReference() {
		item.Status = models.StatusDone
		item.UpdateTimestampsAt(now)
		return AddResult{Item: item, Archived: true, Inbox: inbox}, nil
	}

	admitted, err := admitAt(inbox, item, settings.MaxItems, settings.OverflowStrategy, now)
	if errors.Is(err, ErrFull) {
		return AddResult{}, &apperr.InboxFullError{
			MaxItems: settings.MaxItems,
			Strategy: string(settings.OverflowStrategy),
		}
	}
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{Item: item, Inbox: admitted.Inbox, Evicted: admitted.Evicted}, nil
}

// MoveResult is the outcome of the single-item list operations below.
// Location is where the item was found; Moved reports whether it changed
// lists.
type MoveResult struct {
	ItemFound bool
	Item      models.Item
	Location  Location
	Moved     bool
	Inbox     []models.Item
	Archive   []models.Item
}

// ArchiveItem moves an inbox item to the end of the archive without
// changing its status. Archive targets are reported with Moved == false.
func ArchiveItem(displayID int, inbox, archive []models.Item) MoveResult {
	loc, idx := Locate(displayID, len(inbox), len(archive))
	res := MoveResult{Location: loc, Inbox: inbox, Archive: archive}
	switch loc {
	case LocationInbox:
		tx := begin(inbox, archive)
		res.Item = tx.take(LocationInbox, idx)
		tx.archive = append(tx.archive, res.Item)
		res.ItemFound, res.Moved = true, true
		res.Inbox, res.Archive = tx.inbox, tx.archive
	case LocationArchive:
		res.ItemFound = true
		res.Item = archive[idx].Clone()
	}
	return res
}

// RemoveItem deletes the item at displayID from whichever list holds it.
func RemoveItem(displayID int, inbox, archive []models.Item) MoveResult {
	loc, idx := Locate(displayID, len(inbox), len(archive))
	res := MoveResult{Location: loc, Inbox: inbox, Archive: archive}
	if loc == LocationNone {
		return res
	}
	tx := begin(inbox, archive)
	res.Item = tx.take(loc, idx)
	res.ItemFound = true
	res.Inbox, res.Archive = tx.inbox, tx.archive
	return res
}

// ToggleReference flips the kind of the item at displayID. A normal inbox
// item becoming reference moves to the archive with its status untouched;
// archived items toggle in place and are never pulled back into the inbox.
func ToggleReference(displayID int, inbox, archive []models.Item) MoveResult {
	loc, idx := Locate(displayID, len(inbox), len(archive))
	res := MoveResult{Location: loc, Inbox: inbox, Archive: archive}
	if loc == LocationNone {
		return res
	}

	tx := begin(inbox, archive)
	it := tx.item(loc, idx)
	if it.IsReference() {
		it.Kind = models.KindNormal
	} else {
		it.Kind = models.KindReference
	}
	res.ItemFound = true
	res.Item = *it

	if loc == LocationInbox && res.Item.IsReference() {
		tx.archive = append(tx.archive, tx.take(LocationInbox, idx))
		res.Moved = true
	}
	res.Inbox, res.Archive = tx.inbox, tx.archive
	return res
}

// ReplaceItem swaps in an edited copy of the item at displayID after
// validating it. The item keeps its list and position, so its status and
// kind must stay as they are; those change through UpdateItemStatus and
// ToggleReference, which move the item when needed.
func ReplaceItem(displayID int, edited models.Item, inbox, archive []models.Item) (MoveResult, error) {
	loc, idx := Locate(displayID, len(inbox), len(archive))
	res := MoveResult{Location: loc, Inbox: inbox, Archive: archive}
	if loc == LocationNone {
		return res, nil
	}
	if err := edited.Validate(); err != nil {
		return res, err
	}

	tx := begin(inbox, archive)
	cur := tx.item(loc, idx)
	if edited.Status != cur.Status || edited.Kind != cur.Kind {
		return res, apperr.Validation(errors.New("status and kind cannot be edited in place, use set-status or mark-ref"))
	}
	*cur = edited.Clone()
	res.ItemFound = true
	res.Item = edited
	res.Inbox, res.Archive = tx.inbox, tx.archive
	return res, nil
}

// Find returns a copy of the item at displayID.
func Find(displayID int, inbox, archive []models.Item) (models.Item, Location, bool) {
	loc, idx := Locate(displayID, len(inbox), len(archive))
	switch loc {
	case LocationInbox:
		return inbox[idx].Clone(), loc, true
	case LocationArchive:
		return archive[idx].Clone(), loc, true
	}
	return models.Item{}, loc, false
}
