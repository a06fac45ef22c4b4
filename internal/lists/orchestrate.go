package lists

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Location names the list that holds an item.
type Location int

const (
	LocationNone Location = iota
	LocationInbox
	LocationArchive
)

func (l Location) String() string {
	switch l {
	case LocationInbox:
		return "inbox"
	case LocationArchive:
		return "archive"
	}
	return "none"
}

// Locate maps a 1-based display id over inbox ++ archive to a list and a
// 0-based index within it.
func Locate(displayID, inboxLen, archiveLen int) (Location, int) {
	switch {
	case displayID >= 1 && displayID <= inboxLen:
		return LocationInbox, displayID - 1
	case displayID > inboxLen && displayID <= inboxLen+archiveLen:
		return LocationArchive, displayID - inboxLen - 1
	}
	return LocationNone, -1
}

// Entry is an item annotated with its display id.
type Entry struct {
	DisplayID int
	Location  Location
	Item      models.Item
}

// Entries numbers inbox then archive starting at 1.
func Entries(inbox, archive []models.Item) []Entry {
	out := make([]Entry, 0, len(inbox)+len(archive))
	for _, it := range inbox {
		out = append(out, Entry{DisplayID: len(out) + 1, Location: LocationInbox, Item: it})
	}
	for _, it := range archive {
		out = append(out, Entry{DisplayID: len(out) + 1, Location: LocationArchive, Item: it})
	}
	return out
}

// minIDPrefix is the shortest stable-id prefix accepted by Resolve.
const minIDPrefix = 4

// Resolve turns a user reference into a display id. A short number without
// a leading zero is a display id; anything else is matched against stable
// ids, exactly or by unique prefix. A number that is both a display id and a
// prefix of another item's id is ambiguous. A zero id with a nil error means
// nothing matched.
func Resolve(ref string, inbox, archive []models.Item) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, fmt.Errorf("%w: empty reference", apperr.ErrInvalidReference)
	}
	displayID := 0
	if isDisplayID(ref, len(inbox)+len(archive)) {
		displayID, _ = strconv.Atoi(ref)
	}

	match := 0
	for _, e := range Entries(inbox, archive) {
		switch {
		case e.Item.ID == ref:
			return e.DisplayID, nil
		case len(ref) >= minIDPrefix && strings.HasPrefix(e.Item.ID, ref):
			if match != 0 {
				return 0, fmt.Errorf("%w: %q matches more than one item", apperr.ErrInvalidReference, ref)
			}
			match = e.DisplayID
		}
	}
	if displayID != 0 {
		if match != 0 && match != displayID {
			return 0, fmt.Errorf("%w: %q is both a display id and an id prefix", apperr.ErrInvalidReference, ref)
		}
		return displayID, nil
	}
	return match, nil
}

// isDisplayID reports whether ref reads as a display id for a view of total
// items: digits only, no leading zero, and no longer than total itself.
func isDisplayID(ref string, total int) bool {
	if ref[0] == '0' || len(ref) > len(strconv.Itoa(total)) {
		return false
	}
	for _, c := range ref {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// StatusUpdateResult is the outcome of UpdateItemStatus. Inbox and Archive
// are always set, so callers can persist them unconditionally on success.
type StatusUpdateResult struct {
	ItemFound      bool
	Item           models.Item
	Location       Location
	Transition     TransitionResult
	MovedToArchive []models.Item
	MovedToInbox   bool
	OverflowItems  []models.Item
	Inbox          []models.Item
	Archive        []models.Item
}

// txn stages edits on private copies of both lists. Callers only see the
// staged lists through commit; abandoning a txn leaves the inputs as they were.
type txn struct {
	inbox   []models.Item
	archive []models.Item
}

func begin(inbox, archive []models.Item) *txn {
	return &txn{inbox: cloneItems(inbox), archive: cloneItems(archive)}
}

func (t *txn) take(loc Location, idx int) models.Item {
	if loc == LocationInbox {
		it := t.inbox[idx]
		t.inbox = slices.Delete(t.inbox, idx, idx+1)
		return it
	}
	it := t.archive[idx]
	t.archive = slices.Delete(t.archive, idx, idx+1)
	return it
}

func (t *txn) item(loc Location, idx int) *models.Item {
	if loc == LocationInbox {
		return &t.inbox[idx]
	}
	return &t.archive[idx]
}

func (t *txn) commit(r *StatusUpdateResult) {
	r.Inbox = t.inbox
	r.Archive = t.archive
}

// UpdateItemStatus sets the status of the item at displayID and performs the
// move the transition implies: done items leave the inbox, items leaving
// done are reinstated into the inbox through Admit. A reinstatement that
// cannot be admitted fails with *apperr.InboxFullError and changes nothing.
// An out-of-range id yields ItemFound == false and no error.
func UpdateItemStatus(displayID int, status models.Status, inbox, archive []models.Item, settings Settings) (StatusUpdateResult, error) {
	return updateItemStatusAt(displayID, status, inbox, archive, settings, time.Now().UTC())
}

func updateItemStatusAt(displayID int, status models.Status, inbox, archive []models.Item, settings Settings, now time.Time) (StatusUpdateResult, error) {
	unchanged := StatusUpdateResult{Inbox: inbox, Archive: archive}

	loc, idx := Locate(displayID, len(inbox), len(archive))
	if loc == LocationNone {
		return unchanged, nil
	}

	tx := begin(inbox, archive)
	res := StatusUpdateResult{ItemFound: true, Location: loc}
	res.Transition = changeStatusAt(tx.item(loc, idx), status, now)

	switch loc {
	case LocationInbox:
		res.Item = *tx.item(loc, idx)
		if res.Transition.ShouldArchive {
			moved := tx.take(LocationInbox, idx)
			tx.archive = append(tx.archive, moved)
			res.MovedToArchive = []models.Item{moved}
		}
	case LocationArchive:
		res.Item = *tx.item(loc, idx)
		if res.Transition.ShouldReinstate && !res.Item.IsReference() {
			item := tx.take(LocationArchive, idx)
			admitted, err := admitAt(tx.inbox, item, settings.MaxItems, settings.OverflowStrategy, now)
			if err != nil {
				unchanged.ItemFound = true
				unchanged.Location = loc
				if errors.Is(err, ErrFull) {
					return unchanged, &apperr.InboxFullError{
						MaxItems: settings.MaxItems,
						Strategy: string(settings.OverflowStrategy),
					}
				}
				return unchanged, err
			}
			tx.inbox = admitted.Inbox
			tx.archive = append(tx.archive, admitted.Evicted...)
			res.MovedToInbox = true
			res.OverflowItems = admitted.Evicted
		}
	}

	tx.commit(&res)
	return res, nil
}
