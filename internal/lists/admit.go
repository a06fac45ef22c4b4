package lists

import (
	"errors"
	"slices"
	"time"

	"github.com/starford/folio/internal/models"
)

// ErrFull is returned by Admit when the inbox is at capacity and the
// strategy cannot make room.
var ErrFull = errors.New("lists: inbox full")

// AdmitResult is the inbox after a successful admission and the items
// evicted to make room. Evicted items are already marked done.
type AdmitResult struct {
	Inbox   []models.Item
	Evicted []models.Item
}

// Admit appends item to inbox, evicting according to strategy when the
// inbox already holds maxItems entries. On ErrFull the returned result is
// empty and inbox is untouched.
func Admit(inbox []models.Item, item models.Item, maxItems int, strategy OverflowStrategy) (AdmitResult, error) {
	return admitAt(inbox, item, maxItems, strategy, time.Now().UTC())
}

func admitAt(inbox []models.Item, item models.Item, maxItems int, strategy OverflowStrategy, now time.Time) (AdmitResult, error) {
	out := cloneItems(inbox)
	if len(out) < maxItems {
		return AdmitResult{Inbox: append(out, item)}, nil
	}

	victim := -1
	switch strategy {
	case OverflowAbort:
	case OverflowTodo:
		victim = slices.IndexFunc(out, func(it models.Item) bool {
			return it.Status == models.StatusTodo
		})
	case OverflowAny:
		if len(out) > 0 {
			victim = 0
		}
	}
	if victim < 0 {
		return AdmitResult{}, ErrFull
	}

	evicted := out[victim]
	evicted.Status = models.StatusDone
	evicted.UpdateTimestampsAt(now)
	out = slices.Delete(out, victim, victim+1)

	return AdmitResult{
		Inbox:   append(out, item),
		Evicted: []models.Item{evicted},
	}, nil
}

func cloneItems(items []models.Item) []models.Item {
	out := make([]models.Item, len(items), len(items)+1)
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
