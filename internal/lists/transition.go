package lists

import (
	"time"

	"github.com/starford/folio/internal/models"
)

// TransitionResult describes a status write and the list moves it implies.
// ShouldArchive and ShouldReinstate are the only triggers for moving an
// item between inbox and archive.
type TransitionResult struct {
	OldStatus       models.Status
	NewStatus       models.Status
	StatusChanged   bool
	ShouldArchive   bool
	ShouldReinstate bool
}

// ChangeStatus writes status to item and applies the timestamp rule. Any
// status may move directly to any other.
func ChangeStatus(item *models.Item, status models.Status) TransitionResult {
	return changeStatusAt(item, status, time.Now().UTC())
}

func changeStatusAt(item *models.Item, status models.Status, now time.Time) TransitionResult {
	old := item.Status
	item.Status = status
	item.UpdateTimestampsAt(now)

	return TransitionResult{
		OldStatus:       old,
		NewStatus:       status,
		StatusChanged:   old != status,
		ShouldArchive:   old != models.StatusDone && status == models.StatusDone,
		ShouldReinstate: old == models.StatusDone && status != models.StatusDone,
	}
}
