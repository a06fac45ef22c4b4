package index

import (
	"log/slog"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Sync brings the index up to date with the list files. A list is only
// reloaded when its on-disk checksum differs from the recorded one. Sync
// returns the lists that were reindexed.
func Sync(db ItemIndex, store storage.Provider, logger *slog.Logger) ([]storage.List, error) {
	var changed []storage.List
	for _, list := range storage.Lists {
		ok, err := syncList(db, store, list)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("list", string(list)), slog.String("error", err.Error()))
			continue
		}
		if ok {
			logger.Debug("sync: indexed", slog.String("list", string(list)))
			changed = append(changed, list)
		}
	}
	return changed, nil
}

func syncList(db ItemIndex, store storage.Provider, list storage.List) (bool, error) {
	disk, err := store.Checksum(list)
	if err != nil {
		return false, err
	}
	indexed, err := db.ListChecksum(string(list))
	if err != nil {
		return false, err
	}
	if disk == indexed {
		return false, nil
	}

	items, err := store.LoadItems(list)
	if err != nil {
		return false, err
	}
	if err := db.ReplaceList(string(list), disk, rowsFor(items)); err != nil {
		return false, err
	}
	return true, nil
}

func rowsFor(items []models.Item) []ItemRow {
	rows := make([]ItemRow, len(items))
	for i, it := range items {
		rows[i] = ItemRow{
			Position: i,
			ID:       it.ID,
			Name:     it.Name,
			Author:   it.Author,
			Link:     it.Link,
			Note:     it.Note,
			Type:     string(it.Type),
			Status:   string(it.Status),
			Kind:     string(it.Kind),
			AddedAt:  it.AddedAt,
		}
	}
	return rows
}
