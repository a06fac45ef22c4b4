package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/folio/internal/storage"
)

const syncDebounce = 150 * time.Millisecond

// EventCallback is called after a watcher-driven index change with the list
// that was reindexed.
type EventCallback func(kind string, list storage.List)

// Watch starts an fsnotify watcher on the data directory and resyncs the
// index whenever a list file changes, until ctx is cancelled. Bursts of
// events are coalesced into one sync. cb (if non-nil) receives "updated"
// for every list whose contents changed.
//
// The directory itself is watched rather than the files, because atomic
// saves replace the list files through a rename.
func Watch(ctx context.Context, db ItemIndex, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(syncDebounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(syncDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			changed, err := Sync(db, store, logger)
			if err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
				continue
			}
			for _, list := range changed {
				logger.Debug("watcher: reindexed", slog.String("list", string(list)))
				if cb != nil {
					cb("updated", list)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if _, isList := storage.ListFromFileName(ev.Name); !isList {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
