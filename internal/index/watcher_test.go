package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_ListChangeReindexed(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, store.Root(), quietLogger(), func(kind string, list storage.List) {
		mu.Lock()
		events = append(events, kind+":"+string(list))
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	if err := store.SaveItems(storage.Inbox, []models.Item{newItem(t, "Dune", "Herbert")}); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		res, _ := db.Search("dune", 10)
		return len(res) == 1
	}, "inbox change not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "updated:inbox" {
				return true
			}
		}
		return false
	}, "expected updated:inbox event")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	go Watch(ctx, db, store, store.Root(), quietLogger(), func(string, storage.List) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	settings, err := store.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSettings(settings); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Errorf("callback fired %d times for a settings change", calls)
	}
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	db := testDB(t)
	store := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, db, store, store.Root(), quietLogger(), nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
