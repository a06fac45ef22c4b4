// Package itemservice is the single writer for the reading lists. It loads
// both lists, runs the pure operations from package lists, persists the
// result, and keeps the search index in step.
package itemservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/lists"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Notifier receives every persisted change. kind is one of "added",
// "updated", "moved", "deleted".
type Notifier func(kind, itemID string, list storage.List)

// Option configures a Service.
type Option func(*Service)

// WithIndex keeps idx synced after every write and enables Search.
func WithIndex(idx index.ItemIndex) Option {
	return func(s *Service) { s.idx = idx }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithNotifier registers fn to be told about changes.
func WithNotifier(fn Notifier) Option {
	return func(s *Service) { s.notify = fn }
}

// Service coordinates storage, list operations and the index.
type Service struct {
	store  storage.Provider
	idx    index.ItemIndex
	logger *slog.Logger
	notify Notifier

	mu sync.Mutex
}

// NewService creates a new item service.
func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ItemView is an item together with where it currently lives.
type ItemView struct {
	DisplayID int          `json:"display_id"`
	List      storage.List `json:"list"`
	ETag      string       `json:"etag"`
	models.Item
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Status models.Status
	Type   models.ItemType
	List   storage.List
}

func (f Filter) match(v ItemView) bool {
	if f.Status != "" && v.Status != f.Status {
		return false
	}
	if f.Type != "" && v.Type != f.Type {
		return false
	}
	if f.List != "" && v.List != f.List {
		return false
	}
	return true
}

// ETag is a content digest of item used for optimistic concurrency.
func ETag(item models.Item) string {
	data, err := json.Marshal(item)
	if err != nil {
		return ""
	}
	return checksum.Sum(data)
}

func listOf(loc lists.Location) storage.List {
	if loc == lists.LocationArchive {
		return storage.Archive
	}
	return storage.Inbox
}

func view(e lists.Entry) ItemView {
	return ItemView{DisplayID: e.DisplayID, List: listOf(e.Location), ETag: ETag(e.Item), Item: e.Item}
}

type snapshot struct {
	inbox   []models.Item
	archive []models.Item
}

// loadList reads list and persists ids for records that predate them.
// Callers hold s.mu, so the backfill never races a write.
func (s *Service) loadList(list storage.List) ([]models.Item, error) {
	items, err := s.store.LoadItems(list)
	if err != nil {
		return nil, err
	}
	assigned := 0
	for i := range items {
		if items[i].EnsureID() {
			assigned++
		}
	}
	if assigned > 0 {
		if err := s.store.SaveItems(list, items); err != nil {
			return nil, err
		}
		s.logger.Info("assigned ids to legacy records", slog.String("list", string(list)), slog.Int("count", assigned))
	}
	return items, nil
}

// load reads both lists. Callers hold s.mu.
func (s *Service) load() (snapshot, error) {
	inbox, err := s.loadList(storage.Inbox)
	if err != nil {
		return snapshot{}, err
	}
	archive, err := s.loadList(storage.Archive)
	if err != nil {
		return snapshot{}, err
	}
	return snapshot{inbox: inbox, archive: archive}, nil
}

// syncIndex migrates legacy records, then brings the index up to date.
// Callers hold s.mu.
func (s *Service) syncIndex() ([]storage.List, error) {
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return index.Sync(s.idx, s.store, s.logger)
}

// resolve turns ref into a display id that is known to exist.
func (snap snapshot) resolve(ref string) (int, error) {
	id, err := lists.Resolve(ref, snap.inbox, snap.archive)
	if err != nil {
		return 0, err
	}
	if loc, _ := lists.Locate(id, len(snap.inbox), len(snap.archive)); loc == lists.LocationNone {
		return 0, fmt.Errorf("%w: no item matches %q", apperr.ErrNotFound, ref)
	}
	return id, nil
}

func (s *Service) saveBoth(inbox, archive []models.Item) error {
	if err := s.store.SaveItems(storage.Archive, archive); err != nil {
		return err
	}
	return s.store.SaveItems(storage.Inbox, inbox)
}

// changed reindexes and notifies after a successful write.
func (s *Service) changed(kind string, item models.Item, list storage.List) {
	if s.idx != nil {
		if _, err := index.Sync(s.idx, s.store, s.logger); err != nil {
			s.logger.Warn("itemservice: reindex failed", slog.String("error", err.Error()))
		}
	}
	if s.notify != nil {
		s.notify(kind, item.ID, list)
	}
}

// List returns the items of both lists with their display ids, filtered.
func (s *Service) List(_ context.Context, f Filter) ([]ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	out := []ItemView{}
	for _, e := range lists.Entries(snap.inbox, snap.archive) {
		if v := view(e); f.match(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Get returns one item by display id, stable id, or id prefix.
func (s *Service) Get(_ context.Context, ref string) (ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return ItemView{}, err
	}
	id, err := snap.resolve(ref)
	if err != nil {
		return ItemView{}, err
	}
	return view(lists.Entries(snap.inbox, snap.archive)[id-1]), nil
}

// AddResult reports where a new item went and what it displaced.
type AddResult struct {
	Item     models.Item   `json:"item"`
	List     storage.List  `json:"list"`
	Archived bool          `json:"archived"`
	Evicted  []models.Item `json:"evicted"`
}

// Add creates an item. Reference items go straight to the archive; others
// are admitted into the inbox under the stored settings.
func (s *Service) Add(_ context.Context, p models.NewItemParams) (AddResult, error) {
	item, err := models.New(p)
	if err != nil {
		return AddResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.store.LoadSettings()
	if err != nil {
		return AddResult{}, err
	}
	inbox, err := s.loadList(storage.Inbox)
	if err != nil {
		return AddResult{}, err
	}

	res, err := lists.AddItem(inbox, item, settings)
	if err != nil {
		return AddResult{}, err
	}

	if res.Archived {
		if err := s.store.AppendItem(storage.Archive, res.Item); err != nil {
			return AddResult{}, err
		}
		s.logger.Info("item added", slog.String("id", res.Item.ID), slog.String("list", string(storage.Archive)))
		s.changed("added", res.Item, storage.Archive)
		return AddResult{Item: res.Item, List: storage.Archive, Archived: true, Evicted: []models.Item{}}, nil
	}

	// Evictions land in the archive before the inbox drops them.
	for _, ev := range res.Evicted {
		if err := s.store.AppendItem(storage.Archive, ev); err != nil {
			return AddResult{}, err
		}
	}
	if err := s.store.SaveItems(storage.Inbox, res.Inbox); err != nil {
		return AddResult{}, err
	}

	s.logger.Info("item added", slog.String("id", res.Item.ID), slog.Int("evicted", len(res.Evicted)))
	s.changed("added", res.Item, storage.Inbox)
	for _, ev := range res.Evicted {
		s.changed("moved", ev, storage.Archive)
	}
	evicted := res.Evicted
	if evicted == nil {
		evicted = []models.Item{}
	}
	return AddResult{Item: res.Item, List: storage.Inbox, Evicted: evicted}, nil
}

// SetStatus changes the status of the referenced item, moving it between
// lists as needed.
func (s *Service) SetStatus(_ context.Context, ref string, status models.Status) (lists.StatusUpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.store.LoadSettings()
	if err != nil {
		return lists.StatusUpdateResult{}, err
	}
	snap, err := s.load()
	if err != nil {
		return lists.StatusUpdateResult{}, err
	}
	id, err := snap.resolve(ref)
	if err != nil {
		return lists.StatusUpdateResult{}, err
	}

	before, _, _ := lists.Find(id, snap.inbox, snap.archive)
	res, err := lists.UpdateItemStatus(id, status, snap.inbox, snap.archive, settings)
	if err != nil {
		return res, err
	}
	// Re-applying a status can still repair a missing timestamp.
	if !res.Transition.StatusChanged && sameTime(before.StartedAt, res.Item.StartedAt) &&
		sameTime(before.FinishedAt, res.Item.FinishedAt) {
		return res, nil
	}
	if err := s.saveBoth(res.Inbox, res.Archive); err != nil {
		return lists.StatusUpdateResult{}, err
	}

	s.logger.Info("item status changed",
		slog.String("id", res.Item.ID),
		slog.String("from", string(res.Transition.OldStatus)),
		slog.String("to", string(res.Transition.NewStatus)))

	switch {
	case len(res.MovedToArchive) > 0:
		s.changed("moved", res.Item, storage.Archive)
	case res.MovedToInbox:
		s.changed("moved", res.Item, storage.Inbox)
	default:
		s.changed("updated", res.Item, listOf(res.Location))
	}
	for _, ev := range res.OverflowItems {
		s.changed("moved", ev, storage.Archive)
	}
	return res, nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// Patch holds the editable fields of an item. Nil fields are left alone.
type Patch struct {
	Name   *string `json:"name"`
	Type   *string `json:"type"`
	Author *string `json:"author"`
	Link   *string `json:"link"`
	Note   *string `json:"note"`
}

func (p Patch) apply(it *models.Item) error {
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.Type != nil {
		t, err := models.ParseItemType(*p.Type)
		if err != nil {
			return err
		}
		it.Type = t
	}
	if p.Author != nil {
		it.Author = *p.Author
	}
	if p.Link != nil {
		it.Link = *p.Link
	}
	if p.Note != nil {
		it.Note = *p.Note
	}
	return nil
}

// Edit applies p to the referenced item in place. When ifMatch is set it
// must equal the item's current ETag.
func (s *Service) Edit(_ context.Context, ref string, p Patch, ifMatch string) (ItemView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return ItemView{}, err
	}
	id, err := snap.resolve(ref)
	if err != nil {
		return ItemView{}, err
	}
	current, loc, _ := lists.Find(id, snap.inbox, snap.archive)
	if ifMatch != "" && ifMatch != ETag(current) {
		return ItemView{}, apperr.ErrConflict
	}

	edited := current.Clone()
	if err := p.apply(&edited); err != nil {
		return ItemView{}, err
	}
	res, err := lists.ReplaceItem(id, edited, snap.inbox, snap.archive)
	if err != nil {
		return ItemView{}, err
	}

	list := listOf(loc)
	if list == storage.Inbox {
		err = s.store.SaveItems(storage.Inbox, res.Inbox)
	} else {
		err = s.store.SaveItems(storage.Archive, res.Archive)
	}
	if err != nil {
		return ItemView{}, err
	}

	s.logger.Info("item edited", slog.String("id", res.Item.ID))
	s.changed("updated", res.Item, list)
	return ItemView{DisplayID: id, List: list, ETag: ETag(res.Item), Item: res.Item}, nil
}

// Archive moves an inbox item to the archive without touching its status.
// Archived items are returned with Moved == false.
func (s *Service) Archive(_ context.Context, ref string) (lists.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return lists.MoveResult{}, err
	}
	id, err := snap.resolve(ref)
	if err != nil {
		return lists.MoveResult{}, err
	}

	res := lists.ArchiveItem(id, snap.inbox, snap.archive)
	if !res.Moved {
		return res, nil
	}
	if err := s.store.AppendItem(storage.Archive, res.Item); err != nil {
		return lists.MoveResult{}, err
	}
	if err := s.store.SaveItems(storage.Inbox, res.Inbox); err != nil {
		return lists.MoveResult{}, err
	}

	s.logger.Info("item archived", slog.String("id", res.Item.ID))
	s.changed("moved", res.Item, storage.Archive)
	return res, nil
}

// Delete removes the referenced item and returns it.
func (s *Service) Delete(_ context.Context, ref string) (models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return models.Item{}, err
	}
	id, err := snap.resolve(ref)
	if err != nil {
		return models.Item{}, err
	}

	res := lists.RemoveItem(id, snap.inbox, snap.archive)
	list := listOf(res.Location)
	if list == storage.Inbox {
		err = s.store.SaveItems(storage.Inbox, res.Inbox)
	} else {
		err = s.store.SaveItems(storage.Archive, res.Archive)
	}
	if err != nil {
		return models.Item{}, err
	}

	s.logger.Info("item deleted", slog.String("id", res.Item.ID), slog.String("list", string(list)))
	s.changed("deleted", res.Item, list)
	return res.Item, nil
}

// ToggleReference flips the item between normal and reference.
func (s *Service) ToggleReference(_ context.Context, ref string) (lists.MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load()
	if err != nil {
		return lists.MoveResult{}, err
	}
	id, err := snap.resolve(ref)
	if err != nil {
		return lists.MoveResult{}, err
	}

	res := lists.ToggleReference(id, snap.inbox, snap.archive)
	switch {
	case res.Moved:
		if err := s.store.AppendItem(storage.Archive, res.Item); err != nil {
			return lists.MoveResult{}, err
		}
		err = s.store.SaveItems(storage.Inbox, res.Inbox)
	case res.Location == lists.LocationInbox:
		err = s.store.SaveItems(storage.Inbox, res.Inbox)
	default:
		err = s.store.SaveItems(storage.Archive, res.Archive)
	}
	if err != nil {
		return lists.MoveResult{}, err
	}

	s.logger.Info("item kind changed", slog.String("id", res.Item.ID), slog.String("kind", string(res.Item.Kind)))
	if res.Moved {
		s.changed("moved", res.Item, storage.Archive)
	} else {
		s.changed("updated", res.Item, listOf(res.Location))
	}
	return res, nil
}

// Search runs a full-text query against the index after bringing it up to
// date.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.idx == nil {
		return nil, apperr.ErrUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation(errors.New("search query cannot be empty"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.syncIndex(); err != nil {
		return nil, err
	}
	res, err := s.idx.Search(query, limit)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []index.SearchResult{}
	}
	return res, nil
}

// Stats counts items per list and status.
func (s *Service) Stats(_ context.Context) ([]index.StatRow, error) {
	if s.idx == nil {
		return nil, apperr.ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.syncIndex(); err != nil {
		return nil, err
	}
	rows, err := s.idx.Stats()
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []index.StatRow{}
	}
	return rows, nil
}

// Reindex syncs the index with the list files and reports what changed.
func (s *Service) Reindex(_ context.Context) ([]storage.List, error) {
	if s.idx == nil {
		return nil, apperr.ErrUnavailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncIndex()
}

// Settings returns the stored settings.
func (s *Service) Settings(_ context.Context) (lists.Settings, error) {
	return s.store.LoadSettings()
}

// SetSetting updates one settings key from its string form.
func (s *Service) SetSetting(_ context.Context, key, value string) (lists.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.store.LoadSettings()
	if err != nil {
		return lists.Settings{}, err
	}
	next, err := cur.Set(key, value)
	if err != nil {
		return lists.Settings{}, err
	}
	if err := s.store.SaveSettings(next); err != nil {
		return lists.Settings{}, err
	}
	s.logger.Info("setting changed", slog.String("key", key), slog.String("value", value))
	return next, nil
}

// ReplaceSettings validates and stores a whole settings value.
func (s *Service) ReplaceSettings(_ context.Context, next lists.Settings) (lists.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next.Version = lists.DefaultSettings().Version
	if err := s.store.SaveSettings(next); err != nil {
		return lists.Settings{}, err
	}
	s.logger.Info("settings replaced")
	return next, nil
}

// ResetSettings restores the defaults.
func (s *Service) ResetSettings(ctx context.Context) (lists.Settings, error) {
	return s.ReplaceSettings(ctx, lists.DefaultSettings())
}
