package api

import (
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/itemservice"
	"github.com/starford/folio/internal/lists"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// CreateItemRequest is the request body for adding an item.
type CreateItemRequest struct {
	Name   string `json:"name" example:"Designing Data-Intensive Applications" validate:"required"`
	Type   string `json:"type" example:"blog_post"`
	Author string `json:"author" example:"Martin Kleppmann"`
	Link   string `json:"link" example:"https://dataintensive.net"`
	Note   string `json:"note"`
	Kind   string `json:"kind" example:"normal"`
}

// SetStatusRequest is the request body for changing an item's status.
type SetStatusRequest struct {
	Status string `json:"status" example:"doing" validate:"required"`
}

// ImportRequest carries a Markdown document to import.
type ImportRequest struct {
	Markdown string `json:"markdown" validate:"required"`
}

// SettingsRequest replaces the list settings.
type SettingsRequest struct {
	MaxItems         int    `json:"max_items" example:"30" validate:"required"`
	OverflowStrategy string `json:"archive_on_overflow" example:"abort" validate:"required"`
}

// ItemView is an item with its display id and list (aliased from the domain layer).
type ItemView = itemservice.ItemView

// ItemListResponse wraps item listings.
type ItemListResponse struct {
	Items []ItemView `json:"items" validate:"required"`
	Total int        `json:"total" example:"12" validate:"required"`
}

// StatusResponse describes the effect of a status change.
type StatusResponse struct {
	Item           models.Item   `json:"item"`
	List           storage.List  `json:"list"`
	OldStatus      models.Status `json:"old_status"`
	NewStatus      models.Status `json:"new_status"`
	StatusChanged  bool          `json:"status_changed"`
	MovedToArchive bool          `json:"moved_to_archive"`
	MovedToInbox   bool          `json:"moved_to_inbox"`
	Evicted        []models.Item `json:"evicted"`
}

func newStatusResponse(res lists.StatusUpdateResult) StatusResponse {
	list := storage.Inbox
	switch {
	case len(res.MovedToArchive) > 0:
		list = storage.Archive
	case res.MovedToInbox:
		list = storage.Inbox
	case res.Location == lists.LocationArchive:
		list = storage.Archive
	}
	evicted := res.OverflowItems
	if evicted == nil {
		evicted = []models.Item{}
	}
	return StatusResponse{
		Item:           res.Item,
		List:           list,
		OldStatus:      res.Transition.OldStatus,
		NewStatus:      res.Transition.NewStatus,
		StatusChanged:  res.Transition.StatusChanged,
		MovedToArchive: len(res.MovedToArchive) > 0,
		MovedToInbox:   res.MovedToInbox,
		Evicted:        evicted,
	}
}

// MoveResponse describes an archive or reference toggle.
type MoveResponse struct {
	Item  models.Item  `json:"item"`
	List  storage.List `json:"list"`
	Moved bool         `json:"moved"`
}

func newMoveResponse(res lists.MoveResult) MoveResponse {
	list := storage.Inbox
	if res.Moved || res.Location == lists.LocationArchive {
		list = storage.Archive
	}
	return MoveResponse{Item: res.Item, List: list, Moved: res.Moved}
}

// SearchResult is a single search hit (aliased from the index layer).
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// StatsResponse wraps per-list status counts.
type StatsResponse struct {
	Stats []index.StatRow `json:"stats" validate:"required"`
}
