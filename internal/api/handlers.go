package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/folio/internal/itemservice"
	"github.com/starford/folio/internal/lists"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/parser"
	"github.com/starford/folio/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	svc *itemservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *itemservice.Service) *Handler {
	return &Handler{svc: svc}
}

func itemRef(r *http.Request) string {
	return chi.URLParam(r, "ref")
}

func setETag(w http.ResponseWriter, etag string) {
	if etag != "" {
		w.Header().Set("ETag", `"`+etag+`"`)
	}
}

// ListItems handles GET /api/items.
//
//	@Summary		List items of both lists with display ids
//	@Tags			items
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(todo, doing, done)
//	@Param			type	query		string	false	"Filter by item type"
//	@Param			list	query		string	false	"Filter by list"	Enums(inbox, archive)
//	@Success		200		{object}	ItemListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f itemservice.Filter
	if v := q.Get("status"); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			writeError(w, "list items", err)
			return
		}
		f.Status = st
	}
	if v := q.Get("type"); v != "" {
		t, err := models.ParseItemType(v)
		if err != nil {
			writeError(w, "list items", err)
			return
		}
		f.Type = t
	}
	switch v := storage.List(q.Get("list")); v {
	case "", storage.Inbox, storage.Archive:
		f.List = v
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("list must be inbox or archive"))
		return
	}

	items, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, "list items", err)
		return
	}
	writeJSON(w, http.StatusOK, ItemListResponse{Items: items, Total: len(items)})
}

// CreateItem handles POST /api/items.
//
//	@Summary		Add an item
//	@Description	Normal items enter the inbox under the overflow strategy; reference items go to the archive.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateItemRequest	true	"Item to add"
//	@Success		201		{object}	itemservice.AddResult
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items [post]
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Add(r.Context(), models.NewItemParams{
		Name:   strings.TrimSpace(req.Name),
		Type:   req.Type,
		Author: req.Author,
		Link:   req.Link,
		Note:   req.Note,
		Kind:   req.Kind,
	})
	if err != nil {
		writeError(w, "create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetItem handles GET /api/items/{ref}.
//
//	@Summary		Get an item by display id, id, or id prefix
//	@Tags			items
//	@Produce		json
//	@Param			ref	path		string	true	"Item reference"
//	@Success		200	{object}	ItemView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{ref} [get]
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.Context(), itemRef(r))
	if err != nil {
		writeError(w, "get item", err)
		return
	}
	setETag(w, item.ETag)
	writeJSON(w, http.StatusOK, item)
}

// EditItem handles PATCH /api/items/{ref}.
//
//	@Summary		Edit item fields with optimistic concurrency
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			ref			path		string				true	"Item reference"
//	@Param			If-Match	header		string				false	"ETag from a previous read"
//	@Param			body		body		itemservice.Patch	true	"Fields to change"
//	@Success		200			{object}	ItemView
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{ref} [patch]
func (h *Handler) EditItem(w http.ResponseWriter, r *http.Request) {
	var patch itemservice.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	item, err := h.svc.Edit(r.Context(), itemRef(r), patch, ifMatch)
	if err != nil {
		writeError(w, "edit item", err)
		return
	}
	setETag(w, item.ETag)
	writeJSON(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/items/{ref}.
//
//	@Summary		Delete an item
//	@Tags			items
//	@Param			ref	path	string	true	"Item reference"
//	@Success		204	"Item deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{ref} [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Delete(r.Context(), itemRef(r)); err != nil {
		writeError(w, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus handles PUT /api/items/{ref}/status.
//
//	@Summary		Change an item's status
//	@Description	Done moves inbox items to the archive; leaving done reinstates archived items into the inbox.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			ref		path		string				true	"Item reference"
//	@Param			body	body		SetStatusRequest	true	"New status"
//	@Success		200		{object}	StatusResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{ref}/status [put]
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		writeError(w, "set status", err)
		return
	}
	res, err := h.svc.SetStatus(r.Context(), itemRef(r), status)
	if err != nil {
		writeError(w, "set status", err)
		return
	}
	writeJSON(w, http.StatusOK, newStatusResponse(res))
}

// ArchiveItem handles POST /api/items/{ref}/archive.
//
//	@Summary		Move an inbox item to the archive without changing its status
//	@Tags			items
//	@Produce		json
//	@Param			ref	path		string	true	"Item reference"
//	@Success		200	{object}	MoveResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{ref}/archive [post]
func (h *Handler) ArchiveItem(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Archive(r.Context(), itemRef(r))
	if err != nil {
		writeError(w, "archive item", err)
		return
	}
	writeJSON(w, http.StatusOK, newMoveResponse(res))
}

// ToggleReference handles POST /api/items/{ref}/reference.
//
//	@Summary		Toggle an item between normal and reference
//	@Tags			items
//	@Produce		json
//	@Param			ref	path		string	true	"Item reference"
//	@Success		200	{object}	MoveResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/items/{ref}/reference [post]
func (h *Handler) ToggleReference(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ToggleReference(r.Context(), itemRef(r))
	if err != nil {
		writeError(w, "toggle reference", err)
		return
	}
	writeJSON(w, http.StatusOK, newMoveResponse(res))
}

// Import handles POST /api/import.
//
//	@Summary		Import items from a Markdown list
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ImportRequest	true	"Markdown document"
//	@Success		200		{object}	itemservice.ImportReport
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	parsed, err := parser.Parse([]byte(req.Markdown))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if len(parsed.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("no list entries found"))
		return
	}
	report, err := h.svc.Import(r.Context(), parsed.Items)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across both lists
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Stats handles GET /api/stats.
//
//	@Summary		Count items per list and status
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	StatsResponse
//	@Security		BearerAuth
//	@Router			/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Stats: stats})
}

// GetSettings handles GET /api/settings.
//
//	@Summary		Get the list settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	lists.Settings
//	@Security		BearerAuth
//	@Router			/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// PutSettings handles PUT /api/settings.
//
//	@Summary		Replace the list settings
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SettingsRequest	true	"New settings"
//	@Success		200		{object}	lists.Settings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings [put]
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s, err := h.svc.ReplaceSettings(r.Context(), lists.Settings{
		MaxItems:         req.MaxItems,
		OverflowStrategy: lists.OverflowStrategy(req.OverflowStrategy),
	})
	if err != nil {
		writeError(w, "put settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
