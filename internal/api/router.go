package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/folio/internal/itemservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *itemservice.Service, authEnabled bool, token string, events http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.ListItems)
		r.Post("/", h.CreateItem)
		r.Route("/{ref}", func(r chi.Router) {
			r.Get("/", h.GetItem)
			r.Patch("/", h.EditItem)
			r.Delete("/", h.DeleteItem)
			r.Put("/status", h.SetStatus)
			r.Post("/archive", h.ArchiveItem)
			r.Post("/reference", h.ToggleReference)
		})
	})

	r.Post("/import", h.Import)
	r.Get("/search", h.Search)
	r.Get("/stats", h.Stats)

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.PutSettings)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
