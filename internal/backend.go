package internal

import (
	"fmt"
	"log/slog"

	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/itemservice"
	"github.com/starford/folio/internal/storage"
)

// Backend bundles the store, search index and item service that every
// entry point (CLI, HTTP, MCP) works through.
type Backend struct {
	Store   *storage.FS
	DB      *index.DB
	Service *itemservice.Service
}

// OpenBackend opens the data dir and index named by cfg. opts are applied
// after the index and logger options.
func OpenBackend(cfg *Config, logger *slog.Logger, opts ...itemservice.Option) (*Backend, error) {
	store, err := storage.NewFS(cfg.Data.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.IndexPath())
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	svcOpts := append([]itemservice.Option{
		itemservice.WithIndex(db),
		itemservice.WithLogger(logger),
	}, opts...)

	return &Backend{
		Store:   store,
		DB:      db,
		Service: itemservice.NewService(store, svcOpts...),
	}, nil
}

// Close releases the index.
func (b *Backend) Close() error {
	return b.DB.Close()
}
