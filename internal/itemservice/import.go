package itemservice

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/lists"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// ImportFailure records an entry that was not imported.
type ImportFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ImportReport summarises a bulk import.
type ImportReport struct {
	Added    []models.Item   `json:"added"`
	Archived int             `json:"archived"`
	Evicted  []models.Item   `json:"evicted"`
	Skipped  []ImportFailure `json:"skipped"`
}

// Import adds every entry in order under one lock and one write per list.
// Entries whose link is already present in either list are skipped, as are
// entries rejected by validation or a full inbox.
func (s *Service) Import(_ context.Context, entries []models.NewItemParams) (ImportReport, error) {
	report := ImportReport{Added: []models.Item{}, Evicted: []models.Item{}, Skipped: []ImportFailure{}}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.store.LoadSettings()
	if err != nil {
		return report, err
	}
	snap, err := s.load()
	if err != nil {
		return report, err
	}

	seen := make(map[string]struct{})
	for _, it := range slices.Concat(snap.inbox, snap.archive) {
		if it.Link != "" {
			seen[strings.TrimSpace(it.Link)] = struct{}{}
		}
	}

	inbox := snap.inbox
	var toArchive []models.Item
	for _, p := range entries {
		link := strings.TrimSpace(p.Link)
		if _, dup := seen[link]; dup && link != "" {
			report.Skipped = append(report.Skipped, ImportFailure{Name: p.Name, Reason: "link already saved"})
			continue
		}

		item, err := models.New(p)
		if err != nil {
			report.Skipped = append(report.Skipped, ImportFailure{Name: p.Name, Reason: err.Error()})
			continue
		}
		res, err := lists.AddItem(inbox, item, settings)
		var full *apperr.InboxFullError
		switch {
		case errors.As(err, &full):
			report.Skipped = append(report.Skipped, ImportFailure{Name: p.Name, Reason: full.Error()})
			continue
		case err != nil:
			return report, err
		}

		if link != "" {
			seen[link] = struct{}{}
		}
		report.Added = append(report.Added, res.Item)
		if res.Archived {
			report.Archived++
			toArchive = append(toArchive, res.Item)
			continue
		}
		inbox = res.Inbox
		toArchive = append(toArchive, res.Evicted...)
		report.Evicted = append(report.Evicted, res.Evicted...)
	}

	if len(report.Added) == 0 {
		return report, nil
	}
	if err := s.saveBoth(inbox, slices.Concat(snap.archive, toArchive)); err != nil {
		return report, err
	}

	s.logger.Info("items imported",
		slog.Int("added", len(report.Added)),
		slog.Int("archived", report.Archived),
		slog.Int("skipped", len(report.Skipped)))
	s.changed("added", models.Item{}, storage.Inbox)
	return report, nil
}
