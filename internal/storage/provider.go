// Package storage persists the reading lists and settings under a data directory.
package storage

import (
	"fmt"

	"github.com/starford/folio/internal/lists"
	"github.com/starford/folio/internal/models"
)

// List names a persisted item list.
type List string

const (
	Inbox   List = "inbox"
	Archive List = "archive"
)

// Lists are all persisted lists in display order.
var Lists = []List{Inbox, Archive}

func (l List) valid() error {
	switch l {
	case Inbox, Archive:
		return nil
	}
	return fmt.Errorf("storage: unknown list %q", string(l))
}

// Provider is the interface for list and settings persistence.
type Provider interface {
	// LoadItems returns every item of list; a missing file is an empty list.
	LoadItems(list List) ([]models.Item, error)
	// SaveItems atomically replaces the whole list.
	SaveItems(list List, items []models.Item) error
	// AppendItem adds one record to the end of list without rewriting it.
	AppendItem(list List, item models.Item) error
	// Checksum returns a digest of the list file, or "" when it does not exist.
	Checksum(list List) (string, error)
	// LoadSettings returns the stored settings, or defaults when none are saved.
	LoadSettings() (lists.Settings, error)
	// SaveSettings validates and atomically writes settings.
	SaveSettings(s lists.Settings) error
}
