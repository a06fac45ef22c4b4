// Package apperr defines the error taxonomy shared by the service, CLI and API layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrInboxFull        = errors.New("inbox is full")
	ErrInvalidReference = errors.New("invalid item reference")
	ErrConflict         = errors.New("item was modified concurrently")
	ErrUnavailable      = errors.New("search index is not available")
)

// InboxFullError reports a rejected admission together with the settings
// that caused it, so callers can offer remediation.
type InboxFullError struct {
	MaxItems int
	Strategy string
}

func (e *InboxFullError) Error() string {
	return fmt.Sprintf("inbox limit (%d) reached with overflow strategy %q", e.MaxItems, e.Strategy)
}

// Unwrap lets errors.Is match ErrInboxFull.
func (e *InboxFullError) Unwrap() error { return ErrInboxFull }

// Remediation lists the actions a user can take to make room.
func (e *InboxFullError) Remediation() []string {
	return []string{
		"delete an existing item: folio delete <id>",
		"archive an item: folio set-status <id> done, or folio archive <id>",
		fmt.Sprintf("increase inbox size: folio config set max_items %d", e.MaxItems+10),
		"change overflow strategy: folio config set archive_on_overflow [todo|any]",
	}
}

// Validation wraps err so that errors.Is(err, ErrValidation) holds.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, err.Error())
}
