// Package models defines the domain types for folio.
package models

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
)

// SchemaVersion is written to the "_v" field of every item.
const SchemaVersion = 1

// Status is the reading state of an item.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusTodo, StatusDoing, StatusDone}

// ParseStatus converts user input into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusTodo, StatusDoing, StatusDone:
		return st, nil
	}
	return "", apperr.Validation(fmt.Errorf("invalid status %q, valid options are: todo, doing, done", s))
}

// ItemType is the kind of media an item points to.
type ItemType string

const (
	TypeBlogPost      ItemType = "blog_post"
	TypeVideo         ItemType = "video"
	TypePodcast       ItemType = "podcast"
	TypeNews          ItemType = "news"
	TypeThread        ItemType = "thread"
	TypeAcademicPaper ItemType = "academic_paper"
	TypeOther         ItemType = "other"
)

// ItemTypes lists every valid item type.
var ItemTypes = []ItemType{
	TypeBlogPost, TypeVideo, TypePodcast, TypeNews, TypeThread, TypeAcademicPaper, TypeOther,
}

// ParseItemType converts user input into an ItemType.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ItemTypes {
		if t == known {
			return t, nil
		}
	}
	return "", apperr.Validation(fmt.Errorf("invalid item type %q, valid options are: %s", s, joinTypes()))
}

func joinTypes() string {
	names := make([]string, len(ItemTypes))
	for i, t := range ItemTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// Kind separates regular reading from reference material.
// Reference items live in the archive and never count against inbox capacity.
type Kind string

const (
	KindNormal    Kind = "normal"
	KindReference Kind = "reference"
)

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindNormal, KindReference:
		return k, nil
	}
	return "", apperr.Validation(fmt.Errorf("invalid kind %q, valid options are: normal, reference", s))
}

// Item is a single entry of the reading list.
type Item struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       ItemType   `json:"type"`
	Status     Status     `json:"status"`
	Author     string     `json:"author"`
	Link       string     `json:"link"`
	AddedAt    time.Time  `json:"added_at"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Note       string     `json:"note"`
	Kind       Kind       `json:"kind"`
	Version    int        `json:"_v"`
}

// Validate checks the item before it is persisted. Enum fields are only
// checked when set.
func (it *Item) Validate() error {
	err := validation.ValidateStruct(it,
		validation.Field(&it.Name, validation.Required.Error("name cannot be empty")),
		validation.Field(&it.Status, validation.In(StatusTodo, StatusDoing, StatusDone)),
		validation.Field(&it.Kind, validation.In(KindNormal, KindReference)),
		validation.Field(&it.Type, validation.In(toAny(ItemTypes)...)),
	)
	return apperr.Validation(err)
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// UpdateTimestamps applies the timestamp rule for the current status using
// the wall clock.
func (it *Item) UpdateTimestamps() {
	it.UpdateTimestampsAt(time.Now().UTC())
}

// UpdateTimestampsAt stamps StartedAt the first time the item is Doing and
// FinishedAt the first time it is Done. Todo clears both. Calling it again
// with the same status never re-stamps.
func (it *Item) UpdateTimestampsAt(now time.Time) {
	switch it.Status {
	case StatusTodo:
		it.StartedAt = nil
		it.FinishedAt = nil
	case StatusDoing:
		if it.StartedAt == nil {
			it.StartedAt = &now
		}
	case StatusDone:
		if it.FinishedAt == nil {
			it.FinishedAt = &now
		}
	}
}

// IsReference reports whether the item is reference material.
func (it *Item) IsReference() bool {
	return it.Kind == KindReference
}

// Clone returns a copy that shares no pointers with it.
func (it Item) Clone() Item {
	if it.StartedAt != nil {
		t := *it.StartedAt
		it.StartedAt = &t
	}
	if it.FinishedAt != nil {
		t := *it.FinishedAt
		it.FinishedAt = &t
	}
	return it
}

// EnsureID assigns a stable id to records written before ids existed.
// It reports whether an id was assigned.
func (it *Item) EnsureID() bool {
	if it.ID != "" {
		return false
	}
	it.ID = uuid.NewString()
	return true
}

// NewItemParams holds user-supplied fields for a new item. Type and Kind are
// free text; unknown values fall back to blog_post and normal.
type NewItemParams struct {
	Name   string
	Type   string
	Author string
	Link   string
	Note   string
	Kind   string
}

// New builds a validated Todo item with a fresh id.
func New(p NewItemParams) (Item, error) {
	itemType := TypeBlogPost
	if t, err := ParseItemType(p.Type); err == nil {
		itemType = t
	}
	kind := KindNormal
	if k, err := ParseKind(p.Kind); err == nil {
		kind = k
	}

	it := Item{
		ID:      uuid.NewString(),
		Name:    p.Name,
		Type:    itemType,
		Status:  StatusTodo,
		Author:  p.Author,
		Link:    p.Link,
		AddedAt: time.Now().UTC(),
		Note:    p.Note,
		Kind:    kind,
		Version: SchemaVersion,
	}
	if err := it.Validate(); err != nil {
		return Item{}, err
	}
	return it, nil
}
