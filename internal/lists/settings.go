// Package lists implements the inbox/archive rules: bounded admission,
// status transitions and the cross-list moves they trigger.
//
// Every function here works on snapshots. Input slices are never mutated;
// results carry fresh slices the caller may persist.
package lists

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
)

// OverflowStrategy selects which item leaves a full inbox.
type OverflowStrategy string

const (
	// OverflowAbort rejects the new item.
	OverflowAbort OverflowStrategy = "abort"
	// OverflowTodo evicts the first item still in todo.
	OverflowTodo OverflowStrategy = "todo"
	// OverflowAny evicts the oldest item regardless of status.
	OverflowAny OverflowStrategy = "any"
)

// ParseOverflowStrategy converts user input into an OverflowStrategy.
func ParseOverflowStrategy(s string) (OverflowStrategy, error) {
	switch st := OverflowStrategy(strings.ToLower(strings.TrimSpace(s))); st {
	case OverflowAbort, OverflowTodo, OverflowAny:
		return st, nil
	}
	return "", apperr.Validation(fmt.Errorf("invalid value for archive_on_overflow: %s, valid options are: abort, todo, any", s))
}

const (
	DefaultMaxItems = 30
	MinMaxItems     = 1
	MaxMaxItems     = 1000

	settingsVersion = 1
)

// Settings are the user-tunable inbox limits.
type Settings struct {
	MaxItems         int              `yaml:"max_items" json:"max_items"`
	OverflowStrategy OverflowStrategy `yaml:"archive_on_overflow" json:"archive_on_overflow"`
	Version          int              `yaml:"_v" json:"_v"`
}

// DefaultSettings returns a capacity of 30 with the abort strategy.
func DefaultSettings() Settings {
	return Settings{
		MaxItems:         DefaultMaxItems,
		OverflowStrategy: OverflowAbort,
		Version:          settingsVersion,
	}
}

// Validate validates the settings.
func (s *Settings) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.MaxItems,
			validation.Required.Error(fmt.Sprintf("must be a number between %d and %d", MinMaxItems, MaxMaxItems)),
			validation.Min(MinMaxItems), validation.Max(MaxMaxItems)),
		validation.Field(&s.OverflowStrategy,
			validation.Required, validation.In(OverflowAbort, OverflowTodo, OverflowAny)),
	)
	return apperr.Validation(err)
}

// Setting keys accepted by Get and Set.
const (
	KeyMaxItems          = "max_items"
	KeyArchiveOnOverflow = "archive_on_overflow"
)

// Keys lists the user-visible setting keys.
var Keys = []string{KeyMaxItems, KeyArchiveOnOverflow}

// Get returns the string form of a single setting.
func (s Settings) Get(key string) (string, error) {
	switch key {
	case KeyMaxItems:
		return strconv.Itoa(s.MaxItems), nil
	case KeyArchiveOnOverflow:
		return string(s.OverflowStrategy), nil
	}
	return "", unknownKey(key)
}

// Set returns a copy of s with key set to value. The result is validated.
func (s Settings) Set(key, value string) (Settings, error) {
	switch key {
	case KeyMaxItems:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < MinMaxItems || n > MaxMaxItems {
			return s, apperr.Validation(fmt.Errorf("invalid value for max_items: %s, must be a number between %d and %d", value, MinMaxItems, MaxMaxItems))
		}
		s.MaxItems = n
	case KeyArchiveOnOverflow:
		st, err := ParseOverflowStrategy(value)
		if err != nil {
			return s, err
		}
		s.OverflowStrategy = st
	default:
		return s, unknownKey(key)
	}
	return s, s.Validate()
}

func unknownKey(key string) error {
	return apperr.Validation(fmt.Errorf("unknown config key %q, valid keys are: %s", key, strings.Join(Keys, ", ")))
}
