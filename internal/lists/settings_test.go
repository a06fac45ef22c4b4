package lists

import (
	"errors"
	"testing"

	"github.com/starford/folio/internal/apperr"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.MaxItems != 30 || s.OverflowStrategy != OverflowAbort {
		t.Errorf("defaults = %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestSettingsValidate(t *testing.T) {
	cases := []struct {
		name    string
		s       Settings
		wantErr bool
	}{
		{"min", Settings{MaxItems: 1, OverflowStrategy: OverflowTodo}, false},
		{"max", Settings{MaxItems: 1000, OverflowStrategy: OverflowAny}, false},
		{"zero", Settings{MaxItems: 0, OverflowStrategy: OverflowAbort}, true},
		{"too big", Settings{MaxItems: 1001, OverflowStrategy: OverflowAbort}, true},
		{"bad strategy", Settings{MaxItems: 5, OverflowStrategy: "oldest"}, true},
		{"no strategy", Settings{MaxItems: 5}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.s.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("err = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestSettingsSetGet(t *testing.T) {
	s := DefaultSettings()
	s, err := s.Set(KeyMaxItems, "12")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := s.Get(KeyMaxItems); v != "12" {
		t.Errorf("max_items = %q", v)
	}
	s, err = s.Set(KeyArchiveOnOverflow, "ANY")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, _ := s.Get(KeyArchiveOnOverflow); v != "any" {
		t.Errorf("archive_on_overflow = %q", v)
	}

	for _, bad := range []string{"0", "1001", "12abc", "many"} {
		if _, err := s.Set(KeyMaxItems, bad); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Set(max_items, %q) err = %v", bad, err)
		}
	}
	if _, err := s.Set("colour", "red"); err == nil {
		t.Error("expected unknown key error")
	}
	if _, err := s.Get("colour"); err == nil {
		t.Error("expected unknown key error")
	}
}
