package lists

import (
	"testing"
	"time"

	"github.com/starford/folio/internal/models"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func item(name string, status models.Status) models.Item {
	it := models.Item{
		ID:      "id-" + name,
		Name:    name,
		Type:    models.TypeBlogPost,
		Status:  status,
		Kind:    models.KindNormal,
		AddedAt: testNow,
		Version: models.SchemaVersion,
	}
	it.UpdateTimestampsAt(testNow)
	return it
}

func names(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func assertNames(t *testing.T, label string, items []models.Item, want ...string) {
	t.Helper()
	got := names(items)
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s = %v, want %v", label, got, want)
		}
	}
}

func snapshot(items []models.Item) []models.Item {
	out := make([]models.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func assertSameItems(t *testing.T, label string, got, want []models.Item) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s len = %d, want %d", label, len(got), len(want))
	}
	for i := range got {
		g, w := got[i], want[i]
		if g.ID != w.ID || g.Name != w.Name || g.Status != w.Status || g.Kind != w.Kind {
			t.Fatalf("%s[%d] = %+v, want %+v", label, i, g, w)
		}
		if (g.StartedAt == nil) != (w.StartedAt == nil) || (g.FinishedAt == nil) != (w.FinishedAt == nil) {
			t.Fatalf("%s[%d] timestamps differ: %+v vs %+v", label, i, g, w)
		}
	}
}
