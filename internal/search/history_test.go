package search

import (
	"path/filepath"
	"testing"
)

func TestSearchHistoryBasic(t *testing.T) {
	h := NewSearchHistory(10)
	h.RecordSearch("document", 5, "global")
	h.RecordSearch("pdf", 3, "global")
	h.RecordSearch("document", 7, "global")

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	popular := h.GetPopular(5)
	if len(popular) != 2 {
		t.Fatalf("len(popular) = %d, want 2", len(popular))
	}
	if popular[0].Query != "document" || popular[0].Count != 2 {
		t.Errorf("popular[0] = %+v, want document with count 2", popular[0])
	}
	if popular[1].Query != "pdf" || popular[1].Count != 1 {
		t.Errorf("popular[1] = %+v, want pdf with count 1", popular[1])
	}
}

func TestSearchHistoryPrefix(t *testing.T) {
	h := NewSearchHistory(10)
	h.RecordSearch("document", 5, "global")
	h.RecordSearch("documentation", 3, "global")
	h.RecordSearch("pdf", 2, "global")

	matches := h.SearchHistoryEntries("doc")
	if len(matches) != 2 {
		t.Fatalf("len(matches) = %d, want 2", len(matches))
	}
}

func TestSearchHistoryTrimsToMax(t *testing.T) {
	h := NewSearchHistory(2)
	h.RecordSearch("a", 1, "global")
	h.RecordSearch("b", 1, "global")
	h.RecordSearch("c", 1, "global")

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	recent := h.GetRecent(2)
	if recent[0].Query != "c" || recent[1].Query != "b" {
		t.Errorf("recent = %+v, want [c, b]", recent)
	}
}

func TestSearchHistoryPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")

	h := NewPersistentSearchHistory(path, 10)
	h.RecordSearch("invoice", 4, "global")

	reloaded := NewPersistentSearchHistory(path, 10)
	if reloaded.Len() != 1 {
		t.Fatalf("reloaded Len() = %d, want 1", reloaded.Len())
	}
	popular := reloaded.GetPopular(5)
	if len(popular) != 1 || popular[0].Query != "invoice" {
		t.Errorf("reloaded popular = %+v", popular)
	}
}

func TestSearchHistoryRemove(t *testing.T) {
	h := NewSearchHistory(10)
	h.RecordSearch("a", 1, "global")
	h.RecordSearch("b", 1, "global")

	h.Remove("a")
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	if _, ok := h.queryCounts["a"]; ok {
		t.Error("removed query still present in queryCounts")
	}
}
