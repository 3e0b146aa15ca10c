package search

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// HistoryEntry is one recorded search query.
type HistoryEntry struct {
	Query       string `json:"query"`
	Timestamp   int64  `json:"timestamp"`
	ResultCount int    `json:"result_count"`
	Scope       string `json:"scope"`
}

// SearchHistory tracks recent and popular queries, with optional JSON
// persistence to disk.
type SearchHistory struct {
	entries         []HistoryEntry
	queryCounts     map[string]int
	maxHistory      int
	persistencePath string
}

// NewSearchHistory returns a history capped at maxHistory entries, with no
// persistence.
func NewSearchHistory(maxHistory int) *SearchHistory {
	return &SearchHistory{
		queryCounts: make(map[string]int),
		maxHistory:  maxHistory,
	}
}

// NewPersistentSearchHistory returns a history that loads path if it
// exists and auto-saves to it after every recorded search.
func NewPersistentSearchHistory(path string, maxHistory int) *SearchHistory {
	h := NewSearchHistory(maxHistory)
	h.persistencePath = path
	if _, err := os.Stat(path); err == nil {
		_ = h.Load()
	}
	return h
}

// RecordSearch pushes a new entry to the front of history, bumps query's
// popularity count, trims to maxHistory, and auto-saves if persistence is
// enabled.
func (h *SearchHistory) RecordSearch(query string, resultCount int, scope string) {
	entry := HistoryEntry{Query: query, Timestamp: nowUnix(), ResultCount: resultCount, Scope: scope}
	h.entries = append([]HistoryEntry{entry}, h.entries...)
	h.queryCounts[query]++

	if len(h.entries) > h.maxHistory {
		h.entries = h.entries[:h.maxHistory]
	}

	if h.persistencePath != "" {
		_ = h.Save()
	}
}

// GetRecent returns up to limit of the most recently recorded entries.
func (h *SearchHistory) GetRecent(limit int) []HistoryEntry {
	if limit > len(h.entries) {
		limit = len(h.entries)
	}
	out := make([]HistoryEntry, limit)
	copy(out, h.entries[:limit])
	return out
}

// PopularQuery is one query and how many times it has been recorded.
type PopularQuery struct {
	Query string
	Count int
}

// GetPopular returns up to limit queries ordered by descending count.
func (h *SearchHistory) GetPopular(limit int) []PopularQuery {
	popular := make([]PopularQuery, 0, len(h.queryCounts))
	for q, c := range h.queryCounts {
		popular = append(popular, PopularQuery{Query: q, Count: c})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].Count != popular[j].Count {
			return popular[i].Count > popular[j].Count
		}
		return popular[i].Query < popular[j].Query
	})
	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular
}

// SearchHistoryEntries returns up to 10 history entries whose query starts
// with prefix.
func (h *SearchHistory) SearchHistoryEntries(prefix string) []HistoryEntry {
	prefixLower := strings.ToLower(prefix)
	var matches []HistoryEntry
	for _, e := range h.entries {
		if strings.HasPrefix(strings.ToLower(e.Query), prefixLower) {
			matches = append(matches, e)
			if len(matches) == 10 {
				break
			}
		}
	}
	return matches
}

// Clear empties history and, if persistence is enabled, removes the
// backing file.
func (h *SearchHistory) Clear() {
	h.entries = nil
	h.queryCounts = make(map[string]int)
	if h.persistencePath != "" {
		_ = os.Remove(h.persistencePath)
	}
}

// Remove deletes every entry matching query and its popularity count.
func (h *SearchHistory) Remove(query string) {
	filtered := h.entries[:0]
	for _, e := range h.entries {
		if e.Query != query {
			filtered = append(filtered, e)
		}
	}
	h.entries = filtered
	delete(h.queryCounts, query)
}

// Len returns the number of history entries.
func (h *SearchHistory) Len() int { return len(h.entries) }

// IsEmpty reports whether history holds no entries.
func (h *SearchHistory) IsEmpty() bool { return len(h.entries) == 0 }

// Save writes history to its persistence path. It is a no-op if
// persistence was not configured.
func (h *SearchHistory) Save() error {
	if h.persistencePath == "" {
		return nil
	}
	if dir := filepath.Dir(h.persistencePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ferr.Wrap(ferr.IOFailed, "search: create history dir failed", err)
		}
	}
	data, err := json.MarshalIndent(h.entries, "", "  ")
	if err != nil {
		return ferr.Wrap(ferr.InvalidFormat, "search: encode history failed", err)
	}
	if err := os.WriteFile(h.persistencePath, data, 0o600); err != nil {
		return ferr.Wrap(ferr.IOFailed, "search: write history failed", err)
	}
	return nil
}

// Load replaces history with the contents of its persistence path and
// rebuilds popularity counts. It is a no-op if persistence was not
// configured or the file does not exist.
func (h *SearchHistory) Load() error {
	if h.persistencePath == "" {
		return nil
	}
	if _, err := os.Stat(h.persistencePath); os.IsNotExist(err) {
		return nil
	}
	data, err := os.ReadFile(h.persistencePath)
	if err != nil {
		return ferr.Wrap(ferr.IOFailed, "search: read history failed", err)
	}
	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return ferr.Wrap(ferr.InvalidFormat, "search: decode history failed", err)
	}

	h.entries = entries
	h.queryCounts = make(map[string]int)
	for _, e := range entries {
		h.queryCounts[e.Query]++
	}
	return nil
}

// nowUnix returns the current time in Unix seconds, used to stamp the
// entries RecordSearch adds.
func nowUnix() int64 { return time.Now().Unix() }
