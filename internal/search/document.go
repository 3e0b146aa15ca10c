// Package search implements the in-memory document index: exact, prefix,
// and account-scoped lookup, fuzzy/phonetic matching, display-path
// reconstruction, autocomplete suggestions, query history, and the
// incremental and batch indexing wrappers built on top of the core index.
package search

// Document is one indexed node: a file or folder belonging to some
// connected cloud account.
type Document struct {
	NodeID    string `json:"node_id"`
	AccountID string `json:"account_id"`
	Provider  string `json:"provider"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IsFolder  bool   `json:"is_folder"`
	ParentID  string `json:"parent_id,omitempty"`
}

// Result is one scored hit from a search query.
type Result struct {
	NodeID    string  `json:"node_id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	AccountID string  `json:"account_id"`
	Provider  string  `json:"provider"`
}
