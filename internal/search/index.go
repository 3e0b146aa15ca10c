package search

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nimbusvault/filecore/internal/ferr"
)

// Index is the in-memory document store plus its two inverted indexes: by
// whitespace-tokenized lowercased name word, and by account ID.
type Index struct {
	mu           sync.RWMutex
	documents    map[string]Document
	nameIndex    map[string][]string
	accountIndex map[string][]string
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		documents:    make(map[string]Document),
		nameIndex:    make(map[string][]string),
		accountIndex: make(map[string][]string),
	}
}

// AddDocument inserts doc, indexing it by name word and account. Adding a
// document whose NodeID already exists replaces the stored document but
// does not remove the prior document's postings from nameIndex or
// accountIndex; callers that need a clean replace must go through
// IncrementalIndexer.ApplyChanges, whose Modified case explicitly removes
// before re-adding.
func (idx *Index) AddDocument(doc Document) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.documents[doc.NodeID] = doc

	nameLower := strings.ToLower(doc.Name)
	for _, word := range strings.Fields(nameLower) {
		idx.nameIndex[word] = append(idx.nameIndex[word], doc.NodeID)
	}
	idx.accountIndex[doc.AccountID] = append(idx.accountIndex[doc.AccountID], doc.NodeID)
}

// RemoveDocument deletes the document with the given node ID, pruning its
// postings from both inverted indexes. It returns the removed document and
// true, or the zero value and false if node ID was not present.
func (idx *Index) RemoveDocument(nodeID string) (Document, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	doc, ok := idx.documents[nodeID]
	if !ok {
		return Document{}, false
	}
	delete(idx.documents, nodeID)

	nameLower := strings.ToLower(doc.Name)
	for _, word := range strings.Fields(nameLower) {
		idx.nameIndex[word] = removeID(idx.nameIndex[word], nodeID)
		if len(idx.nameIndex[word]) == 0 {
			delete(idx.nameIndex, word)
		}
	}
	idx.accountIndex[doc.AccountID] = removeID(idx.accountIndex[doc.AccountID], nodeID)
	if len(idx.accountIndex[doc.AccountID]) == 0 {
		delete(idx.accountIndex, doc.AccountID)
	}
	return doc, true
}

func removeID(ids []string, nodeID string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != nodeID {
			out = append(out, id)
		}
	}
	return out
}

// Clear removes every document and both inverted indexes.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.documents = make(map[string]Document)
	idx.nameIndex = make(map[string][]string)
	idx.accountIndex = make(map[string][]string)
}

// Get returns the document with the given node ID.
func (idx *Index) Get(nodeID string) (Document, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	doc, ok := idx.documents[nodeID]
	return doc, ok
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.documents)
}

// IsEmpty reports whether the index holds no documents.
func (idx *Index) IsEmpty() bool {
	return idx.Len() == 0
}

// GetByAccount returns every document belonging to accountID.
func (idx *Index) GetByAccount(accountID string) []Document {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := idx.accountIndex[accountID]
	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := idx.documents[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

// PersistentIndex wraps an Index with a JSON snapshot on disk: every
// mutation re-serializes the full document set to path.
type PersistentIndex struct {
	*Index
	path string
}

// OpenPersistentIndex loads path if present, otherwise starts empty.
func OpenPersistentIndex(path string) (*PersistentIndex, error) {
	pi := &PersistentIndex{Index: NewIndex(), path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return pi, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferr.Wrap(ferr.IOFailed, "search: read persistent index failed", err)
	}
	var docs map[string]Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, ferr.Wrap(ferr.InvalidFormat, "search: decode persistent index failed", err)
	}
	for _, doc := range docs {
		pi.Index.AddDocument(doc)
	}
	return pi, nil
}

// AddDocument indexes doc and persists the new snapshot.
func (pi *PersistentIndex) AddDocument(doc Document) error {
	pi.Index.AddDocument(doc)
	return pi.save()
}

// RemoveDocument removes nodeID and persists the new snapshot.
func (pi *PersistentIndex) RemoveDocument(nodeID string) (Document, bool, error) {
	doc, ok := pi.Index.RemoveDocument(nodeID)
	if err := pi.save(); err != nil {
		return doc, ok, err
	}
	return doc, ok, nil
}

func (pi *PersistentIndex) save() error {
	if dir := filepath.Dir(pi.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ferr.Wrap(ferr.IOFailed, "search: create persistent index dir failed", err)
		}
	}
	pi.Index.mu.RLock()
	data, err := json.MarshalIndent(pi.Index.documents, "", "  ")
	pi.Index.mu.RUnlock()
	if err != nil {
		return ferr.Wrap(ferr.InvalidFormat, "search: encode persistent index failed", err)
	}
	if err := os.WriteFile(pi.path, data, 0o600); err != nil {
		return ferr.Wrap(ferr.IOFailed, "search: write persistent index failed", err)
	}
	return nil
}
