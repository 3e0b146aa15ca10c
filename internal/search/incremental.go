package search

// ChangeKind labels a DocumentChange's effect on the index.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

// DocumentChange is one pending index mutation: Added/Modified carry the
// full document, Removed carries only the node ID.
type DocumentChange struct {
	Kind   ChangeKind
	Doc    Document
	NodeID string
}

// IncrementalIndexer wraps an Index with change tracking so a caller can
// batch up adds/modifies/removes observed from a live filesystem or cloud
// listing and apply them together.
type IncrementalIndexer struct {
	index       *Index
	processedID map[string]bool
	changedID   map[string]bool
}

// NewIncrementalIndexer returns an indexer over a fresh empty Index.
func NewIncrementalIndexer() *IncrementalIndexer {
	return &IncrementalIndexer{
		index:       NewIndex(),
		processedID: make(map[string]bool),
		changedID:   make(map[string]bool),
	}
}

// MarkChanged flags nodeID as needing re-indexing without touching the
// index itself.
func (ix *IncrementalIndexer) MarkChanged(nodeID string) {
	ix.changedID[nodeID] = true
}

// MarkAdded indexes doc immediately and flags it processed and changed.
func (ix *IncrementalIndexer) MarkAdded(doc Document) {
	ix.changedID[doc.NodeID] = true
	ix.processedID[doc.NodeID] = true
	ix.index.AddDocument(doc)
}

// MarkRemoved removes nodeID from the index immediately and flags it
// changed.
func (ix *IncrementalIndexer) MarkRemoved(nodeID string) {
	ix.changedID[nodeID] = true
	delete(ix.processedID, nodeID)
	ix.index.RemoveDocument(nodeID)
}

// ApplyChanges applies a batch of changes to the index, then clears the
// changed-ID set. Modified explicitly removes the prior document before
// re-adding so its stale word/account postings do not survive the update
// (the property AddDocument alone does not give).
func (ix *IncrementalIndexer) ApplyChanges(changes []DocumentChange) {
	for _, change := range changes {
		switch change.Kind {
		case ChangeAdded:
			ix.processedID[change.Doc.NodeID] = true
			ix.index.AddDocument(change.Doc)
		case ChangeModified:
			ix.index.RemoveDocument(change.Doc.NodeID)
			ix.index.AddDocument(change.Doc)
		case ChangeRemoved:
			delete(ix.processedID, change.NodeID)
			ix.index.RemoveDocument(change.NodeID)
		}
	}
	ix.changedID = make(map[string]bool)
}

// PendingChanges returns the node IDs flagged as changed but not yet
// applied via ApplyChanges.
func (ix *IncrementalIndexer) PendingChanges() []string {
	ids := make([]string, 0, len(ix.changedID))
	for id := range ix.changedID {
		ids = append(ids, id)
	}
	return ids
}

// HasPendingChanges reports whether any node is flagged as changed.
func (ix *IncrementalIndexer) HasPendingChanges() bool {
	return len(ix.changedID) > 0
}

// ChangedCount returns the number of nodes flagged as changed.
func (ix *IncrementalIndexer) ChangedCount() int { return len(ix.changedID) }

// ProcessedCount returns the number of nodes currently tracked as indexed.
func (ix *IncrementalIndexer) ProcessedCount() int { return len(ix.processedID) }

// Inner returns the underlying index.
func (ix *IncrementalIndexer) Inner() *Index { return ix.index }

// Clear resets the index and all change-tracking state.
func (ix *IncrementalIndexer) Clear() {
	ix.index.Clear()
	ix.processedID = make(map[string]bool)
	ix.changedID = make(map[string]bool)
}
