package search

import "testing"

func TestIncrementalIndexerMarkAddedAndRemoved(t *testing.T) {
	ix := NewIncrementalIndexer()
	doc := testDoc("1", "Test Document", "acct-a")

	ix.MarkAdded(doc)
	if ix.ProcessedCount() != 1 || ix.Inner().Len() != 1 {
		t.Fatalf("after MarkAdded: ProcessedCount=%d Inner.Len=%d", ix.ProcessedCount(), ix.Inner().Len())
	}

	ix.MarkChanged("1")
	if !ix.HasPendingChanges() || ix.ChangedCount() != 1 {
		t.Fatalf("after MarkChanged: HasPendingChanges=%v ChangedCount=%d", ix.HasPendingChanges(), ix.ChangedCount())
	}

	ix.MarkRemoved("1")
	if ix.ProcessedCount() != 0 || ix.Inner().Len() != 0 {
		t.Fatalf("after MarkRemoved: ProcessedCount=%d Inner.Len=%d", ix.ProcessedCount(), ix.Inner().Len())
	}
}

func TestIncrementalIndexerApplyChangesModifiedClearsStalePostings(t *testing.T) {
	ix := NewIncrementalIndexer()
	ix.ApplyChanges([]DocumentChange{
		{Kind: ChangeAdded, Doc: testDoc("1", "original name", "acct-a")},
	})

	ix.ApplyChanges([]DocumentChange{
		{Kind: ChangeModified, Doc: testDoc("1", "renamed", "acct-a")},
	})

	if ix.HasPendingChanges() {
		t.Error("ApplyChanges did not clear the pending-changes set")
	}
	if len(ix.Inner().nameIndex["original"]) != 0 {
		t.Error("Modified change left a stale posting under the document's old name")
	}
	doc, ok := ix.Inner().Get("1")
	if !ok || doc.Name != "renamed" {
		t.Errorf("Get(1) = %+v, %v, want renamed document", doc, ok)
	}
}

func TestIncrementalIndexerApplyChangesRemoved(t *testing.T) {
	ix := NewIncrementalIndexer()
	ix.ApplyChanges([]DocumentChange{
		{Kind: ChangeAdded, Doc: testDoc("1", "doc", "acct-a")},
	})
	ix.ApplyChanges([]DocumentChange{
		{Kind: ChangeRemoved, NodeID: "1"},
	})

	if ix.ProcessedCount() != 0 {
		t.Errorf("ProcessedCount() = %d, want 0", ix.ProcessedCount())
	}
	if ix.Inner().Len() != 0 {
		t.Errorf("Inner().Len() = %d, want 0", ix.Inner().Len())
	}
}

func TestIncrementalIndexerClear(t *testing.T) {
	ix := NewIncrementalIndexer()
	ix.MarkAdded(testDoc("1", "doc", "acct-a"))
	ix.Clear()

	if ix.ProcessedCount() != 0 || ix.ChangedCount() != 0 || ix.Inner().Len() != 0 {
		t.Error("Clear() left residual state")
	}
}
