package search

import (
	"path/filepath"
	"testing"
)

func testDoc(id, name, account string) Document {
	return Document{NodeID: id, AccountID: account, Provider: "gdrive", Email: "a@example.com", Name: name}
}

func TestAddDocumentIndexesNameAndAccount(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument(testDoc("1", "Annual Report", "acct-a"))

	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}
	doc, ok := idx.Get("1")
	if !ok || doc.Name != "Annual Report" {
		t.Fatalf("Get(1) = %+v, %v", doc, ok)
	}
	if len(idx.accountIndex["acct-a"]) != 1 {
		t.Error("document not indexed under its account")
	}
	if len(idx.nameIndex["annual"]) != 1 || len(idx.nameIndex["report"]) != 1 {
		t.Error("document not indexed under both name words")
	}
}

func TestRemoveDocumentPrunesPostings(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument(testDoc("1", "Annual Report", "acct-a"))

	doc, ok := idx.RemoveDocument("1")
	if !ok || doc.NodeID != "1" {
		t.Fatalf("RemoveDocument() = %+v, %v", doc, ok)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	if _, ok := idx.nameIndex["annual"]; ok {
		t.Error("name index entry survived removal")
	}
	if _, ok := idx.accountIndex["acct-a"]; ok {
		t.Error("account index entry survived removal")
	}
}

func TestRemoveDocumentUnknownIDReturnsFalse(t *testing.T) {
	idx := NewIndex()
	if _, ok := idx.RemoveDocument("missing"); ok {
		t.Error("RemoveDocument() on unknown ID returned ok=true")
	}
}

func TestClearEmptiesAllIndexes(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument(testDoc("1", "a", "acct"))
	idx.Clear()
	if !idx.IsEmpty() {
		t.Error("index not empty after Clear()")
	}
}

func TestGetByAccountReturnsOnlyThatAccount(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument(testDoc("1", "a", "acct-a"))
	idx.AddDocument(testDoc("2", "b", "acct-b"))

	docs := idx.GetByAccount("acct-a")
	if len(docs) != 1 || docs[0].NodeID != "1" {
		t.Fatalf("GetByAccount(acct-a) = %+v", docs)
	}
}

func TestAddDocumentReplacementLeavesStalePostings(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument(testDoc("1", "original name", "acct-a"))
	idx.AddDocument(testDoc("1", "renamed", "acct-a"))

	if len(idx.nameIndex["original"]) == 0 {
		t.Error("stale posting under the old name was unexpectedly pruned by a bare replace")
	}
	doc, _ := idx.Get("1")
	if doc.Name != "renamed" {
		t.Errorf("Get(1).Name = %q, want %q", doc.Name, "renamed")
	}
}

func TestPersistentIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")

	pi, err := OpenPersistentIndex(path)
	if err != nil {
		t.Fatalf("OpenPersistentIndex() failed: %v", err)
	}
	if err := pi.AddDocument(testDoc("1", "Doc One", "acct-a")); err != nil {
		t.Fatalf("AddDocument() failed: %v", err)
	}

	reopened, err := OpenPersistentIndex(path)
	if err != nil {
		t.Fatalf("reopen OpenPersistentIndex() failed: %v", err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("reopened Len() = %d, want 1", reopened.Len())
	}
	doc, ok := reopened.Get("1")
	if !ok || doc.Name != "Doc One" {
		t.Errorf("reopened Get(1) = %+v, %v", doc, ok)
	}
}
