package search

import "testing"

func TestBatchIndexerAutoFlushesAtBatchSize(t *testing.T) {
	b := NewBatchIndexer(3)

	if b.AddDocument(testDoc("1", "Test Document 1", "a")) {
		t.Error("AddDocument() triggered a flush before reaching batch size")
	}
	if b.AddDocument(testDoc("2", "Test Document 2", "a")) {
		t.Error("AddDocument() triggered a flush before reaching batch size")
	}
	if b.CurrentBatchSize() != 2 || b.TotalIndexed() != 0 {
		t.Fatalf("CurrentBatchSize=%d TotalIndexed=%d, want 2, 0", b.CurrentBatchSize(), b.TotalIndexed())
	}

	if !b.AddDocument(testDoc("3", "Test Document 3", "a")) {
		t.Error("AddDocument() did not trigger a flush at batch size")
	}
	if b.CurrentBatchSize() != 0 || b.TotalIndexed() != 3 {
		t.Errorf("after auto-flush: CurrentBatchSize=%d TotalIndexed=%d, want 0, 3", b.CurrentBatchSize(), b.TotalIndexed())
	}
}

func TestBatchIndexerManualFlush(t *testing.T) {
	b := NewBatchIndexer(5)
	b.AddDocument(testDoc("1", "Doc 1", "a"))
	b.AddDocument(testDoc("2", "Doc 2", "a"))

	if n := b.Flush(); n != 2 {
		t.Fatalf("Flush() = %d, want 2", n)
	}
	if b.TotalIndexed() != 2 || b.Inner().Len() != 2 {
		t.Errorf("TotalIndexed=%d Inner.Len=%d, want 2, 2", b.TotalIndexed(), b.Inner().Len())
	}
}

func TestBatchIndexerFlushOnEmptyBatchIsNoop(t *testing.T) {
	b := NewBatchIndexer(5)
	if n := b.Flush(); n != 0 {
		t.Errorf("Flush() on empty batch = %d, want 0", n)
	}
}

func TestBatchIndexerAddDocuments(t *testing.T) {
	b := NewBatchIndexer(10)
	docs := make([]Document, 5)
	for i := range docs {
		docs[i] = testDoc(string(rune('1'+i)), "Document", "a")
	}
	b.AddDocuments(docs)

	if b.TotalIndexed() != 0 {
		t.Fatalf("TotalIndexed() = %d before flush, want 0", b.TotalIndexed())
	}
	if n := b.Flush(); n != 5 {
		t.Fatalf("Flush() = %d, want 5", n)
	}
	if b.Inner().Len() != 5 {
		t.Errorf("Inner().Len() = %d, want 5", b.Inner().Len())
	}
}

func TestBatchIndexerIntoIndexFlushesPending(t *testing.T) {
	b := NewBatchIndexer(10)
	b.AddDocument(testDoc("1", "Doc", "a"))

	idx := b.IntoIndex()
	if idx.Len() != 1 {
		t.Errorf("IntoIndex().Len() = %d, want 1", idx.Len())
	}
}
