package search

// BatchIndexer accumulates documents and commits them to the underlying
// index in batches for bulk imports. Each committed document still goes
// through Index.AddDocument, which takes the index lock once per document.
type BatchIndexer struct {
	index        *Index
	batchSize    int
	currentBatch []Document
	totalIndexed int
}

// NewBatchIndexer returns a batcher that auto-commits once currentBatch
// reaches batchSize documents.
func NewBatchIndexer(batchSize int) *BatchIndexer {
	return &BatchIndexer{
		index:     NewIndex(),
		batchSize: batchSize,
	}
}

// AddDocument appends doc to the pending batch, flushing (and reporting
// whether the flush ran) once the batch reaches its configured size.
func (b *BatchIndexer) AddDocument(doc Document) bool {
	b.currentBatch = append(b.currentBatch, doc)
	if len(b.currentBatch) >= b.batchSize {
		b.Flush()
		return true
	}
	return false
}

// AddDocuments appends every doc, flushing as the batch fills.
func (b *BatchIndexer) AddDocuments(docs []Document) {
	for _, doc := range docs {
		b.AddDocument(doc)
	}
}

// Flush commits the pending batch to the index and returns how many
// documents were committed.
func (b *BatchIndexer) Flush() int {
	if len(b.currentBatch) == 0 {
		return 0
	}
	count := len(b.currentBatch)
	for _, doc := range b.currentBatch {
		b.index.AddDocument(doc)
	}
	b.currentBatch = nil
	b.totalIndexed += count
	return count
}

// Inner returns the underlying index.
func (b *BatchIndexer) Inner() *Index { return b.index }

// TotalIndexed returns the cumulative count of documents committed across
// all flushes.
func (b *BatchIndexer) TotalIndexed() int { return b.totalIndexed }

// CurrentBatchSize returns the number of documents awaiting a flush.
func (b *BatchIndexer) CurrentBatchSize() int { return len(b.currentBatch) }

// BatchSize returns the configured auto-flush threshold.
func (b *BatchIndexer) BatchSize() int { return b.batchSize }

// IntoIndex flushes any pending batch and returns the underlying index.
func (b *BatchIndexer) IntoIndex() *Index {
	b.Flush()
	return b.index
}
