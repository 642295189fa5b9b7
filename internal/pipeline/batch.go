package pipeline

// Batch is an immutable ordered sequence of Documents. The zero value is
// not meaningful; use Empty() or NewBatch. Batches are passed between
// modules by reference — cheap to share, never mutated in place.
type Batch struct {
	docs []*Document
}

var emptyBatch = &Batch{}

// Empty returns the distinguished empty batch.
func Empty() *Batch {
	return emptyBatch
}

// NewBatch constructs a batch from the given documents, preserving order. A
// nil slice yields the empty batch.
func NewBatch(docs ...*Document) *Batch {
	if len(docs) == 0 {
		return Empty()
	}
	copied := make([]*Document, len(docs))
	copy(copied, docs)
	return &Batch{docs: copied}
}

// Len returns the number of documents in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.docs)
}

// Documents returns a read-only view of the batch's documents. Callers must
// not mutate the returned slice.
func (b *Batch) Documents() []*Document {
	if b == nil {
		return nil
	}
	return b.docs
}

// At returns the document at index i.
func (b *Batch) At(i int) *Document {
	return b.docs[i]
}

// Concat returns a new batch containing the documents of every argument
// batch in argument order, preserving each batch's own order. Empty (or
// nil) batches contribute nothing; when every argument is empty the
// distinguished empty batch is returned.
func Concat(batches ...*Batch) *Batch {
	total := 0
	for _, b := range batches {
		total += b.Len()
	}
	if total == 0 {
		return Empty()
	}
	docs := make([]*Document, 0, total)
	for _, b := range batches {
		docs = append(docs, b.Documents()...)
	}
	return &Batch{docs: docs}
}

// orNil normalizes a possibly-nil batch (as returned by a module that
// returned nil) into the distinguished empty batch, per the module contract.
func orNil(b *Batch) *Batch {
	if b == nil {
		return Empty()
	}
	return b
}
