package ledgerdb

// InsertResult tells an idempotent insert apart from a replay.
type InsertResult int

const (
	// Inserted means the document was written.
	Inserted InsertResult = iota
	// AlreadyExists means a document with the same key was already stored
	// and nothing was written.
	AlreadyExists
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case AlreadyExists:
		return "already-exists"
	default:
		return "unknown"
	}
}

// BulkInsertResult counts the outcome of an unordered bulk insert.
type BulkInsertResult struct {
	Inserted       int
	AlreadyExisted int
}

// Total is the number of documents submitted.
func (r BulkInsertResult) Total() int {
	return r.Inserted + r.AlreadyExisted
}

// MakeBulkInsertResult derives the counts from the number of submitted and
// written documents.
func MakeBulkInsertResult(submitted int, inserted int64) BulkInsertResult {
	return BulkInsertResult{
		Inserted:       int(inserted),
		AlreadyExisted: submitted - int(inserted),
	}
}
