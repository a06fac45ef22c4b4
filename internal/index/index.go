package index

// ItemIndex defines the interface for item indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ItemIndex interface {
	ReplaceList(list, checksum string, rows []ItemRow) error
	ListChecksum(list string) (string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Stats() ([]StatRow, error)
	Close() error
}

// Verify *DB satisfies ItemIndex at compile time.
var _ ItemIndex = (*DB)(nil)
