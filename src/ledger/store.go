package ledger

// Store is the world state the Contract reads and writes. Records are keyed by
// document ID and listed in key order.
type Store interface {
	GetRecord(docID string) (*Record, error)
	PutRecord(record *Record) error
	Records() ([]*Record, error)
	Close() error
}
