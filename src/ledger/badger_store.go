package ledger

import (
	"fmt"

	"github.com/dgraph-io/badger"
	"github.com/sirupsen/logrus"
)

const recordPrefix = "doc_"

// BadgerStore is a Store persisted in a Badger database.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens an existing database or creates a new one if nothing is
// found in path.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false)

	if logger != nil {
		sub := logger.WithFields(logrus.Fields{"ns": "badger"})
		opts = opts.WithLogger(sub)
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	store := &BadgerStore{
		db:   handle,
		path: path,
	}

	return store, nil
}

func recordKey(docID string) []byte {
	return []byte(fmt.Sprintf("%s%s", recordPrefix, docID))
}

// Path returns the directory of the database.
func (s *BadgerStore) Path() string {
	return s.path
}

// GetRecord implements the Store interface.
func (s *BadgerStore) GetRecord(docID string) (*Record, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(docID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		if isDBKeyNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
		}
		return nil, err
	}

	record := new(Record)
	if err := Decode(data, record); err != nil {
		return nil, err
	}

	return record, nil
}

// PutRecord implements the Store interface.
func (s *BadgerStore) PutRecord(record *Record) error {
	data, err := Encode(record)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(record.DocID), data)
	})
}

// Records implements the Store interface. Records come out in key order.
func (s *BadgerStore) Records() ([]*Record, error) {
	res := []*Record{}

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(recordPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(data []byte) error {
				record := new(Record)
				if err := Decode(data, record); err != nil {
					return err
				}
				res = append(res, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return res, nil
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func isDBKeyNotFound(err error) bool {
	return err == badger.ErrKeyNotFound
}
