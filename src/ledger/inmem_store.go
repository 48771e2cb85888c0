package ledger

import (
	"fmt"
	"sort"
	"sync"
)

// InmemStore is a Store that keeps the world state in memory.
type InmemStore struct {
	sync.RWMutex
	records map[string]*Record
}

// NewInmemStore creates an empty InmemStore.
func NewInmemStore() *InmemStore {
	return &InmemStore{
		records: make(map[string]*Record),
	}
}

// GetRecord implements the Store interface. The returned record is a copy.
func (s *InmemStore) GetRecord(docID string) (*Record, error) {
	s.RLock()
	defer s.RUnlock()

	r, ok := s.records[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, docID)
	}

	return r.Clone(), nil
}

// PutRecord implements the Store interface.
func (s *InmemStore) PutRecord(record *Record) error {
	s.Lock()
	defer s.Unlock()

	s.records[record.DocID] = record.Clone()

	return nil
}

// Records implements the Store interface.
func (s *InmemStore) Records() ([]*Record, error) {
	s.RLock()
	defer s.RUnlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := make([]*Record, 0, len(keys))
	for _, k := range keys {
		res = append(res, s.records[k].Clone())
	}

	return res, nil
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}
