package content

import (
	"context"
	"sync"
)

// InmemStore keeps content in memory.
type InmemStore struct {
	sync.RWMutex
	blocks map[string][]byte
}

func NewInmemStore() *InmemStore {
	return &InmemStore{blocks: make(map[string][]byte)}
}

func (s *InmemStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	hash, err := HashString(data)
	if err != nil {
		return "", err
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	s.Lock()
	s.blocks[hash] = cp
	s.Unlock()

	return hash, nil
}

func (s *InmemStore) Get(ctx context.Context, hash string) ([]byte, error) {
	if _, err := parse(hash); err != nil {
		return nil, err
	}

	s.RLock()
	defer s.RUnlock()

	b, ok := s.blocks[hash]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(b))
	copy(cp, b)

	return cp, nil
}

func (s *InmemStore) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.blocks)
}
