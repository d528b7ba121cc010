package storage

import (
	"context"
	"sync"

	"dues/internal/core"
)

// MemoryStore keeps the encoded snapshot in memory. Holding bytes rather than
// the slice keeps it honest about what a real backend would round-trip.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreFrom seeds the store with a raw snapshot, e.g. a browser export.
func NewMemoryStoreFrom(data []byte) *MemoryStore {
	return &MemoryStore{data: append([]byte(nil), data...)}
}

func (s *MemoryStore) Load(_ context.Context) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, ErrNoSnapshot
	}
	return DecodeMembers(s.data)
}

func (s *MemoryStore) Save(_ context.Context, members []core.Member) error {
	data, err := EncodeMembers(members)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

// Bytes returns a copy of the last saved snapshot.
func (s *MemoryStore) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}
