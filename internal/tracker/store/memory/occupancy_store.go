package memory

import (
	"context"
	"sync"
)

// OccupancyStore holds the seat count in memory. The ledger serializes
// read-modify-write sequences; this store only guards the value itself.
type OccupancyStore struct {
	mu     sync.RWMutex
	filled int
}

func NewOccupancyStore() *OccupancyStore {
	return &OccupancyStore{}
}

func (s *OccupancyStore) Filled(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filled, nil
}

func (s *OccupancyStore) SetFilled(_ context.Context, filled int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filled = filled
	return nil
}
