package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Furqan3/bustracker/internal/tracker/store"
)

// FixLogStore keeps the most recent fixes in a fixed-capacity ring.
// Appending at capacity overwrites the oldest entry.
type FixLogStore struct {
	mu    sync.RWMutex
	buf   []store.FixRecord
	cap   int
	head  int // next write position
	count int
}

func NewFixLogStore(capacity int) *FixLogStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &FixLogStore{
		buf: make([]store.FixRecord, capacity),
		cap: capacity,
	}
}

func (s *FixLogStore) Append(_ context.Context, rec store.FixRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf[s.head] = rec
	s.head = (s.head + 1) % s.cap
	if s.count < s.cap {
		s.count++
	}
	return nil
}

func (s *FixLogStore) Latest(_ context.Context) (store.FixRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.count == 0 {
		return store.FixRecord{}, store.ErrNotFound
	}
	last := (s.head - 1 + s.cap) % s.cap
	return s.buf[last], nil
}

func (s *FixLogStore) Recent(_ context.Context, limit int) ([]store.FixRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := limit
	if n < 0 {
		n = 0
	}
	if n > s.count {
		n = s.count
	}

	out := make([]store.FixRecord, n)
	for i := 0; i < n; i++ {
		out[i] = s.buf[(s.head-1-i+s.cap*2)%s.cap]
	}
	return out, nil
}

func (s *FixLogStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, nil
}
