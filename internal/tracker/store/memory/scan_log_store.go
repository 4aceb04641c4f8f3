package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Furqan3/bustracker/internal/tracker/store"
)

// ScanLogStore is an in-memory append-only scan log. Growth is
// bounded only by TrimToNewest, matching the durable store.
type ScanLogStore struct {
	mu    sync.RWMutex
	scans []store.ScanRecord
}

func NewScanLogStore() *ScanLogStore {
	return &ScanLogStore{}
}

func (s *ScanLogStore) Append(_ context.Context, rec store.ScanRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scans = append(s.scans, rec)
	return nil
}

func (s *ScanLogStore) Latest(_ context.Context) (store.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.scans) == 0 {
		return store.ScanRecord{}, store.ErrNotFound
	}
	return s.scans[len(s.scans)-1], nil
}

func (s *ScanLogStore) Recent(_ context.Context, limit int) ([]store.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := limit
	if n < 0 {
		n = 0
	}
	if n > len(s.scans) {
		n = len(s.scans)
	}

	out := make([]store.ScanRecord, n)
	for i := 0; i < n; i++ {
		out[i] = s.scans[len(s.scans)-1-i]
	}
	return out, nil
}

func (s *ScanLogStore) ByCard(_ context.Context, uid string) ([]store.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.ScanRecord
	for i := len(s.scans) - 1; i >= 0; i-- {
		if s.scans[i].CardUID == uid {
			out = append(out, s.scans[i])
		}
	}
	return out, nil
}

func (s *ScanLogStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scans), nil
}

func (s *ScanLogStore) TrimToNewest(_ context.Context, max int) (int64, error) {
	if max < 0 {
		max = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	excess := len(s.scans) - max
	if excess <= 0 {
		return 0, nil
	}
	s.scans = append([]store.ScanRecord(nil), s.scans[excess:]...)
	return int64(excess), nil
}
