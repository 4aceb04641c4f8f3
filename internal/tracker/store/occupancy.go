package store

import "context"

// OccupancyStore persists the single seat-count value. Callers are
// responsible for serializing read-modify-write sequences; the store
// only guarantees that individual reads and writes are atomic.
type OccupancyStore interface {
	Filled(ctx context.Context) (int, error)
	SetFilled(ctx context.Context, filled int) error
}
