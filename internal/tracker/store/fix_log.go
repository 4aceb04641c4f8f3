package store

import (
	"context"
	"time"
)

// FixRecord is one GPS fix as received from the device. Immutable once
// appended.
type FixRecord struct {
	Latitude        float64
	Longitude       float64
	DeviceTimestamp int64
	Satellites      int
	ReceivedAt      time.Time
}

// FixLogStore is an append-only fix log with a fixed retention cap.
// Appending at capacity evicts the single oldest entry before inserting.
type FixLogStore interface {
	Append(ctx context.Context, rec FixRecord) error

	// Latest returns the most recently appended fix, or ErrNotFound
	// when the log is empty.
	Latest(ctx context.Context) (FixRecord, error)

	// Recent returns up to limit fixes, most recent first.
	Recent(ctx context.Context, limit int) ([]FixRecord, error)

	Count(ctx context.Context) (int, error)
}
