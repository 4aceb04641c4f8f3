package store

import (
	"context"
	"time"
)

// ScanRecord is one classified RFID scan. CardUID is canonical
// (upper-case); FilledAfter is the seat count after the transition was
// applied. Immutable once appended.
type ScanRecord struct {
	CardUID         string
	DeviceTimestamp int64
	ReceivedAt      time.Time
	Outcome         Outcome
	FilledAfter     int
}

// ScanLogStore is the append-only scan log. It has no synchronous cap;
// retention is enforced out of band via TrimToNewest.
type ScanLogStore interface {
	Append(ctx context.Context, rec ScanRecord) error

	// Latest returns the most recently appended scan, or ErrNotFound
	// when the log is empty.
	Latest(ctx context.Context) (ScanRecord, error)

	// Recent returns up to limit scans, most recent first.
	Recent(ctx context.Context, limit int) ([]ScanRecord, error)

	// ByCard returns every scan for the given canonical UID, most
	// recent first.
	ByCard(ctx context.Context, uid string) ([]ScanRecord, error)

	Count(ctx context.Context) (int, error)

	// TrimToNewest deletes all but the newest max entries and reports
	// how many were removed.
	TrimToNewest(ctx context.Context, max int) (int64, error)
}
