package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/Furqan3/bustracker/internal/db"
	"github.com/Furqan3/bustracker/internal/tracker/store"
)

// FixLogStore persists GPS fixes with a hard retention cap. The insert
// and the eviction of rows beyond the cap run in the same transaction,
// so the bound holds after every append.
type FixLogStore struct {
	conn   *sql.DB
	writer *dbpkg.Worker
	cap    int
}

func NewFixLogStore(conn *sql.DB, writer *dbpkg.Worker, capacity int) *FixLogStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &FixLogStore{conn: conn, writer: writer, cap: capacity}
}

func (s *FixLogStore) Append(ctx context.Context, rec store.FixRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	recvMs := rec.ReceivedAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO gps_fixes(latitude, longitude, device_ts, satellites, received_at_ms)
VALUES (?, ?, ?, ?, ?);`,
			rec.Latitude, rec.Longitude, rec.DeviceTimestamp, rec.Satellites, recvMs,
		); err != nil {
			return fmt.Errorf("Append insert fix: %w", err)
		}

		// Evict oldest rows beyond the cap. id is monotonic in arrival
		// order, so newest-N by id is the retained window.
		if _, err := tx.ExecContext(ctx, `
DELETE FROM gps_fixes
WHERE id NOT IN (SELECT id FROM gps_fixes ORDER BY id DESC LIMIT ?);`,
			s.cap,
		); err != nil {
			return fmt.Errorf("Append evict fixes: %w", err)
		}

		return nil
	})
}

func (s *FixLogStore) Latest(ctx context.Context) (store.FixRecord, error) {
	row := s.conn.QueryRowContext(ctx, `
SELECT latitude, longitude, device_ts, satellites, received_at_ms
FROM gps_fixes
ORDER BY id DESC
LIMIT 1;`)

	rec, err := scanFix(row)
	if err == sql.ErrNoRows {
		return store.FixRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.FixRecord{}, fmt.Errorf("Latest fix: %w", err)
	}
	return rec, nil
}

func (s *FixLogStore) Recent(ctx context.Context, limit int) ([]store.FixRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx, `
SELECT latitude, longitude, device_ts, satellites, received_at_ms
FROM gps_fixes
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("Recent fixes: %w", err)
	}
	defer rows.Close()

	var out []store.FixRecord
	for rows.Next() {
		rec, err := scanFix(rows)
		if err != nil {
			return nil, fmt.Errorf("Recent scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *FixLogStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM gps_fixes;").Scan(&n); err != nil {
		return 0, fmt.Errorf("Count fixes: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFix(r rowScanner) (store.FixRecord, error) {
	var rec store.FixRecord
	var recvMs int64
	if err := r.Scan(&rec.Latitude, &rec.Longitude, &rec.DeviceTimestamp, &rec.Satellites, &recvMs); err != nil {
		return store.FixRecord{}, err
	}
	rec.ReceivedAt = time.UnixMilli(recvMs).UTC()
	return rec, nil
}
