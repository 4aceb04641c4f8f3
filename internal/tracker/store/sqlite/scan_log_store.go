package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/Furqan3/bustracker/internal/db"
	"github.com/Furqan3/bustracker/internal/tracker/store"
)

// ScanLogStore persists the append-only RFID scan log.
type ScanLogStore struct {
	conn   *sql.DB
	writer *dbpkg.Worker
}

func NewScanLogStore(conn *sql.DB, writer *dbpkg.Worker) *ScanLogStore {
	return &ScanLogStore{conn: conn, writer: writer}
}

func (s *ScanLogStore) Append(ctx context.Context, rec store.ScanRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	recvMs := rec.ReceivedAt.UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO rfid_scans(card_uid, device_ts, received_at_ms, outcome, filled_after)
VALUES (?, ?, ?, ?, ?);`,
			rec.CardUID, rec.DeviceTimestamp, recvMs, string(rec.Outcome), rec.FilledAfter,
		); err != nil {
			return fmt.Errorf("Append insert scan: %w", err)
		}
		return nil
	})
}

func (s *ScanLogStore) Latest(ctx context.Context) (store.ScanRecord, error) {
	row := s.conn.QueryRowContext(ctx, `
SELECT card_uid, device_ts, received_at_ms, outcome, filled_after
FROM rfid_scans
ORDER BY id DESC
LIMIT 1;`)

	rec, err := scanScan(row)
	if err == sql.ErrNoRows {
		return store.ScanRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.ScanRecord{}, fmt.Errorf("Latest scan: %w", err)
	}
	return rec, nil
}

func (s *ScanLogStore) Recent(ctx context.Context, limit int) ([]store.ScanRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.conn.QueryContext(ctx, `
SELECT card_uid, device_ts, received_at_ms, outcome, filled_after
FROM rfid_scans
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("Recent scans: %w", err)
	}
	defer rows.Close()

	return collectScans(rows)
}

func (s *ScanLogStore) ByCard(ctx context.Context, uid string) ([]store.ScanRecord, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT card_uid, device_ts, received_at_ms, outcome, filled_after
FROM rfid_scans
WHERE card_uid = ?
ORDER BY id DESC;`, uid)
	if err != nil {
		return nil, fmt.Errorf("ByCard scans: %w", err)
	}
	defer rows.Close()

	return collectScans(rows)
}

func (s *ScanLogStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM rfid_scans;").Scan(&n); err != nil {
		return 0, fmt.Errorf("Count scans: %w", err)
	}
	return n, nil
}

func (s *ScanLogStore) TrimToNewest(ctx context.Context, max int) (int64, error) {
	if max < 0 {
		max = 0
	}

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM rfid_scans
WHERE id NOT IN (SELECT id FROM rfid_scans ORDER BY id DESC LIMIT ?);`, max)
		if err != nil {
			return fmt.Errorf("TrimToNewest: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

func scanScan(r rowScanner) (store.ScanRecord, error) {
	var rec store.ScanRecord
	var recvMs int64
	var outcome string
	if err := r.Scan(&rec.CardUID, &rec.DeviceTimestamp, &recvMs, &outcome, &rec.FilledAfter); err != nil {
		return store.ScanRecord{}, err
	}
	rec.ReceivedAt = time.UnixMilli(recvMs).UTC()
	rec.Outcome = store.Outcome(outcome)
	return rec, nil
}

func collectScans(rows *sql.Rows) ([]store.ScanRecord, error) {
	var out []store.ScanRecord
	for rows.Next() {
		rec, err := scanScan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
