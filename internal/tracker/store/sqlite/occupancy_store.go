package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	dbpkg "github.com/Furqan3/bustracker/internal/db"
)

const occupancyKey = "occupancy_filled"

// OccupancyStore keeps the persisted seat count under a fixed settings
// key so a restart resumes the ledger where it left off.
type OccupancyStore struct {
	conn   *sql.DB
	writer *dbpkg.Worker
}

func NewOccupancyStore(conn *sql.DB, writer *dbpkg.Worker) *OccupancyStore {
	return &OccupancyStore{conn: conn, writer: writer}
}

func (s *OccupancyStore) Filled(ctx context.Context) (int, error) {
	var value string
	err := s.conn.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?;", occupancyKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("Filled query: %w", err)
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("Filled parse %q: %w", value, err)
	}
	return n, nil
}

func (s *OccupancyStore) SetFilled(ctx context.Context, filled int) error {
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO settings(key, value, updated_at_ms)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at_ms = excluded.updated_at_ms;`,
			occupancyKey, strconv.Itoa(filled), nowMs,
		); err != nil {
			return fmt.Errorf("SetFilled upsert: %w", err)
		}
		return nil
	})
}
