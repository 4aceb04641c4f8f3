package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/Furqan3/bustracker/internal/db"
	"github.com/Furqan3/bustracker/internal/tracker/store"
)

// RegistryStore persists the card lists. The card_uid primary key
// backs the disjointness invariant at the schema level; Add still
// checks the current row inside the transaction so it can tell
// already_present from conflict.
type RegistryStore struct {
	conn   *sql.DB
	writer *dbpkg.Worker
}

func NewRegistryStore(conn *sql.DB, writer *dbpkg.Worker) *RegistryStore {
	return &RegistryStore{conn: conn, writer: writer}
}

func (s *RegistryStore) Add(ctx context.Context, uid string, list store.ListType) (store.AddOutcome, error) {
	nowMs := time.Now().UTC().UnixMilli()

	var outcome store.AddOutcome
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var current string
		err := tx.QueryRowContext(ctx,
			"SELECT list_type FROM registry_cards WHERE card_uid = ?;", uid,
		).Scan(&current)

		switch {
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx, `
INSERT INTO registry_cards(card_uid, list_type, added_at_ms)
VALUES (?, ?, ?);`, uid, string(list), nowMs); err != nil {
				return fmt.Errorf("Add insert card: %w", err)
			}
			outcome = store.AddAdded
		case err != nil:
			return fmt.Errorf("Add lookup card: %w", err)
		case current == string(list):
			outcome = store.AddAlreadyPresent
		default:
			outcome = store.AddConflict
		}
		return nil
	})
	return outcome, err
}

func (s *RegistryStore) Remove(ctx context.Context, uid string, list store.ListType) (bool, error) {
	var removed bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM registry_cards WHERE card_uid = ? AND list_type = ?;",
			uid, string(list),
		)
		if err != nil {
			return fmt.Errorf("Remove card: %w", err)
		}
		n, _ := res.RowsAffected()
		removed = n > 0
		return nil
	})
	return removed, err
}

func (s *RegistryStore) Contains(ctx context.Context, uid string, list store.ListType) (bool, error) {
	var one int
	err := s.conn.QueryRowContext(ctx,
		"SELECT 1 FROM registry_cards WHERE card_uid = ? AND list_type = ?;",
		uid, string(list),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Contains query: %w", err)
	}
	return true, nil
}

func (s *RegistryStore) Snapshot(ctx context.Context) (store.RegistrySnapshot, error) {
	snap := store.RegistrySnapshot{
		Boarding:  make(map[string]struct{}),
		Alighting: make(map[string]struct{}),
	}

	rows, err := s.conn.QueryContext(ctx, "SELECT card_uid, list_type FROM registry_cards;")
	if err != nil {
		return store.RegistrySnapshot{}, fmt.Errorf("Snapshot query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid, list string
		if err := rows.Scan(&uid, &list); err != nil {
			return store.RegistrySnapshot{}, fmt.Errorf("Snapshot scan row: %w", err)
		}
		if store.ListType(list) == store.ListBoarding {
			snap.Boarding[uid] = struct{}{}
		} else {
			snap.Alighting[uid] = struct{}{}
		}
	}
	return snap, rows.Err()
}
