package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Furqan3/bustracker/internal/tracker/store"
)

type SeedDevOptions struct {
	BoardingUIDs  []string
	AlightingUIDs []string
}

// SeedDev inserts the configured card UIDs into the registry so a fresh
// dev database starts with usable lists. Existing rows win — a UID
// already on either list is left where it is.
func SeedDev(ctx context.Context, conn *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	seed := func(uids []string, list store.ListType) error {
		for _, uid := range uids {
			uid = store.CanonicalUID(uid)
			if uid == "" {
				continue
			}
			if _, err := conn.ExecContext(ctx, `
INSERT OR IGNORE INTO registry_cards(card_uid, list_type, added_at_ms)
VALUES (?, ?, ?);`, uid, string(list), now); err != nil {
				return fmt.Errorf("seed %s card %s: %w", list, uid, err)
			}
		}
		return nil
	}

	if err := seed(opt.BoardingUIDs, store.ListBoarding); err != nil {
		return err
	}
	return seed(opt.AlightingUIDs, store.ListAlighting)
}
