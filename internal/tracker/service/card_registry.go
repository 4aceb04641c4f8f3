package service

import (
	"context"
	"errors"
	"sort"

	"github.com/Furqan3/bustracker/internal/tracker/store"
)

var ErrInvalidListType = errors.New("list must be boarding or alighting")

// CardRegistry canonicalizes UIDs and validates list names before
// touching the registry store. Disjointness itself is enforced inside
// the store's critical section.
type CardRegistry struct {
	store store.RegistryStore
}

func NewCardRegistry(st store.RegistryStore) *CardRegistry {
	return &CardRegistry{store: st}
}

func (r *CardRegistry) Add(ctx context.Context, uid string, list store.ListType) (store.AddOutcome, error) {
	uid = store.CanonicalUID(uid)
	if uid == "" {
		return "", ErrInvalidCardUID
	}
	if !list.Valid() {
		return "", ErrInvalidListType
	}
	return r.store.Add(ctx, uid, list)
}

func (r *CardRegistry) Remove(ctx context.Context, uid string, list store.ListType) (bool, error) {
	uid = store.CanonicalUID(uid)
	if uid == "" {
		return false, ErrInvalidCardUID
	}
	if !list.Valid() {
		return false, ErrInvalidListType
	}
	return r.store.Remove(ctx, uid, list)
}

func (r *CardRegistry) Contains(ctx context.Context, uid string, list store.ListType) (bool, error) {
	uid = store.CanonicalUID(uid)
	if uid == "" || !list.Valid() {
		return false, nil
	}
	return r.store.Contains(ctx, uid, list)
}

func (r *CardRegistry) Snapshot(ctx context.Context) (store.RegistrySnapshot, error) {
	return r.store.Snapshot(ctx)
}

// Lists returns both lists as sorted slices for stable API output.
func (r *CardRegistry) Lists(ctx context.Context) (boarding, alighting []string, err error) {
	snap, err := r.store.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return sortedUIDs(snap.Boarding), sortedUIDs(snap.Alighting), nil
}

func sortedUIDs(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for uid := range set {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out
}
