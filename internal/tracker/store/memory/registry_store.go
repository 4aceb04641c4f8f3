package memory

import (
	"context"
	"sync"

	"github.com/Furqan3/bustracker/internal/tracker/store"
)

// RegistryStore holds both card lists behind one lock so the
// disjointness check and the insert happen in a single critical
// section.
type RegistryStore struct {
	mu    sync.RWMutex
	lists map[store.ListType]map[string]struct{}
}

// NewRegistryStore seeds the two lists. Seed UIDs are canonicalized;
// a UID appearing in both seed slices stays on the boarding list.
func NewRegistryStore(boarding, alighting []string) *RegistryStore {
	s := &RegistryStore{
		lists: map[store.ListType]map[string]struct{}{
			store.ListBoarding:  make(map[string]struct{}),
			store.ListAlighting: make(map[string]struct{}),
		},
	}
	for _, uid := range boarding {
		if uid = store.CanonicalUID(uid); uid != "" {
			s.lists[store.ListBoarding][uid] = struct{}{}
		}
	}
	for _, uid := range alighting {
		uid = store.CanonicalUID(uid)
		if uid == "" {
			continue
		}
		if _, taken := s.lists[store.ListBoarding][uid]; taken {
			continue
		}
		s.lists[store.ListAlighting][uid] = struct{}{}
	}
	return s
}

func (s *RegistryStore) Add(_ context.Context, uid string, list store.ListType) (store.AddOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[list][uid]; ok {
		return store.AddAlreadyPresent, nil
	}
	if _, ok := s.lists[list.Other()][uid]; ok {
		return store.AddConflict, nil
	}
	s.lists[list][uid] = struct{}{}
	return store.AddAdded, nil
}

func (s *RegistryStore) Remove(_ context.Context, uid string, list store.ListType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[list][uid]; !ok {
		return false, nil
	}
	delete(s.lists[list], uid)
	return true, nil
}

func (s *RegistryStore) Contains(_ context.Context, uid string, list store.ListType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lists[list][uid]
	return ok, nil
}

func (s *RegistryStore) Snapshot(_ context.Context) (store.RegistrySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := store.RegistrySnapshot{
		Boarding:  make(map[string]struct{}, len(s.lists[store.ListBoarding])),
		Alighting: make(map[string]struct{}, len(s.lists[store.ListAlighting])),
	}
	for uid := range s.lists[store.ListBoarding] {
		snap.Boarding[uid] = struct{}{}
	}
	for uid := range s.lists[store.ListAlighting] {
		snap.Alighting[uid] = struct{}{}
	}
	return snap, nil
}
