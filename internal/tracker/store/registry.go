package store

import "context"

// AddOutcome reports what an Add call did.
type AddOutcome string

const (
	AddAdded          AddOutcome = "added"
	AddAlreadyPresent AddOutcome = "already_present"

	// AddConflict means the UID is already a member of the other list.
	// The registry is left untouched.
	AddConflict AddOutcome = "conflict"
)

// RegistrySnapshot is a consistent point-in-time read of both card
// lists. The maps are owned by the caller and never mutated by the
// store after return.
type RegistrySnapshot struct {
	Boarding  map[string]struct{}
	Alighting map[string]struct{}
}

// RegistryStore holds the boarding and alighting card lists. A UID is
// a member of at most one list at any time; Add enforces this. All
// UIDs passed in must already be canonical.
type RegistryStore interface {
	Add(ctx context.Context, uid string, list ListType) (AddOutcome, error)

	// Remove reports whether the UID was present in the given list.
	Remove(ctx context.Context, uid string, list ListType) (bool, error)

	Contains(ctx context.Context, uid string, list ListType) (bool, error)

	Snapshot(ctx context.Context) (RegistrySnapshot, error)
}
