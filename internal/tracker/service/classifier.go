package service

import "github.com/Furqan3/bustracker/internal/tracker/store"

// Intent is the semantic meaning of a scan derived from registry
// membership.
type Intent int

const (
	IntentUnrecognized Intent = iota
	IntentBoard
	IntentAlight
)

// Classify maps a canonical card UID to an intent against a registry
// snapshot. The registry keeps the lists disjoint; if a UID somehow
// appears on both, boarding wins so the result stays deterministic.
func Classify(uid string, snap store.RegistrySnapshot) Intent {
	if _, ok := snap.Boarding[uid]; ok {
		return IntentBoard
	}
	if _, ok := snap.Alighting[uid]; ok {
		return IntentAlight
	}
	return IntentUnrecognized
}
