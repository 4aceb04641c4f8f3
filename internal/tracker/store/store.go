package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by latest-entry queries against an empty log.
var ErrNotFound = errors.New("not found")

// ListType names one of the two registry card lists.
type ListType string

const (
	ListBoarding  ListType = "boarding"
	ListAlighting ListType = "alighting"
)

func (l ListType) Valid() bool {
	return l == ListBoarding || l == ListAlighting
}

// Other returns the opposite list.
func (l ListType) Other() ListType {
	if l == ListBoarding {
		return ListAlighting
	}
	return ListBoarding
}

// Outcome labels the transition a scan produced. These values are
// persisted in the scan log and echoed on the wire, so they must not
// change.
type Outcome string

const (
	OutcomeBoarding       Outcome = "boarding"
	OutcomeBoardingDenied Outcome = "boarding_denied"
	OutcomeAlighting      Outcome = "alighting"
	OutcomeAlightingError Outcome = "alighting_error"
	OutcomeUnknown        Outcome = "unknown"
)

// CanonicalUID normalizes a card UID for comparison and storage.
// All registry and scan-log operations work on canonical UIDs.
func CanonicalUID(uid string) string {
	return strings.ToUpper(strings.TrimSpace(uid))
}
