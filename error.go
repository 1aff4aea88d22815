package bptree

import "errors"

//goland:noinspection GoUnusedGlobalVariable
var (
	// ErrInvalidCapacity is returned by New when the requested node
	// capacity is too small for the split/merge algorithm to maintain
	// its invariants (cap must be at least 4).
	ErrInvalidCapacity = errors.New("bptree: capacity must be at least 4")

	// ErrKeyNotFound is returned by the strict *Item accessors when a
	// key is absent. Get/Remove/ContainsKey report absence as a
	// comma-ok result instead, since a missing key is an expected
	// outcome, not an exceptional one.
	ErrKeyNotFound = errors.New("bptree: key not found")
)

// InvariantError describes a violated structural invariant found by
// CheckInvariants. It is a programmer-error signal, surfaced only by
// the diagnostic checker, never by normal insert/get/remove.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "bptree: invariant violation: " + e.Msg
}
