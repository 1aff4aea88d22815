package bptree

import "cmp"

// MinCapacity is the smallest node capacity the split/merge algorithm can
// maintain invariants for: a node must be able to give up a key to a
// borrow and still satisfy the minimum-fill invariant.
const MinCapacity = 4

// DefaultCapacity is used by New when Options.Capacity is left at zero.
const DefaultCapacity = 64

// Options configures a Tree.
type Options struct {
	// Capacity is the maximum number of keys held by a single leaf or
	// branch node. Zero selects DefaultCapacity. Values below
	// MinCapacity are rejected by New.
	Capacity int

	// Logger receives diagnostic calls from the tree; currently the only
	// one is CheckInvariants' Info on a successful check. Defaults to
	// DiscardLogger.
	Logger Logger
}

// New constructs an empty Tree with the given options.
func New[K cmp.Ordered, V any](opts Options) (*Tree[K, V], error) {
	cap := opts.Capacity
	if cap == 0 {
		cap = DefaultCapacity
	}
	if cap < MinCapacity {
		return nil, ErrInvalidCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = DiscardLogger{}
	}
	return newTree[K, V](cap, logger), nil
}

// NewWithCapacity is a convenience constructor for the common case of
// wanting a specific node capacity with a discard logger. It panics if
// cap is below MinCapacity, since a hardcoded literal capacity that
// violates the minimum is a programmer error, not a runtime condition.
func NewWithCapacity[K cmp.Ordered, V any](cap int) *Tree[K, V] {
	t, err := New[K, V](Options{Capacity: cap})
	if err != nil {
		panic(err)
	}
	return t
}
