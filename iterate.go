package bptree

import (
	"cmp"

	"bptree/internal/node"
)

// BoundKind discriminates the three ways a range endpoint can bound a
// key, mirroring Rust's core::ops::Bound.
type BoundKind int

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one endpoint of a Range query.
type Bound[K any] struct {
	Kind BoundKind
	Key  K
}

// Iterator is a double-ended cursor over a contiguous run of the leaf
// chain. It holds an implicit read lock on the tree's structure for its
// lifetime: no insert or remove may happen while an Iterator is in use.
type Iterator[K cmp.Ordered, V any] struct {
	frontLeaf *node.Node[K, V]
	frontIdx  int
	backLeaf  *node.Node[K, V]
	backIdx   int

	lo, hi    Bound[K]
	exhausted bool
	reverse   bool
}

// Iter returns a forward cursor over every entry in ascending key order.
func (t *Tree[K, V]) Iter() *Iterator[K, V] {
	return t.Range(Bound[K]{Kind: Unbounded}, Bound[K]{Kind: Unbounded})
}

// IterRev returns a cursor over every entry in descending key order.
func (t *Tree[K, V]) IterRev() *Iterator[K, V] {
	it := t.Iter()
	it.reverse = true
	return it
}

// Range returns a double-ended cursor over entries whose key satisfies
// both lo and hi.
func (t *Tree[K, V]) Range(lo, hi Bound[K]) *Iterator[K, V] {
	it := &Iterator[K, V]{lo: lo, hi: hi}
	if t.root == nil {
		it.exhausted = true
		return it
	}

	switch lo.Kind {
	case Unbounded:
		it.frontLeaf = t.leftmostLeaf()
		it.frontIdx = 0
	default:
		leaf := t.leafForKey(lo.Key)
		if leaf == nil {
			it.exhausted = true
			return it
		}
		idx, found := searchLeaf(leaf.Keys, int(leaf.Len), lo.Key)
		if found && lo.Kind == Excluded {
			idx++
		}
		it.frontLeaf, it.frontIdx = leaf, idx
		it.advanceFrontPastEmpty()
	}

	switch hi.Kind {
	case Unbounded:
		it.backLeaf = t.rightmostLeaf()
		if it.backLeaf != nil {
			it.backIdx = int(it.backLeaf.Len) - 1
		}
	default:
		leaf := t.leafForKey(hi.Key)
		if leaf == nil {
			it.exhausted = true
			return it
		}
		idx, found := searchLeaf(leaf.Keys, int(leaf.Len), hi.Key)
		if !found || hi.Kind == Excluded {
			idx--
		}
		it.backLeaf, it.backIdx = leaf, idx
		it.advanceBackPastEmpty()
	}

	if it.frontLeaf == nil || it.backLeaf == nil {
		it.exhausted = true
	}
	return it
}

func (it *Iterator[K, V]) advanceFrontPastEmpty() {
	for it.frontLeaf != nil && it.frontIdx >= int(it.frontLeaf.Len) {
		it.frontLeaf = it.frontLeaf.Next
		it.frontIdx = 0
	}
}

// advanceBackPastEmpty walks to the previous leaf whenever backIdx has
// fallen below its leaf's first slot, mirroring advanceFrontPastEmpty.
func (it *Iterator[K, V]) advanceBackPastEmpty() {
	for it.backLeaf != nil && it.backIdx < 0 {
		it.backLeaf = it.backLeaf.Prev
		if it.backLeaf != nil {
			it.backIdx = int(it.backLeaf.Len) - 1
		}
	}
}

func (it *Iterator[K, V]) withinHi(key K) bool {
	switch it.hi.Kind {
	case Unbounded:
		return true
	case Included:
		return key <= it.hi.Key
	default:
		return key < it.hi.Key
	}
}

func (it *Iterator[K, V]) withinLo(key K) bool {
	switch it.lo.Kind {
	case Unbounded:
		return true
	case Included:
		return key >= it.lo.Key
	default:
		return key > it.lo.Key
	}
}

func (it *Iterator[K, V]) stepFront() (K, V, bool) {
	var zk K
	var zv V
	if it.exhausted {
		return zk, zv, false
	}

	it.advanceFrontPastEmpty()
	if it.frontLeaf == nil {
		it.exhausted = true
		return zk, zv, false
	}

	key := it.frontLeaf.Keys[it.frontIdx]
	if !it.withinHi(key) {
		it.exhausted = true
		return zk, zv, false
	}
	val := it.frontLeaf.Values[it.frontIdx]

	if it.frontLeaf == it.backLeaf && it.frontIdx == it.backIdx {
		it.exhausted = true
	} else {
		it.frontIdx++
	}
	return key, val, true
}

func (it *Iterator[K, V]) stepBack() (K, V, bool) {
	var zk K
	var zv V
	if it.exhausted {
		return zk, zv, false
	}

	it.advanceBackPastEmpty()
	if it.backLeaf == nil {
		it.exhausted = true
		return zk, zv, false
	}

	key := it.backLeaf.Keys[it.backIdx]
	if !it.withinLo(key) || !it.withinHi(key) {
		it.exhausted = true
		return zk, zv, false
	}
	val := it.backLeaf.Values[it.backIdx]

	if it.frontLeaf == it.backLeaf && it.frontIdx == it.backIdx {
		it.exhausted = true
	} else {
		it.backIdx--
	}
	return key, val, true
}

// Next returns the next entry in the iterator's direction of travel
// (ascending for Iter/Range, descending for IterRev), or false once
// exhausted.
func (it *Iterator[K, V]) Next() (K, V, bool) {
	if it.reverse {
		return it.stepBack()
	}
	return it.stepFront()
}

// NextBack returns the next entry from the opposite end of the
// iterator's direction of travel.
func (it *Iterator[K, V]) NextBack() (K, V, bool) {
	if it.reverse {
		return it.stepFront()
	}
	return it.stepBack()
}

// Keys returns every key in ascending order.
func (t *Tree[K, V]) Keys() []K {
	out := make([]K, 0, t.length)
	it := t.Iter()
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, k)
	}
	return out
}

// Values returns every value in ascending key order.
func (t *Tree[K, V]) Values() []V {
	out := make([]V, 0, t.length)
	it := t.Iter()
	for {
		_, v, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, v)
	}
	return out
}
