package bptree

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"bptree/internal/node"
)

// CheckInvariants walks the tree once and verifies I1-I6, returning a
// descriptive *InvariantError on the first violation found. I7 (no
// double-reference, destroy-exactly-once) is not a structural property
// a read-only walk can observe; it is exercised instead by the Dropper
// accounting tests.
func (t *Tree[K, V]) CheckInvariants() error {
	if t.root == nil {
		return nil
	}

	count, _, _, _, err := t.checkNode(t.root, true)
	if err != nil {
		return err
	}
	if count != t.length {
		return &InvariantError{Msg: fmt.Sprintf("tree reports length %d but structural walk counted %d", t.length, count)}
	}

	if err := t.checkLeafChain(); err != nil {
		return err
	}

	t.logger.Info("invariants checked", "entries", count, "fingerprint", t.Fingerprint())
	return nil
}

type subtreeBounds[K any] struct {
	count   int
	lo, hi  K
	hasKeys bool
}

func (t *Tree[K, V]) checkNode(n *node.Node[K, V], isRoot bool) (count int, lo K, hi K, hasKeys bool, err error) {
	length := int(n.Len)
	if length < 0 || length > t.cap {
		return 0, lo, hi, false, &InvariantError{Msg: fmt.Sprintf("node length %d out of range [0,%d]", length, t.cap)}
	}
	if minKeys := t.minKeysFor(n); !isRoot && length < minKeys {
		return 0, lo, hi, false, &InvariantError{Msg: fmt.Sprintf("non-root node underfull: length %d below minimum %d", length, minKeys)}
	}
	if isRoot && !n.IsLeaf() && length < 1 {
		return 0, lo, hi, false, &InvariantError{Msg: "branch root must have at least 1 key"}
	}

	for i := 1; i < length; i++ {
		if !(n.Keys[i-1] < n.Keys[i]) {
			return 0, lo, hi, false, &InvariantError{Msg: "keys within a node are not strictly ascending"}
		}
	}

	if n.IsLeaf() {
		if length == 0 {
			return 0, lo, hi, false, nil
		}
		return length, n.Keys[0], n.Keys[length-1], true, nil
	}

	if len(n.Children) < length+1 {
		return 0, lo, hi, false, &InvariantError{Msg: "branch has fewer children than length+1"}
	}

	results := make([]subtreeBounds[K], length+1)
	total := 0
	for i := 0; i <= length; i++ {
		child := n.Children[i]
		if child == nil {
			return 0, lo, hi, false, &InvariantError{Msg: "branch has a nil child pointer within its live range"}
		}
		cCount, cLo, cHi, cHas, cErr := t.checkNode(child, false)
		if cErr != nil {
			return 0, lo, hi, false, cErr
		}
		results[i] = subtreeBounds[K]{count: cCount, lo: cLo, hi: cHi, hasKeys: cHas}
		total += cCount
	}

	for i := 0; i < length; i++ {
		right := results[i+1]
		if !right.hasKeys {
			return 0, lo, hi, false, &InvariantError{Msg: "separator's right subtree has no keys"}
		}
		if n.Keys[i] != right.lo {
			return 0, lo, hi, false, &InvariantError{Msg: "separator does not equal the minimum key of its right subtree"}
		}
	}

	for _, r := range results {
		if r.hasKeys {
			if !hasKeys {
				lo = r.lo
				hasKeys = true
			}
			hi = r.hi
		}
	}
	return total, lo, hi, hasKeys, nil
}

// checkLeafChain verifies I6: the forward walk (via Next) is strictly
// ascending, the backward walk (via Prev) visits the exact same leaves
// in reverse, and the chain's two ends have nil outward links.
func (t *Tree[K, V]) checkLeafChain() error {
	leftmost := t.leftmostLeaf()
	rightmost := t.rightmostLeaf()

	if leftmost != nil && leftmost.Prev != nil {
		return &InvariantError{Msg: "leftmost leaf has a non-nil prev link"}
	}
	if rightmost != nil && rightmost.Next != nil {
		return &InvariantError{Msg: "rightmost leaf has a non-nil next link"}
	}

	var forward []K
	var havePrev bool
	var prevKey K
	for cur := leftmost; cur != nil; cur = cur.Next {
		for i := 0; i < int(cur.Len); i++ {
			k := cur.Keys[i]
			if havePrev && !(prevKey < k) {
				return &InvariantError{Msg: "leaf chain keys are not strictly ascending across leaves"}
			}
			prevKey, havePrev = k, true
			forward = append(forward, k)
		}
	}

	var backward []K
	for cur := rightmost; cur != nil; cur = cur.Prev {
		for i := int(cur.Len) - 1; i >= 0; i-- {
			backward = append(backward, cur.Keys[i])
		}
	}

	if len(forward) != len(backward) {
		return &InvariantError{Msg: "forward and backward leaf-chain walks visit a different number of keys"}
	}
	for i, k := range forward {
		if k != backward[len(backward)-1-i] {
			return &InvariantError{Msg: "backward leaf-chain walk is not the exact reverse of the forward walk"}
		}
	}

	return nil
}

// Fingerprint hashes the ordered key sequence reached by walking the
// leaf chain. It carries no correctness meaning on its own; it lets a
// caller - a fuzz harness comparing two invariant-check runs, say -
// cheaply tell whether the leaf chain's contents changed without
// capturing the whole key set.
func (t *Tree[K, V]) Fingerprint() uint64 {
	h := xxhash.New()
	for cur := t.leftmostLeaf(); cur != nil; cur = cur.Next {
		for i := 0; i < int(cur.Len); i++ {
			fmt.Fprintf(h, "%v", cur.Keys[i])
		}
	}
	return h.Sum64()
}
