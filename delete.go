package bptree

import "bptree/internal/node"

// Remove deletes key, returning its associated value and true if it was
// present.
func (t *Tree[K, V]) Remove(key K) (V, bool) {
	if t.root == nil {
		var zero V
		return zero, false
	}

	val, found, _ := t.removeRec(t.root, key)
	if !found {
		return val, false
	}
	t.length--

	if !t.root.IsLeaf() && t.root.Len == 0 {
		child := t.root.Children[0]
		t.root.Free()
		t.root = child
	} else if t.root.IsLeaf() && t.root.Len == 0 {
		t.root.Free()
		t.root = nil
	}
	return val, true
}

// removeRec returns the removed value, whether key was found, and
// whether n is now underfull (length below the non-root minimum) -
// meaningful only when n is not the tree root, since the caller one
// level up is the only one positioned to rebalance n against a sibling.
func (t *Tree[K, V]) removeRec(n *node.Node[K, V], key K) (V, bool, bool) {
	if n.IsLeaf() {
		return t.removeFromLeaf(n, key)
	}

	idx := t.childIndex(n, key)
	child := n.Children[idx]
	val, found, childUnderflow := t.removeRec(child, key)
	if !found {
		return val, false, false
	}

	// If key was the minimum of child's subtree it is also the separator
	// just left of child; replace it with the subtree's new minimum (I5).
	if idx > 0 && n.Keys[idx-1] == key {
		leftmost := child
		for !leftmost.IsLeaf() {
			leftmost = leftmost.Children[0]
		}
		n.Keys[idx-1] = leftmost.Keys[0]
	}

	underflow := false
	if childUnderflow {
		underflow = t.rebalanceChild(n, idx)
	}
	return val, true, underflow
}

func (t *Tree[K, V]) removeFromLeaf(leaf *node.Node[K, V], key K) (V, bool, bool) {
	n := int(leaf.Len)
	idx, found := searchLeaf(leaf.Keys, n, key)
	if !found {
		var zero V
		return zero, false, false
	}

	val := leaf.Values[idx]
	removedKey := leaf.Keys[idx]
	if idx+1 < n {
		copy(leaf.Keys[idx:n-1], leaf.Keys[idx+1:n])
		copy(leaf.Values[idx:n-1], leaf.Values[idx+1:n])
	}
	var zk K
	var zv V
	leaf.Keys[n-1] = zk
	leaf.Values[n-1] = zv
	leaf.Len--
	dropIfDropper(removedKey)

	return val, true, int(leaf.Len) < t.minLeafKeys
}

// rebalanceChild fixes up parent.Children[childIdx], which has just
// become underfull, trying borrow-left, borrow-right, merge-with-left,
// and merge-with-right in that order; merge-with-right is used only for
// the leftmost child, which has no left sibling. The left sibling is
// always tried first. It runs at every level (the original crate's own
// remove path never rebalances a non-root branch at all). It returns
// whether parent itself is now underfull as a result of a merge.
func (t *Tree[K, V]) rebalanceChild(parent *node.Node[K, V], childIdx int) bool {
	child := parent.Children[childIdx]
	childMin := t.minKeysFor(child)
	if int(child.Len) >= childMin {
		return false
	}

	parentLen := int(parent.Len)

	// left and right siblings sit at the same tree level as child, so
	// they share its minimum.
	if childIdx > 0 {
		left := parent.Children[childIdx-1]
		if int(left.Len) > childMin {
			t.borrowFromLeft(parent, childIdx, left, child)
			return false
		}
	}

	if childIdx < parentLen {
		right := parent.Children[childIdx+1]
		if int(right.Len) > childMin {
			t.borrowFromRight(parent, childIdx, child, right)
			return false
		}
	}

	if childIdx > 0 {
		t.mergeSiblings(parent, childIdx-1, childIdx)
	} else {
		t.mergeSiblings(parent, childIdx, childIdx+1)
	}
	return int(parent.Len) < t.minKeysFor(parent)
}

func (t *Tree[K, V]) borrowFromLeft(parent *node.Node[K, V], childIdx int, left, child *node.Node[K, V]) {
	if child.IsLeaf() {
		t.leafBorrowFromLeft(parent, childIdx, left, child)
	} else {
		t.branchBorrowFromLeft(parent, childIdx, left, child)
	}
}

func (t *Tree[K, V]) borrowFromRight(parent *node.Node[K, V], childIdx int, child, right *node.Node[K, V]) {
	if child.IsLeaf() {
		t.leafBorrowFromRight(parent, childIdx, child, right)
	} else {
		t.branchBorrowFromRight(parent, childIdx, child, right)
	}
}

func (t *Tree[K, V]) mergeSiblings(parent *node.Node[K, V], leftIdx, rightIdx int) {
	if parent.Children[leftIdx].IsLeaf() {
		t.mergeLeaves(parent, leftIdx, rightIdx)
	} else {
		t.mergeBranches(parent, leftIdx, rightIdx)
	}
}

func (t *Tree[K, V]) leafBorrowFromLeft(parent *node.Node[K, V], childIdx int, left, child *node.Node[K, V]) {
	ln := int(left.Len)
	cn := int(child.Len)

	borrowKey := left.Keys[ln-1]
	borrowVal := left.Values[ln-1]

	copy(child.Keys[1:cn+1], child.Keys[0:cn])
	copy(child.Values[1:cn+1], child.Values[0:cn])
	child.Keys[0] = borrowKey
	child.Values[0] = borrowVal
	child.Len++

	var zk K
	var zv V
	left.Keys[ln-1] = zk
	left.Values[ln-1] = zv
	left.Len--

	parent.Keys[childIdx-1] = borrowKey
}

func (t *Tree[K, V]) leafBorrowFromRight(parent *node.Node[K, V], childIdx int, child, right *node.Node[K, V]) {
	cn := int(child.Len)
	rn := int(right.Len)

	child.Keys[cn] = right.Keys[0]
	child.Values[cn] = right.Values[0]
	child.Len++

	copy(right.Keys[0:rn-1], right.Keys[1:rn])
	copy(right.Values[0:rn-1], right.Values[1:rn])
	var zk K
	var zv V
	right.Keys[rn-1] = zk
	right.Values[rn-1] = zv
	right.Len--

	parent.Keys[childIdx] = right.Keys[0]
}

// branchBorrowFromRight rotates a key through the parent: the parent's
// separator descends to become child's new last key, the sibling's
// first child is appended to child, and the sibling's first key rises
// to become the parent's new separator.
func (t *Tree[K, V]) branchBorrowFromRight(parent *node.Node[K, V], childIdx int, child, right *node.Node[K, V]) {
	cn := int(child.Len)
	rn := int(right.Len)

	child.Keys[cn] = parent.Keys[childIdx]
	child.Children[cn+1] = right.Children[0]
	child.Len++

	parent.Keys[childIdx] = right.Keys[0]

	copy(right.Keys[0:rn-1], right.Keys[1:rn])
	copy(right.Children[0:rn], right.Children[1:rn+1])
	var zk K
	right.Keys[rn-1] = zk
	right.Children[rn] = nil
	right.Len--
}

func (t *Tree[K, V]) branchBorrowFromLeft(parent *node.Node[K, V], childIdx int, left, child *node.Node[K, V]) {
	ln := int(left.Len)
	cn := int(child.Len)

	copy(child.Keys[1:cn+1], child.Keys[0:cn])
	copy(child.Children[1:cn+2], child.Children[0:cn+1])

	child.Keys[0] = parent.Keys[childIdx-1]
	child.Children[0] = left.Children[ln]
	child.Len++

	parent.Keys[childIdx-1] = left.Keys[ln-1]

	var zk K
	left.Keys[ln-1] = zk
	left.Children[ln] = nil
	left.Len--
}

func (t *Tree[K, V]) mergeLeaves(parent *node.Node[K, V], leftIdx, rightIdx int) {
	left := parent.Children[leftIdx]
	right := parent.Children[rightIdx]
	ln := int(left.Len)
	rn := int(right.Len)

	copy(left.Keys[ln:ln+rn], right.Keys[:rn])
	copy(left.Values[ln:ln+rn], right.Values[:rn])
	left.Len = uint16(ln + rn)

	left.Next = right.Next
	if right.Next != nil {
		right.Next.Prev = left
	}
	right.Free()

	t.removeParentSlot(parent, leftIdx, rightIdx, true)
}

func (t *Tree[K, V]) mergeBranches(parent *node.Node[K, V], leftIdx, rightIdx int) {
	left := parent.Children[leftIdx]
	right := parent.Children[rightIdx]
	ln := int(left.Len)
	rn := int(right.Len)

	left.Keys[ln] = parent.Keys[leftIdx]
	copy(left.Keys[ln+1:ln+1+rn], right.Keys[:rn])
	copy(left.Children[ln+1:ln+2+rn], right.Children[:rn+1])
	left.Len = uint16(ln + 1 + rn)

	right.Free()

	t.removeParentSlot(parent, leftIdx, rightIdx, false)
}

// removeParentSlot discards the separator key at leftIdx and the child
// pointer at rightIdx, shifting the tail of each array left by one. For a
// leaf merge the separator is not retained anywhere else in the tree and
// is dropped here (dropSeparator=true); for a branch merge it was already
// moved into the merged node's key array by the caller, so it must not be
// dropped a second time.
func (t *Tree[K, V]) removeParentSlot(parent *node.Node[K, V], leftIdx, rightIdx int, dropSeparator bool) {
	n := int(parent.Len)
	removedSep := parent.Keys[leftIdx]
	copy(parent.Keys[leftIdx:n-1], parent.Keys[leftIdx+1:n])
	copy(parent.Children[rightIdx:n], parent.Children[rightIdx+1:n+1])
	var zk K
	parent.Keys[n-1] = zk
	parent.Children[n] = nil
	parent.Len--
	if dropSeparator {
		dropIfDropper(removedSep)
	}
}
