package bptree

import "bptree/internal/node"

// insertSplit carries a split outcome up the recursion: a newly
// allocated right sibling and the separator key to insert for it in the
// parent (or to become the new root's sole key).
type insertSplit[K any, V any] struct {
	sepKey K
	right  *node.Node[K, V]
}

// Insert places value at key, returning the previously-associated value
// if key was already present (in which case the value is replaced in
// place) or the zero value and false otherwise.
func (t *Tree[K, V]) Insert(key K, value V) (V, bool) {
	if t.root == nil {
		t.root = node.AllocLeaf[K, V](t.leafLayout)
	}

	old, hadOld, split := t.insertRec(t.root, key, value)
	if split != nil {
		root := node.AllocBranch[K, V](t.branchLayout)
		root.Keys[0] = split.sepKey
		root.Children[0] = t.root
		root.Children[1] = split.right
		root.Len = 1
		t.root = root
	}
	if !hadOld {
		t.length++
	}
	return old, hadOld
}

func (t *Tree[K, V]) insertRec(n *node.Node[K, V], key K, value V) (V, bool, *insertSplit[K, V]) {
	if n.IsLeaf() {
		return t.leafInsertOrSplit(n, key, value)
	}

	idx := t.childIndex(n, key)
	child := n.Children[idx]
	old, hadOld, split := t.insertRec(child, key, value)
	if split == nil {
		return old, hadOld, nil
	}

	curLen := int(n.Len)
	if curLen < t.cap {
		copy(n.Keys[idx+1:curLen+1], n.Keys[idx:curLen])
		n.Keys[idx] = split.sepKey
		copy(n.Children[idx+2:curLen+2], n.Children[idx+1:curLen+1])
		n.Children[idx+1] = split.right
		n.Len++
		return old, hadOld, nil
	}

	return old, hadOld, t.branchInsertAndSplit(n, idx, split.sepKey, split.right)
}

func (t *Tree[K, V]) leafInsertOrSplit(leaf *node.Node[K, V], key K, value V) (V, bool, *insertSplit[K, V]) {
	n := int(leaf.Len)
	idx, found := searchLeaf(leaf.Keys, n, key)
	var zero V

	if found {
		old := leaf.Values[idx]
		leaf.Values[idx] = value
		return old, true, nil
	}

	if n < t.cap {
		copy(leaf.Keys[idx+1:n+1], leaf.Keys[idx:n])
		copy(leaf.Values[idx+1:n+1], leaf.Values[idx:n])
		leaf.Keys[idx] = key
		leaf.Values[idx] = value
		leaf.Len++
		return zero, false, nil
	}

	return zero, false, t.leafSplitAndInsert(leaf, idx, key, value, n)
}

// leafSplitAndInsert performs the insert-then-split for a full leaf
// without an intermediate scratch buffer of cap+1 pairs: the upper half
// is moved to a new right leaf first, then the new pair is written into
// whichever side its position falls on.
func (t *Tree[K, V]) leafSplitAndInsert(leaf *node.Node[K, V], insertPos int, key K, value V, n int) *insertSplit[K, V] {
	totalItems := n + 1
	leftCount := totalItems / 2
	rightCount := totalItems - leftCount

	right := node.AllocLeaf[K, V](t.leafLayout)

	leftKeep := leftCount
	if insertPos < leftCount {
		leftKeep = leftCount - 1
	}

	rightLen := 0
	for i := leftKeep; i < n; i++ {
		right.Keys[rightLen] = leaf.Keys[i]
		right.Values[rightLen] = leaf.Values[i]
		rightLen++
	}

	if insertPos < leftCount {
		copy(leaf.Keys[insertPos+1:leftKeep+1], leaf.Keys[insertPos:leftKeep])
		copy(leaf.Values[insertPos+1:leftKeep+1], leaf.Values[insertPos:leftKeep])
		leaf.Keys[insertPos] = key
		leaf.Values[insertPos] = value
		leaf.Len = uint16(leftCount)
		right.Len = uint16(rightCount)
	} else {
		rightInsert := insertPos - leftKeep
		copy(right.Keys[rightInsert+1:rightLen+1], right.Keys[rightInsert:rightLen])
		copy(right.Values[rightInsert+1:rightLen+1], right.Values[rightInsert:rightLen])
		right.Keys[rightInsert] = key
		right.Values[rightInsert] = value
		leaf.Len = uint16(leftKeep)
		right.Len = uint16(rightLen + 1)
	}

	oldNext := leaf.Next
	leaf.Next = right
	right.Prev = leaf
	right.Next = oldNext
	if oldNext != nil {
		oldNext.Prev = right
	}

	return &insertSplit[K, V]{sepKey: right.Keys[0], right: right}
}

// branchInsertAndSplit absorbs a split child at insertIdx into a full
// branch and splits it. Grounded on the original crate's
// branch_insert_and_split, which builds temporary key/child slices
// rather than computing the in-place case analysis by hand; this is a
// deliberate, documented divergence from a literal zero-scratch-buffer
// reading of the split rule (see DESIGN.md).
func (t *Tree[K, V]) branchInsertAndSplit(n *node.Node[K, V], insertIdx int, insKey K, insRight *node.Node[K, V]) *insertSplit[K, V] {
	length := int(n.Len)
	totalKeys := length + 1
	totalChildren := totalKeys + 1

	keys := make([]K, length, totalKeys)
	copy(keys, n.Keys[:length])
	keys = insertAt(keys, insertIdx, insKey)

	children := make([]*node.Node[K, V], length+1, totalChildren)
	copy(children, n.Children[:length+1])
	children = insertAt(children, insertIdx+1, insRight)

	mid := totalKeys / 2
	promote := keys[mid]

	n.Len = uint16(mid)
	copy(n.Keys[:mid], keys[:mid])
	copy(n.Children[:mid+1], children[:mid+1])

	rightKeysLen := totalKeys - (mid + 1)
	rightChildrenLen := totalChildren - (mid + 1)
	right := node.AllocBranch[K, V](t.branchLayout)
	right.Len = uint16(rightKeysLen)
	copy(right.Keys[:rightKeysLen], keys[mid+1:])
	copy(right.Children[:rightChildrenLen], children[mid+1:])

	return &insertSplit[K, V]{sepKey: promote, right: right}
}
