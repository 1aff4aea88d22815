package bptree

import "bptree/internal/node"

// Get returns the value stored for key, and true if key is present.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	leaf, idx, ok := t.findLeaf(key)
	if !ok {
		var zero V
		return zero, false
	}
	return leaf.Values[idx], true
}

// GetMut returns a pointer to the value stored for key, allowing
// in-place mutation without a Remove/Insert round trip.
func (t *Tree[K, V]) GetMut(key K) (*V, bool) {
	leaf, idx, ok := t.findLeaf(key)
	if !ok {
		return nil, false
	}
	return &leaf.Values[idx], true
}

// GetItem is the strict counterpart of Get, reporting absence as
// ErrKeyNotFound rather than a comma-ok result.
func (t *Tree[K, V]) GetItem(key K) (V, error) {
	v, ok := t.Get(key)
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	return v, nil
}

// ContainsKey reports whether key is present.
func (t *Tree[K, V]) ContainsKey(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// GetOrDefault returns the value for key, or def if key is absent.
func (t *Tree[K, V]) GetOrDefault(key K, def V) V {
	if v, ok := t.Get(key); ok {
		return v
	}
	return def
}

// First returns the entry with the smallest key.
func (t *Tree[K, V]) First() (K, V, bool) {
	leaf := t.leftmostLeaf()
	if leaf == nil || leaf.Len == 0 {
		var zk K
		var zv V
		return zk, zv, false
	}
	return leaf.Keys[0], leaf.Values[0], true
}

// Last returns the entry with the largest key.
func (t *Tree[K, V]) Last() (K, V, bool) {
	leaf := t.rightmostLeaf()
	if leaf == nil || leaf.Len == 0 {
		var zk K
		var zv V
		return zk, zv, false
	}
	i := leaf.Len - 1
	return leaf.Keys[i], leaf.Values[i], true
}

func (t *Tree[K, V]) findLeaf(key K) (leaf *node.Node[K, V], idx int, found bool) {
	n := t.leafForKey(key)
	if n == nil {
		return nil, 0, false
	}
	i, ok := searchLeaf(n.Keys, int(n.Len), key)
	if !ok {
		return nil, 0, false
	}
	return n, i, true
}
