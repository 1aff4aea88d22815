package bptree

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bptree/internal/node"
)

func newTestTree(t *testing.T, cap int) *Tree[int, string] {
	t.Helper()
	tr, err := New[int, string](Options{Capacity: cap})
	require.NoError(t, err)
	return tr
}

func newTestTree2[K cmp.Ordered, V any](t *testing.T, cap int) *Tree[K, V] {
	t.Helper()
	tr, err := New[K, V](Options{Capacity: cap})
	require.NoError(t, err)
	return tr
}

// countingValue is a Dropper whose Drop increments a shared counter,
// exercising P5 (drop accounting).
type countingValue struct {
	drops *int
}

func newCountingValue(drops *int) *countingValue {
	return &countingValue{drops: drops}
}

func (c *countingValue) Drop() {
	*c.drops++
}

func TestNewRejectsSmallCapacity(t *testing.T) {
	t.Parallel()

	_, err := New[int, string](Options{Capacity: 3})
	assert.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestNewWithCapacityPanicsOnTooSmall(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewWithCapacity[int, string](1)
	})
}

func TestInsertGetBasic(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 5)
	old, had := tr.Insert(1, "one")
	assert.False(t, had)
	assert.Empty(t, old)

	v, ok := tr.Get(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)

	old, had = tr.Insert(1, "uno")
	assert.True(t, had)
	assert.Equal(t, "one", old)

	v, ok = tr.Get(1)
	require.True(t, ok)
	assert.Equal(t, "uno", v)

	_, ok = tr.Get(2)
	assert.False(t, ok)
}

// S1: sequential insert, cap=5.
func TestScenarioSequentialInsert(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 5)
	for i := 1; i <= 20; i++ {
		tr.Insert(i, "")
		require.NoError(t, tr.CheckInvariants())
	}
	assert.Equal(t, 20, tr.Len())

	it := tr.Iter()
	for i := 1; i <= 20; i++ {
		k, _, ok := it.Next()
		require.True(t, ok)
		assert.Equal(t, i, k)
	}
	_, _, ok := it.Next()
	assert.False(t, ok)
}

// S2: reverse insert, cap=5 - final state identical to S1.
func TestScenarioReverseInsert(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 5)
	for i := 20; i >= 1; i-- {
		tr.Insert(i, "")
		require.NoError(t, tr.CheckInvariants())
	}
	assert.Equal(t, 20, tr.Len())
	assert.Equal(t, rangeInts(1, 20), tr.Keys())
}

// S3: interleaved insert/remove, cap=4.
func TestScenarioInterleaved(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 4)
	for _, k := range []int{10, 20, 5, 15, 25, 3, 17, 22, 30, 1} {
		tr.Insert(k, "")
	}
	require.NoError(t, tr.CheckInvariants())

	old, had := tr.Remove(20)
	assert.True(t, had)
	assert.Equal(t, "", old)

	_, ok := tr.Get(20)
	assert.False(t, ok)
	_, ok = tr.Get(10)
	assert.True(t, ok)

	assert.Equal(t, []int{1, 3, 5, 10, 15, 17, 22, 25, 30}, tr.Keys())
}

// S4: merge-overflow regression, cap=5.
func TestScenarioMergeOverflowRegression(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 5)
	for i := 0; i < 50; i++ {
		tr.Insert(i, "")
	}
	require.NoError(t, tr.CheckInvariants())

	for _, k := range []int{10, 11, 12, 13} {
		_, had := tr.Remove(k)
		assert.True(t, had)
		require.NoError(t, tr.CheckInvariants())
		assertNoOversizedBranch(t, tr, 5)
	}
}

// S5: drop stress, cap=4.
func TestScenarioDropStress(t *testing.T) {
	t.Parallel()

	tr := newTestTree2[int, *countingValue](t, 4)
	var drops int

	for i := 0; i < 20; i++ {
		tr.Insert(i, newCountingValue(&drops))
	}
	for i := 0; i < 10; i++ {
		v, had := tr.Remove(i)
		require.True(t, had)
		v.Drop()
	}
	assert.Equal(t, 10, drops)

	tr.Clear()
	assert.Equal(t, 20, drops)
}

// S6: range query.
func TestScenarioRange(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 8)
	for i := 0; i < 100; i++ {
		tr.Insert(i, "")
	}

	it := tr.Range(Bound[int]{Kind: Included, Key: 25}, Bound[int]{Kind: Included, Key: 75})
	var got []int
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k)
	}
	assert.Equal(t, rangeInts(25, 75), got)

	it2 := tr.Range(Bound[int]{Kind: Included, Key: 25}, Bound[int]{Kind: Included, Key: 75})
	seen := map[int]bool{}
	for {
		if len(seen)%2 == 0 {
			k, _, ok := it2.Next()
			if !ok {
				break
			}
			seen[k] = true
		} else {
			k, _, ok := it2.NextBack()
			if !ok {
				break
			}
			seen[k] = true
		}
	}
	assert.Len(t, seen, 51)
	for i := 25; i <= 75; i++ {
		assert.True(t, seen[i])
	}
}

// P1: reference equivalence against a map oracle.
func TestReferenceEquivalence(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 6)
	oracle := map[int]string{}

	ops := []struct {
		kind string
		key  int
		val  string
	}{
		{"insert", 5, "a"}, {"insert", 3, "b"}, {"insert", 8, "c"},
		{"insert", 5, "d"}, {"remove", 3, ""}, {"insert", 1, "e"},
		{"insert", 9, "f"}, {"remove", 100, ""}, {"insert", 8, "g"},
	}

	for _, op := range ops {
		switch op.kind {
		case "insert":
			got, hadGot := tr.Insert(op.key, op.val)
			want, hadWant := oracle[op.key]
			assert.Equal(t, hadWant, hadGot)
			assert.Equal(t, want, got)
			oracle[op.key] = op.val
		case "remove":
			got, hadGot := tr.Remove(op.key)
			want, hadWant := oracle[op.key]
			assert.Equal(t, hadWant, hadGot)
			assert.Equal(t, want, got)
			delete(oracle, op.key)
		}
	}

	assert.Equal(t, len(oracle), tr.Len())
	for k, v := range oracle {
		got, ok := tr.Get(k)
		require.True(t, ok)
		assert.Equal(t, v, got)
		assert.True(t, tr.ContainsKey(k))
	}
}

// P2: invariants after every operation, across a longer randomized-ish
// but deterministic sequence.
func TestInvariantsHoldAfterEveryOp(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 4)
	keys := make([]int, 0, 200)
	for i := 0; i < 200; i++ {
		k := (i * 37) % 211
		tr.Insert(k, "")
		keys = append(keys, k)
		require.NoError(t, tr.CheckInvariants())
	}
	for _, k := range keys {
		tr.Remove(k)
		require.NoError(t, tr.CheckInvariants())
	}
	assert.Equal(t, 0, tr.Len())
}

// P3: ordered iteration.
func TestOrderedIteration(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 5)
	for _, k := range []int{7, 2, 9, 4, 1, 6, 3, 8, 5, 0} {
		tr.Insert(k, "")
	}

	fwd := tr.Keys()
	assert.Equal(t, rangeInts(0, 9), fwd)

	var rev []int
	it := tr.IterRev()
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		rev = append(rev, k)
	}
	assert.Equal(t, reversed(fwd), rev)
	assert.Equal(t, tr.Len(), len(fwd))
}

// P4: range laws, double-ended consumption.
func TestRangeLaws(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 5)
	for i := 0; i < 30; i++ {
		tr.Insert(i, "")
	}

	it := tr.Range(Bound[int]{Kind: Excluded, Key: 10}, Bound[int]{Kind: Excluded, Key: 20})
	var got []int
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k)
	}
	assert.Equal(t, rangeInts(11, 19), got)
}

// P6: merge-safety under minimum-stress.
func TestMergeSafetyUnderMinimumStress(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 4)
	for i := 0; i < 64; i++ {
		tr.Insert(i, "")
	}
	for i := 0; i < 64; i += 2 {
		tr.Remove(i)
		require.NoError(t, tr.CheckInvariants())
		assertNoOversizedBranch(t, tr, 4)
	}
}

// P7: leaf chain integrity.
func TestLeafChainIntegrity(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 4)
	want := map[int]bool{}
	for i := 0; i < 77; i++ {
		tr.Insert(i, "")
		want[i] = true
	}

	leftmost := tr.leftmostLeaf()
	rightmost := tr.rightmostLeaf()

	var forward []int
	for cur := leftmost; cur != nil; cur = cur.Next {
		for i := 0; i < int(cur.Len); i++ {
			forward = append(forward, cur.Keys[i])
		}
	}
	var backward []int
	for cur := rightmost; cur != nil; cur = cur.Prev {
		for i := int(cur.Len) - 1; i >= 0; i-- {
			backward = append(backward, cur.Keys[i])
		}
	}

	assert.Equal(t, reversed(forward), backward)

	got := map[int]bool{}
	for _, k := range forward {
		got[k] = true
	}
	assert.Equal(t, want, got)
}

func TestFirstLastGetOrDefault(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 4)
	_, _, ok := tr.First()
	assert.False(t, ok)

	for _, k := range []int{5, 1, 9, 3} {
		tr.Insert(k, "")
	}
	fk, _, ok := tr.First()
	require.True(t, ok)
	assert.Equal(t, 1, fk)

	lk, _, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, 9, lk)

	assert.Equal(t, "missing-default", tr.GetOrDefault(100, "missing-default"))
}

func TestBatchInsertReportsReplacement(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 4)
	tr.Insert(1, "old")

	replaced := tr.BatchInsert([]KV[int, string]{
		{Key: 1, Value: "new"},
		{Key: 2, Value: "fresh"},
	})
	assert.Equal(t, []bool{true, false}, replaced)

	v, _ := tr.Get(1)
	assert.Equal(t, "new", v)
}

func TestLeafCountAndDepthGrow(t *testing.T) {
	t.Parallel()

	tr := newTestTree(t, 4)
	assert.Equal(t, 0, tr.Depth())
	assert.Equal(t, 0, tr.LeafCount())

	for i := 0; i < 100; i++ {
		tr.Insert(i, "")
	}
	assert.Greater(t, tr.LeafCount(), 1)
	assert.GreaterOrEqual(t, tr.Depth(), 2)
}

func rangeInts(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

func reversed(in []int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func assertNoOversizedBranch[V any](t *testing.T, tr *Tree[int, V], cap int) {
	t.Helper()
	if tr.root == nil {
		return
	}
	assert.LessOrEqual(t, maxNodeLen(tr.root), cap)
}

func maxNodeLen[K cmp.Ordered, V any](n *node.Node[K, V]) int {
	max := int(n.Len)
	if n.IsLeaf() {
		return max
	}
	for i := 0; i <= int(n.Len); i++ {
		if m := maxNodeLen(n.Children[i]); m > max {
			max = m
		}
	}
	return max
}
