package avl

import (
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtlkit/internal/arena"
	"github.com/joshuapare/rtlkit/rtl"
)

// checkInvariants verifies balance, order, sizes, parent links and the
// insertion list against the node arena.
func checkInvariants[T any](t *testing.T, tbl *Table[T]) {
	t.Helper()

	var walk func(r, parent arena.Ref) (height int8, size int)
	walk = func(r, parent arena.Ref) (int8, int) {
		if r == arena.Nil {
			return 0, 0
		}
		n := tbl.n(r)
		require.NotNil(t, n, "dangling ref in tree")
		require.Equal(t, parent, n.parent, "parent link")
		if n.left != arena.Nil {
			require.Negative(t, tbl.cmp(tbl.n(n.left).value, n.value), "left child out of order")
		}
		if n.right != arena.Nil {
			require.Positive(t, tbl.cmp(tbl.n(n.right).value, n.value), "right child out of order")
		}
		lh, ls := walk(n.left, r)
		rh, rs := walk(n.right, r)
		require.LessOrEqual(t, max(lh-rh, rh-lh), int8(1), "AVL balance")
		require.Equal(t, 1+max(lh, rh), n.height, "cached height")
		require.Equal(t, 1+ls+rs, n.size, "cached size")
		return n.height, n.size
	}
	_, size := walk(tbl.root, arena.Nil)
	require.Equal(t, tbl.Len(), size)

	count := 0
	prev := arena.Nil
	var lastSeq uint64
	for r := tbl.head; r != arena.Nil; r = tbl.n(r).nextIns {
		n := tbl.n(r)
		require.Equal(t, prev, n.prevIns)
		require.Greater(t, n.seq, lastSeq)
		lastSeq = n.seq
		prev = r
		count++
	}
	require.Equal(t, prev, tbl.tail)
	require.Equal(t, tbl.Len(), count)
}

func collect[T any](tbl *Table[T]) []T {
	var out []T
	for v := range tbl.All() {
		out = append(out, v)
	}
	return out
}

func Test_Table_Empty(t *testing.T) {
	tbl := New(rtl.Ordered[int])
	require.True(t, tbl.IsEmpty())
	require.Equal(t, 0, tbl.Len())

	_, ok := tbl.Lookup(1)
	require.False(t, ok)
	_, ok = tbl.Nth(0)
	require.False(t, ok)
	_, ok = tbl.Enumerate(true)
	require.False(t, ok)
	require.False(t, tbl.Delete(1))

	_, hint := tbl.LookupFull(5)
	require.Equal(t, rtl.EmptyTree, hint.Result)
}

func Test_Table_InsertDuplicate(t *testing.T) {
	type kv struct {
		k string
		v int
	}
	tbl := New(func(a, b kv) int { return strings.Compare(a.k, b.k) })

	got, inserted := tbl.Insert(kv{"a", 1})
	require.True(t, inserted)
	require.Equal(t, 1, got.v)

	got, inserted = tbl.Insert(kv{"a", 2})
	require.False(t, inserted)
	require.Equal(t, 1, got.v, "existing element is returned")
	require.Equal(t, 1, tbl.Len())
}

func Test_Table_SequentialInsertStaysBalanced(t *testing.T) {
	tbl := New(rtl.Ordered[int], WithCapacity(1024))
	for i := range 1024 {
		tbl.Insert(i)
	}
	checkInvariants(t, tbl)
	// A perfectly fed AVL tree of 1024 nodes is at most 1.44*log2(n) tall.
	require.LessOrEqual(t, tbl.n(tbl.root).height, int8(14))

	for i := range 1024 {
		v, ok := tbl.Nth(i)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func Test_Table_FloatKeysWithNaN(t *testing.T) {
	tbl := New(rtl.Ordered[float64])
	for _, v := range []float64{3, math.NaN(), 1, 2, math.NaN()} {
		tbl.Insert(v)
	}
	checkInvariants(t, tbl)
	require.Equal(t, 4, tbl.Len(), "NaN is stored once")

	_, ok := tbl.Lookup(math.NaN())
	require.True(t, ok)
	first, _ := tbl.Nth(0)
	require.True(t, math.IsNaN(first), "NaN sorts first")
	require.Equal(t, []float64{1, 2, 3}, collect(tbl)[1:])

	require.True(t, tbl.Delete(math.NaN()))
	checkInvariants(t, tbl)
	require.Equal(t, []float64{1, 2, 3}, collect(tbl))
}

func Test_Table_RandomOpsMatchReference(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	tbl := New(rtl.Ordered[int])
	ref := map[int]bool{}

	for i := range 5000 {
		k := rng.IntN(500)
		if rng.IntN(3) == 0 {
			require.Equal(t, ref[k], tbl.Delete(k), "delete %d", k)
			delete(ref, k)
		} else {
			_, inserted := tbl.Insert(k)
			require.Equal(t, !ref[k], inserted, "insert %d", k)
			ref[k] = true
		}
		if i%250 == 0 {
			checkInvariants(t, tbl)
		}
	}
	checkInvariants(t, tbl)

	want := make([]int, 0, len(ref))
	for k := range ref {
		want = append(want, k)
	}
	slices.Sort(want)
	if diff := cmp.Diff(want, collect(tbl)); diff != "" {
		t.Fatalf("in-order contents mismatch (-want +got):\n%s", diff)
	}
	for i, k := range want {
		v, ok := tbl.Nth(i)
		require.True(t, ok)
		require.Equal(t, k, v)
	}
}

func Test_Table_InsertFullWithHint(t *testing.T) {
	tbl := New(rtl.Ordered[int])
	for _, k := range []int{50, 30, 70} {
		tbl.Insert(k)
	}

	_, hint := tbl.LookupFull(40)
	require.Equal(t, rtl.InsertAsRight, hint.Result)
	v, inserted, err := tbl.InsertFull(40, hint)
	require.NoError(t, err)
	require.True(t, inserted)
	require.Equal(t, 40, v)
	checkInvariants(t, tbl)

	got, hint := tbl.LookupFull(70)
	require.Equal(t, rtl.FoundNode, hint.Result)
	require.Equal(t, 70, got)
	v, inserted, err = tbl.InsertFull(70, hint)
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, 70, v)
}

func Test_Table_InsertFullStaleHint(t *testing.T) {
	tbl := New(rtl.Ordered[int])
	tbl.Insert(10)

	_, hint := tbl.LookupFull(5)
	require.Equal(t, rtl.InsertAsLeft, hint.Result)

	// Filling the slot makes the hint stale.
	tbl.Insert(5)
	_, _, err := tbl.InsertFull(5, hint)
	require.ErrorIs(t, err, ErrBadHint)

	// Deleting the parent makes it stale too.
	_, hint = tbl.LookupFull(15)
	require.True(t, tbl.Delete(10))
	_, _, err = tbl.InsertFull(15, hint)
	require.ErrorIs(t, err, ErrBadHint)

	_, _, err = tbl.InsertFull(1, Hint{Result: rtl.EmptyTree})
	require.ErrorIs(t, err, ErrBadHint, "table is not empty")
	checkInvariants(t, tbl)
}

func Test_Table_LookupFirstMatching(t *testing.T) {
	// Compare by tens so 10..19 are all "equal".
	byTens := func(a, b int) int { return rtl.Ordered(a/10, b/10) }
	exact := New(rtl.Ordered[int])
	for _, k := range []int{15, 11, 18, 13, 25, 5} {
		exact.Insert(k)
	}

	// Search the exact table with a coarser comparator.
	exact.cmp = byTens
	v, ok := exact.LookupFirstMatching(17)
	require.True(t, ok)
	require.Equal(t, 11, v)

	_, ok = exact.LookupFirstMatching(42)
	require.False(t, ok)
}

func Test_Table_FindFirstMatch(t *testing.T) {
	tbl := New(rtl.Ordered[int])
	for _, k := range []int{9, 4, 7, 2, 8} {
		tbl.Insert(k)
	}
	v, ok := tbl.FindFirstMatch(func(x int) bool { return x%2 == 1 })
	require.True(t, ok)
	require.Equal(t, 7, v)

	_, ok = tbl.FindFirstMatch(func(x int) bool { return x > 100 })
	require.False(t, ok)
}

func Test_Table_EnumerateSurvivesDeletion(t *testing.T) {
	tbl := New(rtl.Ordered[int])
	for i := 1; i <= 10; i++ {
		tbl.Insert(i)
	}

	var seen []int
	for v, ok := tbl.Enumerate(true); ok; v, ok = tbl.Enumerate(false) {
		seen = append(seen, v)
		if v%2 == 0 {
			require.True(t, tbl.Delete(v))
		}
	}
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, seen)
	require.Equal(t, []int{1, 3, 5, 7, 9}, collect(tbl))

	// Exhausted until restarted.
	_, ok := tbl.Enumerate(false)
	require.False(t, ok)
	v, ok := tbl.Enumerate(true)
	require.True(t, ok)
	require.Equal(t, 1, v)

	// Deleting the first element right after returning it.
	require.True(t, tbl.Delete(1))
	v, ok = tbl.Enumerate(false)
	require.True(t, ok)
	require.Equal(t, 3, v)
	checkInvariants(t, tbl)
}

func Test_Table_CursorResumesAfterDelete(t *testing.T) {
	tbl := New(rtl.Ordered[int])
	for _, k := range []int{10, 20, 30, 40} {
		tbl.Insert(k)
	}

	var c Cursor[int]
	v, ok := tbl.Next(&c)
	require.True(t, ok)
	require.Equal(t, 10, v)
	v, _ = tbl.Next(&c)
	require.Equal(t, 20, v)

	require.True(t, tbl.Delete(20))
	tbl.Insert(25)

	v, ok = tbl.Next(&c)
	require.True(t, ok)
	require.Equal(t, 25, v, "stale cursor resumes after its last key")

	var other Cursor[int]
	v, _ = tbl.Next(&other)
	assert.Equal(t, 10, v, "cursors are independent")

	v, _ = tbl.Next(&c)
	require.Equal(t, 30, v)
	v, _ = tbl.Next(&c)
	require.Equal(t, 40, v)
	_, ok = tbl.Next(&c)
	require.False(t, ok)

	tbl.Insert(50)
	_, ok = tbl.Next(&c)
	require.False(t, ok, "an exhausted cursor stays exhausted")

	c.Reset()
	v, _ = tbl.Next(&c)
	require.Equal(t, 10, v)
}

func Test_Table_NextInserted(t *testing.T) {
	tbl := New(rtl.Ordered[int])
	for _, k := range []int{5, 1, 4, 2, 3} {
		tbl.Insert(k)
	}

	var c InsertCursor
	v, _ := tbl.NextInserted(&c)
	require.Equal(t, 5, v)
	v, _ = tbl.NextInserted(&c)
	require.Equal(t, 1, v)

	// Delete the cursor element; enumeration continues at the next newer one.
	require.True(t, tbl.Delete(1))
	var rest []int
	for v, ok := tbl.NextInserted(&c); ok; v, ok = tbl.NextInserted(&c) {
		rest = append(rest, v)
	}
	require.Equal(t, []int{4, 2, 3}, rest)

	c.Reset()
	tbl.Insert(1)
	var all []int
	for v, ok := tbl.NextInserted(&c); ok; v, ok = tbl.NextInserted(&c) {
		all = append(all, v)
	}
	require.Equal(t, []int{5, 4, 2, 3, 1}, all)
	checkInvariants(t, tbl)
}

func Test_Table_EnumerateLikeADirectory(t *testing.T) {
	tbl := New(strings.Compare)
	for _, name := range []string{"apple", "avocado", "banana", "blueberry", "cherry"} {
		tbl.Insert(name)
	}

	match := func(s string) rtl.MatchResult {
		switch {
		case s[0] == 'c':
			return rtl.Stop
		case s[0] == 'b':
			return rtl.Match
		default:
			return rtl.NoMatch
		}
	}

	var c Cursor[string]
	var got []string
	for v, ok := tbl.EnumerateLikeADirectory(match, &c); ok; v, ok = tbl.EnumerateLikeADirectory(match, &c) {
		got = append(got, v)
	}
	require.Equal(t, []string{"banana", "blueberry"}, got)
	_, ok := tbl.Next(&c)
	require.False(t, ok, "Stop exhausts the cursor")
}

func Test_Table_Reset(t *testing.T) {
	tbl := New(rtl.Ordered[int])
	for i := range 100 {
		tbl.Insert(i)
	}
	var c Cursor[int]
	tbl.Next(&c)

	tbl.Reset()
	require.True(t, tbl.IsEmpty())
	require.Equal(t, 0, tbl.Len())
	_, ok := tbl.Next(&c)
	require.False(t, ok)

	tbl.Insert(7)
	checkInvariants(t, tbl)
	require.Equal(t, []int{7}, collect(tbl))
}

func BenchmarkTable_Insert(b *testing.B) {
	rng := rand.New(rand.NewPCG(3, 4))
	keys := make([]int, 4096)
	for i := range keys {
		keys[i] = rng.Int()
	}
	for b.Loop() {
		tbl := New(rtl.Ordered[int], WithCapacity(len(keys)))
		for _, k := range keys {
			tbl.Insert(k)
		}
	}
}
