package hashtable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtlkit/internal/arena"
)

func newTable(t *testing.T, shift uint, flags Flags, opts ...Option) *Table[int] {
	t.Helper()
	tbl, err := New[int](shift, flags, opts...)
	require.NoError(t, err)
	return tbl
}

// checkChains verifies link symmetry, bucket addressing and the entry count.
func checkChains(t *testing.T, tbl *Table[int]) {
	t.Helper()
	n := 0
	for b, head := range tbl.heads {
		prev := arena.Nil
		for r := head; r != arena.Nil; r = tbl.at(r).next {
			e := tbl.at(r)
			require.Equal(t, prev, e.prev, "prev link in bucket %d", b)
			require.Equal(t, uint32(b), e.bucket)
			if !e.sentinel {
				require.Equal(t, b, tbl.bucketOf(e.sig), "sig %d misplaced", e.sig)
				n++
			}
			prev = r
		}
	}
	require.Equal(t, tbl.Len(), n)
	require.Equal(t, 1<<tbl.shift+tbl.pivot, len(tbl.heads))
}

func Test_Table_New(t *testing.T) {
	_, err := New[int](MaxShift, 0)
	require.ErrorIs(t, err, ErrBadShift)

	_, err = New[int](2, 0, WithLoadFactors(1, 2))
	require.ErrorIs(t, err, ErrBadLoadFactors)
	_, err = New[int](2, 0, WithLoadFactors(math.NaN(), 0))
	require.ErrorIs(t, err, ErrBadLoadFactors)
	_, err = New[int](2, 0, WithLoadFactors(4, math.NaN()))
	require.ErrorIs(t, err, ErrBadLoadFactors)
	_, err = New[int](2, 0, WithLoadFactors(4, -1))
	require.ErrorIs(t, err, ErrBadLoadFactors)

	tbl := newTable(t, 3, 0, WithCapacity(64))
	st := tbl.Stats()
	assert.Equal(t, uint(3), st.Shift)
	assert.Equal(t, 8, st.TableSize)
	assert.Equal(t, uint64(7), st.DivisorMask)
	assert.Zero(t, st.Entries)
}

func Test_Table_RoundTrip(t *testing.T) {
	tbl := newTable(t, 2, 0)
	handles := make(map[uint64]Handle, 1000)
	for k := uint64(1); k <= 1000; k++ {
		h, err := tbl.Insert(int(k), k)
		require.NoError(t, err)
		handles[k] = h
	}
	checkChains(t, tbl)
	require.Greater(t, tbl.Stats().TableSize, 4, "inserts split buckets")

	for k := uint64(1); k <= 1000; k++ {
		h, v, ok := tbl.Lookup(k)
		require.True(t, ok, "lookup %d", k)
		require.Equal(t, handles[k], h)
		require.Equal(t, int(k), v)
	}

	for k := uint64(2); k <= 1000; k += 2 {
		ok, err := tbl.Remove(handles[k])
		require.NoError(t, err)
		require.True(t, ok)
	}
	checkChains(t, tbl)
	require.Equal(t, 500, tbl.Len())

	for k := uint64(1); k <= 1000; k++ {
		_, _, ok := tbl.Lookup(k)
		require.Equal(t, k%2 == 1, ok, "lookup %d", k)
	}

	en, err := tbl.BeginWeak()
	require.NoError(t, err)
	seen := map[int]int{}
	for _, v, ok := en.Next(); ok; _, v, ok = en.Next() {
		seen[v]++
	}
	assert.Equal(t, StateEnded, en.State())
	en.End()
	assert.Equal(t, StateIdle, en.State())
	require.Len(t, seen, 500)
	for k := 1; k <= 1000; k += 2 {
		require.GreaterOrEqual(t, seen[k], 1, "odd key %d not visited", k)
	}
	checkChains(t, tbl)
}

func Test_Table_DuplicateSignatures(t *testing.T) {
	tbl := newTable(t, 1, 0)
	for i := range 3 {
		_, err := tbl.Insert(i, 42)
		require.NoError(t, err)
	}
	_, err := tbl.Insert(99, 43)
	require.NoError(t, err)

	var ctx LookupContext
	var got []int
	for _, v, ok := tbl.LookupFirst(42, &ctx); ok; _, v, ok = tbl.NextMatch(&ctx) {
		got = append(got, v)
	}
	assert.ElementsMatch(t, []int{0, 1, 2}, got)

	_, _, ok := tbl.Lookup(7)
	assert.False(t, ok)
}

func Test_Table_StaleHandle(t *testing.T) {
	tbl := newTable(t, 1, 0)
	h, err := tbl.Insert(1, 1)
	require.NoError(t, err)

	ok, err := tbl.Remove(h)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = tbl.Remove(h)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok = tbl.Value(h)
	require.False(t, ok)
	_, ok = tbl.Signature(h)
	require.False(t, ok)

	ok, err = tbl.Remove(0)
	require.NoError(t, err)
	require.False(t, ok)
}

func Test_Table_ExpandContractTransparent(t *testing.T) {
	tbl := newTable(t, 2, FlagNoAutoExpand|FlagNoAutoContract)
	for k := uint64(0); k < 200; k++ {
		_, err := tbl.Insert(int(k), k*2654435761)
		require.NoError(t, err)
	}
	require.Equal(t, 4, tbl.Stats().TableSize, "auto expansion disabled")

	for range 13 {
		ok, err := tbl.Expand()
		require.NoError(t, err)
		require.True(t, ok)
		checkChains(t, tbl)
	}
	st := tbl.Stats()
	assert.Equal(t, 17, st.TableSize)
	assert.Equal(t, uint(4), st.Shift)
	assert.Equal(t, 1, st.Pivot)

	for k := uint64(0); k < 200; k++ {
		_, v, ok := tbl.Lookup(k * 2654435761)
		require.True(t, ok)
		require.Equal(t, int(k), v)
	}

	for {
		ok, err := tbl.Contract()
		require.NoError(t, err)
		if !ok {
			break
		}
		checkChains(t, tbl)
	}
	assert.Equal(t, 4, tbl.Stats().TableSize, "never below the initial size")
	assert.Equal(t, uint(2), tbl.Stats().Shift)
	for k := uint64(0); k < 200; k++ {
		_, _, ok := tbl.Lookup(k * 2654435761)
		require.True(t, ok)
	}
}

func Test_Table_AutoContract(t *testing.T) {
	tbl := newTable(t, 1, 0)
	var hs []Handle
	for k := range uint64(100) {
		h, err := tbl.Insert(int(k), k)
		require.NoError(t, err)
		hs = append(hs, h)
	}
	grown := tbl.Stats().TableSize
	require.Greater(t, grown, 2)

	for _, h := range hs {
		_, err := tbl.Remove(h)
		require.NoError(t, err)
	}
	checkChains(t, tbl)
	require.Less(t, tbl.Stats().TableSize, grown)
	require.Equal(t, 2, tbl.Stats().TableSize)
}

func Test_Table_Destroy(t *testing.T) {
	tbl := newTable(t, 2, 0)
	for k := range uint64(10) {
		_, err := tbl.Insert(int(k), k)
		require.NoError(t, err)
	}
	en, err := tbl.BeginWeak()
	require.NoError(t, err)

	require.Equal(t, 10, tbl.Destroy())
	require.Equal(t, 0, tbl.Destroy())

	_, err = tbl.Insert(1, 1)
	require.ErrorIs(t, err, ErrDestroyed)
	_, err = tbl.Expand()
	require.ErrorIs(t, err, ErrDestroyed)
	_, _, ok := tbl.Lookup(1)
	require.False(t, ok)

	_, _, ok = en.Next()
	require.False(t, ok)
	require.Equal(t, StateEnded, en.State())
	en.End()
}

func BenchmarkTable_Insert(b *testing.B) {
	for b.Loop() {
		tbl, _ := New[int](4, 0)
		for k := range 4096 {
			_, _ = tbl.Insert(k, sigOf(k))
		}
	}
}
