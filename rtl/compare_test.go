package rtl

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrdered(t *testing.T) {
	require.Negative(t, Ordered(1, 2))
	require.Positive(t, Ordered("b", "a"))
	require.Zero(t, Ordered(3.5, 3.5))
}

func TestOrderedNaN(t *testing.T) {
	nan := math.NaN()
	require.Negative(t, Ordered(nan, 1))
	require.Negative(t, Ordered(nan, math.Inf(-1)))
	require.Positive(t, Ordered(1, nan))
	require.Zero(t, Ordered(nan, nan))

	xs := []float64{2, nan, -1, nan, 0}
	sort.Slice(xs, func(i, j int) bool { return Ordered(xs[i], xs[j]) < 0 })
	require.True(t, math.IsNaN(xs[0]))
	require.True(t, math.IsNaN(xs[1]))
	require.Equal(t, []float64{-1, 0, 2}, xs[2:])
}

func TestReverse(t *testing.T) {
	xs := []int{3, 1, 2}
	cmp := Reverse(Ordered[int])
	sort.Slice(xs, func(i, j int) bool { return cmp(xs[i], xs[j]) < 0 })
	require.Equal(t, []int{3, 2, 1}, xs)
}

func TestSearchResultString(t *testing.T) {
	require.Equal(t, "InsertAsLeft", InsertAsLeft.String())
	require.Equal(t, "SearchResult(?)", SearchResult(42).String())
}
