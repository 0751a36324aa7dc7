package signature

import (
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFNV1a64MatchesStdlib(t *testing.T) {
	for _, s := range []string{"", "a", "hello world", "Software\\Microsoft"} {
		h := fnv.New64a()
		_, _ = h.Write([]byte(s))
		require.Equal(t, h.Sum64(), FNV1a64([]byte(s)), "input %q", s)
	}
}

func TestFNV1a64Fold(t *testing.T) {
	assert.Equal(t, FNV1a64([]byte("software")), FNV1a64Fold("SoftWare"))
	assert.NotEqual(t, FNV1a64Fold("abc"), FNV1a64Fold("abd"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "strasse", Fold("STRAßE"))
	assert.Equal(t, FNV1a64Unicode("Straße"), FNV1a64Unicode("STRASSE"))
	assert.Equal(t, FNV1a64Unicode("ΣΊΣΥΦΟΣ"), FNV1a64Unicode("σίσυφος"))
}

func TestX65599(t *testing.T) {
	// "AB": 'A'*65599 + 'B'
	assert.Equal(t, uint32('A')*65599+uint32('B'), X65599("AB", false))
	assert.Equal(t, X65599("AB", false), X65599("ab", true))
	assert.NotEqual(t, X65599("AB", false), X65599("ab", false))
	assert.Zero(t, X65599("", true))
}

func TestX31(t *testing.T) {
	assert.Equal(t, uint32('a')*31+uint32('b'), X31("ab", false))
	assert.Equal(t, X31("KEY", false), X31("key", true))
}

func TestSurrogatePairsHashAsTwoUnits(t *testing.T) {
	// U+1F600 encodes as D83D DE00.
	want := uint32(0xD83D)*31 + 0xDE00
	assert.Equal(t, want, X31("\U0001F600", false))
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, uint32('A')*37+uint32('B'), Registry("ab"))
	assert.Equal(t, Registry("Software"), Registry("SOFTWARE"))
}
