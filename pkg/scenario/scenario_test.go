package scenario

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtlkit/rtl/bitmap"
)

func TestLoadRoundTrip(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "roundtrip.yaml"))
	require.NoError(t, err)
	require.Equal(t, "roundtrip", s.Name)
	require.Equal(t, SigIdentity, s.Hash.Signature, "default signature")

	rep, err := Run(s)
	require.NoError(t, err)
	h := rep.Hash
	require.NotNil(t, h)
	assert.Equal(t, 1000, h.Inserted)
	assert.Equal(t, 500, h.Removed)
	assert.Equal(t, 500, h.Found)
	assert.Equal(t, 500, h.Missing)
	assert.Equal(t, 500, h.Enumerated)
	assert.Equal(t, 500, h.Stats.Entries)
	assert.Zero(t, h.Stats.ActiveEnumerators)
}

func TestRunFull(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)
	rep, err := Run(s)
	require.NoError(t, err)

	wantTable := &TableReport{
		Kind:     KindSplay,
		Inserted: 100,
		Deleted:  50,
		Len:      50,
		First:    51,
		Last:     100,
		Nth:      []int{51, 100},
	}
	if diff := cmp.Diff(wantTable, rep.Table); diff != "" {
		t.Errorf("table report mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, rep.Hash)
	assert.Equal(t, 256, rep.Hash.Inserted)
	assert.Equal(t, 6, rep.Hash.Found)
	assert.Equal(t, 5, rep.Hash.Missing)
	assert.Equal(t, 256, rep.Hash.Enumerated)
	assert.Zero(t, rep.Hash.Stats.Entries, "destructive enumeration drains the table")

	wantBitmap := &BitmapReport{
		Size: 100,
		Word: 32,
		Claims: []Claim{
			{Length: 40, Start: 0, OK: true},
			{Length: 40, Start: 40, OK: true},
			{Length: 40, Start: 0, OK: false},
		},
		Set:          40,
		LongestClear: bitmap.Run{Start: 0, Length: 40},
	}
	if diff := cmp.Diff(wantBitmap, rep.Bitmap); diff != "" {
		t.Errorf("bitmap report mismatch (-want +got):\n%s", diff)
	}

	wantPrefix := &PrefixReport{
		Entries: 2,
		Removed: 1,
		Matches: []Match{
			{Name: `\Device\HarddiskVolume1\Windows`, Prefix: `\Device\HarddiskVolume1`, Found: true},
			{Name: `\device\harddiskvolume1`, Prefix: `\Device\HarddiskVolume1`, Found: true},
			{Name: `\??\C:`},
		},
	}
	if diff := cmp.Diff(wantPrefix, rep.Prefix); diff != "" {
		t.Errorf("prefix report mismatch (-want +got):\n%s", diff)
	}
}

func TestTableKindsAgree(t *testing.T) {
	sec := func(kind string) *Scenario {
		return &Scenario{Seed: 3, Table: &TableSection{
			Kind:    kind,
			Shuffle: true,
			Insert:  &Range{From: 1, To: 200, Step: 3},
			Delete:  &Range{From: 1, To: 200, Step: 2},
			Nth:     []int{0, 5, 10, 1000},
		}}
	}
	avlRep, err := Run(sec(KindAVL))
	require.NoError(t, err)
	splayRep, err := Run(sec(KindSplay))
	require.NoError(t, err)

	splayRep.Table.Kind = KindAVL
	if diff := cmp.Diff(avlRep.Table, splayRep.Table); diff != "" {
		t.Errorf("avl and splay disagree (-avl +splay):\n%s", diff)
	}
	assert.Len(t, avlRep.Table.Nth, 3, "out-of-range ranks are dropped")
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"empty", "name: nothing\n", ErrEmpty},
		{"bad kind", "table: {kind: btree}\n", ErrInvalid},
		{"reversed range", "table: {insert: {from: 5, to: 1}}\n", ErrInvalid},
		{"negative step", "hash: {insert: {from: 1, to: 5, step: -1}}\n", ErrInvalid},
		{"bad signature", "hash: {signature: md5}\n", ErrInvalid},
		{"bad enumerate", "hash: {enumerate: sideways}\n", ErrInvalid},
		{"bad word", "bitmap: {size: 8, word: 16}\n", ErrInvalid},
		{"bad size", "bitmap: {size: 0}\n", ErrInvalid},
		{"bad release", "bitmap: {size: 8, claims: [1], release: [1]}\n", ErrInvalid},
		{"huge range", "hash: {insert: {from: -9223372036854775808, to: 9223372036854775807}}\n", ErrInvalid},
		{"range past cap", "table: {kind: avl, insert: {from: 0, to: 1048576}}\n", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse([]byte("table: [unclosed"))
	require.Error(t, err)
	_, err = Load(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
}

func TestMarshalParses(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)
	data, err := s.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(s, again, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("scenario changed across marshal (-want +got):\n%s", diff)
	}
}

func TestRangeValues(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, (&Range{From: 1, To: 3}).Values())
	assert.Equal(t, []int{0, 5, 10}, (&Range{From: 0, To: 12, Step: 5}).Values())
	var r *Range
	assert.Nil(t, r.Values())

	top := &Range{From: math.MaxInt - 1, To: math.MaxInt}
	assert.Equal(t, []int{math.MaxInt - 1, math.MaxInt}, top.Values())
	assert.Equal(t, []int{math.MaxInt - 4}, (&Range{From: math.MaxInt - 4, To: math.MaxInt, Step: 5}).Values())
	assert.Len(t, (&Range{From: 1, To: MaxRangeLen}).Values(), MaxRangeLen)
}

func TestValidateReportsFirstHashRange(t *testing.T) {
	const doc = "hash:\n" +
		"  insert: {from: 5, to: 1}\n" +
		"  remove: {from: 1, to: 5, step: -1}\n" +
		"  lookup: {from: 9, to: 2}\n"
	for range 20 {
		_, err := Parse([]byte(doc))
		require.ErrorIs(t, err, ErrInvalid)
		require.Contains(t, err.Error(), "hash.insert")
	}
}
