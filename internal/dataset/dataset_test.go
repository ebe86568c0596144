package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New("sample", []string{"price", "kind"}, [][]Value{
		{Num(100), Str("a")},
		{Num(200), Str("b")},
		{NA(), Str("a")},
		{Num(50), NA()},
	})
	require.NoError(t, err)
	return ds
}

func TestNewRejectsBadShape(t *testing.T) {
	_, err := New("x", []string{"a", "a"}, nil)
	assert.Error(t, err)

	_, err = New("x", []string{"a", "b"}, [][]Value{{Num(1)}})
	assert.Error(t, err)
}

func TestNumRejectsNonFinite(t *testing.T) {
	assert.True(t, Num(math.NaN()).IsMissing())
	assert.True(t, Num(math.Inf(1)).IsMissing())
}

func TestRangeAndUnique(t *testing.T) {
	ds := sample(t)
	lo, hi, ok, err := ds.Range("price")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 50.0, lo)
	assert.Equal(t, 200.0, hi)

	_, _, _, err = ds.Range("kind")
	assert.ErrorIs(t, err, ErrNotNumeric)
	_, _, _, err = ds.Range("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	u, err := ds.Unique("kind")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, u)
}

func TestDerivedDatasetsLeaveParentIntact(t *testing.T) {
	ds := sample(t)
	sub := ds.Select([]int{1, 3}, ds.Fingerprint()+"#x")
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, ds.Fingerprint()+"#x", sub.Fingerprint())

	added, err := ds.WithColumn("double", []Value{Num(200), Num(400), NA(), Num(100)})
	require.NoError(t, err)
	assert.Equal(t, 3, added.NumColumns())
	assert.Equal(t, 2, ds.NumColumns())
	assert.NotEqual(t, ds.Fingerprint(), added.Fingerprint())
	assert.True(t, added.IsNumeric("double"))

	replaced, err := ds.WithColumn("kind", []Value{Str("z"), Str("z"), Str("z"), Str("z")})
	require.NoError(t, err)
	assert.Equal(t, "z", replaced.At(0, 1).Text())
	assert.Equal(t, "a", ds.At(0, 1).Text())

	_, err = ds.WithColumn("short", []Value{Num(1)})
	assert.Error(t, err)

	head := ds.Head(10)
	assert.Equal(t, 4, head.Len())
	assert.Equal(t, 0, ds.Head(-1).Len())
}

func TestFingerprintTracksContent(t *testing.T) {
	a := sample(t)
	b := sample(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c, err := New("sample", []string{"price", "kind"}, [][]Value{{Num(101), Str("a")}})
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestRecordsRenderMissingAsEmpty(t *testing.T) {
	ds := sample(t)
	rec := ds.Records()
	assert.Equal(t, []string{"", "a"}, rec[2])
	assert.Equal(t, []string{"50", ""}, rec[3])
}
