package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeMemoizes(t *testing.T) {
	c := New[int]("test")
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}

	v, hit, err := c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit, err = c.GetOrCompute("k", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls, "second lookup must not recompute")

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	c := New[string]("test")
	boom := errors.New("boom")

	_, _, err := c.GetOrCompute("k", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, hit, err := c.GetOrCompute("k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "ok", v)
}

func TestReset(t *testing.T) {
	c := New[int]("test")
	c.Put("a", 1)
	c.Put("b", 2)
	require.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestAcquireReleaseEvictsAtZero(t *testing.T) {
	c := New[int]("test")
	calls := 0
	compute := func() (int, error) {
		calls++
		return 7, nil
	}

	_, hit, err := c.Acquire("k", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = c.Acquire("k", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, c.Refs("k"))

	assert.False(t, c.Release("k"), "one reference is still held")
	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Release("k"))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Refs("k"))

	assert.False(t, c.Release("k"), "releasing an unknown key is a no-op")
}

func TestAcquireFailureTakesNoReference(t *testing.T) {
	c := New[int]("test")
	_, _, err := c.Acquire("k", func() (int, error) { return 0, errors.New("boom") })
	require.Error(t, err)
	assert.Equal(t, 0, c.Refs("k"))
	assert.Equal(t, 0, c.Len())
}

func TestDeletePrefixSkipsHeldEntries(t *testing.T) {
	c := New[int]("test")
	c.Put("upload:1|a", 1)
	c.Put("upload:1#f|a", 2)
	c.Put("upload:2|a", 3)
	_, _, err := c.Acquire("upload:1", func() (int, error) { return 4, nil })
	require.NoError(t, err)

	assert.Equal(t, 1, c.DeletePrefix("upload:1|"))
	assert.Equal(t, 1, c.DeletePrefix("upload:1"), "the held entry survives")
	assert.Equal(t, 1, c.Refs("upload:1"))
	assert.Equal(t, 2, c.Len())
}
