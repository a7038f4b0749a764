package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/value"
)

func TestDateIndexRange(t *testing.T) {
	idx := index.New(index.Date())
	require.NoError(t, idx.Put(value.String("1985-02-17"), 0))
	require.NoError(t, idx.Put(value.String("1987-06-24"), 1))
	require.NoError(t, idx.Put(value.String("1975-01-01"), 2))

	hits, err := idx.Filter(index.Between(value.String("1980-01-01"), value.String("1989-12-31")))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, hits.ToArray())
}

func TestDateIndexCountsReturnsEmptyMapping(t *testing.T) {
	idx := index.New(index.Date())
	require.NoError(t, idx.Put(value.String("1985-02-17"), 0))
	require.NoError(t, idx.Put(value.String("1985-02-17"), 1))
	require.NoError(t, idx.Put(value.String("1987-06-24"), 2))

	counts := idx.Counts(allOf(0, 1, 2))
	assert.Empty(t, counts)
}

func TestDateIndexGetValueRoundTrips(t *testing.T) {
	idx := index.New(index.Date())
	require.NoError(t, idx.Put(value.String("1985-02-17"), 0))

	v, ok := idx.GetValue(0)
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "1985-02-17", s)
}
