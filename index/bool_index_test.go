package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/value"
)

func TestBoolIndexEquality(t *testing.T) {
	idx := index.New(index.Bool())

	require.NoError(t, idx.Put(value.Bool(true), 0))
	require.NoError(t, idx.Put(value.Bool(false), 1))
	require.NoError(t, idx.Put(value.Bool(true), 2))

	hits, err := idx.Filter(index.Equal(value.Bool(true)))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 2}, hits.ToArray())
}

func TestBoolIndexCountsRendersTrueFalseStrings(t *testing.T) {
	idx := index.New(index.Bool())
	require.NoError(t, idx.Put(value.Bool(true), 0))
	require.NoError(t, idx.Put(value.Bool(false), 1))

	counts := idx.Counts(allOf(0, 1))
	assert.Equal(t, map[string]uint64{"true": 1, "false": 1}, counts)
}

func TestBoolIndexRangeIsUnsupported(t *testing.T) {
	idx := index.New(index.Bool())
	_, err := idx.Filter(index.GreaterThan(value.Bool(true)))
	assert.ErrorIs(t, err, index.ErrUnsupportedOperation)
}

func TestBoolIndexPlusMinusComposeKeyWise(t *testing.T) {
	base := index.New(index.Bool())
	require.NoError(t, base.Put(value.Bool(true), 0))
	require.NoError(t, base.Put(value.Bool(true), 1))

	before := index.New(index.Bool())
	require.NoError(t, before.Put(value.Bool(true), 0))

	after := index.New(index.Bool())
	require.NoError(t, after.Put(value.Bool(false), 0))

	overlaid := base.Clone()
	require.NoError(t, overlaid.Minus(before))
	require.NoError(t, overlaid.Plus(after))

	trueHits, err := overlaid.Filter(index.Equal(value.Bool(true)))
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, trueHits.ToArray())

	falseHits, err := overlaid.Filter(index.Equal(value.Bool(false)))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, falseHits.ToArray())

	// base is untouched.
	baseTrue, err := base.Filter(index.Equal(value.Bool(true)))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, baseTrue.ToArray())
}
