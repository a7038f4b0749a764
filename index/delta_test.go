package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/value"
)

func scoreBaseline(t *testing.T) index.Index {
	t.Helper()
	idx := index.New(index.Numeric())
	require.NoError(t, idx.Put(value.MustDecimal(10), 0)) // Jordan
	require.NoError(t, idx.Put(value.MustDecimal(9), 1))  // Messi
	require.NoError(t, idx.Put(value.MustDecimal(9), 2))  // Ronaldo
	return idx
}

func TestDeltaApplyComposesBeforeAfter(t *testing.T) {
	base := scoreBaseline(t)

	d := index.NewDelta(index.Numeric())
	nine := value.MustDecimal(9)
	eight := value.MustDecimal(8)
	require.NoError(t, d.Record(1, &nine, &eight)) // Messi: 9 -> 8

	overlaid, err := index.Apply(base, d)
	require.NoError(t, err)

	hits, err := overlaid.Filter(index.Equal(eight))
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, hits.ToArray())

	untouched, err := overlaid.Filter(index.Equal(nine))
	require.NoError(t, err)
	assert.Equal(t, []uint32{2}, untouched.ToArray())
}

// TestFoldIsAssociativeOverDisjointPositions is the §8 "Delta overlay"
// algebraic property: folding {D1,D2} then composing once equals composing
// D1 then D2 sequentially, for deltas touching disjoint positions.
func TestFoldIsAssociativeOverDisjointPositions(t *testing.T) {
	base := scoreBaseline(t)
	descriptor := index.Numeric()

	nine := value.MustDecimal(9)
	eight := value.MustDecimal(8)
	ten := value.MustDecimal(10)
	eleven := value.MustDecimal(11)

	d1 := index.NewDelta(descriptor)
	require.NoError(t, d1.Record(1, &nine, &eight)) // Messi 9 -> 8

	d2 := index.NewDelta(descriptor)
	require.NoError(t, d2.Record(0, &ten, &eleven)) // Jordan 10 -> 11

	folded, err := index.Fold(descriptor, []index.Delta{d1, d2})
	require.NoError(t, err)
	viaFold, err := index.Apply(base, folded)
	require.NoError(t, err)

	viaSequential, err := index.Apply(base, d1)
	require.NoError(t, err)
	viaSequential, err = index.Apply(viaSequential, d2)
	require.NoError(t, err)

	for _, v := range []value.Value{eight, eleven, nine} {
		a, err := viaFold.Filter(index.Equal(v))
		require.NoError(t, err)
		b, err := viaSequential.Filter(index.Equal(v))
		require.NoError(t, err)
		assert.Equal(t, a.ToArray(), b.ToArray(), "mismatch for value %v", v)
	}
}

func TestDeltaRecordInsertionAndDeletion(t *testing.T) {
	d := index.NewDelta(index.String())

	val := value.String("Football")
	require.NoError(t, d.Record(0, nil, &val)) // insertion: field gained a value
	require.NoError(t, d.Record(1, &val, nil)) // deletion: field lost its value

	assert.Equal(t, []uint32{0, 1}, d.Affected.ToArray())

	afterHits, err := d.After.Filter(index.Equal(val))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, afterHits.ToArray())

	beforeHits, err := d.Before.Filter(index.Equal(val))
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, beforeHits.ToArray())
}
