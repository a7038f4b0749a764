package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/value"
)

func TestCodecRoundTripsEveryVariant(t *testing.T) {
	cases := []struct {
		name string
		idx  index.Index
		op   index.Operation
		want []uint32
	}{
		{
			name: "string",
			idx:  stringFixture(t),
			op:   index.Equal(value.String("Football")),
			want: []uint32{1, 2},
		},
		{
			name: "numeric",
			idx:  scoreBaseline(t),
			op:   index.Between(value.MustDecimal(9), value.MustDecimal(10)),
			want: []uint32{0, 1, 2},
		},
		{
			name: "bool",
			idx:  boolFixture(t),
			op:   index.Equal(value.Bool(true)),
			want: []uint32{0, 2},
		},
		{
			name: "enum",
			idx:  enumFixture(t),
			op:   index.Equal(value.String("Football")),
			want: []uint32{1, 2},
		},
		{
			name: "date",
			idx:  dateFixture(t),
			op:   index.Equal(value.String("1985-02-17")),
			want: []uint32{0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := index.Encode(tc.idx)
			require.NoError(t, err)

			decoded, err := index.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.idx.Descriptor(), decoded.Descriptor())

			hits, err := decoded.Filter(tc.op)
			require.NoError(t, err)
			assert.Equal(t, tc.want, hits.ToArray())
		})
	}
}

func stringFixture(t *testing.T) index.Index {
	t.Helper()
	idx := index.New(index.String())
	require.NoError(t, idx.Put(value.String("Basketball"), 0))
	require.NoError(t, idx.Put(value.String("Football"), 1))
	require.NoError(t, idx.Put(value.String("Football"), 2))
	return idx
}

func boolFixture(t *testing.T) index.Index {
	t.Helper()
	idx := index.New(index.Bool())
	require.NoError(t, idx.Put(value.Bool(true), 0))
	require.NoError(t, idx.Put(value.Bool(false), 1))
	require.NoError(t, idx.Put(value.Bool(true), 2))
	return idx
}

func enumFixture(t *testing.T) index.Index {
	t.Helper()
	idx := index.New(index.Enum("Basketball", "Football"))
	require.NoError(t, idx.Put(value.String("Basketball"), 0))
	require.NoError(t, idx.Put(value.String("Football"), 1))
	require.NoError(t, idx.Put(value.String("Football"), 2))
	return idx
}

func dateFixture(t *testing.T) index.Index {
	t.Helper()
	idx := index.New(index.Date())
	require.NoError(t, idx.Put(value.String("1985-02-17"), 0))
	require.NoError(t, idx.Put(value.String("1987-06-24"), 1))
	return idx
}
