package value_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleics/deltasearch/value"
)

func TestDecimalRejectsNaN(t *testing.T) {
	_, err := value.Decimal(nan())
	require.Error(t, err)
	assert.True(t, errors.Is(err, value.ErrInvalidInput))
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestDecimalNegativeZeroEqualsPositiveZero(t *testing.T) {
	neg := value.MustDecimal(negZero())
	pos := value.MustDecimal(0)

	assert.True(t, neg.Equal(pos))
	assert.Equal(t, 0, neg.Compare(pos))
}

func negZero() float64 {
	var zero float64
	return -zero
}

func TestValueEqualAcrossKindsIsFalse(t *testing.T) {
	assert.False(t, value.Integer(1).Equal(value.String("1")))
}

func TestCompareAcrossKindsPanics(t *testing.T) {
	assert.Panics(t, func() {
		value.Integer(1).Compare(value.String("1"))
	})
}

func TestCompareOrdersWithinVariant(t *testing.T) {
	assert.Equal(t, -1, value.Integer(1).Compare(value.Integer(2)))
	assert.Equal(t, 1, value.Integer(2).Compare(value.Integer(1)))
	assert.Equal(t, 0, value.Integer(2).Compare(value.Integer(2)))

	assert.Equal(t, -1, value.String("a").Compare(value.String("b")))
	assert.Equal(t, -1, value.Bool(false).Compare(value.Bool(true)))
	assert.Equal(t, -1, value.MustDecimal(1.5).Compare(value.MustDecimal(2.5)))
}

func TestArrayCompareIsLexicographic(t *testing.T) {
	short := value.Array(value.Integer(1))
	long := value.Array(value.Integer(1), value.Integer(2))

	assert.Equal(t, -1, short.Compare(long))
	assert.Equal(t, 1, long.Compare(short))
}

func TestAsAccessorsDoNotCoerce(t *testing.T) {
	v := value.Integer(42)

	_, ok := v.AsString()
	assert.False(t, ok)

	i, ok := v.AsInteger()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), i)
}

func TestStringFormatsDecimalWithoutTrailingZero(t *testing.T) {
	assert.Equal(t, "9", value.MustDecimal(9).String())
	assert.Equal(t, "9.5", value.MustDecimal(9.5).String())
}

func TestStringFormatsArray(t *testing.T) {
	arr := value.Array(value.String("A"), value.String("B"))
	assert.Equal(t, "[A, B]", arr.String())
}

func TestValueJSONRoundTrip(t *testing.T) {
	cases := []value.Value{
		value.Bool(true),
		value.Integer(7),
		value.String("hello"),
		value.MustDecimal(3.25),
		value.Array(value.String("A"), value.String("B")),
	}

	for _, v := range cases {
		data, err := v.MarshalJSON()
		require.NoError(t, err)

		var out value.Value
		require.NoError(t, out.UnmarshalJSON(data))
		assert.True(t, v.Equal(out), "round-trip mismatch for %v", v)
	}
}
