package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleics/deltasearch/value"
)

func TestDateRoundTrip(t *testing.T) {
	dates := []string{"2023-01-01", "1999-12-31", "2024-02-29"}

	for _, d := range dates {
		ts, err := value.ParseDate(d)
		require.NoError(t, err)
		assert.Equal(t, d, value.FormatDate(ts))
	}
}

func TestDateParseRejectsMalformedInput(t *testing.T) {
	_, err := value.ParseDate("not-a-date")
	require.Error(t, err)
}

func TestDateOrdering(t *testing.T) {
	earlier, err := value.ParseDate("2020-01-01")
	require.NoError(t, err)
	later, err := value.ParseDate("2020-01-02")
	require.NoError(t, err)

	assert.Less(t, earlier, later)
}
