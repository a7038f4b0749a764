package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleics/deltasearch/record"
)

func TestFlattenJSONDotJoinsNestedObjects(t *testing.T) {
	fields, err := record.FlattenJSON([]byte(`{"family":{"name":"Jordan"},"sport":"Basketball"}`))
	require.NoError(t, err)

	name, ok := fields["family.name"].AsString()
	require.True(t, ok)
	assert.Equal(t, "Jordan", name)

	sport, ok := fields["sport"].AsString()
	require.True(t, ok)
	assert.Equal(t, "Basketball", sport)
}

func TestFlattenJSONCollectsArrayOfScalarsPerLeafPath(t *testing.T) {
	fields, err := record.FlattenJSON([]byte(`{"regions":{"country":["A","B"]}}`))
	require.NoError(t, err)

	arr, ok := fields["regions.country"].AsArray()
	require.True(t, ok)
	require.Len(t, arr, 2)

	first, _ := arr[0].AsString()
	second, _ := arr[1].AsString()
	assert.Equal(t, "A", first)
	assert.Equal(t, "B", second)
}

func TestFlattenJSONCollectsArrayOfObjectsPerLeafPath(t *testing.T) {
	fields, err := record.FlattenJSON([]byte(`{"teams":[{"name":"A"},{"name":"B"}]}`))
	require.NoError(t, err)

	arr, ok := fields["teams.name"].AsArray()
	require.True(t, ok)
	require.Len(t, arr, 2)

	first, _ := arr[0].AsString()
	second, _ := arr[1].AsString()
	assert.Equal(t, "A", first)
	assert.Equal(t, "B", second)
}
