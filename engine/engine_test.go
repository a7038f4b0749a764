package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleics/deltasearch/engine"
	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/query"
	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/storage"
	"github.com/aleics/deltasearch/value"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := storage.DefaultConfig(t.TempDir())
	e := engine.New(cfg, nil)
	t.Cleanup(e.Close)
	return e
}

func seedPlayers(t *testing.T, e *engine.Engine) {
	t.Helper()

	require.NoError(t, e.CreateEntity("players"))
	require.NoError(t, e.CreateIndex("players", []engine.FieldIndex{
		{Name: "name", Descriptor: index.String()},
		{Name: "sport", Descriptor: index.Enum("Basketball", "Football")},
		{Name: "score", Descriptor: index.Numeric()},
		{Name: "born", Descriptor: index.Date()},
	}))

	require.NoError(t, e.Add("players", []record.Record{
		record.New(0, map[string]value.Value{"name": value.String("Jordan"), "sport": value.String("Basketball"), "score": value.MustDecimal(10), "born": value.String("1963-02-17")}),
		record.New(1, map[string]value.Value{"name": value.String("Messi"), "sport": value.String("Football"), "score": value.MustDecimal(9), "born": value.String("1987-06-24")}),
		record.New(2, map[string]value.Value{"name": value.String("Ronaldo"), "sport": value.String("Football"), "score": value.MustDecimal(9), "born": value.String("1985-02-05")}),
	}))
}

func resultIDs(results []record.Record) []record.ID {
	ids := make([]record.ID, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

// TestEnumEquality is §8 scenario 1.
func TestEnumEquality(t *testing.T) {
	e := newTestEngine(t)
	seedPlayers(t, e)

	results, err := e.Query("players", query.NewQueryExecution().
		WithFilter(query.Eq("sport", value.String("Football"))).
		WithSort(query.NewSort("name")))
	require.NoError(t, err)
	assert.Equal(t, []record.ID{1, 2}, resultIDs(results))
}

// TestNumericRange is §8 scenario 2.
func TestNumericRange(t *testing.T) {
	e := newTestEngine(t)
	seedPlayers(t, e)

	results, err := e.Query("players", query.NewQueryExecution().
		WithFilter(query.Between("score", value.MustDecimal(6), value.MustDecimal(10))).
		WithSort(query.NewSort("score")))
	require.NoError(t, err)
	assert.ElementsMatch(t, []record.ID{0, 1, 2}, resultIDs(results))
}

// TestSortDescendingWithAbsentValues is §8 scenario 3.
func TestSortDescendingWithAbsentValues(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.CreateEntity("players"))
	require.NoError(t, e.CreateIndex("players", []engine.FieldIndex{
		{Name: "score", Descriptor: index.Numeric()},
	}))
	require.NoError(t, e.Add("players", []record.Record{
		record.New(0, map[string]value.Value{"name": value.String("Jordan"), "score": value.MustDecimal(10)}),
		record.New(1, map[string]value.Value{"name": value.String("Ronaldo"), "score": value.MustDecimal(9)}),
		record.New(2, map[string]value.Value{"name": value.String("Roger"), "score": value.MustDecimal(5)}),
		record.New(3, map[string]value.Value{"name": value.String("David")}),
	}))

	results, err := e.Query("players", query.NewQueryExecution().
		WithSort(query.NewSort("score").WithDirection(query.Descending)))
	require.NoError(t, err)
	assert.Equal(t, []record.ID{0, 1, 2, 3}, resultIDs(results))
}

// TestFacetCountsWithFilter is §8 scenario 4.
func TestFacetCountsWithFilter(t *testing.T) {
	e := newTestEngine(t)
	seedPlayers(t, e)
	require.NoError(t, e.Add("players", []record.Record{
		record.New(3, map[string]value.Value{"name": value.String("Roger"), "sport": value.String("Basketball"), "score": value.MustDecimal(5), "born": value.String("1980-08-03")}),
	}))

	options, err := e.Options("players", query.NewOptionsQueryExecution().
		WithFilter(query.GreaterOrEqual("score", value.MustDecimal(8))))
	require.NoError(t, err)

	var sport *query.FilterOption
	for i := range options {
		if options[i].Field == "sport" {
			sport = &options[i]
		}
	}
	require.NotNil(t, sport, "sport facet must be reported even though the filter only references score")
	assert.Equal(t, map[string]uint64{"Basketball": 1, "Football": 2}, sport.Values)
}

// TestDeltaOverlay is §8 scenario 5.
func TestDeltaOverlay(t *testing.T) {
	e := newTestEngine(t)
	seedPlayers(t, e)

	require.NoError(t, e.StoreDeltas("players", "2023-01-01", nil, []query.DeltaChange{
		query.NewDeltaChange(0, "score").WithBefore(value.MustDecimal(10)).WithAfter(value.MustDecimal(9)),
		query.NewDeltaChange(1, "score").WithBefore(value.MustDecimal(9)).WithAfter(value.MustDecimal(8)),
	}))

	results, err := e.Query("players", query.NewQueryExecution().
		WithFilter(query.Eq("sport", value.String("Football"))).
		WithScope(query.NewDeltaScope("2024-01-01")).
		WithSort(query.NewSort("score")))
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, record.ID(1), results[0].ID)
	messiScore, _ := results[0].Fields["score"].AsDecimal()
	assert.Equal(t, 8.0, messiScore)

	assert.Equal(t, record.ID(2), results[1].ID)
	ronaldoScore, _ := results[1].Fields["score"].AsDecimal()
	assert.Equal(t, 9.0, ronaldoScore)
}

// TestBranchIsolation is §8 scenario 6.
func TestBranchIsolation(t *testing.T) {
	e := newTestEngine(t)
	seedPlayers(t, e)

	branch0 := uint64(0)
	branch1 := uint64(1)

	require.NoError(t, e.StoreDeltas("players", "2020-01-01", &branch0, []query.DeltaChange{
		query.NewDeltaChange(1, "score").WithBefore(value.MustDecimal(9)).WithAfter(value.MustDecimal(6)),
	}))
	require.NoError(t, e.StoreDeltas("players", "2020-01-01", &branch1, []query.DeltaChange{
		query.NewDeltaChange(0, "score").WithBefore(value.MustDecimal(10)).WithAfter(value.MustDecimal(5)),
	}))

	onBranch0, err := e.Query("players", query.NewQueryExecution().
		WithFilter(query.LessThan("score", value.MustDecimal(7))).
		WithScope(query.NewDeltaScope("2020-01-01").WithBranch(branch0)))
	require.NoError(t, err)
	require.Len(t, onBranch0, 1)
	assert.Equal(t, record.ID(1), onBranch0[0].ID)

	onBranch1, err := e.Query("players", query.NewQueryExecution().
		WithFilter(query.LessThan("score", value.MustDecimal(7))).
		WithScope(query.NewDeltaScope("2020-01-01").WithBranch(branch1)))
	require.NoError(t, err)
	require.Len(t, onBranch1, 1)
	assert.Equal(t, record.ID(0), onBranch1[0].ID)
}

func TestQueryUnknownEntityIsEntityNotFound(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Query("ghost", query.NewQueryExecution())
	assert.ErrorIs(t, err, engine.ErrEntityNotFound)
}

func TestCreateEntityConflict(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.CreateEntity("players"))

	err := e.CreateEntity("players")
	assert.ErrorIs(t, err, engine.ErrEntityExists)
}

func TestInitDiscoversExistingEntities(t *testing.T) {
	root := t.TempDir()
	cfg := storage.DefaultConfig(root)

	first := engine.New(cfg, nil)
	require.NoError(t, first.CreateEntity("players"))
	first.Close()

	second := engine.New(cfg, nil)
	require.NoError(t, second.Init())
	t.Cleanup(second.Close)

	_, err := second.Query("players", query.NewQueryExecution())
	assert.NoError(t, err)
}
