package query_test

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/query"
	"github.com/aleics/deltasearch/record"
)

// fakeSource is an in-memory query.IndexSource used to exercise the
// evaluator without a storage backend. Scoped reads return the same
// baseline as the unscoped ones: delta-overlay composition itself is
// exercised end-to-end against real storage in the engine package.
type fakeSource struct {
	fields  map[string]index.Index
	all     *roaring.Bitmap
	records map[record.ID]record.Record
}

func newFakeSource(all *roaring.Bitmap, fields map[string]index.Index, records map[record.ID]record.Record) *fakeSource {
	return &fakeSource{fields: fields, all: all, records: records}
}

func (f *fakeSource) snapshot(fields []string) query.EntityIndices {
	result := query.EntityIndices{Fields: map[string]index.Index{}, All: f.all}
	if fields == nil {
		return result
	}
	for _, name := range fields {
		if idx, ok := f.fields[name]; ok {
			result.Fields[name] = idx
		}
	}
	return result
}

func (f *fakeSource) ReadCurrentIndices(fields []string) (query.EntityIndices, error) {
	return f.snapshot(fields), nil
}

func (f *fakeSource) ReadAllCurrentIndices() (query.EntityIndices, error) {
	names := make([]string, 0, len(f.fields))
	for name := range f.fields {
		names = append(names, name)
	}
	return f.snapshot(names), nil
}

func (f *fakeSource) ReadIndicesIn(_ query.DeltaScope, fields []string) (query.EntityIndices, error) {
	return f.snapshot(fields), nil
}

func (f *fakeSource) ReadAllIndicesIn(scope query.DeltaScope) (query.EntityIndices, error) {
	return f.ReadAllCurrentIndices()
}

func (f *fakeSource) ReadByID(id record.ID) (record.Record, bool, error) {
	r, ok := f.records[id]
	return r.Clone(), ok, nil
}
