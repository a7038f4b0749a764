package query

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/record"
)

// OptionsQueryExecution computes facet counts ("filter options") over a
// result set without fetching or sorting any records. The filter (if any)
// narrows the hit set options are counted over; it never narrows which
// fields are reported — §4.3 "if no field set is specified, all indices
// of the entity are reported" is independent of which fields the filter
// itself references (the fixture scenario in §8 filters on "score" but
// still expects a "sport" facet in the output).
type OptionsQueryExecution struct {
	filter    *CompositeFilter
	deltas    []DeltaChange
	scope     *DeltaScope
	fieldSet  []string
	haveSet   bool
	refFields []string
}

// NewOptionsQueryExecution builds an empty options query: every stored
// index becomes a filter option, unless WithFields narrows the reported
// set explicitly.
func NewOptionsQueryExecution() OptionsQueryExecution { return OptionsQueryExecution{} }

// WithFilter narrows the result set options are computed over. It does
// not, by itself, narrow which fields are reported.
func (e OptionsQueryExecution) WithFilter(filter CompositeFilter) OptionsQueryExecution {
	e.refFields = append(e.refFields, filter.ReferencedFields()...)
	e.filter = &filter
	return e
}

// WithFields restricts which fields' facets are reported. With no call to
// WithFields, every index the entity has is reported (§4.3).
func (e OptionsQueryExecution) WithFields(fields ...string) OptionsQueryExecution {
	e.fieldSet = append(append([]string{}, e.fieldSet...), fields...)
	e.haveSet = true
	return e
}

// WithDeltas attaches ephemeral, query-scoped field changes.
func (e OptionsQueryExecution) WithDeltas(deltas []DeltaChange) OptionsQueryExecution {
	e.deltas = append(e.deltas, deltas...)
	return e
}

// WithScope reads indices as of a persisted delta scope instead of the
// current baseline.
func (e OptionsQueryExecution) WithScope(scope DeltaScope) OptionsQueryExecution {
	e.scope = &scope
	return e
}

// Run evaluates e against source, returning one FilterOption per field.
func (e OptionsQueryExecution) Run(source IndexSource) ([]FilterOption, error) {
	stored, err := e.readIndices(source)
	if err != nil {
		return nil, err
	}

	indices := newQueryIndices(stored)
	if err := indices.attachDeltas(e.deltas); err != nil {
		return nil, err
	}

	hits := stored.All
	if e.filter != nil {
		hits, err = indices.executeFilter(*e.filter)
		if err != nil {
			return nil, err
		}
	}

	options := indices.computeFilterOptions(hits)
	if !e.haveSet {
		return options, nil
	}

	wanted := make(map[string]struct{}, len(e.fieldSet))
	for _, name := range e.fieldSet {
		wanted[name] = struct{}{}
	}
	filtered := options[:0]
	for _, opt := range options {
		if _, ok := wanted[opt.Field]; ok {
			filtered = append(filtered, opt)
		}
	}
	return filtered, nil
}

// readIndices loads every index needed: when an explicit field set was
// given, that set plus whatever the filter itself references (to compute
// the hit set); otherwise every index the entity has, since with no
// explicit set every field is reported (§4.3).
func (e OptionsQueryExecution) readIndices(source IndexSource) (EntityIndices, error) {
	if !e.haveSet {
		if e.scope != nil {
			return source.ReadAllIndicesIn(*e.scope)
		}
		return source.ReadAllCurrentIndices()
	}

	fields := append(append([]string{}, e.fieldSet...), e.refFields...)
	if e.scope != nil {
		return source.ReadIndicesIn(*e.scope, fields)
	}
	return source.ReadCurrentIndices(fields)
}

// QueryExecution fetches, filters, sorts, and paginates full records.
type QueryExecution struct {
	filter     *CompositeFilter
	deltas     []DeltaChange
	sort       *Sort
	pagination *Pagination
	scope      *DeltaScope
	refFields  []string
}

// NewQueryExecution builds an empty query: with no filter it matches every
// live record, with no sort it returns hits in position order, and with no
// pagination it returns every hit.
func NewQueryExecution() QueryExecution { return QueryExecution{} }

// WithFilter narrows the result set to records matching filter.
func (e QueryExecution) WithFilter(filter CompositeFilter) QueryExecution {
	e.refFields = append(e.refFields, filter.ReferencedFields()...)
	e.filter = &filter
	return e
}

// WithDeltas attaches ephemeral, query-scoped field changes.
func (e QueryExecution) WithDeltas(deltas []DeltaChange) QueryExecution {
	e.deltas = append(e.deltas, deltas...)
	return e
}

// WithSort orders hits by a field before pagination.
func (e QueryExecution) WithSort(s Sort) QueryExecution {
	e.refFields = append(e.refFields, s.referencedFields()...)
	e.sort = &s
	return e
}

// WithPagination selects a window of the sorted/filtered hits.
func (e QueryExecution) WithPagination(p Pagination) QueryExecution {
	e.pagination = &p
	return e
}

// WithScope reads indices as of a persisted delta scope instead of the
// current baseline.
func (e QueryExecution) WithScope(scope DeltaScope) QueryExecution {
	e.scope = &scope
	return e
}

// Run evaluates e against source, returning the matching records.
func (e QueryExecution) Run(source IndexSource) ([]record.Record, error) {
	var stored EntityIndices
	var err error
	if e.scope != nil {
		stored, err = source.ReadIndicesIn(*e.scope, e.refFields)
	} else {
		stored, err = source.ReadCurrentIndices(e.refFields)
	}
	if err != nil {
		return nil, err
	}

	indices := newQueryIndices(stored)
	if err := indices.attachDeltas(e.deltas); err != nil {
		return nil, err
	}

	hits := stored.All
	if e.filter != nil {
		hits, err = indices.executeFilter(*e.filter)
		if err != nil {
			return nil, err
		}
	}

	positions, err := e.orderedPositions(hits, indices)
	if err != nil {
		return nil, err
	}

	return e.readRecords(positions, indices, source)
}

func (e QueryExecution) orderedPositions(hits *roaring.Bitmap, indices *queryIndices) ([]record.Position, error) {
	if e.sort != nil {
		return indices.executeSort(hits, *e.sort)
	}

	positions := make([]record.Position, 0, hits.GetCardinality())
	it := hits.Iterator()
	for it.HasNext() {
		positions = append(positions, it.Next())
	}
	return positions, nil
}

func (e QueryExecution) readRecords(positions []record.Position, indices *queryIndices, source IndexSource) ([]record.Record, error) {
	start, size := 0, len(positions)
	if e.pagination != nil {
		start, size = e.pagination.Start, e.pagination.Size
	}
	end := start + size
	if start > len(positions) {
		start = len(positions)
	}
	if end > len(positions) {
		end = len(positions)
	}

	touched := indices.touchedFields()

	records := make([]record.Record, 0, end-start)
	for _, pos := range positions[start:end] {
		id := record.ToID(pos)
		item, ok, err := source.ReadByID(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		for _, field := range touched {
			idx, ok := indices.get(field)
			if !ok {
				continue
			}
			if v, ok := idx.GetValue(pos); ok {
				item.Fields[field] = v
			} else {
				delete(item.Fields, field)
			}
		}

		records = append(records, item)
	}
	return records, nil
}
