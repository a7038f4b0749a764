package query

import (
	"errors"
	"fmt"
	"sort"

	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/record"
)

// ErrMissingField is returned when a filter or sort references a field
// with no index (§ Error semantics: "recoverable error, not a panic").
var ErrMissingField = errors.New("query: missing field index")

// EntityIndices is the snapshot of one entity's indices a query evaluates
// against: every field's current index, the bitmap of every live
// position, and (when read through a delta scope) which fields a
// persisted delta touched.
type EntityIndices struct {
	Fields         map[string]index.Index
	All            *roaring.Bitmap
	AffectedFields []string
}

// IndexSource is the read surface a query execution needs from storage.
// It is declared here, not imported from the storage package, so the
// query evaluator stays a leaf that does not depend on the persistence
// layer built on top of it.
type IndexSource interface {
	ReadCurrentIndices(fields []string) (EntityIndices, error)
	ReadAllCurrentIndices() (EntityIndices, error)
	ReadIndicesIn(scope DeltaScope, fields []string) (EntityIndices, error)
	ReadAllIndicesIn(scope DeltaScope) (EntityIndices, error)
	ReadByID(id record.ID) (record.Record, bool, error)
}

// FilterOption is one field's facet: for each distinct value within a
// result set, the count of hits holding that value.
type FilterOption struct {
	Field  string
	Values map[string]uint64
}

// queryIndices combines a stored snapshot with ephemeral inline deltas,
// mirroring the original's QueryIndices.
type queryIndices struct {
	stored EntityIndices
	deltas map[string]index.Index
}

func newQueryIndices(stored EntityIndices) *queryIndices {
	return &queryIndices{stored: stored, deltas: map[string]index.Index{}}
}

func (qi *queryIndices) attachDeltas(changes []DeltaChange) error {
	for _, change := range changes {
		current, ok := qi.stored.Fields[change.Field]
		if !ok {
			continue
		}
		if _, exists := qi.deltas[change.Field]; !exists {
			qi.deltas[change.Field] = current.Clone()
		}

		delta := qi.deltas[change.Field]
		pos, err := record.IDToPosition(change.ID)
		if err != nil {
			return err
		}

		if change.Before != nil {
			if err := delta.Remove(*change.Before, pos); err != nil {
				return err
			}
		}
		if change.After != nil {
			if err := delta.Put(*change.After, pos); err != nil {
				return err
			}
		}
	}
	return nil
}

func (qi *queryIndices) get(name string) (index.Index, bool) {
	if idx, ok := qi.deltas[name]; ok {
		return idx, true
	}
	idx, ok := qi.stored.Fields[name]
	return idx, ok
}

// touchedFields returns every field whose value may have been rewritten
// by a delta, inline or persisted, so record hydration knows which field
// values to recompute from the overlaid index.
func (qi *queryIndices) touchedFields() []string {
	seen := map[string]struct{}{}
	var fields []string
	for name := range qi.deltas {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			fields = append(fields, name)
		}
	}
	for _, name := range qi.stored.AffectedFields {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			fields = append(fields, name)
		}
	}
	return fields
}

func (qi *queryIndices) executeFilter(filter CompositeFilter) (*roaring.Bitmap, error) {
	switch filter.kind {
	case filterAnd:
		var result *roaring.Bitmap
		for _, sub := range filter.filters {
			hits, err := qi.executeFilter(sub)
			if err != nil {
				return nil, err
			}
			if result == nil {
				result = hits
			} else {
				result = roaring.And(result, hits)
			}
		}
		if result == nil {
			return roaring.New(), nil
		}
		return result, nil
	case filterOr:
		var result *roaring.Bitmap
		for _, sub := range filter.filters {
			hits, err := qi.executeFilter(sub)
			if err != nil {
				return nil, err
			}
			if result == nil {
				result = hits
			} else {
				result = roaring.Or(result, hits)
			}
		}
		if result == nil {
			return roaring.New(), nil
		}
		return result, nil
	case filterNot:
		hits, err := qi.executeFilter(*filter.inner)
		if err != nil {
			return nil, err
		}
		return roaring.AndNot(qi.stored.All, hits), nil
	case filterSingle:
		idx, ok := qi.get(filter.single.field)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, filter.single.field)
		}
		return idx.Filter(filter.single.operation)
	default:
		return roaring.New(), nil
	}
}

func (qi *queryIndices) executeSort(set *roaring.Bitmap, s Sort) ([]record.Position, error) {
	idx, ok := qi.get(s.By)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, s.By)
	}
	return idx.Sort(set, s.Direction == Descending), nil
}

func (qi *queryIndices) computeFilterOptions(hits *roaring.Bitmap) []FilterOption {
	var options []FilterOption

	fields := make([]string, 0, len(qi.deltas))
	for name := range qi.deltas {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		options = append(options, FilterOption{Field: name, Values: qi.deltas[name].Counts(hits)})
	}

	stored := make([]string, 0, len(qi.stored.Fields))
	for name := range qi.stored.Fields {
		if _, covered := qi.deltas[name]; !covered {
			stored = append(stored, name)
		}
	}
	sort.Strings(stored)
	for _, name := range stored {
		options = append(options, FilterOption{Field: name, Values: qi.stored.Fields[name].Counts(hits)})
	}

	return options
}
