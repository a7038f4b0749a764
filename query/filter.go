// Package query implements the boolean filter evaluator, sort/pagination,
// and facet ("filter option") computation that run against a snapshot of
// an entity's indices, grounded on the original crate's query.rs.
package query

import (
	"github.com/aleics/deltasearch/index"
	"github.com/aleics/deltasearch/value"
)

// CompositeFilter is a boolean expression tree over single-field tests.
// The zero value is not valid; build one with Eq/Between/GreaterThan/...
// and combine with And/Or/Negate.
type CompositeFilter struct {
	kind    filterKind
	filters []CompositeFilter // And / Or
	inner   *CompositeFilter  // Not
	single  *singleFilter     // Single
}

type filterKind int

const (
	filterAnd filterKind = iota
	filterOr
	filterNot
	filterSingle
)

type singleFilter struct {
	field     string
	operation index.Operation
}

func single(field string, op index.Operation) CompositeFilter {
	return CompositeFilter{kind: filterSingle, single: &singleFilter{field: field, operation: op}}
}

// Eq builds an equality test against field.
func Eq(field string, v value.Value) CompositeFilter { return single(field, index.Equal(v)) }

// Between builds an inclusive range test against field.
func Between(field string, lower, upper value.Value) CompositeFilter {
	return single(field, index.Between(lower, upper))
}

// GreaterThan builds a strict lower-bound test against field.
func GreaterThan(field string, v value.Value) CompositeFilter {
	return single(field, index.GreaterThan(v))
}

// GreaterOrEqual builds an inclusive lower-bound test against field.
func GreaterOrEqual(field string, v value.Value) CompositeFilter {
	return single(field, index.GreaterOrEqual(v))
}

// LessThan builds a strict upper-bound test against field.
func LessThan(field string, v value.Value) CompositeFilter {
	return single(field, index.LessThan(v))
}

// LessOrEqual builds an inclusive upper-bound test against field.
func LessOrEqual(field string, v value.Value) CompositeFilter {
	return single(field, index.LessOrEqual(v))
}

// And combines filters so every one of them must match.
func And(filters ...CompositeFilter) CompositeFilter {
	return CompositeFilter{kind: filterAnd, filters: filters}
}

// Or combines filters so at least one of them must match.
func Or(filters ...CompositeFilter) CompositeFilter {
	return CompositeFilter{kind: filterOr, filters: filters}
}

// Negate inverts filter against the entity's full set of live positions.
func Negate(filter CompositeFilter) CompositeFilter {
	return CompositeFilter{kind: filterNot, inner: &filter}
}

// ReferencedFields returns every field name filter tests, for use sizing
// the set of indices a query needs to read from storage.
func (f CompositeFilter) ReferencedFields() []string {
	switch f.kind {
	case filterAnd, filterOr:
		var fields []string
		for _, sub := range f.filters {
			fields = append(fields, sub.ReferencedFields()...)
		}
		return fields
	case filterNot:
		return f.inner.ReferencedFields()
	case filterSingle:
		return []string{f.single.field}
	default:
		return nil
	}
}
