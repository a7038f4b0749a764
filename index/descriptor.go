// Package index implements the five typed per-field inverted indices the
// engine keeps over a field's values, and the delta overlay algebra used to
// answer queries "as of" an arbitrary date without rewriting the base
// index. Every variant shares one contract: Put, Remove, RemoveItem,
// Filter, Sort, Counts, GetValue, Plus and Minus, grounded on the original
// crate's index.rs.
package index

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// Kind identifies which of the five index variants a field uses.
type Kind int

const (
	KindString Kind = iota
	KindNumeric
	KindDate
	KindEnum
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	case KindEnum:
		return "enum"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Descriptor is the persisted type signature of one field's index: enough
// to recreate an empty index of the right shape during backfill or delta
// application (§4.1/§4.5). Labels is only meaningful for KindEnum, and
// fixes the declared display order used by Sort and Counts — it is not
// re-derived alphabetically.
type Descriptor struct {
	Kind   Kind
	Labels []string
}

// String builds a Descriptor for a free-text/equality-only field.
func String() Descriptor { return Descriptor{Kind: KindString} }

// Numeric builds a Descriptor for a decimal field supporting range filters.
func Numeric() Descriptor { return Descriptor{Kind: KindNumeric} }

// Date builds a Descriptor for a calendar-date field supporting range
// filters over whole UTC days.
func Date() Descriptor { return Descriptor{Kind: KindDate} }

// Enum builds a Descriptor for a fixed, ordered set of labels.
func Enum(labels ...string) Descriptor {
	cp := make([]string, len(labels))
	copy(cp, labels)
	return Descriptor{Kind: KindEnum, Labels: cp}
}

// Bool builds a Descriptor for a boolean field.
func Bool() Descriptor { return Descriptor{Kind: KindBool} }

// New allocates an empty Index of the shape described by d.
func New(d Descriptor) Index {
	switch d.Kind {
	case KindString:
		return newStringIndex()
	case KindNumeric:
		return newNumericIndex()
	case KindDate:
		return newDateIndex()
	case KindEnum:
		return newEnumIndex(d.Labels)
	case KindBool:
		return newBoolIndex()
	default:
		panic("index: unknown descriptor kind")
	}
}

// Index is the shared contract every field's typed inverted index
// implements (§4.2).
type Index interface {
	Descriptor() Descriptor
	Put(v value.Value, pos record.Position) error
	Remove(v value.Value, pos record.Position) error
	RemoveItem(pos record.Position)
	Filter(op Operation) (*roaring.Bitmap, error)
	Sort(set *roaring.Bitmap, descending bool) []record.Position
	Counts(set *roaring.Bitmap) map[string]uint64
	GetValue(pos record.Position) (value.Value, bool)
	Plus(other Index) error
	Minus(other Index) error
	Clone() Index
	Len() int
}
