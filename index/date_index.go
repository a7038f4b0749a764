package index

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// dateIndex backs a calendar-date field. A record stores the date as the
// raw ISO-8601 string (there is no dedicated Date value.Kind); the index
// parses it into a Unix timestamp at UTC midnight on the way in, the same
// split the original keeps between the stored field and its index.
type dateIndex struct {
	ordered *orderedIndex[int64]
}

func newDateIndex() *dateIndex {
	return &dateIndex{ordered: newOrderedIndex(func(a, b int64) bool { return a < b })}
}

func (idx *dateIndex) Descriptor() Descriptor { return Date() }

func (idx *dateIndex) key(v value.Value) int64 {
	s, ok := v.AsString()
	if !ok {
		wrongKind(KindDate, v)
	}
	ts, err := value.ParseDate(s)
	if err != nil {
		panic("index: " + err.Error())
	}
	return ts
}

func (idx *dateIndex) Put(v value.Value, pos record.Position) error {
	idx.ordered.put(idx.key(v), pos)
	return nil
}

func (idx *dateIndex) Remove(v value.Value, pos record.Position) error {
	idx.ordered.remove(idx.key(v), pos)
	return nil
}

func (idx *dateIndex) RemoveItem(pos record.Position) { idx.ordered.removeItem(pos) }

func (idx *dateIndex) Filter(op Operation) (*roaring.Bitmap, error) {
	switch op.Operator {
	case OpEqual:
		bitmap, ok := idx.ordered.get(idx.key(op.Value))
		if !ok {
			return roaring.New(), nil
		}
		return bitmap.Clone(), nil
	case OpGreaterThan:
		return idx.ordered.filterRange(rangeBound[int64]{value: idx.key(op.Value), present: true}, rangeBound[int64]{}), nil
	case OpGreaterOrEqual:
		return idx.ordered.filterRange(rangeBound[int64]{value: idx.key(op.Value), present: true, inclusive: true}, rangeBound[int64]{}), nil
	case OpLessThan:
		return idx.ordered.filterRange(rangeBound[int64]{}, rangeBound[int64]{value: idx.key(op.Value), present: true}), nil
	case OpLessOrEqual:
		return idx.ordered.filterRange(rangeBound[int64]{}, rangeBound[int64]{value: idx.key(op.Value), present: true, inclusive: true}), nil
	case OpBetween:
		lower := rangeBound[int64]{value: idx.key(op.Lower), present: true, inclusive: true}
		upper := rangeBound[int64]{value: idx.key(op.Upper), present: true, inclusive: true}
		return idx.ordered.filterRange(lower, upper), nil
	default:
		return nil, unsupportedOperation(KindDate, op.Operator)
	}
}

func (idx *dateIndex) Sort(set *roaring.Bitmap, descending bool) []record.Position {
	return idx.ordered.sort(set, descending)
}

// Counts returns an empty mapping for Date indices; range bucketing is out
// of scope in this version.
func (idx *dateIndex) Counts(set *roaring.Bitmap) map[string]uint64 {
	return map[string]uint64{}
}

func (idx *dateIndex) GetValue(pos record.Position) (value.Value, bool) {
	key, ok := idx.ordered.valueAt(pos)
	if !ok {
		return value.Value{}, false
	}
	return value.String(value.FormatDate(key)), true
}

func (idx *dateIndex) Plus(other Index) error {
	o, ok := other.(*dateIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.plus(o.ordered)
	return nil
}

func (idx *dateIndex) Minus(other Index) error {
	o, ok := other.(*dateIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.minus(o.ordered)
	return nil
}

func (idx *dateIndex) Clone() Index { return &dateIndex{ordered: idx.ordered.clone()} }

func (idx *dateIndex) Len() int { return idx.ordered.len() }
