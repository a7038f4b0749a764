package index

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// numericIndex backs a decimal field, supporting equality and every range
// operator ordered numerically (not lexically).
type numericIndex struct {
	ordered *orderedIndex[float64]
}

func newNumericIndex() *numericIndex {
	return &numericIndex{ordered: newOrderedIndex(func(a, b float64) bool { return a < b })}
}

func (idx *numericIndex) Descriptor() Descriptor { return Numeric() }

// key accepts both Decimal and Integer values, coercing Integer to its
// float64 equivalent so a whole-number field doesn't need to be declared
// as a decimal to use a numeric index.
func (idx *numericIndex) key(v value.Value) float64 {
	if d, ok := v.AsDecimal(); ok {
		return d
	}
	if i, ok := v.AsInteger(); ok {
		return float64(i)
	}
	wrongKind(KindNumeric, v)
	return 0
}

func (idx *numericIndex) Put(v value.Value, pos record.Position) error {
	idx.ordered.put(idx.key(v), pos)
	return nil
}

func (idx *numericIndex) Remove(v value.Value, pos record.Position) error {
	idx.ordered.remove(idx.key(v), pos)
	return nil
}

func (idx *numericIndex) RemoveItem(pos record.Position) { idx.ordered.removeItem(pos) }

func (idx *numericIndex) Filter(op Operation) (*roaring.Bitmap, error) {
	switch op.Operator {
	case OpEqual:
		bitmap, ok := idx.ordered.get(idx.key(op.Value))
		if !ok {
			return roaring.New(), nil
		}
		return bitmap.Clone(), nil
	case OpGreaterThan:
		return idx.ordered.filterRange(rangeBound[float64]{value: idx.key(op.Value), present: true}, rangeBound[float64]{}), nil
	case OpGreaterOrEqual:
		return idx.ordered.filterRange(rangeBound[float64]{value: idx.key(op.Value), present: true, inclusive: true}, rangeBound[float64]{}), nil
	case OpLessThan:
		return idx.ordered.filterRange(rangeBound[float64]{}, rangeBound[float64]{value: idx.key(op.Value), present: true}), nil
	case OpLessOrEqual:
		return idx.ordered.filterRange(rangeBound[float64]{}, rangeBound[float64]{value: idx.key(op.Value), present: true, inclusive: true}), nil
	case OpBetween:
		lower := rangeBound[float64]{value: idx.key(op.Lower), present: true, inclusive: true}
		upper := rangeBound[float64]{value: idx.key(op.Upper), present: true, inclusive: true}
		return idx.ordered.filterRange(lower, upper), nil
	default:
		return nil, unsupportedOperation(KindNumeric, op.Operator)
	}
}

func (idx *numericIndex) Sort(set *roaring.Bitmap, descending bool) []record.Position {
	return idx.ordered.sort(set, descending)
}

func (idx *numericIndex) Counts(set *roaring.Bitmap) map[string]uint64 {
	counts := make(map[string]uint64)
	for k, n := range idx.ordered.counts(set) {
		counts[value.MustDecimal(k).String()] = n
	}
	return counts
}

func (idx *numericIndex) GetValue(pos record.Position) (value.Value, bool) {
	key, ok := idx.ordered.valueAt(pos)
	if !ok {
		return value.Value{}, false
	}
	return value.MustDecimal(key), true
}

func (idx *numericIndex) Plus(other Index) error {
	o, ok := other.(*numericIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.plus(o.ordered)
	return nil
}

func (idx *numericIndex) Minus(other Index) error {
	o, ok := other.(*numericIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.minus(o.ordered)
	return nil
}

func (idx *numericIndex) Clone() Index { return &numericIndex{ordered: idx.ordered.clone()} }

func (idx *numericIndex) Len() int { return idx.ordered.len() }
