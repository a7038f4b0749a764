package index

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// stringIndex backs a free-text/equality field. It supports only Equal:
// range operators are rejected with ErrUnsupportedOperation, matching the
// original's StringIndex which never implements a range filter.
type stringIndex struct {
	ordered *orderedIndex[string]
}

func newStringIndex() *stringIndex {
	return &stringIndex{ordered: newOrderedIndex(func(a, b string) bool { return a < b })}
}

func (idx *stringIndex) Descriptor() Descriptor { return String() }

func (idx *stringIndex) key(v value.Value) string {
	s, ok := v.AsString()
	if !ok {
		wrongKind(KindString, v)
	}
	return s
}

func (idx *stringIndex) Put(v value.Value, pos record.Position) error {
	idx.ordered.put(idx.key(v), pos)
	return nil
}

func (idx *stringIndex) Remove(v value.Value, pos record.Position) error {
	idx.ordered.remove(idx.key(v), pos)
	return nil
}

func (idx *stringIndex) RemoveItem(pos record.Position) { idx.ordered.removeItem(pos) }

func (idx *stringIndex) Filter(op Operation) (*roaring.Bitmap, error) {
	if op.Operator != OpEqual {
		return nil, unsupportedOperation(KindString, op.Operator)
	}
	bitmap, ok := idx.ordered.get(idx.key(op.Value))
	if !ok {
		return roaring.New(), nil
	}
	return bitmap.Clone(), nil
}

func (idx *stringIndex) Sort(set *roaring.Bitmap, descending bool) []record.Position {
	return idx.ordered.sort(set, descending)
}

func (idx *stringIndex) Counts(set *roaring.Bitmap) map[string]uint64 {
	return idx.ordered.counts(set)
}

func (idx *stringIndex) GetValue(pos record.Position) (value.Value, bool) {
	key, ok := idx.ordered.valueAt(pos)
	if !ok {
		return value.Value{}, false
	}
	return value.String(key), true
}

func (idx *stringIndex) Plus(other Index) error {
	o, ok := other.(*stringIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.plus(o.ordered)
	return nil
}

func (idx *stringIndex) Minus(other Index) error {
	o, ok := other.(*stringIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.minus(o.ordered)
	return nil
}

func (idx *stringIndex) Clone() Index { return &stringIndex{ordered: idx.ordered.clone()} }

func (idx *stringIndex) Len() int { return idx.ordered.len() }
