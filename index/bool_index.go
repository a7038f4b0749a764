package index

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// boolIndex backs a boolean field. It only ever has up to two entries, but
// is still built on the same ordered index as every other variant so Sort
// and Counts share one implementation (false < true).
type boolIndex struct {
	ordered *orderedIndex[bool]
}

func newBoolIndex() *boolIndex {
	return &boolIndex{ordered: newOrderedIndex(func(a, b bool) bool { return !a && b })}
}

func (idx *boolIndex) Descriptor() Descriptor { return Bool() }

func (idx *boolIndex) key(v value.Value) bool {
	b, ok := v.AsBool()
	if !ok {
		wrongKind(KindBool, v)
	}
	return b
}

func (idx *boolIndex) Put(v value.Value, pos record.Position) error {
	idx.ordered.put(idx.key(v), pos)
	return nil
}

func (idx *boolIndex) Remove(v value.Value, pos record.Position) error {
	idx.ordered.remove(idx.key(v), pos)
	return nil
}

func (idx *boolIndex) RemoveItem(pos record.Position) { idx.ordered.removeItem(pos) }

func (idx *boolIndex) Filter(op Operation) (*roaring.Bitmap, error) {
	if op.Operator != OpEqual {
		return nil, unsupportedOperation(KindBool, op.Operator)
	}
	bitmap, ok := idx.ordered.get(idx.key(op.Value))
	if !ok {
		return roaring.New(), nil
	}
	return bitmap.Clone(), nil
}

func (idx *boolIndex) Sort(set *roaring.Bitmap, descending bool) []record.Position {
	return idx.ordered.sort(set, descending)
}

func (idx *boolIndex) Counts(set *roaring.Bitmap) map[string]uint64 {
	counts := make(map[string]uint64)
	for k, n := range idx.ordered.counts(set) {
		if k {
			counts["true"] = n
		} else {
			counts["false"] = n
		}
	}
	return counts
}

func (idx *boolIndex) GetValue(pos record.Position) (value.Value, bool) {
	key, ok := idx.ordered.valueAt(pos)
	if !ok {
		return value.Value{}, false
	}
	return value.Bool(key), true
}

func (idx *boolIndex) Plus(other Index) error {
	o, ok := other.(*boolIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.plus(o.ordered)
	return nil
}

func (idx *boolIndex) Minus(other Index) error {
	o, ok := other.(*boolIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.minus(o.ordered)
	return nil
}

func (idx *boolIndex) Clone() Index { return &boolIndex{ordered: idx.ordered.clone()} }

func (idx *boolIndex) Len() int { return idx.ordered.len() }
