package index

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// enumIndex backs a field restricted to a fixed, declared set of labels.
// The index key is the label's position within the declared list, not its
// alphabetical rank, so Sort and Counts follow declaration order (e.g.
// "low" < "medium" < "high").
type enumIndex struct {
	labels  []string
	rank    map[string]int
	ordered *orderedIndex[int]
}

func newEnumIndex(labels []string) *enumIndex {
	cp := make([]string, len(labels))
	copy(cp, labels)
	rank := make(map[string]int, len(cp))
	for i, label := range cp {
		rank[label] = i
	}
	return &enumIndex{
		labels:  cp,
		rank:    rank,
		ordered: newOrderedIndex(func(a, b int) bool { return a < b }),
	}
}

func (idx *enumIndex) Descriptor() Descriptor { return Enum(idx.labels...) }

// key resolves v's declared rank. An unknown label is a recoverable
// UnknownEnumValue condition (a caller inserting data against the wrong
// enum), not a programmer-contract violation, so it is returned rather
// than panicked (§7 "UnknownEnumValue").
func (idx *enumIndex) key(v value.Value) (int, error) {
	s, ok := v.AsString()
	if !ok {
		wrongKind(KindEnum, v)
	}
	rank, ok := idx.rank[s]
	if !ok {
		return 0, errUnknownEnumValue(s)
	}
	return rank, nil
}

func (idx *enumIndex) Put(v value.Value, pos record.Position) error {
	key, err := idx.key(v)
	if err != nil {
		return err
	}
	idx.ordered.put(key, pos)
	return nil
}

func (idx *enumIndex) Remove(v value.Value, pos record.Position) error {
	key, err := idx.key(v)
	if err != nil {
		return err
	}
	idx.ordered.remove(key, pos)
	return nil
}

func (idx *enumIndex) RemoveItem(pos record.Position) { idx.ordered.removeItem(pos) }

// Filter resolves an unknown label to the empty set rather than an error:
// a query asking for a label the enum never declared simply matches
// nothing, the same short-circuit index.rs's EnumIndex::equal gets for
// free from get_index_of returning None.
func (idx *enumIndex) Filter(op Operation) (*roaring.Bitmap, error) {
	if op.Operator != OpEqual {
		return nil, unsupportedOperation(KindEnum, op.Operator)
	}
	key, err := idx.key(op.Value)
	if err != nil {
		return roaring.New(), nil
	}
	bitmap, ok := idx.ordered.get(key)
	if !ok {
		return roaring.New(), nil
	}
	return bitmap.Clone(), nil
}

func (idx *enumIndex) Sort(set *roaring.Bitmap, descending bool) []record.Position {
	return idx.ordered.sort(set, descending)
}

func (idx *enumIndex) Counts(set *roaring.Bitmap) map[string]uint64 {
	counts := make(map[string]uint64)
	for k, n := range idx.ordered.counts(set) {
		counts[idx.labels[k]] = n
	}
	return counts
}

func (idx *enumIndex) GetValue(pos record.Position) (value.Value, bool) {
	key, ok := idx.ordered.valueAt(pos)
	if !ok {
		return value.Value{}, false
	}
	return value.String(idx.labels[key]), true
}

func (idx *enumIndex) Plus(other Index) error {
	o, ok := other.(*enumIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.plus(o.ordered)
	return nil
}

func (idx *enumIndex) Minus(other Index) error {
	o, ok := other.(*enumIndex)
	if !ok {
		return errIncompatible(idx, other)
	}
	idx.ordered.minus(o.ordered)
	return nil
}

func (idx *enumIndex) Clone() Index {
	return &enumIndex{labels: idx.labels, rank: idx.rank, ordered: idx.ordered.clone()}
}

func (idx *enumIndex) Len() int { return idx.ordered.len() }
