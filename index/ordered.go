package index

import (
	roaring "github.com/RoaringBitmap/roaring/v2"
	"github.com/google/btree"

	"github.com/aleics/deltasearch/record"
)

// orderedEntry is one key→bitmap slot of an orderedIndex. Only key
// participates in the tree's ordering; bitmap is carried along.
type orderedEntry[T any] struct {
	key    T
	bitmap *roaring.Bitmap
}

// orderedIndex is the Go analogue of the original crate's
// SortableIndex<T: Ord>(BTreeMap<T, RoaringBitmap>) — an ordered map from a
// totally-ordered key to the bitmap of positions holding that key,
// backed by github.com/google/btree's generic BTreeG so range queries and
// ordered traversal (Sort, range filters, Counts) don't need a full scan
// and re-sort. Every one of the five index variants embeds one of these,
// including String and Bool: the original keeps even those on a BTreeMap so
// Sort has one implementation for every variant (§4.2).
type orderedIndex[T any] struct {
	tree *btree.BTreeG[orderedEntry[T]]
	less func(a, b T) bool
}

const btreeDegree = 32

func newOrderedIndex[T any](less func(a, b T) bool) *orderedIndex[T] {
	entryLess := func(a, b orderedEntry[T]) bool { return less(a.key, b.key) }
	return &orderedIndex[T]{
		tree: btree.NewG[orderedEntry[T]](btreeDegree, entryLess),
		less: less,
	}
}

func (o *orderedIndex[T]) get(key T) (*roaring.Bitmap, bool) {
	entry, ok := o.tree.Get(orderedEntry[T]{key: key})
	if !ok {
		return nil, false
	}
	return entry.bitmap, true
}

func (o *orderedIndex[T]) put(key T, pos record.Position) {
	entry, ok := o.tree.Get(orderedEntry[T]{key: key})
	if !ok {
		entry = orderedEntry[T]{key: key, bitmap: roaring.New()}
	}
	entry.bitmap.Add(pos)
	o.tree.ReplaceOrInsert(entry)
}

func (o *orderedIndex[T]) remove(key T, pos record.Position) {
	entry, ok := o.tree.Get(orderedEntry[T]{key: key})
	if !ok {
		return
	}
	entry.bitmap.Remove(pos)
}

// removeItem clears pos from every bitmap regardless of key (§4.5 Removal:
// "it uses remove_item(pos) across all indices").
func (o *orderedIndex[T]) removeItem(pos record.Position) {
	o.tree.Ascend(func(entry orderedEntry[T]) bool {
		entry.bitmap.Remove(pos)
		return true
	})
}

// ascend visits entries in ascending key order until fn returns false.
func (o *orderedIndex[T]) ascend(fn func(key T, bitmap *roaring.Bitmap) bool) {
	o.tree.Ascend(func(entry orderedEntry[T]) bool {
		return fn(entry.key, entry.bitmap)
	})
}

// descend visits entries in descending key order until fn returns false.
func (o *orderedIndex[T]) descend(fn func(key T, bitmap *roaring.Bitmap) bool) {
	o.tree.Descend(func(entry orderedEntry[T]) bool {
		return fn(entry.key, entry.bitmap)
	})
}

// rangeBound describes one side of a Between/GT/GE/LT/LE filter.
type rangeBound[T any] struct {
	value     T
	present   bool
	inclusive bool
}

// filterRange unions the bitmaps of every key within [lower, upper],
// honoring each bound's inclusivity, by a single ascending sweep that stops
// as soon as the upper bound is exceeded.
func (o *orderedIndex[T]) filterRange(lower, upper rangeBound[T]) *roaring.Bitmap {
	result := roaring.New()
	o.ascend(func(key T, bitmap *roaring.Bitmap) bool {
		if lower.present {
			if lower.inclusive && o.less(key, lower.value) {
				return true
			}
			if !lower.inclusive && !o.less(lower.value, key) {
				return true
			}
		}
		if upper.present {
			if upper.inclusive && o.less(upper.value, key) {
				return false
			}
			if !upper.inclusive && !o.less(key, upper.value) {
				return false
			}
		}
		result.Or(bitmap)
		return true
	})
	return result
}

// sort returns every position in set ordered by this index's key, ascending
// or descending; positions absent from every bitmap are appended last, in
// their relative position-ascending order (§4.2).
func (o *orderedIndex[T]) sort(set *roaring.Bitmap, descending bool) []uint32 {
	sorted := make([]uint32, 0, set.GetCardinality())
	found := roaring.New()

	visit := func(_ T, bitmap *roaring.Bitmap) bool {
		round := roaring.And(set, bitmap)
		it := round.Iterator()
		for it.HasNext() {
			sorted = append(sorted, it.Next())
		}
		found.Or(round)
		return true
	}

	if descending {
		o.descend(visit)
	} else {
		o.ascend(visit)
	}

	rest := roaring.AndNot(set, found)
	it := rest.Iterator()
	for it.HasNext() {
		sorted = append(sorted, it.Next())
	}

	return sorted
}

// counts returns the intersection cardinality of set with every non-empty
// key bitmap.
func (o *orderedIndex[T]) counts(set *roaring.Bitmap) map[T]uint64 {
	counts := make(map[T]uint64)
	o.ascend(func(key T, bitmap *roaring.Bitmap) bool {
		if n := bitmap.AndCardinality(set); n > 0 {
			counts[key] = n
		}
		return true
	})
	return counts
}

// valueAt scans for the key whose bitmap contains pos, mirroring the
// original's SortableIndex::get_value linear scan (§9: no reverse index is
// maintained per position).
func (o *orderedIndex[T]) valueAt(pos record.Position) (T, bool) {
	var found T
	ok := false
	o.ascend(func(key T, bitmap *roaring.Bitmap) bool {
		if bitmap.Contains(pos) {
			found = key
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// plus merges other into o key-wise: o[k] |= other[k] for every key in
// other, inserting new keys as needed (§4.4 composition rule).
func (o *orderedIndex[T]) plus(other *orderedIndex[T]) {
	other.ascend(func(key T, bitmap *roaring.Bitmap) bool {
		entry, ok := o.tree.Get(orderedEntry[T]{key: key})
		if ok {
			entry.bitmap.Or(bitmap)
		} else {
			o.tree.ReplaceOrInsert(orderedEntry[T]{key: key, bitmap: bitmap.Clone()})
		}
		return true
	})
}

// minus removes other's positions from o key-wise: o[k] -= other[k] for
// every key present in other.
func (o *orderedIndex[T]) minus(other *orderedIndex[T]) {
	other.ascend(func(key T, bitmap *roaring.Bitmap) bool {
		entry, ok := o.tree.Get(orderedEntry[T]{key: key})
		if ok {
			entry.bitmap.AndNot(bitmap)
		}
		return true
	})
}

// clone deep-copies the ordered index, used when an overlay is built so the
// baseline snapshot handed to the evaluator is never mutated in place.
func (o *orderedIndex[T]) clone() *orderedIndex[T] {
	out := newOrderedIndex[T](o.less)
	o.ascend(func(key T, bitmap *roaring.Bitmap) bool {
		out.tree.ReplaceOrInsert(orderedEntry[T]{key: key, bitmap: bitmap.Clone()})
		return true
	})
	return out
}

func (o *orderedIndex[T]) len() int { return o.tree.Len() }
