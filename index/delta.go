package index

import (
	roaring "github.com/RoaringBitmap/roaring/v2"

	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// Delta is one field's overlay: Before holds the values positions held
// prior to the change, After holds the values they hold afterwards, and
// Affected is the set of positions the delta actually touches. Applying a
// Delta to a base index is B' = (B minus Before) plus After (§4.4).
//
// Composition assumes Before/After across a batch of deltas never touch
// the same position twice (each position is claimed by exactly one delta
// in the batch); this holds for both inline query-scoped deltas and a
// batch of persisted deltas pulled from one scope's log, since a position
// can only be reassigned by superseding the delta that last touched it,
// not by stacking two independent ones. Under that assumption the fold
// below is associative and commutative across deltas in the batch.
type Delta struct {
	Before   Index
	After    Index
	Affected *roaring.Bitmap
}

// NewDelta allocates an empty delta over a field described by d.
func NewDelta(d Descriptor) Delta {
	return Delta{Before: New(d), After: New(d), Affected: roaring.New()}
}

// Fold combines a timestamp-ordered batch of deltas for one field into a
// single delta: ΣBefore and ΣAfter are the union, key-wise, of every
// delta's Before/After, and Affected is the union of every delta's
// touched positions.
func Fold(d Descriptor, deltas []Delta) (Delta, error) {
	combined := NewDelta(d)
	for _, delta := range deltas {
		if err := combined.Before.Plus(delta.Before); err != nil {
			return Delta{}, err
		}
		if err := combined.After.Plus(delta.After); err != nil {
			return Delta{}, err
		}
		combined.Affected.Or(delta.Affected)
	}
	return combined, nil
}

// Apply returns a new index equal to base with delta composed onto it,
// leaving base untouched.
func Apply(base Index, delta Delta) (Index, error) {
	result := base.Clone()
	if err := result.Minus(delta.Before); err != nil {
		return nil, err
	}
	if err := result.Plus(delta.After); err != nil {
		return nil, err
	}
	return result, nil
}

// Record extends delta with one field change at pos: it moves from
// previous (if any) to next. A nil previous or next means the field had
// no value on that side of the change.
func (d *Delta) Record(pos record.Position, previous, next *value.Value) error {
	if previous != nil {
		if err := d.Before.Put(*previous, pos); err != nil {
			return err
		}
	}
	if next != nil {
		if err := d.After.Put(*next, pos); err != nil {
			return err
		}
	}
	d.Affected.Add(pos)
	return nil
}
