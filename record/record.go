// Package record defines the stored unit of data (§3 "Record") and the
// id/position isomorphism the rest of the engine relies on.
package record

import (
	"fmt"

	"github.com/aleics/deltasearch/internal/mathutil"
	"github.com/aleics/deltasearch/value"
)

// ID identifies a record for its lifetime.
type ID = uint64

// Position is a record's dense 32-bit index within one entity, used as the
// bitmap element type. Position = ID truncated to 32 bits (§3); callers must
// not depend on the truncation (§9 Design Notes).
type Position = uint32

// Record is an identifiable unit: a 64-bit id plus a field-path to value
// mapping. Field order is not semantically meaningful, and Fields is a
// plain Go map, so its enumeration order is not deterministic — callers
// that need a stable order should sort the map's keys.
type Record struct {
	ID     ID
	Fields map[string]value.Value
}

// New creates a record with the given id and fields. A nil fields map is
// normalized to an empty one.
func New(id ID, fields map[string]value.Value) Record {
	if fields == nil {
		fields = map[string]value.Value{}
	}
	return Record{ID: id, Fields: fields}
}

// Clone returns a deep-enough copy of r suitable for delta application: the
// field map is copied so mutating the copy never mutates the stored record
// (§4.3 "the stored record is never mutated").
func (r Record) Clone() Record {
	fields := make(map[string]value.Value, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{ID: r.ID, Fields: fields}
}

// IDToPosition converts a record id into its dense bitmap position. It
// errors if id does not fit in 32 bits (§3: "ids must fit in 32 bits").
func IDToPosition(id ID) (Position, error) {
	if id > mathutil.MaxUint32 {
		return 0, fmt.Errorf("record: id %d does not fit in 32 bits", id)
	}
	return uint32(id), nil
}

// ToPosition panics instead of erroring; used where the id was already
// validated.
func ToPosition(id ID) Position {
	pos, err := IDToPosition(id)
	if err != nil {
		panic(err)
	}
	return pos
}

// ToID widens a position back into a record id.
func ToID(pos Position) ID {
	return uint64(pos)
}
