package storage

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ErrNoName is returned by Open when called with an empty entity name.
var ErrNoName = errors.New("storage: no entity name configured")

// ErrEntityExists names an entity-name conflict. No function in this
// package returns it: Open reopens an existing environment rather than
// rejecting it.
var ErrEntityExists = errors.New("storage: entity already exists")

// StorageFailure wraps a transaction or codec failure with a stack trace
// via github.com/pkg/errors, so a failing Update/View call or record codec
// round-trip can be diagnosed without losing its errors.Is identity
// against the sentinel it wraps.
type StorageFailure struct {
	op  string
	err error
}

func (f *StorageFailure) Error() string { return fmt.Sprintf("storage: %s: %v", f.op, f.err) }

func (f *StorageFailure) Unwrap() error { return f.err }

func failure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageFailure{op: op, err: pkgerrors.WithStack(err)}
}

// errUnknownDeltaField is returned when a delta targets a field with no
// created index, since a StoredDelta needs the field's descriptor to
// allocate its before/after indices.
func errUnknownDeltaField(field string) error {
	return fmt.Errorf("storage: %q has no created index, cannot store a delta for it", field)
}
