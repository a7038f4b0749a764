package index

import (
	"errors"
	"fmt"
)

// ErrIncompatibleIndex is returned by Plus/Minus when the two operands are
// not the same concrete variant. Composing overlays of mismatched shape is
// a programmer-contract violation in practice (it only happens if a
// descriptor changed between delta persistence and delta application), but
// since Plus/Minus sit on the query-serving path we still return it rather
// than panicking, so a corrupted delta log degrades a single query instead
// of a whole process.
var ErrIncompatibleIndex = errors.New("index: incompatible index variant")

func errIncompatible(a, b Index) error {
	return fmt.Errorf("%w: %s vs %s", ErrIncompatibleIndex, a.Descriptor().Kind, b.Descriptor().Kind)
}

// errUnknownVariant guards Encode/Decode's type switches against a
// descriptor kind with no matching concrete Index implementation.
var errUnknownVariant = errors.New("index: unknown index variant")

// ErrUnknownEnumValue is returned by an enum index's Put/Remove when the
// value is not one of the index's declared labels. Filter treats the same
// condition as the empty set instead of an error (§4.2).
var ErrUnknownEnumValue = errors.New("index: value is not a declared enum label")

func errUnknownEnumValue(label string) error {
	return fmt.Errorf("%w: %q", ErrUnknownEnumValue, label)
}
