package index

import (
	"errors"
	"fmt"

	"github.com/aleics/deltasearch/value"
)

// Operator names one of the filter operations a field's index may be asked
// to evaluate (§5.1).
type Operator int

const (
	OpEqual Operator = iota
	OpGreaterThan
	OpGreaterOrEqual
	OpLessThan
	OpLessOrEqual
	OpBetween
)

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpGreaterThan:
		return "gt"
	case OpGreaterOrEqual:
		return "ge"
	case OpLessThan:
		return "lt"
	case OpLessOrEqual:
		return "le"
	case OpBetween:
		return "between"
	default:
		return "unknown"
	}
}

// Operation is one leaf filter test against a single field's index. Value
// holds the operand for every operator except Between, which uses Lower
// and Upper instead.
type Operation struct {
	Operator Operator
	Value    value.Value
	Lower    value.Value
	Upper    value.Value
}

// Equal builds an equality test.
func Equal(v value.Value) Operation { return Operation{Operator: OpEqual, Value: v} }

// GreaterThan builds a strict lower-bound test.
func GreaterThan(v value.Value) Operation { return Operation{Operator: OpGreaterThan, Value: v} }

// GreaterOrEqual builds an inclusive lower-bound test.
func GreaterOrEqual(v value.Value) Operation {
	return Operation{Operator: OpGreaterOrEqual, Value: v}
}

// LessThan builds a strict upper-bound test.
func LessThan(v value.Value) Operation { return Operation{Operator: OpLessThan, Value: v} }

// LessOrEqual builds an inclusive upper-bound test.
func LessOrEqual(v value.Value) Operation { return Operation{Operator: OpLessOrEqual, Value: v} }

// Between builds an inclusive range test.
func Between(lower, upper value.Value) Operation {
	return Operation{Operator: OpBetween, Lower: lower, Upper: upper}
}

// ErrUnsupportedOperation is returned when a field's index variant cannot
// evaluate the requested operator (e.g. a range test against a String or
// Bool index). This is a query-evaluator error, not a programmer-contract
// violation, so it is returned rather than panicked (§5.3).
var ErrUnsupportedOperation = errors.New("index: unsupported operation")

func unsupportedOperation(kind Kind, op Operator) error {
	return fmt.Errorf("%w: %s index does not support %s", ErrUnsupportedOperation, kind, op)
}

// wrongKind panics: extracting a value of the wrong Kind out of an
// Operation is a programmer-contract violation (the caller built an
// Operation against the wrong field), not a recoverable query error.
func wrongKind(indexKind Kind, v value.Value) {
	panic(fmt.Sprintf("index: %s index cannot accept a %s value", indexKind, v.Kind()))
}
