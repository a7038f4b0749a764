package value

import "errors"

// ErrInvalidInput marks a value rejected at a typed boundary: a NaN decimal
// or an unparsable date (§7 "InvalidInput").
var ErrInvalidInput = errors.New("value: invalid input")
