package engine

import "errors"

// ErrEntityNotFound is returned when an operation names an entity the
// engine has not created or discovered.
var ErrEntityNotFound = errors.New("engine: entity not found")

// ErrEntityExists is returned by CreateEntity for an already-known name.
var ErrEntityExists = errors.New("engine: entity already exists")
