package query

import (
	"github.com/aleics/deltasearch/record"
	"github.com/aleics/deltasearch/value"
)

// DeltaScope selects which persisted deltas a scoped read composes onto
// the baseline: deltas in branch A are never visible to a read scoped to
// branch B, and Date selects which timestamps within that branch are in
// range (§ Delta scope). Every scope carries a branch: NewDeltaScope starts
// it at 0 and WithBranch replaces it, and engine.StoreDeltas maps a nil
// branch to 0.
type DeltaScope struct {
	Branch uint64
	Date   string
}

// NewDeltaScope builds a scope for date on the default branch (0).
func NewDeltaScope(date string) DeltaScope { return DeltaScope{Date: date} }

// WithBranch returns s with its branch replaced.
func (s DeltaScope) WithBranch(branch uint64) DeltaScope {
	s.Branch = branch
	return s
}

// DeltaChange is one inline, ephemeral field change: it is attached to a
// single QueryExecution/OptionsQueryExecution, composed onto the snapshot
// read from storage, and discarded once the query finishes — it is never
// written to the delta log (§ "inline deltas").
type DeltaChange struct {
	ID     record.ID
	Field  string
	Before *value.Value
	After  *value.Value
}

// NewDeltaChange builds a change for id/field with neither side set.
func NewDeltaChange(id record.ID, field string) DeltaChange {
	return DeltaChange{ID: id, Field: field}
}

// WithBefore records the value the field held prior to the change.
func (c DeltaChange) WithBefore(v value.Value) DeltaChange {
	c.Before = &v
	return c
}

// WithAfter records the value the field holds after the change.
func (c DeltaChange) WithAfter(v value.Value) DeltaChange {
	c.After = &v
	return c
}
