package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored rows, not validation failures:
// - ErrNotFound: row does not exist in the store
// - ErrDuplicateKey: insert violated a natural-key unique constraint
// - ErrConflict: insert lost a race on a cross-row constraint (e.g. the
//   partial unique index guarding one pending revision per entity)
// - ErrInvalidState: row is in the wrong state for the requested mutation
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
