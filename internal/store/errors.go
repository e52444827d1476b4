package store

import "errors"

// Sentinel errors the repositories translate driver failures into. Callers
// branch on these with errors.Is rather than inspecting Postgres codes.
var (
	// ErrConflict reports a write that would double-book a physician's time.
	ErrConflict = errors.New("schedule conflict")

	// ErrNotFound reports an appointment id with no stored record.
	ErrNotFound = errors.New("appointment not found")

	// ErrIdempotencyConflict reports a keyed retry whose booking details
	// differ from the record already stored under that key.
	ErrIdempotencyConflict = errors.New("idempotency key reused with different booking")
)
