package interfaces

import "errors"

var (
	// ErrNotFound is returned when no document matches the tenant-scoped lookup.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned by compare-and-set writes when the stored
	// version moved since the caller read it.
	ErrVersionConflict = errors.New("version conflict")
	// ErrQuotaExceeded is returned by counter increments that would pass the
	// plan ceiling. The counter is left untouched.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrWriteConflict is returned when a concurrent transaction created the
	// same document first. The whole transaction may be retried.
	ErrWriteConflict = errors.New("write conflict")
)
