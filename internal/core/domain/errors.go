package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Find-or-create callers treat this as "fetch and reuse".
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat indicates a file extension no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrStoreUnavailable indicates the persistence service cannot be reached.
	// This is fatal to a run; per-file failures are not.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrAmbiguousOverride indicates a title matched multiple placement
	// override keys that could not be separated by the tie-break rules.
	// The record is left untouched.
	ErrAmbiguousOverride = errors.New("ambiguous placement override")
)
