package types

import "errors"

// Error kinds. Every error returned by this module wraps exactly one of
// these sentinels; callers discriminate with errors.Is.
var (
	// ErrConfig marks configuration mistakes caught before any connection
	// attempt: a missing database URI or a URI without the safety marker.
	ErrConfig = errors.New("configuration error")

	// ErrConnection marks a malformed or unreachable database. Connection
	// failures are fatal to the run and are never retried.
	ErrConnection = errors.New("connection error")

	// ErrValidation marks bad row-level input: an unknown table, an unknown
	// column, or an incomplete primary key. The session stays usable.
	ErrValidation = errors.New("validation error")
)
