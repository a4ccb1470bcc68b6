package proposal

import "errors"

// Sentinel errors for lifecycle operations. Callers match with errors.Is; the
// CLI maps NotFound and AlreadyDecided to exit code 1.
var (
	// ErrNotFound means the referenced proposal directory does not exist.
	ErrNotFound = errors.New("proposal not found")

	// ErrAlreadyDecided means a terminal decision record already exists and
	// the requested transition would be a second one.
	ErrAlreadyDecided = errors.New("proposal already decided")

	// ErrMalformedRecord means a proposal or synthesis file exists but cannot
	// be parsed. Fatal for approve/reject (the denormalized snapshot cannot
	// be built); listing silently skips such directories instead.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrStorageUnavailable means the proposals root itself cannot be read
	// or written.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
