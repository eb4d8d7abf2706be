package imageref

import "errors"

var (
	// ErrNoImage means no candidate location produced a decodable image.
	// Callers treat it as a terminal signal, not a fault.
	ErrNoImage = errors.New("image reference could not be resolved")
	// ErrFetchFailed wraps transport errors and non-success statuses of remote fetches.
	ErrFetchFailed = errors.New("remote image fetch failed")
)
