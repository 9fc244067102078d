package spiralmem

import "errors"

// Error kinds returned by Manager operations. Everything crossing the public
// boundary wraps one of these sentinels; callers test with errors.Is.
var (
	// ErrInvalidConfig reports a config vector slot outside its bounds, or
	// a non-positive requested size.
	ErrInvalidConfig = errors.New("invalid config vector")

	// ErrNotFound reports an id with no live pool behind it. Recoverable.
	ErrNotFound = errors.New("pool not found")

	// ErrInternalInconsistency reports a broken registry invariant, such as
	// a counter underflow or a pool tracked without resonance metadata. It
	// is the only kind that aborts an operation hard.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)
