package board

import (
	"errors"

	"bbs/pkg/pool"
	"bbs/pkg/store"
)

// Operation failures are sentinel errors so callers can assert on the kind
// with errors.Is without depending on message text.
var (
	// ErrInvalidArgument covers empty subject/body and an over-long
	// subject. Detected before any write; no partial state results.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCapacityExceeded means the live message count is at the limit.
	// Detected before ID acquisition; no partial state results.
	ErrCapacityExceeded = errors.New("message capacity exceeded")

	// ErrNotFound is a view or delete referencing an ID with no live record.
	ErrNotFound = store.ErrNotFound

	// ErrPoolExhausted should be unreachable: the capacity check runs
	// first. If it surfaces, the live counter and the pool have diverged.
	ErrPoolExhausted = pool.ErrExhausted
)
