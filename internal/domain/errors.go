package domain

import "errors"

// Request-outcome sentinels. Services return these (wrapped with context) and
// the web layer maps them to HTTP statuses with errors.Is.
var (
	// ErrUnauthorized means no valid principal accompanied the request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the principal is authenticated but is not a member
	// of the target group.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced user, group, or photo does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means the request was malformed and was rejected
	// before any storage or membership I/O.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict means a uniqueness constraint (username, email) was violated.
	ErrConflict = errors.New("already exists")
)
