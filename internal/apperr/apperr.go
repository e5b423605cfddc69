package apperr

import "errors"

// Error classes shared across the service. Handlers map these to HTTP codes
// at the edge; everything below the handler layer works with errors.Is.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrFailedPrecondition = errors.New("failed precondition")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInternal           = errors.New("internal error")
)
