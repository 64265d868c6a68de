package service

import "errors"

// Error kinds the handler layer maps to HTTP statuses. Services wrap these
// with fmt.Errorf("%w: ...") so the detail survives for logging while
// errors.Is still classifies.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrStorage      = errors.New("storage error")
)
