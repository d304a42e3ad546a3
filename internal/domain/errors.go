package domain

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrNoQuotes    = errors.New("no quotes available")
	ErrValidation  = errors.New("validation failed")
	ErrUnavailable = errors.New("collaborator unavailable")
	ErrLockHeld    = errors.New("lock already held")
	ErrDisabled    = errors.New("execution disabled")
)
