package errors

import (
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

var (
	ErrAttemptNotFound   = pkgerrors.NewNotFoundError("no login in progress")
	ErrAttemptExpired    = pkgerrors.NewNotFoundError("login attempt expired")
	ErrTooManyAttempts   = pkgerrors.NewServiceUnavailableError("too many logins in progress")
	ErrUnknownKey        = pkgerrors.NewValidationError("unknown keypad key")
	ErrClientUnavailable = pkgerrors.NewInternalError("login client is not available")
)
