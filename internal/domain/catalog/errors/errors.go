package errors

import (
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

var (
	ErrCatalogUnavailable  = pkgerrors.NewServiceUnavailableError("could not load your chats, try again later")
	ErrDestinationNotFound = pkgerrors.NewNotFoundError("destination not found")
	ErrInvalidKind         = pkgerrors.NewValidationError("kind must be group, topic or all")
	ErrEmptySelection      = pkgerrors.NewValidationError("select at least one destination")
	ErrInvalidPage         = pkgerrors.NewValidationError("page must not be negative")
)

var (
	ErrNoJoinTargets  = pkgerrors.NewValidationError("paste at least one invite link or username")
	ErrTooManyTargets = pkgerrors.NewValidationError("too many targets in one request")
)
