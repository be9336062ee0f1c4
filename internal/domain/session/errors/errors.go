package errors

import (
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

var (
	ErrSessionNotFound = pkgerrors.NewNotFoundError("session not found")
	ErrHandleNotFound  = pkgerrors.NewUnauthorizedError("login required")
	ErrInvalidUserID   = pkgerrors.NewValidationError("invalid user id")
	ErrConfigLocked    = pkgerrors.NewConflictError("configuration is locked while ads are running")
	ErrHandleCorrupted = pkgerrors.NewInternalError("stored session handle cannot be opened")
	ErrPremiumRequired = pkgerrors.NewPermissionError("premium required")
)
