package errors

import (
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

var (
	ErrSessionNotFound     = pkgerrors.NewNotFoundError("qr auth session not found")
	ErrSessionExpired      = pkgerrors.NewNotFoundError("qr auth session expired")
	ErrPasswordRequired    = pkgerrors.NewValidationError("2fa password required")
	ErrInvalidPassword     = pkgerrors.NewUnauthorizedError("invalid 2fa password")
	ErrInvalidCredentials  = pkgerrors.NewValidationError("api id and api hash are required")
	ErrInvalidSessionState = pkgerrors.NewConflictError("invalid session state for this operation")
	ErrMaxSessionsReached  = pkgerrors.NewServiceUnavailableError("maximum concurrent auth sessions reached")
	ErrQRGenerationFailed  = pkgerrors.NewInternalError("failed to generate qr code")
)
