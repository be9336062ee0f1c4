package errors

import (
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

var (
	ErrSetupIncomplete  = pkgerrors.NewValidationError("complete setup first")
	ErrAlreadyRunning   = pkgerrors.NewConflictError("ads are already running")
	ErrNotRunning       = pkgerrors.NewNotFoundError("ads are not running")
	ErrLoggerNotStarted = pkgerrors.NewPermissionError("start the logger bot first")
	ErrUnknownCommand   = pkgerrors.NewValidationError("unknown command")
	ErrLeaseLost        = pkgerrors.NewConflictError("worker lease is no longer owned")
	ErrMediaNotFound    = pkgerrors.NewNotFoundError("media file not found")
	ErrMediaUnavailable = pkgerrors.NewServiceUnavailableError("media storage is not configured")
)
