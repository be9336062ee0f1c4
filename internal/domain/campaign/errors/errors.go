package errors

import (
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

var (
	ErrEmptyMessage       = pkgerrors.NewValidationError("send a text or a media")
	ErrInvalidMediaKind   = pkgerrors.NewValidationError("media kind must be photo, video, animation or document")
	ErrInvalidPostLink    = pkgerrors.NewValidationError("invalid link, send a link like https://t.me/username/123 or https://t.me/c/123456/789")
	ErrEmptyFallback      = pkgerrors.NewValidationError("send a text message for the fallback")
	ErrRoundDelayTooShort = pkgerrors.NewValidationError("round delay is below the minimum")
	ErrSendGapOutOfRange  = pkgerrors.NewValidationError("send gap is out of range")
	ErrNoSavedMessage     = pkgerrors.NewNotFoundError("no message found in your saved messages")
)
