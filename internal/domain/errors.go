package domain

import (
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

var (
	// ErrNotConnected is returned when operation requires connection
	ErrNotConnected = errors.New("not connected to Telegram")

	// ErrConnectionFailed is returned when connection to Telegram fails
	ErrConnectionFailed = errors.New("connection failed")

	// ErrLoginRequired is returned when the user has no usable durable session
	ErrLoginRequired = pkgerrors.NewUnauthorizedError("login required")

	// ErrNotAuthorized is returned when the client session is not signed in
	ErrNotAuthorized = errors.New("not authorized")

	// ErrMessageNotFound is returned when a referenced message does not exist
	ErrMessageNotFound = errors.New("message not found")

	// ErrUnsupportedPeer is returned when a display id cannot be turned into a sendable peer
	ErrUnsupportedPeer = errors.New("unsupported peer")

	errTelegramUnavailable = pkgerrors.NewServiceUnavailableError("telegram request failed, try again later")
)

// ErrorKind is the closed classification of remote client failures.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindForwardRestricted
	KindForbidden
	KindInvalidMessage
	KindRateLimited
	KindPasswordNeeded
	KindInvalidCode
	KindExpiredCode
	KindInvalidPassword
	KindUnauthorized
	KindInvalidTarget
)

var kindNames = map[ErrorKind]string{
	KindOther:             "other",
	KindForwardRestricted: "forward_restricted",
	KindForbidden:         "forbidden",
	KindInvalidMessage:    "invalid_message",
	KindRateLimited:       "rate_limited",
	KindPasswordNeeded:    "password_needed",
	KindInvalidCode:       "invalid_code",
	KindExpiredCode:       "expired_code",
	KindInvalidPassword:   "invalid_password",
	KindUnauthorized:      "unauthorized",
	KindInvalidTarget:     "invalid_target",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// RemoteError is returned by RemoteClient implementations for every
// failure that reached the remote side.
type RemoteError struct {
	Kind   ErrorKind
	Wait   time.Duration // set for KindRateLimited
	Detail string
	Err    error
}

// NewRemoteError wraps err with a kind.
func NewRemoteError(kind ErrorKind, err error) *RemoteError {
	re := &RemoteError{Kind: kind, Err: err}
	if err != nil {
		re.Detail = err.Error()
	}
	return re
}

// NewRateLimitError builds a rate limit error carrying the wait duration.
func NewRateLimitError(wait time.Duration, err error) *RemoteError {
	re := NewRemoteError(KindRateLimited, err)
	re.Wait = wait
	return re
}

func (e *RemoteError) Error() string {
	if e.Kind == KindRateLimited {
		return fmt.Sprintf("%s: wait %s", e.Kind, e.Wait)
	}
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Public translates the failure into the typed error served by the API
func (e *RemoteError) Public() error {
	switch e.Kind {
	case KindRateLimited:
		return pkgerrors.NewRateLimitError(e.Wait)
	case KindUnauthorized, KindPasswordNeeded:
		return ErrLoginRequired
	case KindForbidden, KindForwardRestricted:
		return pkgerrors.NewPermissionError("telegram refused the request: " + e.Kind.String())
	case KindInvalidMessage:
		return pkgerrors.NewValidationError("message not found or empty")
	case KindInvalidTarget:
		return pkgerrors.NewValidationError("invite link or username does not exist")
	case KindInvalidCode, KindExpiredCode, KindInvalidPassword:
		return pkgerrors.NewValidationError(e.Kind.String())
	}
	return errTelegramUnavailable
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind, KindOther for unclassified errors.
func KindOf(err error) ErrorKind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	if errors.Is(err, ErrNotAuthorized) || errors.Is(err, ErrLoginRequired) {
		return KindUnauthorized
	}
	return KindOther
}

// WaitOf returns the wait duration of a rate limit error.
func WaitOf(err error) (time.Duration, bool) {
	var re *RemoteError
	if errors.As(err, &re) && re.Kind == KindRateLimited {
		return re.Wait, true
	}
	return 0, false
}

var _ pkgerrors.Publisher = (*RemoteError)(nil)
