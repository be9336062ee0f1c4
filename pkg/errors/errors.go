package errors

import (
	"fmt"
	"math"
	"time"

	"github.com/valyala/fasthttp"
)

// baseError is a client-facing message with the status it is served with
type baseError struct {
	message string
	status  int
}

func (e *baseError) Error() string {
	return e.message
}

// HTTPStatus implements StatusCoder
func (e *baseError) HTTPStatus() int {
	return e.status
}

// ValidationError is a rejected request (HTTP 400)
type ValidationError struct {
	baseError
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError{message: message, status: fasthttp.StatusBadRequest}}
}

// UnauthorizedError means the user has no usable Telegram session (HTTP 401)
type UnauthorizedError struct {
	baseError
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{baseError{message: message, status: fasthttp.StatusUnauthorized}}
}

// PermissionError represents a permission error (HTTP 403)
type PermissionError struct {
	baseError
}

func NewPermissionError(message string) *PermissionError {
	return &PermissionError{baseError{message: message, status: fasthttp.StatusForbidden}}
}

// NotFoundError represents a not found error (HTTP 404)
type NotFoundError struct {
	baseError
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{baseError{message: message, status: fasthttp.StatusNotFound}}
}

// ConflictError is returned while a running campaign owns the state (HTTP 409)
type ConflictError struct {
	baseError
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{baseError{message: message, status: fasthttp.StatusConflict}}
}

// RateLimitError asks the caller to come back after RetryAfter (HTTP 429)
type RateLimitError struct {
	baseError
	RetryAfter time.Duration
}

// NewRateLimitError builds a rate limit error with the wait rounded up to whole seconds
func NewRateLimitError(retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		baseError: baseError{
			message: fmt.Sprintf("too many requests, retry in %ds", RetryAfterSeconds(retryAfter)),
			status:  fasthttp.StatusTooManyRequests,
		},
		RetryAfter: retryAfter,
	}
}

// RetryAfterSeconds rounds a wait up to the whole seconds sent in Retry-After
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}

// InternalError represents an internal server error (HTTP 500)
type InternalError struct {
	baseError
}

func NewInternalError(message string) *InternalError {
	return &InternalError{baseError{message: message, status: fasthttp.StatusInternalServerError}}
}

// ServiceUnavailableError means Telegram or a backing store could not serve the request (HTTP 503)
type ServiceUnavailableError struct {
	baseError
}

func NewServiceUnavailableError(message string) *ServiceUnavailableError {
	return &ServiceUnavailableError{baseError{message: message, status: fasthttp.StatusServiceUnavailable}}
}
