package errors

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// StatusCoder is a client-facing error that knows its HTTP status
type StatusCoder interface {
	error
	HTTPStatus() int
}

// Publisher is implemented by lower-layer errors, such as remote client
// failures, that translate into a client-facing typed error
type Publisher interface {
	Public() error
}

// Mapper maps domain errors to HTTP status codes
type Mapper struct {
	logger zerolog.Logger
}

// NewMapper creates a new error mapper
func NewMapper(logger zerolog.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// MapErrorToHTTP maps an error to HTTP status code and message.
// The message is the typed error's own text, never the wrapping context.
func (m *Mapper) MapErrorToHTTP(err error) (int, string) {
	if err == nil {
		return fasthttp.StatusOK, ""
	}

	coder, ok := resolve(err)
	if !ok {
		m.logger.Error().Err(err).Msg("unknown error")
		return fasthttp.StatusInternalServerError, "internal server error"
	}

	status := coder.HTTPStatus()
	switch {
	case status == fasthttp.StatusInternalServerError:
		m.logger.Error().Err(err).Msg("internal server error")
	case status > fasthttp.StatusInternalServerError:
		m.logger.Warn().Err(err).Int("status", status).Msg("upstream error")
	}
	return status, coder.Error()
}

// RetryAfter returns the wait of a rate limited error
func RetryAfter(err error) (time.Duration, bool) {
	coder, ok := resolve(err)
	if !ok {
		return 0, false
	}
	var rl *RateLimitError
	if errors.As(coder, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

// IsClientError reports whether err maps to a 4xx status, meaning a
// retry of the same request cannot succeed by itself
func IsClientError(err error) bool {
	coder, ok := resolve(err)
	if !ok {
		return false
	}
	status := coder.HTTPStatus()
	return status >= fasthttp.StatusBadRequest && status < fasthttp.StatusInternalServerError
}

// resolve finds the typed error deciding the response. A typed error in
// the chain wins over the public form of a wrapped lower-layer error.
func resolve(err error) (StatusCoder, bool) {
	var coder StatusCoder
	if errors.As(err, &coder) {
		return coder, true
	}

	var pub Publisher
	if errors.As(err, &pub) {
		if errors.As(pub.Public(), &coder) {
			return coder, true
		}
	}
	return nil, false
}
