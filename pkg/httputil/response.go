package httputil

import (
	"encoding/json"
	"strconv"

	"github.com/valyala/fasthttp"

	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// Response is the envelope of every API reply
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// WriteResponse writes a successful JSON response
func WriteResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	writeJSON(ctx, Response{Success: true, Data: data}, fasthttp.StatusOK)
}

// WriteErrorResponse writes an error JSON response
func WriteErrorResponse(ctx *fasthttp.RequestCtx, message string, status int) {
	writeJSON(ctx, Response{Success: false, Error: message}, status)
}

// WriteError maps err through mapper and writes it. Rate limited errors
// also carry a Retry-After header in whole seconds.
func WriteError(ctx *fasthttp.RequestCtx, mapper *pkgerrors.Mapper, err error) {
	status, message := mapper.MapErrorToHTTP(err)
	if wait, ok := pkgerrors.RetryAfter(err); ok {
		ctx.Response.Header.Set(fasthttp.HeaderRetryAfter, strconv.Itoa(pkgerrors.RetryAfterSeconds(wait)))
	}
	WriteErrorResponse(ctx, message, status)
}

// writeJSON writes JSON response to context
func writeJSON(ctx *fasthttp.RequestCtx, data interface{}, status int) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)

	body, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBody([]byte(`{"success":false,"error":"failed to marshal response"}`))
		return
	}

	ctx.SetBody(body)
}

// WriteHealthResponse writes a health check response
func WriteHealthResponse(ctx *fasthttp.RequestCtx, data interface{}, healthy bool) {
	status := fasthttp.StatusOK
	if !healthy {
		status = fasthttp.StatusServiceUnavailable
	}
	writeJSON(ctx, data, status)
}
