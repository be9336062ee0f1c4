package httputil

import (
	"encoding/json"

	"github.com/valyala/fasthttp"

	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// ErrInvalidBody is returned for malformed JSON request bodies
var ErrInvalidBody = pkgerrors.NewValidationError("invalid request body")

// DecodeJSON decodes the request body into v. An empty body leaves v untouched.
func DecodeJSON(ctx *fasthttp.RequestCtx, v any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return ErrInvalidBody
	}
	return nil
}

// QueryInt returns the integer query argument or def when missing or invalid
func QueryInt(ctx *fasthttp.RequestCtx, name string, def int) int {
	v, err := ctx.QueryArgs().GetUint(name)
	if err != nil {
		return def
	}
	return v
}
