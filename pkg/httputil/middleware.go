package httputil

import (
	"crypto/subtle"
	"strconv"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	// UsersPrefix is the path every per-user route lives under
	UsersPrefix = "/api/v1/users/{user_id}"
	// AdminPrefix holds operator routes acting on one user
	AdminPrefix = "/api/v1/admin/users/{user_id}"
)

const userIDKey = "uid"

// Middleware is a function that wraps a handler
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// UserGroup registers routes scoped to one Telegram user. Every handler
// sees a validated id through UserID.
type UserGroup struct {
	group *router.Group
	wrap  func(fasthttp.RequestHandler) fasthttp.RequestHandler
}

// NewUserGroup mounts a group on UsersPrefix. mws run outermost first,
// the user id check always runs last.
func NewUserGroup(r *router.Router, mws ...Middleware) *UserGroup {
	return newGroup(r, UsersPrefix, mws)
}

// NewAdminGroup mounts a group on AdminPrefix that only serves requests
// carrying "Authorization: Bearer <token>"
func NewAdminGroup(r *router.Router, token string, mws ...Middleware) *UserGroup {
	return newGroup(r, AdminPrefix, append(mws, RequireToken(token)))
}

func newGroup(r *router.Router, prefix string, mws []Middleware) *UserGroup {
	chain := append(append([]Middleware{}, mws...), WithUserID)
	return &UserGroup{
		group: r.Group(prefix),
		wrap: func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
			for i := len(chain) - 1; i >= 0; i-- {
				h = chain[i](h)
			}
			return h
		},
	}
}

func (g *UserGroup) handle(method, path string, h fasthttp.RequestHandler) {
	g.group.Handle(method, path, g.wrap(h))
}

func (g *UserGroup) GET(path string, h fasthttp.RequestHandler) {
	g.handle(fasthttp.MethodGet, path, h)
}

func (g *UserGroup) POST(path string, h fasthttp.RequestHandler) {
	g.handle(fasthttp.MethodPost, path, h)
}

func (g *UserGroup) PUT(path string, h fasthttp.RequestHandler) {
	g.handle(fasthttp.MethodPut, path, h)
}

func (g *UserGroup) DELETE(path string, h fasthttp.RequestHandler) {
	g.handle(fasthttp.MethodDelete, path, h)
}

// UserID returns the user id stored by WithUserID
func UserID(ctx *fasthttp.RequestCtx) int64 {
	id, _ := ctx.UserValue(userIDKey).(int64)
	return id
}

// WithUserID parses the {user_id} path parameter and rejects non positive ids
func WithUserID(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		raw, _ := ctx.UserValue("user_id").(string)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			WriteErrorResponse(ctx, "invalid user id", fasthttp.StatusBadRequest)
			return
		}
		ctx.SetUserValue(userIDKey, id)
		next(ctx)
	}
}

// RequireToken rejects requests without the bearer token. An empty token
// rejects everything.
func RequireToken(token string) Middleware {
	want := []byte("Bearer " + token)
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			got := ctx.Request.Header.Peek(fasthttp.HeaderAuthorization)
			if token == "" || subtle.ConstantTimeCompare(got, want) != 1 {
				WriteErrorResponse(ctx, "unauthorized", fasthttp.StatusUnauthorized)
				return
			}
			next(ctx)
		}
	}
}

// AccessLog logs every request after it was served
func AccessLog(logger zerolog.Logger) Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			logger.Debug().
				Bytes("method", ctx.Method()).
				Bytes("path", ctx.Path()).
				Int("status", ctx.Response.StatusCode()).
				Dur("duration", time.Since(start)).
				Msg("request served")
		}
	}
}
