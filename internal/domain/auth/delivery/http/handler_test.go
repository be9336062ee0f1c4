package http

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/Aztech-1729/sliptads/internal/domain/auth/entities"
	autherrors "github.com/Aztech-1729/sliptads/internal/domain/auth/errors"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

type mockService struct {
	lastUser int64
	lastText string
}

func (m *mockService) attempt(userID int64) *entities.LoginAttempt {
	m.lastUser = userID
	return &entities.LoginAttempt{
		UserID:    userID,
		State:     entities.StateAwaitCode,
		Phone:     "+15551234567",
		Code:      "12",
		Notice:    entities.NoticeCodeSent,
		Wait:      30 * time.Second,
		ExpiresAt: time.Now().Add(time.Minute),
	}
}

func (m *mockService) Start(_ context.Context, userID int64) (*entities.LoginAttempt, error) {
	return m.attempt(userID), nil
}

func (m *mockService) Input(_ context.Context, userID int64, text string) (*entities.LoginAttempt, error) {
	m.lastText = text
	return m.attempt(userID), nil
}

func (m *mockService) Key(_ context.Context, userID int64, key string) (*entities.LoginAttempt, error) {
	if key == "#" {
		return nil, autherrors.ErrUnknownKey
	}
	return m.attempt(userID), nil
}

func (m *mockService) Password(_ context.Context, userID int64, password string) (*entities.LoginAttempt, error) {
	return nil, autherrors.ErrAttemptNotFound
}

func (m *mockService) Cancel(_ context.Context, userID int64) (*entities.LoginAttempt, error) {
	return &entities.LoginAttempt{UserID: userID, State: entities.StateNone, Notice: entities.NoticeCancelled}, nil
}

func (m *mockService) Status(_ context.Context, userID int64) (*entities.LoginAttempt, error) {
	return m.attempt(userID), nil
}

func newTestRouter(svc *mockService) *router.Router {
	r := router.New()
	users := httputil.NewUserGroup(r)
	handler := NewAuthHandler(svc, pkgerrors.NewMapper(zerolog.Nop()), zerolog.Nop())
	NewRouter(handler, zerolog.Nop()).RegisterRoutes(users)
	return r
}

func do(r *router.Router, method, uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	ctx.Request.SetBodyString(body)
	r.Handler(ctx)
	return ctx
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		State       string `json:"state"`
		Phone       string `json:"phone"`
		CodeLength  int    `json:"code_length"`
		Notice      string `json:"notice"`
		WaitSeconds int    `json:"wait_seconds"`
	} `json:"data"`
}

// TestAuthHandler_Status tests that the view masks the phone and hides the code
func TestAuthHandler_Status(t *testing.T) {
	svc := &mockService{}
	r := newTestRouter(svc)

	ctx := do(r, "GET", "/api/v1/users/42/auth", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Equal(t, int64(42), svc.lastUser)

	var resp envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "await_code", resp.Data.State)
	require.Equal(t, "+15*******67", resp.Data.Phone)
	require.Equal(t, 2, resp.Data.CodeLength)
	require.Equal(t, 30, resp.Data.WaitSeconds)
	require.NotContains(t, string(ctx.Response.Body()), "12345")
}

// TestAuthHandler_Input tests the text answer endpoint
func TestAuthHandler_Input(t *testing.T) {
	svc := &mockService{}
	r := newTestRouter(svc)

	ctx := do(r, "POST", "/api/v1/users/1/auth/input", `{"text":"12345"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Equal(t, "12345", svc.lastText)

	ctx = do(r, "POST", "/api/v1/users/1/auth/input", `not json`)
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

// TestAuthHandler_Errors tests error mapping
func TestAuthHandler_Errors(t *testing.T) {
	r := newTestRouter(&mockService{})

	ctx := do(r, "POST", "/api/v1/users/1/auth/key", `{"key":"#"}`)
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = do(r, "POST", "/api/v1/users/1/auth/password", `{"password":"x"}`)
	require.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = do(r, "POST", "/api/v1/users/abc/auth/start", "")
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

// TestAuthHandler_Cancel tests cancel returns the NONE view
func TestAuthHandler_Cancel(t *testing.T) {
	r := newTestRouter(&mockService{})

	ctx := do(r, "DELETE", "/api/v1/users/1/auth", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.Equal(t, "none", resp.Data.State)
	require.Equal(t, string(entities.NoticeCancelled), resp.Data.Notice)
}
