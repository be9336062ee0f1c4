package http

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/fasthttp/router"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	adserrors "github.com/Aztech-1729/sliptads/internal/domain/ads/errors"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

type mockService struct {
	running  bool
	ready    bool
	lastUser int64
	startErr error
}

func (m *mockService) Start(_ context.Context, userID int64) (*entities.Status, error) {
	m.lastUser = userID
	if m.startErr != nil {
		return nil, m.startErr
	}
	if !m.ready {
		return nil, fmt.Errorf("%w: missing destinations", adserrors.ErrSetupIncomplete)
	}
	if m.running {
		return nil, adserrors.ErrAlreadyRunning
	}
	m.running = true
	return &entities.Status{Running: true, Total: 3}, nil
}

func (m *mockService) Stop(context.Context, int64) (*entities.Status, error) {
	if !m.running {
		return nil, adserrors.ErrNotRunning
	}
	m.running = false
	return &entities.Status{SentTotal: 7}, nil
}

func (m *mockService) Status(context.Context, int64) (*entities.Status, error) {
	return &entities.Status{Running: m.running}, nil
}

func newTestRouter(svc *mockService) *router.Router {
	r := router.New()
	users := httputil.NewUserGroup(r)
	handler := NewAdsHandler(svc, pkgerrors.NewMapper(zerolog.Nop()), zerolog.Nop())
	NewRouter(handler, zerolog.Nop()).RegisterRoutes(users)
	return r
}

func do(r *router.Router, method, uri string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	r.Handler(ctx)
	return ctx
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Running   bool  `json:"running"`
		Total     int   `json:"total"`
		SentTotal int64 `json:"sent_total"`
	} `json:"data"`
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx) envelope {
	t.Helper()
	var resp envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	return resp
}

// TestAdsHandler_StartStop tests the worker lifecycle endpoints
func TestAdsHandler_StartStop(t *testing.T) {
	svc := &mockService{ready: true}
	r := newTestRouter(svc)

	ctx := do(r, "POST", "/api/v1/users/5/ads/start")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	resp := decode(t, ctx)
	require.True(t, resp.Success)
	require.True(t, resp.Data.Running)
	require.Equal(t, 3, resp.Data.Total)
	require.Equal(t, int64(5), svc.lastUser)

	ctx = do(r, "POST", "/api/v1/users/5/ads/start")
	require.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())

	ctx = do(r, "GET", "/api/v1/users/5/ads")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.True(t, decode(t, ctx).Data.Running)

	ctx = do(r, "POST", "/api/v1/users/5/ads/stop")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Equal(t, int64(7), decode(t, ctx).Data.SentTotal)

	ctx = do(r, "POST", "/api/v1/users/5/ads/stop")
	require.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

// TestAdsHandler_SetupIncomplete tests the incomplete configuration message
func TestAdsHandler_SetupIncomplete(t *testing.T) {
	r := newTestRouter(&mockService{})

	ctx := do(r, "POST", "/api/v1/users/5/ads/start")
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	resp := decode(t, ctx)
	require.False(t, resp.Success)
	require.Equal(t, "complete setup first", resp.Error)
}

// TestAdsHandler_InvalidUser tests user id validation
func TestAdsHandler_InvalidUser(t *testing.T) {
	r := newTestRouter(&mockService{ready: true})

	ctx := do(r, "POST", "/api/v1/users/abc/ads/start")
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

// TestAdsHandler_RemoteErrors tests how Telegram failures reach the caller
func TestAdsHandler_RemoteErrors(t *testing.T) {
	svc := &mockService{ready: true}
	r := newTestRouter(svc)

	svc.startErr = fmt.Errorf("connect user 5: %w", domain.NewRateLimitError(90*time.Second, fmt.Errorf("FLOOD_WAIT_90")))
	ctx := do(r, "POST", "/api/v1/users/5/ads/start")
	require.Equal(t, fasthttp.StatusTooManyRequests, ctx.Response.StatusCode())
	require.Equal(t, "90", string(ctx.Response.Header.Peek(fasthttp.HeaderRetryAfter)))
	require.Equal(t, "too many requests, retry in 90s", decode(t, ctx).Error)

	svc.startErr = domain.NewRemoteError(domain.KindUnauthorized, fmt.Errorf("AUTH_KEY_UNREGISTERED"))
	ctx = do(r, "POST", "/api/v1/users/5/ads/start")
	require.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	require.Equal(t, "login required", decode(t, ctx).Error)

	svc.startErr = domain.NewRemoteError(domain.KindOther, fmt.Errorf("dc 4 timeout"))
	ctx = do(r, "POST", "/api/v1/users/5/ads/start")
	require.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
	require.Empty(t, ctx.Response.Header.Peek(fasthttp.HeaderRetryAfter))
}
