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

	"github.com/Aztech-1729/sliptads/internal/domain/campaign/deps"
	campaignerrors "github.com/Aztech-1729/sliptads/internal/domain/campaign/errors"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

type mockService struct {
	ad         sessionentities.AdConfig
	locked     bool
	roundDelay time.Duration
	sendGap    time.Duration
}

func (m *mockService) result() (*sessionentities.AdConfig, error) {
	if m.locked {
		return nil, sessionerrors.ErrConfigLocked
	}
	ad := m.ad
	return &ad, nil
}

func (m *mockService) Get(context.Context, int64) (*sessionentities.AdConfig, error) {
	ad := m.ad
	return &ad, nil
}

func (m *mockService) SetCustom(_ context.Context, _ int64, msg deps.CustomMessage) (*sessionentities.AdConfig, error) {
	m.ad.Source = sessionentities.SourceCustom
	m.ad.Text = msg.Text
	return m.result()
}

func (m *mockService) SetSaved(context.Context, int64, bool) (*sessionentities.AdConfig, error) {
	return m.result()
}

func (m *mockService) SetPostLink(_ context.Context, _ int64, link string) (*sessionentities.AdConfig, error) {
	if link == "bad" {
		return nil, campaignerrors.ErrInvalidPostLink
	}
	return m.result()
}

func (m *mockService) SetFallback(context.Context, int64, string) (*sessionentities.AdConfig, error) {
	return m.result()
}

func (m *mockService) SetTiming(_ context.Context, _ int64, roundDelay, sendGap time.Duration) (*sessionentities.AdConfig, error) {
	m.roundDelay, m.sendGap = roundDelay, sendGap
	return m.result()
}

func newTestRouter(svc *mockService) *router.Router {
	r := router.New()
	users := httputil.NewUserGroup(r)
	handler := NewCampaignHandler(svc, pkgerrors.NewMapper(zerolog.Nop()), zerolog.Nop())
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

// TestCampaignHandler_Get tests the readiness view
func TestCampaignHandler_Get(t *testing.T) {
	svc := &mockService{ad: sessionentities.AdConfig{
		Source:     sessionentities.SourceSavedForward,
		MessageID:  3,
		RoundDelay: time.Minute,
	}}
	r := newTestRouter(svc)

	ctx := do(r, "GET", "/api/v1/users/1/campaign", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp struct {
		Data struct {
			Ready             bool     `json:"ready"`
			Missing           string   `json:"missing"`
			RoundDelaySeconds int      `json:"round_delay_seconds"`
			Targets           []string `json:"targets"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	require.False(t, resp.Data.Ready)
	require.Equal(t, "fallback message", resp.Data.Missing)
	require.Equal(t, 60, resp.Data.RoundDelaySeconds)
	require.NotNil(t, resp.Data.Targets)
}

// TestCampaignHandler_Timing tests second based durations
func TestCampaignHandler_Timing(t *testing.T) {
	svc := &mockService{}
	r := newTestRouter(svc)

	ctx := do(r, "PUT", "/api/v1/users/1/campaign/timing", `{"round_delay_seconds":90,"send_gap_seconds":0.5}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Equal(t, 90*time.Second, svc.roundDelay)
	require.Equal(t, 500*time.Millisecond, svc.sendGap)
}

// TestCampaignHandler_Errors tests error mapping
func TestCampaignHandler_Errors(t *testing.T) {
	svc := &mockService{}
	r := newTestRouter(svc)

	ctx := do(r, "PUT", "/api/v1/users/1/campaign/source/post-link", `{"link":"bad"}`)
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	svc.locked = true
	ctx = do(r, "PUT", "/api/v1/users/1/campaign/source/custom", `{"text":"hi"}`)
	require.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
}
