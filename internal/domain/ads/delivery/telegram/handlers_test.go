package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	sessionmemory "github.com/Aztech-1729/sliptads/internal/domain/session/repository/memory"
	sessionbusiness "github.com/Aztech-1729/sliptads/internal/domain/session/usecase/business"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/pkg/sealer"
)

type reply struct {
	chatID int64
	text   string
}

type fakeReplier struct {
	replies []reply
}

func (f *fakeReplier) Reply(_ context.Context, chatID int64, text string) {
	f.replies = append(f.replies, reply{chatID: chatID, text: text})
}

type mockAds struct {
	status *entities.Status
	err    error
}

func (m *mockAds) Start(context.Context, int64) (*entities.Status, error) { return m.status, m.err }
func (m *mockAds) Stop(context.Context, int64) (*entities.Status, error)  { return m.status, m.err }
func (m *mockAds) Status(context.Context, int64) (*entities.Status, error) {
	return m.status, m.err
}

func newHandlers(t *testing.T, ads *mockAds) (*Handlers, *sessionbusiness.UseCase, *fakeReplier) {
	t.Helper()
	s, err := sealer.New(nil)
	require.NoError(t, err)
	sessions := sessionbusiness.NewUseCase(sessionmemory.NewRepository(), s, &config.DeliveryConfig{}, zerolog.Nop(), metrics.GetDefaultMetrics())
	r := &fakeReplier{}
	return NewHandlers(sessions, ads, r, zerolog.Nop()), sessions, r
}

func privateUpdate(chatID int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{
		Text: text,
		Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
	}}
}

// TestHandlers_Start tests that /start enables notifications
func TestHandlers_Start(t *testing.T) {
	h, sessions, r := newHandlers(t, &mockAds{})
	ctx := context.Background()

	h.HandleStart(ctx, nil, privateUpdate(42, "/start"))

	s, err := sessions.Get(ctx, 42)
	require.NoError(t, err)
	require.True(t, s.LoggerStarted)
	require.Len(t, r.replies, 1)
	require.Equal(t, int64(42), r.replies[0].chatID)
	require.Contains(t, r.replies[0].text, "Logger started")
}

// TestHandlers_IgnoresGroups tests that commands outside private chats are ignored
func TestHandlers_IgnoresGroups(t *testing.T) {
	h, sessions, r := newHandlers(t, &mockAds{})
	ctx := context.Background()

	update := &models.Update{Message: &models.Message{
		Text: "/start",
		Chat: models.Chat{ID: -100, Type: models.ChatTypeGroup},
	}}
	h.HandleStart(ctx, nil, update)
	h.HandleHelp(ctx, nil, &models.Update{})

	s, err := sessions.Get(ctx, -100)
	if err == nil {
		require.False(t, s.LoggerStarted)
	}
	require.Empty(t, r.replies)
}

// TestHandlers_Status tests the status reply
func TestHandlers_Status(t *testing.T) {
	tests := []struct {
		name   string
		ads    *mockAds
		expect string
	}{
		{
			name:   "running",
			ads:    &mockAds{status: &entities.Status{Running: true, Round: 2, Sent: 1, Total: 3, SentTotal: 10}},
			expect: "Ads are running. Round 2: 1/3. Total ads sent: 10",
		},
		{
			name:   "stopped",
			ads:    &mockAds{status: &entities.Status{SentTotal: 4}},
			expect: "Ads are stopped. Total ads sent: 4",
		},
		{
			name:   "error",
			ads:    &mockAds{err: errors.New("boom")},
			expect: "Something went wrong, please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, r := newHandlers(t, tt.ads)
			h.HandleStatus(context.Background(), nil, privateUpdate(7, "/status"))
			require.Len(t, r.replies, 1)
			require.Equal(t, tt.expect, r.replies[0].text)
		})
	}
}
