package business

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/campaign/deps"
	campaignerrors "github.com/Aztech-1729/sliptads/internal/domain/campaign/errors"
	"github.com/Aztech-1729/sliptads/internal/domain/mocks"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
	"github.com/Aztech-1729/sliptads/internal/domain/session/repository/memory"
	sessionbusiness "github.com/Aztech-1729/sliptads/internal/domain/session/usecase/business"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/pkg/sealer"
)

func newCampaignUseCase(t *testing.T, client *mocks.RemoteClient) (*UseCase, *sessionbusiness.UseCase) {
	t.Helper()

	s, err := sealer.New(nil)
	require.NoError(t, err)
	cfg := &config.DeliveryConfig{RoundDelayMin: time.Minute, SendGapMax: 15 * time.Second}
	sessions := sessionbusiness.NewUseCase(memory.NewRepository(), s, cfg, zerolog.Nop(), metrics.GetDefaultMetrics())

	factory := &mocks.ClientFactory{
		NewSessionClientFunc: func(context.Context, int64) (domain.RemoteClient, error) {
			if client == nil {
				return nil, domain.ErrLoginRequired
			}
			return client, nil
		},
	}

	return NewUseCase(sessions, factory, cfg, &config.TelegramConfig{}, zerolog.Nop()), sessions
}

// TestUseCase_SetCustom tests custom message validation and source replacement
func TestUseCase_SetCustom(t *testing.T) {
	uc, _ := newCampaignUseCase(t, nil)
	ctx := context.Background()

	_, err := uc.SetCustom(ctx, 1, deps.CustomMessage{Text: "   "})
	require.ErrorIs(t, err, campaignerrors.ErrEmptyMessage)

	_, err = uc.SetCustom(ctx, 1, deps.CustomMessage{MediaPath: "a.bin", MediaKind: "sticker"})
	require.ErrorIs(t, err, campaignerrors.ErrInvalidMediaKind)

	_, err = uc.SetPostLink(ctx, 1, "https://t.me/shop/5")
	require.NoError(t, err)

	ad, err := uc.SetCustom(ctx, 1, deps.CustomMessage{Text: " Buy now ", MediaPath: "s3://ads/banner.PNG"})
	require.NoError(t, err)
	require.Equal(t, sessionentities.SourceCustom, ad.Source)
	require.Equal(t, "Buy now", ad.Text)
	require.Equal(t, string(domain.MediaPhoto), ad.MediaKind)
	require.Empty(t, ad.PostLink)
	require.Zero(t, ad.MessageID)
}

// TestUseCase_SetPostLink tests link parsing into the source peer
func TestUseCase_SetPostLink(t *testing.T) {
	uc, _ := newCampaignUseCase(t, nil)
	ctx := context.Background()

	ad, err := uc.SetPostLink(ctx, 1, "t.me/c/123456/7/89")
	require.NoError(t, err)
	require.Equal(t, sessionentities.SourcePostLink, ad.Source)
	require.Equal(t, "-100123456", ad.SourcePeer)
	require.Equal(t, 89, ad.MessageID)
	require.Equal(t, "fallback message", ad.Missing())

	ad, err = uc.SetPostLink(ctx, 1, "@shop/12")
	require.NoError(t, err)
	require.Equal(t, "shop", ad.SourcePeer)

	_, err = uc.SetPostLink(ctx, 1, "https://example.com/x")
	require.ErrorIs(t, err, campaignerrors.ErrInvalidPostLink)
}

// TestUseCase_SetSaved tests saved message lookup
func TestUseCase_SetSaved(t *testing.T) {
	client := &mocks.RemoteClient{
		LatestMessageFunc: func(_ context.Context, peer string) (int, error) {
			require.Equal(t, domain.SavedMessagesPeer, peer)
			return 321, nil
		},
	}
	uc, _ := newCampaignUseCase(t, client)
	ctx := context.Background()

	ad, err := uc.SetSaved(ctx, 1, false)
	require.NoError(t, err)
	require.Equal(t, sessionentities.SourceSavedForward, ad.Source)
	require.Equal(t, 321, ad.MessageID)
	require.Equal(t, domain.SavedMessagesPeer, ad.SourcePeer)
	require.Equal(t, 1, client.Disconnects())

	ad, err = uc.SetSaved(ctx, 1, true)
	require.NoError(t, err)
	require.Equal(t, sessionentities.SourceSavedCopy, ad.Source)

	client.LatestMessageFunc = func(context.Context, string) (int, error) {
		return 0, domain.NewRemoteError(domain.KindInvalidMessage, domain.ErrMessageNotFound)
	}
	_, err = uc.SetSaved(ctx, 1, true)
	require.ErrorIs(t, err, campaignerrors.ErrNoSavedMessage)
}

// TestUseCase_SetSavedLoginRequired tests the saved source without a session
func TestUseCase_SetSavedLoginRequired(t *testing.T) {
	uc, _ := newCampaignUseCase(t, nil)

	_, err := uc.SetSaved(context.Background(), 1, false)
	require.ErrorIs(t, err, domain.ErrLoginRequired)
}

// TestUseCase_SetTiming tests the configuration bounds
func TestUseCase_SetTiming(t *testing.T) {
	uc, _ := newCampaignUseCase(t, nil)
	ctx := context.Background()

	_, err := uc.SetTiming(ctx, 1, 59*time.Second, 0)
	require.ErrorIs(t, err, campaignerrors.ErrRoundDelayTooShort)

	_, err = uc.SetTiming(ctx, 1, time.Minute, -time.Second)
	require.ErrorIs(t, err, campaignerrors.ErrSendGapOutOfRange)

	_, err = uc.SetTiming(ctx, 1, time.Minute, 16*time.Second)
	require.ErrorIs(t, err, campaignerrors.ErrSendGapOutOfRange)

	ad, err := uc.SetTiming(ctx, 1, 2*time.Minute, 1500*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 2*time.Minute, ad.RoundDelay)
	require.Equal(t, 1500*time.Millisecond, ad.SendGap)
}

// TestUseCase_Locked tests that every setter is rejected while a worker runs
func TestUseCase_Locked(t *testing.T) {
	client := &mocks.RemoteClient{}
	uc, sessions := newCampaignUseCase(t, client)
	ctx := context.Background()

	_, err := uc.SetFallback(ctx, 1, "plain text")
	require.NoError(t, err)

	_, err = sessions.Update(ctx, 1, func(s *sessionentities.Session) error {
		s.Ad.Locked = true
		return nil
	})
	require.NoError(t, err)

	_, err = uc.SetFallback(ctx, 1, "other")
	require.ErrorIs(t, err, sessionerrors.ErrConfigLocked)
	_, err = uc.SetCustom(ctx, 1, deps.CustomMessage{Text: "x"})
	require.ErrorIs(t, err, sessionerrors.ErrConfigLocked)
	_, err = uc.SetPostLink(ctx, 1, "t.me/shop/1")
	require.ErrorIs(t, err, sessionerrors.ErrConfigLocked)
	_, err = uc.SetTiming(ctx, 1, time.Minute, 0)
	require.ErrorIs(t, err, sessionerrors.ErrConfigLocked)
	_, err = uc.SetSaved(ctx, 1, true)
	require.ErrorIs(t, err, sessionerrors.ErrConfigLocked)
	require.Equal(t, 0, client.Connects())

	ad, err := uc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "plain text", ad.Fallback)
}

// TestMediaKindOf tests explicit and derived media kinds
func TestMediaKindOf(t *testing.T) {
	tests := []struct {
		raw, path string
		want      domain.MediaKind
		ok        bool
	}{
		{"", "a.jpg", domain.MediaPhoto, true},
		{"", "clip.MP4", domain.MediaVideo, true},
		{"", "fun.gif", domain.MediaAnimation, true},
		{"", "doc.pdf", domain.MediaDocument, true},
		{"Video", "a.jpg", domain.MediaVideo, true},
		{"voice", "a.ogg", "", false},
	}
	for _, tt := range tests {
		got, ok := MediaKindOf(tt.raw, tt.path)
		require.Equal(t, tt.ok, ok, tt.path)
		require.Equal(t, tt.want, got, tt.path)
	}
}
