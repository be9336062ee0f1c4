package business

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/campaign/deps"
	campaignerrors "github.com/Aztech-1729/sliptads/internal/domain/campaign/errors"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
	"github.com/Aztech-1729/sliptads/pkg/tglink"
)

// UseCase implements deps.Service
type UseCase struct {
	sessions sessiondeps.Service
	factory  domain.ClientFactory
	cfg      *config.DeliveryConfig
	tgCfg    *config.TelegramConfig
	logger   zerolog.Logger
}

// NewUseCase creates a new campaign configuration use case
func NewUseCase(
	sessions sessiondeps.Service,
	factory domain.ClientFactory,
	cfg *config.DeliveryConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		sessions: sessions,
		factory:  factory,
		cfg:      cfg,
		tgCfg:    tgCfg,
		logger:   logger.With().Str("component", "campaign").Logger(),
	}
}

var _ deps.Service = (*UseCase)(nil)

// Get returns the current ad configuration
func (u *UseCase) Get(ctx context.Context, userID int64) (*sessionentities.AdConfig, error) {
	s, err := u.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ad := s.Ad
	return &ad, nil
}

// edit mutates the ad configuration unless it is locked
func (u *UseCase) edit(ctx context.Context, userID int64, fn func(ad *sessionentities.AdConfig) error) (*sessionentities.AdConfig, error) {
	s, err := u.sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		if s.Ad.Locked {
			return sessionerrors.ErrConfigLocked
		}
		return fn(&s.Ad)
	})
	if err != nil {
		return nil, err
	}
	ad := s.Ad
	return &ad, nil
}

// setSource replaces the message source, clearing fields of the previous one
func setSource(ad *sessionentities.AdConfig, src sessionentities.AdConfig) {
	ad.Source = src.Source
	ad.Text = src.Text
	ad.MediaPath = src.MediaPath
	ad.MediaKind = src.MediaKind
	ad.SourcePeer = src.SourcePeer
	ad.MessageID = src.MessageID
	ad.PostLink = src.PostLink
}

// SetCustom stores a custom text and/or media message
func (u *UseCase) SetCustom(ctx context.Context, userID int64, msg deps.CustomMessage) (*sessionentities.AdConfig, error) {
	text := strings.TrimSpace(msg.Text)
	path := strings.TrimSpace(msg.MediaPath)
	if text == "" && path == "" {
		return nil, campaignerrors.ErrEmptyMessage
	}

	var kind domain.MediaKind
	if path != "" {
		var ok bool
		kind, ok = MediaKindOf(msg.MediaKind, path)
		if !ok {
			return nil, campaignerrors.ErrInvalidMediaKind
		}
	}

	ad, err := u.edit(ctx, userID, func(ad *sessionentities.AdConfig) error {
		setSource(ad, sessionentities.AdConfig{
			Source:    sessionentities.SourceCustom,
			Text:      text,
			MediaPath: path,
			MediaKind: string(kind),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info().Int64("user_id", userID).Bool("media", path != "").Msg("Custom message set")
	return ad, nil
}

// SetSaved looks up the newest saved message with the durable session
func (u *UseCase) SetSaved(ctx context.Context, userID int64, asCopy bool) (*sessionentities.AdConfig, error) {
	if err := u.checkUnlocked(ctx, userID); err != nil {
		return nil, err
	}

	msgID, err := u.latestSaved(ctx, userID)
	if err != nil {
		return nil, err
	}

	source := sessionentities.SourceSavedForward
	if asCopy {
		source = sessionentities.SourceSavedCopy
	}

	ad, err := u.edit(ctx, userID, func(ad *sessionentities.AdConfig) error {
		setSource(ad, sessionentities.AdConfig{
			Source:     source,
			SourcePeer: domain.SavedMessagesPeer,
			MessageID:  msgID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info().
		Int64("user_id", userID).
		Str("source", string(source)).
		Int("message_id", msgID).
		Msg("Saved message set")
	return ad, nil
}

func (u *UseCase) latestSaved(ctx context.Context, userID int64) (int, error) {
	client, err := u.factory.NewSessionClient(ctx, userID)
	if err != nil {
		return 0, err
	}

	connectCtx := ctx
	if u.tgCfg != nil && u.tgCfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, u.tgCfg.ConnectTimeout)
		defer cancel()
	}
	if err := client.Connect(connectCtx); err != nil {
		return 0, err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	msgID, err := client.LatestMessageID(ctx, domain.SavedMessagesPeer)
	if err != nil {
		if domain.KindOf(err) == domain.KindInvalidMessage {
			return 0, campaignerrors.ErrNoSavedMessage
		}
		return 0, err
	}
	if msgID == 0 {
		return 0, campaignerrors.ErrNoSavedMessage
	}
	return msgID, nil
}

// SetPostLink stores a public or private post link as a forward source
func (u *UseCase) SetPostLink(ctx context.Context, userID int64, link string) (*sessionentities.AdConfig, error) {
	post, err := tglink.ParsePostLink(link)
	if err != nil {
		return nil, campaignerrors.ErrInvalidPostLink
	}

	return u.edit(ctx, userID, func(ad *sessionentities.AdConfig) error {
		setSource(ad, sessionentities.AdConfig{
			Source:     sessionentities.SourcePostLink,
			SourcePeer: post.Peer(),
			MessageID:  post.MessageID,
			PostLink:   strings.TrimSpace(link),
		})
		return nil
	})
}

// SetFallback stores the text sent where forwarding is not allowed
func (u *UseCase) SetFallback(ctx context.Context, userID int64, text string) (*sessionentities.AdConfig, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, campaignerrors.ErrEmptyFallback
	}
	return u.edit(ctx, userID, func(ad *sessionentities.AdConfig) error {
		ad.Fallback = text
		return nil
	})
}

// SetTiming stores the round delay and the gap between sends
func (u *UseCase) SetTiming(ctx context.Context, userID int64, roundDelay, sendGap time.Duration) (*sessionentities.AdConfig, error) {
	if roundDelay < u.cfg.RoundDelayMin {
		return nil, campaignerrors.ErrRoundDelayTooShort
	}
	if sendGap < 0 || sendGap > u.cfg.SendGapMax {
		return nil, campaignerrors.ErrSendGapOutOfRange
	}
	return u.edit(ctx, userID, func(ad *sessionentities.AdConfig) error {
		ad.RoundDelay = roundDelay
		ad.SendGap = sendGap
		return nil
	})
}

func (u *UseCase) checkUnlocked(ctx context.Context, userID int64) error {
	s, err := u.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if s.Ad.Locked {
		return sessionerrors.ErrConfigLocked
	}
	return nil
}

var extKinds = map[string]domain.MediaKind{
	".jpg":  domain.MediaPhoto,
	".jpeg": domain.MediaPhoto,
	".png":  domain.MediaPhoto,
	".webp": domain.MediaPhoto,
	".mp4":  domain.MediaVideo,
	".mov":  domain.MediaVideo,
	".gif":  domain.MediaAnimation,
}

// MediaKindOf validates an explicit kind or derives one from the file extension
func MediaKindOf(raw, path string) (domain.MediaKind, bool) {
	switch k := domain.MediaKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case domain.MediaPhoto, domain.MediaVideo, domain.MediaAnimation, domain.MediaDocument:
		return k, true
	case "":
		if kind, ok := extKinds[strings.ToLower(filepath.Ext(path))]; ok {
			return kind, true
		}
		return domain.MediaDocument, true
	}
	return "", false
}

