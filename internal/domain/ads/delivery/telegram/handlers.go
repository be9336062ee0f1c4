// Package telegram contains the logger bot command handlers
package telegram

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
)

const helpText = `Ads logger bot
/start - receive delivery notifications
/status - show your campaign
/help - show this message`

// Replier sends a plain text answer to a chat
type Replier interface {
	Reply(ctx context.Context, chatID int64, text string)
}

// Handlers contains logger bot command handlers
type Handlers struct {
	sessions sessiondeps.Service
	ads      deps.Service
	replier  Replier
	logger   zerolog.Logger
}

// NewHandlers creates new logger bot handlers
func NewHandlers(sessions sessiondeps.Service, ads deps.Service, replier Replier, logger zerolog.Logger) *Handlers {
	return &Handlers{
		sessions: sessions,
		ads:      ads,
		replier:  replier,
		logger:   logger.With().Str("handler", "logger_bot").Logger(),
	}
}

// HandleStart marks the logger bot as started for the sender
func (h *Handlers) HandleStart(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if chatID, ok := privateChat(update); ok {
		h.replier.Reply(ctx, chatID, h.start(ctx, chatID))
	}
}

// HandleStatus replies with the sender's campaign state
func (h *Handlers) HandleStatus(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if chatID, ok := privateChat(update); ok {
		h.replier.Reply(ctx, chatID, h.status(ctx, chatID))
	}
}

// HandleHelp lists the bot commands
func (h *Handlers) HandleHelp(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if chatID, ok := privateChat(update); ok {
		h.replier.Reply(ctx, chatID, helpText)
	}
}

func (h *Handlers) start(ctx context.Context, userID int64) string {
	if err := h.sessions.SetLoggerStarted(ctx, userID, true); err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to mark logger bot as started")
		return "Something went wrong, please try again later."
	}

	h.logger.Info().Int64("user_id", userID).Msg("Logger bot started")
	return "Logger started. Delivery notifications will arrive here.\n\n" + helpText
}

func (h *Handlers) status(ctx context.Context, userID int64) string {
	st, err := h.ads.Status(ctx, userID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load campaign status")
		return "Something went wrong, please try again later."
	}

	if !st.Running {
		return fmt.Sprintf("Ads are stopped. Total ads sent: %d", st.SentTotal)
	}
	return fmt.Sprintf("Ads are running. Round %d: %d/%d. Total ads sent: %d",
		st.Round, st.Sent, st.Total, st.SentTotal)
}

// privateChat returns the chat id of a private message. In private chats it
// equals the sender's user id.
func privateChat(update *models.Update) (int64, bool) {
	if update.Message == nil || update.Message.Chat.Type != models.ChatTypePrivate {
		return 0, false
	}
	return update.Message.Chat.ID, true
}
