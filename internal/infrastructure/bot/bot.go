// Package bot contains the logger bot infrastructure
package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
)

const helpText = "Send /status to see your campaign or /help for this message."

// Bot wraps the logger bot. Users start it once so it may message them.
type Bot struct {
	bot    *tgbot.Bot
	logger zerolog.Logger
}

// NewBot creates a new logger bot wrapper
func NewBot(token string, logger zerolog.Logger, opts ...tgbot.Option) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("logger bot token is required")
	}

	opts = append([]tgbot.Option{tgbot.WithDefaultHandler(defaultHandler)}, opts...)

	bot, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger bot: %w", err)
	}

	logger.Info().Msg("Logger bot created successfully")

	return &Bot{
		bot:    bot,
		logger: logger,
	}, nil
}

// Raw returns the underlying bot for handler registration
func (b *Bot) Raw() *tgbot.Bot {
	return b.bot
}

// Start polls for updates until ctx is canceled
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info().Msg("Starting logger bot...")
	b.bot.Start(ctx)
	b.logger.Info().Msg("Logger bot stopped")
}

// Accepts drops per-item progress, which /status and the events topic already serve
func (b *Bot) Accepts(event entities.Event) bool {
	return event.Type != entities.EventProgress
}

// Notify sends the event text to the user's private chat with the bot
func (b *Bot) Notify(ctx context.Context, userID int64, event entities.Event) error {
	if !b.Accepts(event) {
		return nil
	}

	params := &tgbot.SendMessageParams{
		ChatID: userID,
		Text:   event.Text(),
	}
	if event.Link != "" {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: "View message", URL: event.Link}},
			},
		}
	}

	if _, err := b.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send notification to %s: %w", strconv.FormatInt(userID, 10), err)
	}
	return nil
}

// Reply answers a chat with plain text
func (b *Bot) Reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		b.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to reply")
	}
}

func defaultHandler(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	_, _ = bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   helpText,
	})
}
