package telegram

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/rs/zerolog"
)

// Router registers logger bot handlers
type Router struct {
	handlers *Handlers
	logger   zerolog.Logger
}

// NewRouter creates new logger bot router
func NewRouter(handlers *Handlers, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes registers all command handlers on the bot
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypePrefix, r.handlers.HandleStart)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/status", tgbot.MatchTypeExact, r.handlers.HandleStatus)
	bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, r.handlers.HandleHelp)

	r.logger.Info().Msg("Logger bot command handlers registered")
}
