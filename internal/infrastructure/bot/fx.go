package bot

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Aztech-1729/sliptads/config"
)

// Module provides the logger bot for fx DI. Without a token no bot is created.
var Module = fx.Module("bot",
	fx.Provide(provideBot),
	fx.Invoke(registerLifecycle),
)

func provideBot(cfg *config.NotifierConfig, logger zerolog.Logger) (*Bot, error) {
	if cfg.BotToken == "" {
		logger.Info().Msg("Logger bot token not set, bot notifications disabled")
		return nil, nil
	}
	return NewBot(cfg.BotToken, logger.With().Str("component", "logger-bot").Logger())
}

func registerLifecycle(lc fx.Lifecycle, bot *Bot) {
	if bot == nil {
		return
	}

	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			go bot.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}
