package kafka

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	adserrors "github.com/Aztech-1729/sliptads/internal/domain/ads/errors"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
)

// CommandHandler applies start/stop commands from the command topic
type CommandHandler struct {
	useCase deps.Service
	logger  zerolog.Logger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(useCase deps.Service, logger zerolog.Logger) *CommandHandler {
	return &CommandHandler{
		useCase: useCase,
		logger:  logger.With().Str("handler", "ads_commands").Logger(),
	}
}

var _ deps.CommandHandler = (*CommandHandler)(nil)

// HandleCommand runs the command. Rejections caused by the user's state are
// logged and acknowledged; anything else is returned for redelivery.
func (h *CommandHandler) HandleCommand(ctx context.Context, cmd entities.Command) error {
	var err error
	switch cmd.Type {
	case entities.CommandStart:
		_, err = h.useCase.Start(ctx, cmd.UserID)
	case entities.CommandStop:
		_, err = h.useCase.Stop(ctx, cmd.UserID)
	default:
		err = adserrors.ErrUnknownCommand
	}

	if err == nil {
		h.logger.Info().
			Str("command", string(cmd.Type)).
			Int64("user_id", cmd.UserID).
			Msg("Command applied")
		return nil
	}

	if pkgerrors.IsClientError(err) {
		h.logger.Warn().
			Err(err).
			Str("command", string(cmd.Type)).
			Int64("user_id", cmd.UserID).
			Msg("Command rejected")
		return nil
	}

	return err
}
