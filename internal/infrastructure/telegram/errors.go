package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tgerr"

	"github.com/Aztech-1729/sliptads/internal/domain"
)

var kindByType = map[string]domain.ErrorKind{
	"CHAT_FORWARDS_RESTRICTED": domain.KindForwardRestricted,

	"CHAT_WRITE_FORBIDDEN":   domain.KindForbidden,
	"USER_BANNED_IN_CHANNEL": domain.KindForbidden,
	"CHAT_ADMIN_REQUIRED":    domain.KindForbidden,
	"CHANNEL_PRIVATE":        domain.KindForbidden,
	"CHAT_RESTRICTED":        domain.KindForbidden,
	"PEER_ID_INVALID":        domain.KindForbidden,
	"CHANNEL_INVALID":        domain.KindForbidden,
	"TOPIC_CLOSED":           domain.KindForbidden,
	"CHANNELS_TOO_MUCH":      domain.KindForbidden,

	"INVITE_HASH_INVALID":   domain.KindInvalidTarget,
	"INVITE_HASH_EXPIRED":   domain.KindInvalidTarget,
	"INVITE_HASH_EMPTY":     domain.KindInvalidTarget,
	"USERNAME_INVALID":      domain.KindInvalidTarget,
	"USERNAME_NOT_OCCUPIED": domain.KindInvalidTarget,

	"MESSAGE_ID_INVALID": domain.KindInvalidMessage,
	"MESSAGE_EMPTY":      domain.KindInvalidMessage,

	"SESSION_PASSWORD_NEEDED": domain.KindPasswordNeeded,
	"PHONE_CODE_INVALID":      domain.KindInvalidCode,
	"PHONE_CODE_EMPTY":        domain.KindInvalidCode,
	"PHONE_CODE_EXPIRED":      domain.KindExpiredCode,
	"PASSWORD_HASH_INVALID":   domain.KindInvalidPassword,

	"AUTH_KEY_UNREGISTERED": domain.KindUnauthorized,
	"SESSION_REVOKED":       domain.KindUnauthorized,
	"AUTH_KEY_DUPLICATED":   domain.KindUnauthorized,
}

// classify maps a gotd error onto the domain error taxonomy.
// Context errors and already classified errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var re *domain.RemoteError
	if errors.As(err, &re) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if d, ok := tgerr.AsFloodWait(err); ok {
		return domain.NewRateLimitError(d, err)
	}
	if rpcErr, ok := tgerr.AsType(err, "SLOWMODE_WAIT"); ok {
		return domain.NewRateLimitError(time.Duration(rpcErr.Argument)*time.Second, err)
	}

	switch {
	case errors.Is(err, auth.ErrPasswordAuthNeeded):
		return domain.NewRemoteError(domain.KindPasswordNeeded, err)
	case errors.Is(err, auth.ErrPasswordInvalid):
		return domain.NewRemoteError(domain.KindInvalidPassword, err)
	}

	rpcErr, ok := tgerr.As(err)
	if !ok {
		return domain.NewRemoteError(domain.KindOther, err)
	}

	if kind, ok := kindByType[rpcErr.Type]; ok {
		return domain.NewRemoteError(kind, err)
	}

	switch {
	case strings.HasPrefix(rpcErr.Type, "CHAT_SEND_") && strings.HasSuffix(rpcErr.Type, "_FORBIDDEN"):
		return domain.NewRemoteError(domain.KindForbidden, err)
	case strings.HasPrefix(rpcErr.Type, "USER_DEACTIVATED"):
		return domain.NewRemoteError(domain.KindUnauthorized, err)
	case rpcErr.Code == 401:
		return domain.NewRemoteError(domain.KindUnauthorized, err)
	}

	return domain.NewRemoteError(domain.KindOther, err)
}
