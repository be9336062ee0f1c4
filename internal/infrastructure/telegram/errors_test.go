package telegram

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tgerr"
	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorKind
	}{
		{"forward restricted", tgerr.New(400, "CHAT_FORWARDS_RESTRICTED"), domain.KindForwardRestricted},
		{"write forbidden", tgerr.New(403, "CHAT_WRITE_FORBIDDEN"), domain.KindForbidden},
		{"send media forbidden", tgerr.New(403, "CHAT_SEND_MEDIA_FORBIDDEN"), domain.KindForbidden},
		{"send plain forbidden", tgerr.New(403, "CHAT_SEND_PLAIN_FORBIDDEN"), domain.KindForbidden},
		{"banned", tgerr.New(400, "USER_BANNED_IN_CHANNEL"), domain.KindForbidden},
		{"private", tgerr.New(400, "CHANNEL_PRIVATE"), domain.KindForbidden},
		{"topic closed", tgerr.New(400, "TOPIC_CLOSED"), domain.KindForbidden},
		{"message id", tgerr.New(400, "MESSAGE_ID_INVALID"), domain.KindInvalidMessage},
		{"password needed", tgerr.New(401, "SESSION_PASSWORD_NEEDED"), domain.KindPasswordNeeded},
		{"gotd password needed", auth.ErrPasswordAuthNeeded, domain.KindPasswordNeeded},
		{"code invalid", tgerr.New(400, "PHONE_CODE_INVALID"), domain.KindInvalidCode},
		{"code empty", tgerr.New(400, "PHONE_CODE_EMPTY"), domain.KindInvalidCode},
		{"code expired", tgerr.New(400, "PHONE_CODE_EXPIRED"), domain.KindExpiredCode},
		{"password invalid", tgerr.New(400, "PASSWORD_HASH_INVALID"), domain.KindInvalidPassword},
		{"gotd password invalid", auth.ErrPasswordInvalid, domain.KindInvalidPassword},
		{"unregistered", tgerr.New(401, "AUTH_KEY_UNREGISTERED"), domain.KindUnauthorized},
		{"revoked", tgerr.New(401, "SESSION_REVOKED"), domain.KindUnauthorized},
		{"deactivated", tgerr.New(401, "USER_DEACTIVATED_BAN"), domain.KindUnauthorized},
		{"invite expired", tgerr.New(400, "INVITE_HASH_EXPIRED"), domain.KindInvalidTarget},
		{"no such username", tgerr.New(400, "USERNAME_NOT_OCCUPIED"), domain.KindInvalidTarget},
		{"too many channels", tgerr.New(400, "CHANNELS_TOO_MUCH"), domain.KindForbidden},
		{"unknown rpc", tgerr.New(400, "SOMETHING_ELSE"), domain.KindOther},
		{"plain error", errors.New("network down"), domain.KindOther},
		{"wrapped", fmt.Errorf("send: %w", tgerr.New(403, "CHAT_WRITE_FORBIDDEN")), domain.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, domain.KindOf(classify(tt.err)))
		})
	}
}

func TestClassify_RateLimit(t *testing.T) {
	err := classify(tgerr.New(420, "FLOOD_WAIT_30"))
	require.Equal(t, domain.KindRateLimited, domain.KindOf(err))
	wait, ok := domain.WaitOf(err)
	require.True(t, ok)
	require.Equal(t, 30*time.Second, wait)

	err = classify(tgerr.New(420, "SLOWMODE_WAIT_12"))
	wait, ok = domain.WaitOf(err)
	require.True(t, ok)
	require.Equal(t, 12*time.Second, wait)
}

func TestClassify_PassThrough(t *testing.T) {
	require.NoError(t, classify(nil))
	require.ErrorIs(t, classify(context.Canceled), context.Canceled)

	already := domain.NewRemoteError(domain.KindForbidden, nil)
	require.Same(t, already, classify(already))
}
