package telegram

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/Aztech-1729/sliptads/internal/domain"
)

// IsAuthorized reports whether the bound session is signed in
func (c *MTProtoClient) IsAuthorized(ctx context.Context) (bool, error) {
	client, _, err := c.ready(ctx)
	if err != nil {
		return false, err
	}

	status, err := client.Auth().Status(ctx)
	if err != nil {
		return false, classify(errors.Wrap(err, "auth status"))
	}
	return status.Authorized, nil
}

// ExportSession returns the raw session bytes gotd stored for this client
func (c *MTProtoClient) ExportSession(ctx context.Context) ([]byte, error) {
	data, err := c.storage.LoadSession(ctx)
	if errors.Is(err, session.ErrNotFound) {
		return nil, domain.ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export session: %w", err)
	}
	return data, nil
}

// RequestCode sends a login code to phone and returns the code hash
func (c *MTProtoClient) RequestCode(ctx context.Context, phone string) (string, error) {
	client, _, err := c.ready(ctx)
	if err != nil {
		return "", err
	}

	c.logger.Info().Msg("requesting login code")

	sent, err := client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to send login code")
		return "", classify(errors.Wrap(err, "send code"))
	}

	switch s := any(sent).(type) {
	case *tg.AuthSentCode:
		return s.PhoneCodeHash, nil
	default:
		return "", errors.Errorf("unexpected sent code type %T", sent)
	}
}

// SignIn completes sign in with the login code
func (c *MTProtoClient) SignIn(ctx context.Context, phone, code, codeHash string) error {
	client, _, err := c.ready(ctx)
	if err != nil {
		return err
	}

	if _, err := client.Auth().SignIn(ctx, phone, code, codeHash); err != nil {
		var signUp *auth.SignUpRequired
		if errors.As(err, &signUp) {
			return domain.NewRemoteError(domain.KindOther, errors.New("phone number is not registered"))
		}
		return classify(errors.Wrap(err, "sign in"))
	}

	c.logger.Info().Msg("signed in with login code")
	return nil
}

// SignInPassword completes sign in with the second factor password
func (c *MTProtoClient) SignInPassword(ctx context.Context, password string) error {
	client, _, err := c.ready(ctx)
	if err != nil {
		return err
	}

	if _, err := client.Auth().Password(ctx, password); err != nil {
		return classify(errors.Wrap(err, "check password"))
	}

	c.logger.Info().Msg("signed in with password")
	return nil
}
