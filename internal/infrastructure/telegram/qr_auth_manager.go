package telegram

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth/qrlogin"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/rs/zerolog"
	"rsc.io/qr"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/entities"
	qrerrors "github.com/Aztech-1729/sliptads/internal/domain/qrauth/errors"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
)

const (
	qrGenerationTimeout = 30 * time.Second
	passwordWaitTimeout = 15 * time.Second
)

// HandlePromoter stores a signed in handle as the user's durable session
type HandlePromoter interface {
	PromoteHandle(ctx context.Context, userID int64, creds domain.Credentials, handle []byte) error
}

// QRAuthManager implements QR login. A successful login is promoted
// exactly like a code login.
type QRAuthManager struct {
	promoter     HandlePromoter
	sessionStore *QRSessionStore
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// NewQRAuthManager creates a new QR authentication manager
func NewQRAuthManager(
	promoter HandlePromoter,
	sessionStore *QRSessionStore,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *QRAuthManager {
	return &QRAuthManager{
		promoter:     promoter,
		sessionStore: sessionStore,
		logger:       logger.With().Str("component", "qr_auth_manager").Logger(),
		metrics:      m,
	}
}

// StartAuth initiates QR authentication and returns session with QR code.
// A previous unfinished QR login of the same user is cancelled.
func (m *QRAuthManager) StartAuth(ctx context.Context, userID int64, creds domain.Credentials) (*entities.QRAuthSession, error) {
	if creds.APIID <= 0 || creds.APIHash == "" {
		return nil, qrerrors.ErrInvalidCredentials
	}

	for _, previous := range m.sessionStore.ActiveFor(userID) {
		previous.Cancel()
		m.sessionStore.Delete(previous.ID)
	}

	session := newInternalQRSession(uuid.New().String(), userID, m.sessionStore.TTL())
	if err := m.sessionStore.Store(session); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("session_id", session.ID).
		Int64("user_id", userID).
		Msg("starting QR authentication")

	qrReady := make(chan error, 1)

	runCtx, cancel := context.WithDeadline(context.Background(), session.ExpiresAt)
	session.SetCancelFunc(cancel)
	go func() {
		defer cancel()
		m.runQRAuth(runCtx, session, creds, qrReady)
	}()

	timer := time.NewTimer(qrGenerationTimeout)
	defer timer.Stop()

	select {
	case err := <-qrReady:
		if err != nil {
			session.SetError(err)
			m.sessionStore.Delete(session.ID)
			return nil, err
		}
	case <-timer.C:
		session.Cancel()
		m.sessionStore.Delete(session.ID)
		return nil, qrerrors.ErrQRGenerationFailed
	case <-ctx.Done():
		session.Cancel()
		m.sessionStore.Delete(session.ID)
		return nil, ctx.Err()
	}

	return session.GetSnapshot(), nil
}

// GetStatus returns current authentication status
func (m *QRAuthManager) GetStatus(ctx context.Context, userID int64, sessionID string) (*entities.QRAuthSession, error) {
	session, err := m.sessionStore.Load(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return session.GetSnapshot(), nil
}

// SubmitPassword submits the 2FA password and waits briefly for the outcome
func (m *QRAuthManager) SubmitPassword(ctx context.Context, userID int64, sessionID, password string) (*entities.QRAuthSession, error) {
	session, err := m.sessionStore.Load(userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.GetSnapshot().Status != entities.StatusWaitingPassword {
		return nil, qrerrors.ErrInvalidSessionState
	}

	select {
	case session.PasswordChan <- password:
		m.logger.Debug().Str("session_id", sessionID).Msg("password submitted")
	default:
		return nil, qrerrors.ErrInvalidSessionState
	}

	timer := time.NewTimer(passwordWaitTimeout)
	defer timer.Stop()

	select {
	case <-session.Done():
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return session.GetSnapshot(), nil
}

// Cancel cancels ongoing authentication
func (m *QRAuthManager) Cancel(ctx context.Context, userID int64, sessionID string) error {
	session, err := m.sessionStore.Load(userID, sessionID)
	if err != nil {
		return err
	}

	session.Cancel()
	m.sessionStore.Delete(sessionID)
	m.logger.Info().Str("session_id", sessionID).Msg("QR auth cancelled")

	return nil
}

// encodeQR renders the login url as a base64 PNG
func encodeQR(url string) (string, error) {
	code, err := qr.Encode(url, qr.L)
	if err != nil {
		return "", errors.Wrap(err, "encode QR")
	}
	return base64.StdEncoding.EncodeToString(code.PNG()), nil
}

// runQRAuth runs the QR authentication process
func (m *QRAuthManager) runQRAuth(ctx context.Context, session *InternalQRSession, creds domain.Credentials, qrReady chan<- error) {
	tempStorage := NewMemorySessionStorage()

	dispatcher := tg.NewUpdateDispatcher()
	loggedIn := qrlogin.OnLoginToken(dispatcher)

	client := telegram.NewClient(creds.APIID, creds.APIHash, telegram.Options{
		SessionStorage: tempStorage,
		UpdateHandler:  dispatcher,
	})

	var readyOnce sync.Once
	signal := func(err error) {
		readyOnce.Do(func() { qrReady <- err })
	}

	err := client.Run(ctx, func(ctx context.Context) error {
		_, err := client.QR().Auth(ctx, loggedIn, func(ctx context.Context, token qrlogin.Token) error {
			image, err := encodeQR(token.URL())
			if err != nil {
				return err
			}
			session.SetQRCode(token.URL(), image)

			m.logger.Info().
				Str("session_id", session.ID).
				Time("token_expires", token.Expires()).
				Msg("QR code generated")

			signal(nil)
			return nil
		})

		if tgerr.Is(err, "SESSION_PASSWORD_NEEDED") {
			if err := m.awaitPassword(ctx, client, session); err != nil {
				return err
			}
		} else if err != nil {
			return errors.Wrap(err, "qr auth")
		}

		self, err := client.Self(ctx)
		if err != nil {
			return errors.Wrap(err, "get self")
		}

		return m.finalizeAuth(ctx, session, creds, self, tempStorage)
	})

	// Fails StartAuth when no QR code was ever produced
	signal(err)

	if err != nil {
		snapshot := session.GetSnapshot()
		if !snapshot.IsTerminal() {
			if errors.Is(err, context.DeadlineExceeded) {
				session.UpdateStatus(entities.StatusExpired)
			} else {
				session.SetError(err)
			}
		}
		m.metrics.RecordAuthError("qr_" + string(session.GetSnapshot().Status))
		m.logger.Error().Err(err).
			Str("session_id", session.ID).
			Int64("user_id", session.UserID).
			Msg("QR auth failed")
	}
}

// awaitPassword blocks until the user submits the second factor password
func (m *QRAuthManager) awaitPassword(ctx context.Context, client *telegram.Client, session *InternalQRSession) error {
	session.UpdateStatus(entities.StatusWaitingPassword)
	m.logger.Info().Str("session_id", session.ID).Msg("2FA password required")

	select {
	case password := <-session.PasswordChan:
		if _, err := client.Auth().Password(ctx, password); err != nil {
			if tgerr.Is(err, "PASSWORD_HASH_INVALID") {
				session.SetError(qrerrors.ErrInvalidPassword)
				return qrerrors.ErrInvalidPassword
			}
			return errors.Wrap(err, "2FA auth")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// finalizeAuth promotes the transient handle to the user's durable session
func (m *QRAuthManager) finalizeAuth(
	ctx context.Context,
	session *InternalQRSession,
	creds domain.Credentials,
	user *tg.User,
	tempStorage *MemorySessionStorage,
) error {
	phoneNumber := user.Phone
	if phoneNumber != "" {
		phoneNumber = "+" + phoneNumber
	}

	data, err := tempStorage.LoadSession(ctx)
	if err != nil {
		return errors.Wrap(err, "export session")
	}

	creds.Phone = phoneNumber
	if err := m.promoter.PromoteHandle(ctx, session.UserID, creds, data); err != nil {
		return errors.Wrap(err, "promote session")
	}

	session.SetSuccess(phoneNumber)
	m.metrics.RecordLogin()

	m.logger.Info().
		Str("session_id", session.ID).
		Int64("user_id", session.UserID).
		Msg("QR authentication successful")

	return nil
}
