package business

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/entities"
	qrerrors "github.com/Aztech-1729/sliptads/internal/domain/qrauth/errors"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
)

// QRAuthUseCase implements QR authentication business logic
type QRAuthUseCase struct {
	service deps.QRAuthService
	logger  zerolog.Logger
}

// NewQRAuthUseCase creates a new QR auth use case
func NewQRAuthUseCase(service deps.QRAuthService, logger zerolog.Logger) *QRAuthUseCase {
	return &QRAuthUseCase{
		service: service,
		logger:  logger.With().Str("usecase", "qrauth").Logger(),
	}
}

// StartAuth initiates QR authentication
func (uc *QRAuthUseCase) StartAuth(ctx context.Context, userID int64, creds domain.Credentials) (*entities.QRAuthSession, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	creds.APIHash = strings.TrimSpace(creds.APIHash)
	if creds.APIID <= 0 || creds.APIHash == "" {
		return nil, qrerrors.ErrInvalidCredentials
	}

	uc.logger.Info().Int64("user_id", userID).Msg("starting QR auth")

	session, err := uc.service.StartAuth(ctx, userID, creds)
	if err != nil {
		uc.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to start QR auth")
		return nil, err
	}

	return session, nil
}

// GetStatus returns current authentication status
func (uc *QRAuthUseCase) GetStatus(ctx context.Context, userID int64, sessionID string) (*entities.QRAuthSession, error) {
	if sessionID == "" {
		return nil, qrerrors.ErrSessionNotFound
	}

	return uc.service.GetStatus(ctx, userID, sessionID)
}

// SubmitPassword submits 2FA password for authentication
func (uc *QRAuthUseCase) SubmitPassword(ctx context.Context, userID int64, sessionID, password string) (*entities.QRAuthSession, error) {
	if sessionID == "" {
		return nil, qrerrors.ErrSessionNotFound
	}
	if password == "" {
		return nil, qrerrors.ErrPasswordRequired
	}

	uc.logger.Debug().Str("session_id", sessionID).Msg("submitting 2FA password")

	return uc.service.SubmitPassword(ctx, userID, sessionID, password)
}

// Cancel cancels ongoing authentication
func (uc *QRAuthUseCase) Cancel(ctx context.Context, userID int64, sessionID string) error {
	if sessionID == "" {
		return qrerrors.ErrSessionNotFound
	}

	uc.logger.Info().Str("session_id", sessionID).Msg("cancelling QR auth")

	return uc.service.Cancel(ctx, userID, sessionID)
}

// Ensure QRAuthUseCase implements deps.QRAuthService
var _ deps.QRAuthService = (*QRAuthUseCase)(nil)
