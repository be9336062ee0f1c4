package deps

import (
	"context"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/entities"
)

// QRAuthService defines QR authentication operations
type QRAuthService interface {
	// StartAuth initiates QR authentication and returns session with QR code
	StartAuth(ctx context.Context, userID int64, creds domain.Credentials) (*entities.QRAuthSession, error)

	// GetStatus returns current authentication status
	GetStatus(ctx context.Context, userID int64, sessionID string) (*entities.QRAuthSession, error)

	// SubmitPassword submits 2FA password for authentication
	SubmitPassword(ctx context.Context, userID int64, sessionID, password string) (*entities.QRAuthSession, error)

	// Cancel cancels ongoing authentication
	Cancel(ctx context.Context, userID int64, sessionID string) error
}
