package entities

import "time"

// QRAuthStatus represents the current state of QR authentication
type QRAuthStatus string

const (
	StatusPending         QRAuthStatus = "pending"          // QR created, waiting for scan
	StatusWaitingPassword QRAuthStatus = "waiting_password" // 2FA password required
	StatusSuccess         QRAuthStatus = "success"          // Handle promoted
	StatusFailed          QRAuthStatus = "failed"
	StatusExpired         QRAuthStatus = "expired"
	StatusCancelled       QRAuthStatus = "cancelled"
)

// QRAuthSession represents an active QR authentication session
type QRAuthSession struct {
	ID           string
	UserID       int64
	Status       QRAuthStatus
	QRURL        string // tg://login?token=...
	QRCodeBase64 string // Base64 encoded PNG image
	PhoneNumber  string
	Error        string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal returns true if the session is in a terminal state
func (s *QRAuthSession) IsTerminal() bool {
	return s.Status == StatusSuccess ||
		s.Status == StatusFailed ||
		s.Status == StatusExpired ||
		s.Status == StatusCancelled
}

// IsExpired returns true if the session has expired
func (s *QRAuthSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
