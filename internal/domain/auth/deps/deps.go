package deps

import (
	"context"
	"time"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/auth/entities"
)

// Record is a stored login attempt with the transient client it owns
type Record struct {
	Attempt entities.LoginAttempt
	// Client is bound to an in-memory session handle, nil before the phone step
	Client domain.RemoteClient
}

// AttemptStore keeps in-flight login attempts, at most one per user.
// Records are handed out and taken back as copies.
type AttemptStore interface {
	// Load returns ErrAttemptNotFound or ErrAttemptExpired
	Load(userID int64) (*Record, error)

	// Claim is Load for a caller about to apply input. It extends the expiry
	// by ttl and keeps cleanup away from the record until Save or Delete.
	Claim(userID int64, ttl time.Duration) (*Record, error)

	// Save inserts or replaces the user's record and ends a claim
	Save(rec *Record) error

	// Delete removes the user's record and returns it, nil when absent
	Delete(userID int64) *Record
}

// SessionPromoter persists a signed in handle as the durable session
type SessionPromoter interface {
	PromoteHandle(ctx context.Context, userID int64, creds domain.Credentials, handle []byte) error
}

// Service is the login API
type Service interface {
	Start(ctx context.Context, userID int64) (*entities.LoginAttempt, error)
	Input(ctx context.Context, userID int64, text string) (*entities.LoginAttempt, error)
	Key(ctx context.Context, userID int64, key string) (*entities.LoginAttempt, error)
	Password(ctx context.Context, userID int64, password string) (*entities.LoginAttempt, error)
	Cancel(ctx context.Context, userID int64) (*entities.LoginAttempt, error)
	Status(ctx context.Context, userID int64) (*entities.LoginAttempt, error)
}
