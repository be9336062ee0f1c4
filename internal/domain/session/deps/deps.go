package deps

import (
	"context"
	"time"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
)

// Repository persists per-user sessions
type Repository interface {
	// Get returns ErrSessionNotFound when the user has no record
	Get(ctx context.Context, userID int64) (*entities.Session, error)

	// Put upserts the record. It never touches the handle or the sent counter.
	Put(ctx context.Context, s *entities.Session) error

	// StoreHandle atomically replaces the durable handle and credentials
	StoreHandle(ctx context.Context, userID int64, creds domain.Credentials, handle []byte) error

	// UpdateHandle rewrites the handle bytes of an existing record
	UpdateHandle(ctx context.Context, userID int64, handle []byte) error

	// LoadHandle returns ErrHandleNotFound when there is no durable handle
	LoadHandle(ctx context.Context, userID int64) ([]byte, error)

	DeleteHandle(ctx context.Context, userID int64) error

	// IncrementSent adds one to the sent counter and returns the new value
	IncrementSent(ctx context.Context, userID int64) (int64, error)

	SetLoggerStarted(ctx context.Context, userID int64, started bool) error

	// SetPremiumUntil stores the end of paid access, the zero time revokes it
	SetPremiumUntil(ctx context.Context, userID int64, until time.Time) error
}

// AccessGate decides whether a user may run paid features
type AccessGate interface {
	Check(s *entities.Session) error
}

// Service is the session store used by the other domains.
// Every mutation runs under a per-user lock.
type Service interface {
	// Get returns the user's session, or a fresh empty one
	Get(ctx context.Context, userID int64) (*entities.Session, error)

	// Update loads, mutates and stores the session under the user's lock
	Update(ctx context.Context, userID int64, fn func(s *entities.Session) error) (*entities.Session, error)

	PromoteHandle(ctx context.Context, userID int64, creds domain.Credentials, handle []byte) error
	LoadHandle(ctx context.Context, userID int64) ([]byte, error)
	SaveHandle(ctx context.Context, userID int64, handle []byte) error
	Logout(ctx context.Context, userID int64) error

	RecordSent(ctx context.Context, userID int64) (int64, error)
	SetLoggerStarted(ctx context.Context, userID int64, started bool) error

	// ExtendPremium adds d to the user's paid access, counting from now when
	// it already lapsed. A non positive d revokes access.
	ExtendPremium(ctx context.Context, userID int64, d time.Duration) (*entities.Session, error)
}
