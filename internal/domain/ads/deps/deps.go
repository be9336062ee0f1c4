package deps

import (
	"context"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
)

// Notifier receives delivery events. Failures never affect delivery.
type Notifier interface {
	Notify(ctx context.Context, userID int64, event entities.Event) error
}

// MediaStore loads custom media by path. Paths of the form s3://<key> come
// from object storage, anything else from the local filesystem.
type MediaStore interface {
	Load(ctx context.Context, path string, kind domain.MediaKind) (domain.MediaFile, error)
}

// Lease guards a user's worker across replicas
type Lease interface {
	// Acquire returns false when another holder owns the lease
	Acquire(ctx context.Context, userID int64) (bool, error)
	// Refresh extends a lease this holder owns
	Refresh(ctx context.Context, userID int64) error
	Release(ctx context.Context, userID int64) error
}

// Service controls per-user delivery workers
type Service interface {
	Start(ctx context.Context, userID int64) (*entities.Status, error)
	Stop(ctx context.Context, userID int64) (*entities.Status, error)
	Status(ctx context.Context, userID int64) (*entities.Status, error)
}

// CommandHandler applies commands received from the command stream
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd entities.Command) error
}
