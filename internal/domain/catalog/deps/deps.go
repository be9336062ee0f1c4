package deps

import (
	"context"

	"github.com/Aztech-1729/sliptads/internal/domain/catalog/entities"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
)

// Builder discovers the user's sendable destinations
type Builder interface {
	Build(ctx context.Context, userID int64) ([]sessionentities.Destination, error)
}

// Joiner joins the user's account to chats
type Joiner interface {
	// Join attempts every token in order. Per-target failures are reported
	// in the result, the error is reserved for failures of the whole batch.
	Join(ctx context.Context, userID int64, tokens []string) (entities.JoinReport, error)
}

// Service is the catalog and selection API. Every call returns the page the
// user is looking at after the change.
type Service interface {
	// Refresh rebuilds the catalog and clears the selection.
	// The stored catalog is untouched when the build fails.
	Refresh(ctx context.Context, userID int64) (*entities.Page, error)

	List(ctx context.Context, userID int64, page int) (*entities.Page, error)
	Toggle(ctx context.Context, userID int64, displayID string, page int) (*entities.Page, error)
	SetFilter(ctx context.Context, userID int64, filter string) (*entities.Page, error)
	ClearFilter(ctx context.Context, userID int64) (*entities.Page, error)

	// SelectAll and UnselectAll act only on destinations matching the filter
	SelectAll(ctx context.Context, userID int64, kind sessionentities.DestinationKind) (*entities.Page, error)
	UnselectAll(ctx context.Context, userID int64, kind sessionentities.DestinationKind) (*entities.Page, error)

	// Join joins the chats named in raw, a list of invite links, usernames
	// or ids separated by commas, pipes or newlines. The stored catalog is
	// not changed, joined chats show up on the next Refresh.
	Join(ctx context.Context, userID int64, raw string) (*entities.JoinReport, error)

	// Confirm copies the selection into the ad targets, in catalog order
	Confirm(ctx context.Context, userID int64) ([]string, error)
}
