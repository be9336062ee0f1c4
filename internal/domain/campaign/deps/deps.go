package deps

import (
	"context"
	"time"

	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
)

// CustomMessage is a message typed by the user, optionally with media
type CustomMessage struct {
	Text      string
	MediaPath string // local path or s3://<key>
	MediaKind string
}

// Service edits the ad configuration. Every setter fails with
// ErrConfigLocked while a worker runs.
type Service interface {
	Get(ctx context.Context, userID int64) (*sessionentities.AdConfig, error)

	SetCustom(ctx context.Context, userID int64, msg CustomMessage) (*sessionentities.AdConfig, error)

	// SetSaved points the source at the newest saved message, delivered as a
	// copy or as a tag preserving forward
	SetSaved(ctx context.Context, userID int64, asCopy bool) (*sessionentities.AdConfig, error)

	SetPostLink(ctx context.Context, userID int64, link string) (*sessionentities.AdConfig, error)
	SetFallback(ctx context.Context, userID int64, text string) (*sessionentities.AdConfig, error)
	SetTiming(ctx context.Context, userID int64, roundDelay, sendGap time.Duration) (*sessionentities.AdConfig, error)
}
