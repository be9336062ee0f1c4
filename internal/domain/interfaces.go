package domain

import (
	"context"

	"github.com/Aztech-1729/sliptads/pkg/tglink"
)

// RemoteClient is a per-user Telegram user-account client.
// Callers own the connection: Connect before use and Disconnect after.
type RemoteClient interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	// IsAuthorized reports whether the bound session is signed in
	IsAuthorized(ctx context.Context) (bool, error)

	// ExportSession returns the raw session handle bytes
	ExportSession(ctx context.Context) ([]byte, error)

	// RequestCode sends a login code and returns the code hash
	RequestCode(ctx context.Context, phone string) (string, error)

	// SignIn completes sign in with a login code
	SignIn(ctx context.Context, phone, code, codeHash string) error

	// SignInPassword completes sign in with the second factor password
	SignInPassword(ctx context.Context, password string) error

	ListChats(ctx context.Context, limit int) ([]ChatDescriptor, error)
	ListTopics(ctx context.Context, chat ChatDescriptor, limit int) ([]Topic, error)

	// Resolve turns a display id into a sendable target without side effects
	Resolve(ctx context.Context, displayID string) (Target, error)

	// Join joins a chat by invite link or username. Joining a chat the
	// account is already in succeeds with AlreadyMember set.
	Join(ctx context.Context, target tglink.JoinTarget) (JoinedChat, error)

	SendText(ctx context.Context, target Target, text string) (SentMessage, error)
	SendMedia(ctx context.Context, target Target, file MediaFile, caption string) (SentMessage, error)

	// Forward forwards ref to target. preserveAuthor=false drops the forward header.
	Forward(ctx context.Context, target Target, ref MessageRef, preserveAuthor bool) (SentMessage, error)

	FetchMessage(ctx context.Context, ref MessageRef) (MessageContent, error)

	// LatestMessageID returns the id of the newest message in peer
	LatestMessageID(ctx context.Context, peer string) (int, error)

	// SendContent resends fetched content as a new message
	SendContent(ctx context.Context, target Target, content MessageContent) (SentMessage, error)
}

// ClientFactory creates remote clients
type ClientFactory interface {
	// NewLoginClient creates a client bound to a fresh in-memory session handle
	NewLoginClient(creds Credentials) (RemoteClient, error)

	// NewSessionClient creates a client bound to the user's durable session handle.
	// Returns ErrLoginRequired when the user has none.
	NewSessionClient(ctx context.Context, userID int64) (RemoteClient, error)

	// NewCatalogClient is like NewSessionClient but transparently waits out flood waits
	NewCatalogClient(ctx context.Context, userID int64) (RemoteClient, error)
}
