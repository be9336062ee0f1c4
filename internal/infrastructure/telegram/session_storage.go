package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"

	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
)

// SessionSource is the part of the session store the client layer needs
type SessionSource interface {
	Get(ctx context.Context, userID int64) (*entities.Session, error)
	LoadHandle(ctx context.Context, userID int64) ([]byte, error)
	SaveHandle(ctx context.Context, userID int64, handle []byte) error
}

// MemorySessionStorage keeps a transient session handle in memory.
// Nothing is written anywhere else until the handle is promoted.
type MemorySessionStorage struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemorySessionStorage creates a new memory session storage
func NewMemorySessionStorage() *MemorySessionStorage {
	return &MemorySessionStorage{}
}

// LoadSession loads session data from memory
func (s *MemorySessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil, session.ErrNotFound
	}
	return append([]byte(nil), s.data...), nil
}

// StoreSession stores session data in memory
func (s *MemorySessionStorage) StoreSession(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = append([]byte(nil), data...)
	return nil
}

// DurableSessionStorage reads and refreshes the user's promoted handle
type DurableSessionStorage struct {
	userID int64
	source SessionSource
}

// NewDurableSessionStorage creates storage bound to one user's durable handle
func NewDurableSessionStorage(userID int64, source SessionSource) *DurableSessionStorage {
	return &DurableSessionStorage{userID: userID, source: source}
}

// LoadSession loads the durable handle
func (s *DurableSessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	data, err := s.source.LoadHandle(ctx, s.userID)
	if errors.Is(err, sessionerrors.ErrHandleNotFound) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return data, nil
}

// StoreSession rewrites the durable handle
func (s *DurableSessionStorage) StoreSession(ctx context.Context, data []byte) error {
	if err := s.source.SaveHandle(ctx, s.userID, data); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

var (
	_ session.Storage = (*MemorySessionStorage)(nil)
	_ session.Storage = (*DurableSessionStorage)(nil)
)
