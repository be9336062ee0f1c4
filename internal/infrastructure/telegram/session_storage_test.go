package telegram

import (
	"context"
	"testing"

	"github.com/gotd/td/session"
	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
)

// mockSessionSource implements SessionSource for testing
type mockSessionSource struct {
	session *entities.Session
	handle  []byte
	saved   [][]byte
	loadErr error
}

func (m *mockSessionSource) Get(ctx context.Context, userID int64) (*entities.Session, error) {
	if m.session == nil {
		return entities.New(userID, 0), nil
	}
	return m.session, nil
}

func (m *mockSessionSource) LoadHandle(ctx context.Context, userID int64) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.handle == nil {
		return nil, sessionerrors.ErrHandleNotFound
	}
	return m.handle, nil
}

func (m *mockSessionSource) SaveHandle(ctx context.Context, userID int64, handle []byte) error {
	m.saved = append(m.saved, handle)
	m.handle = handle
	return nil
}

func TestMemorySessionStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStorage()

	_, err := s.LoadSession(ctx)
	require.ErrorIs(t, err, session.ErrNotFound)

	data := []byte("auth-key")
	require.NoError(t, s.StoreSession(ctx, data))
	data[0] = 'X'

	got, err := s.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("auth-key"), got)
}

func TestDurableSessionStorage(t *testing.T) {
	ctx := context.Background()
	src := &mockSessionSource{}
	s := NewDurableSessionStorage(1, src)

	_, err := s.LoadSession(ctx)
	require.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, s.StoreSession(ctx, []byte("v1")))
	got, err := s.LoadSession(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), got)
	require.Len(t, src.saved, 1)

	src.loadErr = sessionerrors.ErrHandleCorrupted
	_, err = s.LoadSession(ctx)
	require.ErrorIs(t, err, sessionerrors.ErrHandleCorrupted)
}
