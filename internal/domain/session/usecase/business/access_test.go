package business

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
)

func TestAccessGate_Check(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	gate := NewAccessGate(&config.AccessConfig{Gated: true, OwnerIDs: []int64{7}})
	gate.now = func() time.Time { return now }

	require.NoError(t, gate.Check(&entities.Session{UserID: 7}))
	require.NoError(t, gate.Check(&entities.Session{UserID: 8, PremiumUntil: now.Add(time.Hour)}))
	require.ErrorIs(t, gate.Check(&entities.Session{UserID: 8, PremiumUntil: now}), sessionerrors.ErrPremiumRequired)
	require.ErrorIs(t, gate.Check(&entities.Session{UserID: 9}), sessionerrors.ErrPremiumRequired)

	open := NewAccessGate(&config.AccessConfig{})
	require.NoError(t, open.Check(&entities.Session{UserID: 9}))
}

func TestUseCase_ExtendPremium(t *testing.T) {
	ctx := context.Background()
	uc := newUseCase(t, nil)

	s, err := uc.ExtendPremium(ctx, 4, 24*time.Hour)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), s.PremiumUntil, time.Minute)
	first := s.PremiumUntil

	// running access is extended from its end, not from now
	s, err = uc.ExtendPremium(ctx, 4, 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, first.Add(24*time.Hour), s.PremiumUntil)

	stored, err := uc.Get(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, s.PremiumUntil, stored.PremiumUntil)

	// ordinary updates keep paid access
	_, err = uc.Update(ctx, 4, func(s *entities.Session) error {
		s.Filter = "x"
		return nil
	})
	require.NoError(t, err)
	stored, err = uc.Get(ctx, 4)
	require.NoError(t, err)
	require.True(t, stored.PremiumActive(time.Now()))

	s, err = uc.ExtendPremium(ctx, 4, 0)
	require.NoError(t, err)
	require.True(t, s.PremiumUntil.IsZero())

	_, err = uc.ExtendPremium(ctx, 0, time.Hour)
	require.ErrorIs(t, err, sessionerrors.ErrInvalidUserID)
}
