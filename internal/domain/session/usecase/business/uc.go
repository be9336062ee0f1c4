package business

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/pkg/mutex"
	"github.com/Aztech-1729/sliptads/pkg/sealer"
)

// UseCase implements deps.Service
type UseCase struct {
	repo    deps.Repository
	sealer  *sealer.Sealer
	locks   *mutex.KeyedMutex
	cfg     *config.DeliveryConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewUseCase creates a new session use case
func NewUseCase(
	repo deps.Repository,
	s *sealer.Sealer,
	cfg *config.DeliveryConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		repo:    repo,
		sealer:  s,
		locks:   &mutex.KeyedMutex{},
		cfg:     cfg,
		logger:  logger.With().Str("component", "session").Logger(),
		metrics: m,
	}
}

var _ deps.Service = (*UseCase)(nil)

func lockKey(userID int64) string {
	return "session:" + strconv.FormatInt(userID, 10)
}

func (u *UseCase) load(ctx context.Context, userID int64) (*entities.Session, error) {
	s, err := u.repo.Get(ctx, userID)
	if errors.Is(err, sessionerrors.ErrSessionNotFound) {
		return entities.New(userID, u.cfg.RoundDelayMin), nil
	}
	return s, err
}

// Get returns the user's session or a fresh one with defaults
func (u *UseCase) Get(ctx context.Context, userID int64) (*entities.Session, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}
	return u.load(ctx, userID)
}

// Update applies fn to a copy of the session and stores the result.
// The stored record is untouched when fn fails.
func (u *UseCase) Update(ctx context.Context, userID int64, fn func(s *entities.Session) error) (*entities.Session, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	key := lockKey(userID)
	u.locks.Lock(key)
	defer u.locks.Unlock(key)

	current, err := u.load(ctx, userID)
	if err != nil {
		u.metrics.RecordSessionUpdateError("load_failed")
		return nil, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	if err := u.repo.Put(ctx, next); err != nil {
		u.logger.Error().Err(err).
			Int64("user_id", userID).
			Msg("Failed to store session")
		u.metrics.RecordSessionUpdateError("put_failed")
		return nil, err
	}

	u.metrics.RecordSessionUpdate()
	return next, nil
}

// PromoteHandle stores the durable handle and credentials, replacing any previous handle
func (u *UseCase) PromoteHandle(ctx context.Context, userID int64, creds domain.Credentials, handle []byte) error {
	key := lockKey(userID)
	u.locks.Lock(key)
	defer u.locks.Unlock(key)

	sealed, err := u.sealer.Seal(handle)
	if err != nil {
		return err
	}
	if err := u.repo.StoreHandle(ctx, userID, creds, sealed); err != nil {
		u.logger.Error().Err(err).
			Int64("user_id", userID).
			Msg("Failed to promote session handle")
		return err
	}

	u.logger.Info().
		Int64("user_id", userID).
		Bool("encrypted", u.sealer.Enabled()).
		Msg("Session handle promoted")
	return nil
}

// LoadHandle returns the opened durable handle
func (u *UseCase) LoadHandle(ctx context.Context, userID int64) ([]byte, error) {
	sealed, err := u.repo.LoadHandle(ctx, userID)
	if err != nil {
		return nil, err
	}
	handle, err := u.sealer.Open(sealed)
	if err != nil {
		u.logger.Error().Err(err).
			Int64("user_id", userID).
			Msg("Failed to open stored session handle")
		return nil, sessionerrors.ErrHandleCorrupted
	}
	return handle, nil
}

// SaveHandle rewrites the durable handle after the client refreshed it
func (u *UseCase) SaveHandle(ctx context.Context, userID int64, handle []byte) error {
	sealed, err := u.sealer.Seal(handle)
	if err != nil {
		return err
	}
	return u.repo.UpdateHandle(ctx, userID, sealed)
}

// Logout drops the durable handle. Configuration and metrics stay.
func (u *UseCase) Logout(ctx context.Context, userID int64) error {
	key := lockKey(userID)
	u.locks.Lock(key)
	defer u.locks.Unlock(key)

	if err := u.repo.DeleteHandle(ctx, userID); err != nil {
		return err
	}
	u.logger.Info().Int64("user_id", userID).Msg("Session handle removed")
	return nil
}

// RecordSent increments the durable sent counter
func (u *UseCase) RecordSent(ctx context.Context, userID int64) (int64, error) {
	total, err := u.repo.IncrementSent(ctx, userID)
	if err != nil {
		u.logger.Warn().Err(err).
			Int64("user_id", userID).
			Msg("Failed to increment sent counter")
		return 0, err
	}
	return total, nil
}

// SetLoggerStarted records that the user started the logger bot
func (u *UseCase) SetLoggerStarted(ctx context.Context, userID int64, started bool) error {
	if userID <= 0 {
		return sessionerrors.ErrInvalidUserID
	}
	return u.repo.SetLoggerStarted(ctx, userID, started)
}

// ExtendPremium extends or, for a non positive d, revokes paid access
func (u *UseCase) ExtendPremium(ctx context.Context, userID int64, d time.Duration) (*entities.Session, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	key := lockKey(userID)
	u.locks.Lock(key)
	defer u.locks.Unlock(key)

	s, err := u.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	var until time.Time
	if d > 0 {
		base := time.Now()
		if s.PremiumUntil.After(base) {
			base = s.PremiumUntil
		}
		until = base.Add(d)
	}

	if err := u.repo.SetPremiumUntil(ctx, userID, until); err != nil {
		return nil, err
	}
	s.PremiumUntil = until

	u.logger.Info().
		Int64("user_id", userID).
		Time("premium_until", until).
		Msg("Premium updated")
	return s, nil
}
