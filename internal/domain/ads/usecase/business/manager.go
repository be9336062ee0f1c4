package business

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	adserrors "github.com/Aztech-1729/sliptads/internal/domain/ads/errors"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/pkg/mutex"
)

// Options groups the manager's collaborators
type Options struct {
	Factory  domain.ClientFactory
	Sessions sessiondeps.Service
	// Access limits who may start campaigns, nil lets everyone
	Access   sessiondeps.AccessGate
	Notifier deps.Notifier
	Media    deps.MediaStore
	Lease    deps.Lease
	// LeaseTTL enables periodic lease refresh while a worker runs
	LeaseTTL time.Duration
	Delivery *config.DeliveryConfig
	Telegram *config.TelegramConfig
	// RequireLogger rejects Start until the user has started the logger bot
	RequireLogger bool
	Logger        zerolog.Logger
	Metrics       *metrics.Metrics
}

// Manager is the registry of delivery workers. At most one worker runs per user.
type Manager struct {
	opts   Options
	locks  *mutex.KeyedMutex
	logger zerolog.Logger

	mu      sync.Mutex
	workers map[int64]*worker
}

// NewManager creates a new worker manager
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:    opts,
		locks:   &mutex.KeyedMutex{},
		logger:  opts.Logger.With().Str("component", "ads_manager").Logger(),
		workers: make(map[int64]*worker),
	}
}

var _ deps.Service = (*Manager)(nil)

func lockKey(userID int64) string {
	return "ads:" + strconv.FormatInt(userID, 10)
}

func (m *Manager) get(userID int64) *worker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.workers[userID]
}

func (m *Manager) remove(w *worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.workers[w.userID] == w {
		delete(m.workers, w.userID)
	}
}

// Start validates the configuration, locks it and launches the worker
func (m *Manager) Start(ctx context.Context, userID int64) (*entities.Status, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	key := lockKey(userID)
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	if m.get(userID) != nil {
		return nil, adserrors.ErrAlreadyRunning
	}

	s, err := m.opts.Sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if missing := s.Ad.Missing(); missing != "" {
		return nil, fmt.Errorf("%w: missing %s", adserrors.ErrSetupIncomplete, missing)
	}
	if m.opts.Access != nil {
		if err := m.opts.Access.Check(s); err != nil {
			return nil, err
		}
	}
	if m.opts.RequireLogger && !s.LoggerStarted {
		return nil, adserrors.ErrLoggerNotStarted
	}

	acquired, err := m.opts.Lease.Acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire worker lease: %w", err)
	}
	if !acquired {
		return nil, adserrors.ErrAlreadyRunning
	}

	client, err := m.opts.Factory.NewSessionClient(ctx, userID)
	if err != nil {
		m.releaseLease(userID)
		return nil, err
	}

	locked, err := m.opts.Sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		s.Ad.Locked = true
		return nil
	})
	if err != nil {
		m.releaseLease(userID)
		return nil, err
	}

	w := m.newWorker(locked, client)
	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	m.mu.Lock()
	m.workers[userID] = w
	m.mu.Unlock()

	m.opts.Metrics.CampaignStarted()
	go w.run(runCtx)

	m.logger.Info().
		Int64("user_id", userID).
		Str("source", string(locked.Ad.Source)).
		Int("targets", len(locked.Ad.Targets)).
		Msg("Ads started")

	st := w.snapshot()
	st.SentTotal = locked.SentTotal
	return &st, nil
}

func (m *Manager) newWorker(s *sessionentities.Session, client domain.RemoteClient) *worker {
	titles := make(map[string]string, len(s.Catalog))
	for _, d := range s.Catalog {
		titles[d.DisplayID] = d.Title
	}

	now := time.Now().UTC()
	w := &worker{
		userID:      s.UserID,
		ad:          s.Ad,
		titles:      titles,
		client:      client,
		sessions:    m.opts.Sessions,
		notifier:    m.opts.Notifier,
		media:       m.opts.Media,
		lease:       m.opts.Lease,
		leaseTTL:    m.opts.LeaseTTL,
		floodBuffer: m.opts.Delivery.FloodWaitBuffer,
		logger:      m.logger.With().Int64("user_id", s.UserID).Logger(),
		metrics:     m.opts.Metrics,
		done:        make(chan struct{}),
		onExit:      m.remove,
		sentTotal:   s.SentTotal,
		progress: entities.Status{
			Total:     len(s.Ad.Targets),
			StartedAt: &now,
		},
	}
	if m.opts.Telegram != nil {
		w.connectTimeout = m.opts.Telegram.ConnectTimeout
	}
	return w
}

func (m *Manager) releaseLease(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.opts.Lease.Release(ctx, userID); err != nil {
		m.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to release worker lease")
	}
}

// Stop cancels the worker and waits until its stop sequence has finished
func (m *Manager) Stop(ctx context.Context, userID int64) (*entities.Status, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	key := lockKey(userID)
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	w := m.get(userID)
	if w == nil {
		return m.clearStaleLock(ctx, userID)
	}

	w.cancel()
	select {
	case <-w.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.logger.Info().Int64("user_id", userID).Msg("Ads stopped")
	return m.Status(ctx, userID)
}

// clearStaleLock unlocks a configuration left locked by a worker that no
// longer exists, unless another replica still holds the lease
func (m *Manager) clearStaleLock(ctx context.Context, userID int64) (*entities.Status, error) {
	s, err := m.opts.Sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.Ad.Locked {
		return nil, adserrors.ErrNotRunning
	}

	acquired, err := m.opts.Lease.Acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire worker lease: %w", err)
	}
	if !acquired {
		return nil, adserrors.ErrAlreadyRunning
	}
	defer m.releaseLease(userID)

	if _, err := m.opts.Sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		s.Ad.Locked = false
		return nil
	}); err != nil {
		return nil, err
	}

	m.logger.Warn().Int64("user_id", userID).Msg("Cleared stale configuration lock")
	return m.Status(ctx, userID)
}

// Status reports the worker progress and the durable sent counter
func (m *Manager) Status(ctx context.Context, userID int64) (*entities.Status, error) {
	s, err := m.opts.Sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	st := entities.Status{Total: len(s.Ad.Targets)}
	if w := m.get(userID); w != nil {
		st = w.snapshot()
	}
	st.SentTotal = s.SentTotal
	return &st, nil
}

// StopAll cancels every worker and waits for them until ctx is done
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	workers := make([]*worker, 0, len(m.workers))
	for _, w := range m.workers {
		workers = append(workers, w)
	}
	m.mu.Unlock()

	for _, w := range workers {
		w.cancel()
	}
	for _, w := range workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if len(workers) > 0 {
		m.logger.Info().Int("count", len(workers)).Msg("All delivery workers stopped")
	}
	return nil
}

// Running returns the number of active workers
func (m *Manager) Running() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}
