package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
)

type record struct {
	session *entities.Session
	handle  []byte
}

// sessionRepository implements deps.Repository using in-memory storage
type sessionRepository struct {
	mu      sync.RWMutex
	records map[int64]*record
}

// NewRepository creates a new in-memory session repository
func NewRepository() deps.Repository {
	return &sessionRepository{
		records: make(map[int64]*record),
	}
}

func (r *sessionRepository) ensure(userID int64) *record {
	rec, ok := r.records[userID]
	if !ok {
		rec = &record{session: &entities.Session{UserID: userID, CreatedAt: time.Now()}}
		r.records[userID] = rec
	}
	return rec
}

func (r *sessionRepository) Get(ctx context.Context, userID int64) (*entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok {
		return nil, sessionerrors.ErrSessionNotFound
	}
	s := rec.session.Clone()
	s.HasHandle = len(rec.handle) > 0
	return s, nil
}

func (r *sessionRepository) Put(ctx context.Context, s *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.ensure(s.UserID)
	stored := rec.session
	next := s.Clone()
	// Fields owned by dedicated operations keep their stored values
	next.APIID = stored.APIID
	next.APIHash = stored.APIHash
	next.Phone = stored.Phone
	next.LoggerStarted = stored.LoggerStarted
	next.SentTotal = stored.SentTotal
	next.PremiumUntil = stored.PremiumUntil
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = time.Now()
	rec.session = next
	return nil
}

func (r *sessionRepository) StoreHandle(ctx context.Context, userID int64, creds domain.Credentials, handle []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.ensure(userID)
	rec.session.APIID = creds.APIID
	rec.session.APIHash = creds.APIHash
	rec.session.Phone = creds.Phone
	rec.handle = append([]byte(nil), handle...)
	return nil
}

func (r *sessionRepository) UpdateHandle(ctx context.Context, userID int64, handle []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[userID]
	if !ok {
		return sessionerrors.ErrSessionNotFound
	}
	rec.handle = append([]byte(nil), handle...)
	return nil
}

func (r *sessionRepository) LoadHandle(ctx context.Context, userID int64) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok || len(rec.handle) == 0 {
		return nil, sessionerrors.ErrHandleNotFound
	}
	return append([]byte(nil), rec.handle...), nil
}

func (r *sessionRepository) DeleteHandle(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[userID]; ok {
		rec.handle = nil
	}
	return nil
}

func (r *sessionRepository) IncrementSent(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[userID]
	if !ok {
		return 0, sessionerrors.ErrSessionNotFound
	}
	rec.session.SentTotal++
	return rec.session.SentTotal, nil
}

func (r *sessionRepository) SetPremiumUntil(ctx context.Context, userID int64, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensure(userID).session.PremiumUntil = until
	return nil
}

func (r *sessionRepository) SetLoggerStarted(ctx context.Context, userID int64, started bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensure(userID).session.LoggerStarted = started
	return nil
}
