package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain/auth/deps"
	autherrors "github.com/Aztech-1729/sliptads/internal/domain/auth/errors"
)

const disconnectTimeout = 5 * time.Second

type entry struct {
	rec     deps.Record
	claimed bool
}

// Store keeps login attempts in memory and discards them after their TTL
type Store struct {
	mu              sync.Mutex
	records         map[int64]*entry
	cleanupInterval time.Duration
	maxAttempts     int
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	logger          zerolog.Logger
}

// NewStore creates a new attempt store and starts its cleanup loop
func NewStore(cleanupInterval time.Duration, maxAttempts int, logger zerolog.Logger) *Store {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	s := &Store{
		records:         make(map[int64]*entry),
		cleanupInterval: cleanupInterval,
		maxAttempts:     maxAttempts,
		stopCleanup:     make(chan struct{}),
		logger:          logger.With().Str("component", "login_attempt_store").Logger(),
	}

	go s.runCleanup()

	return s
}

// Load returns a copy of the user's attempt. An expired attempt is discarded on access.
func (s *Store) Load(userID int64) (*deps.Record, error) {
	return s.load(userID, 0, false)
}

// Claim returns a copy of the user's attempt and protects it from cleanup until Save or Delete
func (s *Store) Claim(userID int64, ttl time.Duration) (*deps.Record, error) {
	return s.load(userID, ttl, true)
}

func (s *Store) load(userID int64, ttl time.Duration, claim bool) (*deps.Record, error) {
	s.mu.Lock()
	e, ok := s.records[userID]
	if !ok {
		s.mu.Unlock()
		return nil, autherrors.ErrAttemptNotFound
	}
	if !e.claimed && e.rec.Attempt.IsExpired() {
		delete(s.records, userID)
		s.mu.Unlock()
		release(&e.rec)
		return nil, autherrors.ErrAttemptExpired
	}
	if claim {
		e.claimed = true
		if ttl > 0 {
			e.rec.Attempt.ExpiresAt = time.Now().Add(ttl)
		}
	}
	rec := e.rec
	s.mu.Unlock()

	return &rec, nil
}

// Save inserts or replaces the user's record
func (s *Store) Save(rec *deps.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.Attempt.UserID]; !exists && s.maxAttempts > 0 && len(s.records) >= s.maxAttempts {
		return autherrors.ErrTooManyAttempts
	}
	s.records[rec.Attempt.UserID] = &entry{rec: *rec}
	return nil
}

// Delete removes the user's record and returns it
func (s *Store) Delete(userID int64) *deps.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[userID]
	if !ok {
		return nil
	}
	delete(s.records, userID)
	return &e.rec
}

// Count returns the number of stored attempts
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Cleanup discards expired attempts and disconnects their clients.
// Claimed attempts are left to their owner.
func (s *Store) Cleanup() int {
	var expired []deps.Record

	s.mu.Lock()
	for userID, e := range s.records {
		if !e.claimed && e.rec.Attempt.IsExpired() {
			expired = append(expired, e.rec)
			delete(s.records, userID)
		}
	}
	s.mu.Unlock()

	for i := range expired {
		release(&expired[i])
	}

	if len(expired) > 0 {
		s.logger.Info().Int("removed", len(expired)).Msg("discarded expired login attempts")
	}
	return len(expired)
}

// Stop stops the cleanup loop and disconnects every remaining client
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })

	s.mu.Lock()
	records := s.records
	s.records = make(map[int64]*entry)
	s.mu.Unlock()

	for _, e := range records {
		release(&e.rec)
	}
}

func (s *Store) runCleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// release disconnects the transient client of a discarded attempt
func release(rec *deps.Record) {
	if rec == nil || rec.Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	_ = rec.Client.Disconnect(ctx)
}

var _ deps.AttemptStore = (*Store)(nil)
