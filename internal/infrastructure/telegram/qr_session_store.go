package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain/qrauth/entities"
	qrerrors "github.com/Aztech-1729/sliptads/internal/domain/qrauth/errors"
)

// InternalQRSession holds runtime data for QR authentication
type InternalQRSession struct {
	*entities.QRAuthSession
	PasswordChan chan string
	// done is closed once the session leaves the waiting_password state
	done       chan struct{}
	cancelFunc context.CancelFunc
	mu         sync.RWMutex
}

func newInternalQRSession(id string, userID int64, ttl time.Duration) *InternalQRSession {
	now := time.Now()
	return &InternalQRSession{
		QRAuthSession: &entities.QRAuthSession{
			ID:        id,
			UserID:    userID,
			Status:    entities.StatusPending,
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
			UpdatedAt: now,
		},
		PasswordChan: make(chan string, 1),
		done:         make(chan struct{}),
	}
}

// UpdateStatus safely updates the session status
func (s *InternalQRSession) UpdateStatus(status entities.QRAuthStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStatus(status)
}

func (s *InternalQRSession) setStatus(status entities.QRAuthStatus) {
	if s.QRAuthSession.IsTerminal() {
		return
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	if s.QRAuthSession.IsTerminal() {
		close(s.done)
	}
}

// SetQRCode safely sets the QR code data
func (s *InternalQRSession) SetQRCode(url, base64 string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.QRURL = url
	s.QRCodeBase64 = base64
	s.UpdatedAt = time.Now()
}

// SetError safely marks the session failed
func (s *InternalQRSession) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.QRAuthSession.IsTerminal() {
		return
	}
	if err != nil {
		s.Error = err.Error()
	}
	s.setStatus(entities.StatusFailed)
}

// SetSuccess safely marks the session as successful
func (s *InternalQRSession) SetSuccess(phoneNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.PhoneNumber = phoneNumber
	s.setStatus(entities.StatusSuccess)
}

// SetCancelFunc binds the context of the running login
func (s *InternalQRSession) SetCancelFunc(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelFunc = cancel
}

// Cancel stops the running login and marks the session cancelled
func (s *InternalQRSession) Cancel() {
	s.mu.Lock()
	cancel := s.cancelFunc
	s.setStatus(entities.StatusCancelled)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Done is closed when the session reaches a terminal state
func (s *InternalQRSession) Done() <-chan struct{} {
	return s.done
}

// GetSnapshot returns a thread-safe copy of the session state
func (s *InternalQRSession) GetSnapshot() *entities.QRAuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := *s.QRAuthSession
	return &snapshot
}

// QRSessionStore stores active QR authentication sessions in memory
type QRSessionStore struct {
	sessions        sync.Map // map[string]*InternalQRSession
	sessionTTL      time.Duration
	cleanupInterval time.Duration
	maxSessions     int
	sessionCount    int
	countMu         sync.Mutex
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	logger          zerolog.Logger
}

// NewQRSessionStore creates a new QR session store
func NewQRSessionStore(sessionTTL, cleanupInterval time.Duration, maxSessions int, logger zerolog.Logger) *QRSessionStore {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	store := &QRSessionStore{
		sessionTTL:      sessionTTL,
		cleanupInterval: cleanupInterval,
		maxSessions:     maxSessions,
		stopCleanup:     make(chan struct{}),
		logger:          logger.With().Str("component", "qr_session_store").Logger(),
	}

	go store.runCleanup()

	return store
}

// TTL returns the lifetime of new sessions
func (s *QRSessionStore) TTL() time.Duration {
	return s.sessionTTL
}

// Store saves a session to the store
func (s *QRSessionStore) Store(session *InternalQRSession) error {
	s.countMu.Lock()
	if s.maxSessions > 0 && s.sessionCount >= s.maxSessions {
		s.countMu.Unlock()
		return qrerrors.ErrMaxSessionsReached
	}
	s.sessionCount++
	s.countMu.Unlock()

	s.sessions.Store(session.ID, session)
	s.logger.Debug().
		Str("session_id", session.ID).
		Int64("user_id", session.UserID).
		Msg("session stored")
	return nil
}

// Load retrieves a session by ID. Sessions of other users are reported as missing.
func (s *QRSessionStore) Load(userID int64, sessionID string) (*InternalQRSession, error) {
	value, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, qrerrors.ErrSessionNotFound
	}

	session := value.(*InternalQRSession)
	if session.UserID != userID {
		return nil, qrerrors.ErrSessionNotFound
	}

	if session.IsExpired() {
		session.UpdateStatus(entities.StatusExpired)
		s.Delete(sessionID)
		return nil, qrerrors.ErrSessionExpired
	}

	return session, nil
}

// ActiveFor returns the user's sessions that are still running
func (s *QRSessionStore) ActiveFor(userID int64) []*InternalQRSession {
	var active []*InternalQRSession
	s.sessions.Range(func(_, value any) bool {
		session := value.(*InternalQRSession)
		if session.UserID == userID && !session.GetSnapshot().IsTerminal() {
			active = append(active, session)
		}
		return true
	})
	return active
}

// Delete removes a session from the store
func (s *QRSessionStore) Delete(sessionID string) {
	if _, loaded := s.sessions.LoadAndDelete(sessionID); loaded {
		s.countMu.Lock()
		s.sessionCount--
		s.countMu.Unlock()
		s.logger.Debug().Str("session_id", sessionID).Msg("session deleted")
	}
}

// Cleanup removes all expired and finished sessions and returns how many were removed
func (s *QRSessionStore) Cleanup() int {
	var toDelete []*InternalQRSession

	s.sessions.Range(func(_, value any) bool {
		session := value.(*InternalQRSession)
		snapshot := session.GetSnapshot()
		if snapshot.IsExpired() || snapshot.IsTerminal() {
			toDelete = append(toDelete, session)
		}
		return true
	})

	for _, session := range toDelete {
		if session.GetSnapshot().IsExpired() {
			session.Cancel()
		}
		s.Delete(session.ID)
	}

	if len(toDelete) > 0 {
		s.logger.Info().Int("removed", len(toDelete)).Msg("cleaned up expired sessions")
	}

	return len(toDelete)
}

// Count returns the current number of stored sessions
func (s *QRSessionStore) Count() int {
	s.countMu.Lock()
	defer s.countMu.Unlock()
	return s.sessionCount
}

// Stop stops the cleanup goroutine
func (s *QRSessionStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
}

// runCleanup periodically removes expired sessions
func (s *QRSessionStore) runCleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.cleanupInterval).
		Dur("ttl", s.sessionTTL).
		Msg("QR session cleanup started")

	for {
		select {
		case <-s.stopCleanup:
			s.logger.Info().Msg("QR session cleanup stopped")
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
