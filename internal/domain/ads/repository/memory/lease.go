package memory

import (
	"context"
	"sync"
)

// Lease is an in-process lease used when no Redis is configured
type Lease struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

// NewLease creates an in-process lease
func NewLease() *Lease {
	return &Lease{held: make(map[int64]struct{})}
}

func (l *Lease) Acquire(_ context.Context, userID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[userID]; ok {
		return false, nil
	}
	l.held[userID] = struct{}{}
	return true, nil
}

func (l *Lease) Refresh(context.Context, int64) error {
	return nil
}

func (l *Lease) Release(_ context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, userID)
	return nil
}
