package business

import (
	"time"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
)

// AccessGate lets owners and users with running premium use paid features.
// With gating off everybody passes.
type AccessGate struct {
	gated  bool
	owners map[int64]struct{}
	now    func() time.Time
}

// NewAccessGate creates the gate from configuration
func NewAccessGate(cfg *config.AccessConfig) *AccessGate {
	g := &AccessGate{
		gated:  cfg.Gated,
		owners: make(map[int64]struct{}, len(cfg.OwnerIDs)),
		now:    time.Now,
	}
	for _, id := range cfg.OwnerIDs {
		g.owners[id] = struct{}{}
	}
	return g
}

var _ deps.AccessGate = (*AccessGate)(nil)

// Check returns ErrPremiumRequired when s may not use paid features
func (g *AccessGate) Check(s *entities.Session) error {
	if !g.gated {
		return nil
	}
	if _, ok := g.owners[s.UserID]; ok {
		return nil
	}
	if s.PremiumActive(g.now()) {
		return nil
	}
	return sessionerrors.ErrPremiumRequired
}
