package business

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/entities"
	catalogerrors "github.com/Aztech-1729/sliptads/internal/domain/catalog/errors"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	sessionerrors "github.com/Aztech-1729/sliptads/internal/domain/session/errors"
	"github.com/Aztech-1729/sliptads/pkg/tglink"
)

// UseCase implements deps.Service on top of the session store
type UseCase struct {
	builder  deps.Builder
	joiner   deps.Joiner
	sessions sessiondeps.Service
	access   sessiondeps.AccessGate
	cfg      *config.CatalogConfig
	logger   zerolog.Logger
}

// NewUseCase creates a new catalog use case. A nil access gate lets every user join.
func NewUseCase(
	builder deps.Builder,
	joiner deps.Joiner,
	sessions sessiondeps.Service,
	access sessiondeps.AccessGate,
	cfg *config.CatalogConfig,
	logger zerolog.Logger,
) *UseCase {
	return &UseCase{
		builder:  builder,
		joiner:   joiner,
		sessions: sessions,
		access:   access,
		cfg:      cfg,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

var _ deps.Service = (*UseCase)(nil)

func (u *UseCase) page(s *sessionentities.Session, n int) *entities.Page {
	p := entities.Paginate(s, n, u.cfg.PageSize)
	return &p
}

// Refresh rebuilds the catalog. The build runs outside the session lock and is
// refused while a worker owns the user's connection.
func (u *UseCase) Refresh(ctx context.Context, userID int64) (*entities.Page, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	current, err := u.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Ad.Locked {
		return nil, sessionerrors.ErrConfigLocked
	}

	catalog, err := u.builder.Build(ctx, userID)
	if err != nil {
		return nil, err
	}

	s, err := u.sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		if s.Ad.Locked {
			return sessionerrors.ErrConfigLocked
		}
		s.Catalog = catalog
		s.Selected = nil
		s.Filter = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info().
		Int64("user_id", userID).
		Int("destinations", len(catalog)).
		Msg("Catalog refreshed")

	return u.page(s, 0), nil
}

// Join runs a join batch. It is refused while a worker owns the user's
// connection, both would share one durable session.
func (u *UseCase) Join(ctx context.Context, userID int64, raw string) (*entities.JoinReport, error) {
	if userID <= 0 {
		return nil, sessionerrors.ErrInvalidUserID
	}

	tokens := tglink.SplitTargets(raw)
	if len(tokens) == 0 {
		return nil, catalogerrors.ErrNoJoinTargets
	}
	if u.cfg.JoinMax > 0 && len(tokens) > u.cfg.JoinMax {
		return nil, fmt.Errorf("%w: %d given, at most %d", catalogerrors.ErrTooManyTargets, len(tokens), u.cfg.JoinMax)
	}

	s, err := u.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.access != nil {
		if err := u.access.Check(s); err != nil {
			return nil, err
		}
	}
	if s.Ad.Locked {
		return nil, sessionerrors.ErrConfigLocked
	}

	report, err := u.joiner.Join(ctx, userID, tokens)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns page n of the filtered catalog
func (u *UseCase) List(ctx context.Context, userID int64, page int) (*entities.Page, error) {
	if page < 0 {
		return nil, catalogerrors.ErrInvalidPage
	}
	s, err := u.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.page(s, page), nil
}

// Toggle adds or removes one destination from the selection
func (u *UseCase) Toggle(ctx context.Context, userID int64, displayID string, page int) (*entities.Page, error) {
	s, err := u.sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		if _, ok := s.FindDestination(displayID); !ok {
			return catalogerrors.ErrDestinationNotFound
		}
		if s.IsSelected(displayID) {
			s.Selected = without(s.Selected, map[string]bool{displayID: true})
		} else {
			s.Selected = append(s.Selected, displayID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.page(s, page), nil
}

// SetFilter sets the title search filter
func (u *UseCase) SetFilter(ctx context.Context, userID int64, filter string) (*entities.Page, error) {
	s, err := u.sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		s.Filter = strings.TrimSpace(filter)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.page(s, 0), nil
}

// ClearFilter removes the title search filter
func (u *UseCase) ClearFilter(ctx context.Context, userID int64) (*entities.Page, error) {
	return u.SetFilter(ctx, userID, "")
}

// SelectAll selects every matching destination of kind
func (u *UseCase) SelectAll(ctx context.Context, userID int64, kind sessionentities.DestinationKind) (*entities.Page, error) {
	s, err := u.sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		added := 0
		for _, d := range entities.Filter(s.Catalog, s.Filter) {
			if d.Kind.Matches(kind) && !s.IsSelected(d.DisplayID) {
				s.Selected = append(s.Selected, d.DisplayID)
				added++
			}
		}
		u.logger.Debug().Int64("user_id", userID).Str("kind", string(kind)).Int("added", added).Msg("Bulk select")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.page(s, 0), nil
}

// UnselectAll removes every matching destination of kind from the selection
func (u *UseCase) UnselectAll(ctx context.Context, userID int64, kind sessionentities.DestinationKind) (*entities.Page, error) {
	s, err := u.sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		drop := make(map[string]bool)
		for _, d := range entities.Filter(s.Catalog, s.Filter) {
			if d.Kind.Matches(kind) {
				drop[d.DisplayID] = true
			}
		}
		s.Selected = without(s.Selected, drop)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.page(s, 0), nil
}

// Confirm copies the selection into the ad targets in catalog order
func (u *UseCase) Confirm(ctx context.Context, userID int64) ([]string, error) {
	s, err := u.sessions.Update(ctx, userID, func(s *sessionentities.Session) error {
		if s.Ad.Locked {
			return sessionerrors.ErrConfigLocked
		}

		var targets []string
		for _, d := range s.Catalog {
			if s.IsSelected(d.DisplayID) {
				targets = append(targets, d.DisplayID)
			}
		}
		if len(targets) == 0 {
			return catalogerrors.ErrEmptySelection
		}
		s.Ad.Targets = targets
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info().Int64("user_id", userID).Int("targets", len(s.Ad.Targets)).Msg("Targets confirmed")
	return s.Ad.Targets, nil
}

func without(ids []string, drop map[string]bool) []string {
	out := ids[:0:0]
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}
