package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
)

// Sink is a named notification target
type Sink struct {
	Name     string
	Notifier deps.Notifier
}

// Filter is implemented by sinks that only take some event types
type Filter interface {
	Accepts(event entities.Event) bool
}

// Notifier fans events out to every sink and logs each event
type Notifier struct {
	sinks   []Sink
	timeout time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// New creates a fan-out notifier. Sinks with a nil Notifier are skipped.
// A positive timeout bounds every sink call.
func New(logger zerolog.Logger, m *metrics.Metrics, timeout time.Duration, sinks ...Sink) *Notifier {
	active := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s.Notifier != nil {
			active = append(active, s)
		}
	}
	return &Notifier{
		sinks:   active,
		timeout: timeout,
		logger:  logger.With().Str("component", "notifier").Logger(),
		metrics: m,
	}
}

var _ deps.Notifier = (*Notifier)(nil)

// Notify delivers the event to every sink concurrently and returns once all
// of them finished or timed out. One failing sink does not block the others.
func (n *Notifier) Notify(ctx context.Context, userID int64, event entities.Event) error {
	n.log(userID, event)

	errs := make([]error, len(n.sinks))
	var g errgroup.Group
	for i, s := range n.sinks {
		if f, ok := s.Notifier.(Filter); ok && !f.Accepts(event) {
			continue
		}
		i, s := i, s
		g.Go(func() error {
			errs[i] = n.send(ctx, s, userID, event)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

func (n *Notifier) send(ctx context.Context, s Sink, userID int64, event entities.Event) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err := s.Notifier.Notify(ctx, userID, event); err != nil {
		n.metrics.RecordNotificationError(s.Name)
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	n.metrics.RecordNotification(s.Name)
	return nil
}

func (n *Notifier) log(userID int64, event entities.Event) {
	e := n.logger.Debug()
	if event.Type != entities.EventProgress {
		e = n.logger.Info()
	}
	e.Int64("user_id", userID).
		Str("event", string(event.Type)).
		Str("event_id", event.ID).
		Msg(event.Text())
}
