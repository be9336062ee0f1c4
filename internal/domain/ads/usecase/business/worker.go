package business

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/deps"
	"github.com/Aztech-1729/sliptads/internal/domain/ads/entities"
	adserrors "github.com/Aztech-1729/sliptads/internal/domain/ads/errors"
	sessiondeps "github.com/Aztech-1729/sliptads/internal/domain/session/deps"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
)

const finishTimeout = 10 * time.Second

type endReason int

const (
	endStopped endReason = iota
	endLoginRequired
	endPanic
)

// outcome describes how one destination was delivered
type outcome struct {
	method   string
	degraded bool
	sent     domain.SentMessage
}

// worker runs the delivery rounds of one user until cancelled
type worker struct {
	userID         int64
	ad             sessionentities.AdConfig
	titles         map[string]string
	client         domain.RemoteClient
	sessions       sessiondeps.Service
	notifier       deps.Notifier
	media          deps.MediaStore
	lease          deps.Lease
	leaseTTL       time.Duration
	floodBuffer    time.Duration
	connectTimeout time.Duration
	logger         zerolog.Logger
	metrics        *metrics.Metrics

	cancel    context.CancelFunc
	done      chan struct{}
	onExit    func(w *worker)
	leaseLost atomic.Bool

	// owned by the run goroutine
	end       endReason
	sentTotal int64
	mediaFile *domain.MediaFile

	mu       sync.Mutex
	progress entities.Status
}

func (w *worker) snapshot() entities.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.progress
	st.Running = true
	return st
}

func (w *worker) setProgress(round, sent, total int) {
	w.mu.Lock()
	w.progress.Round = round
	w.progress.Sent = sent
	w.progress.Total = total
	w.mu.Unlock()
}

func (w *worker) run(ctx context.Context) {
	defer w.finish()
	defer w.recoverPanic()

	if w.lease != nil && w.leaseTTL > 0 {
		go w.keepLease(ctx)
	}

	if err := w.connect(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		w.sessionLost(ctx, err)
		return
	}

	for round := 1; ; round++ {
		if !w.round(ctx, round) {
			return
		}
	}
}

func (w *worker) connect(ctx context.Context) error {
	connectCtx := ctx
	if w.connectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, w.connectTimeout)
		defer cancel()
	}

	if err := w.client.Connect(connectCtx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConnectionFailed, err)
	}

	authorized, err := w.client.IsAuthorized(ctx)
	if err != nil {
		return err
	}
	if !authorized {
		return domain.ErrLoginRequired
	}
	return nil
}

// round delivers to every target once. It returns false when the run must end.
func (w *worker) round(ctx context.Context, round int) bool {
	started := time.Now()
	total := len(w.ad.Targets)
	sent, succeeded := 0, 0

	w.setProgress(round, sent, total)
	w.emitProgress(ctx, round, sent, total)

	for _, displayID := range w.ad.Targets {
		if ctx.Err() != nil {
			return false
		}

		res, err := w.deliverTo(ctx, displayID)
		if err != nil && ctx.Err() != nil {
			return false
		}
		if err != nil && !w.client.IsConnected() {
			err = fmt.Errorf("%w: %w", domain.ErrNotConnected, err)
		}
		if err != nil && isSessionLoss(err) {
			w.sessionLost(ctx, err)
			return false
		}

		sent++
		w.setProgress(round, sent, total)

		if err != nil {
			w.reportFailure(ctx, round, sent, total, displayID, err)

			var re *domain.RemoteError
			if errors.As(err, &re) && re.Kind == domain.KindRateLimited {
				w.metrics.RecordRateLimit(re.Wait.Seconds())
				if !sleep(ctx, re.Wait+w.floodBuffer) {
					return false
				}
			}
		} else {
			succeeded++
			w.reportSuccess(ctx, round, sent, total, displayID, res)
		}

		w.emitProgress(ctx, round, sent, total)

		if w.ad.SendGap > 0 && sent < total {
			if !sleep(ctx, w.ad.SendGap) {
				return false
			}
		}
	}

	w.metrics.RecordRound(time.Since(started).Seconds())

	ev := entities.NewEvent(entities.EventRoundComplete, w.userID)
	ev.Round = round
	ev.Sent = sent
	ev.Total = total
	ev.Succeeded = succeeded
	ev.WaitSeconds = int(w.ad.RoundDelay.Seconds())
	w.emit(ctx, ev)

	w.logger.Info().
		Int("round", round).
		Int("succeeded", succeeded).
		Int("total", total).
		Dur("wait", w.ad.RoundDelay).
		Msg("Round complete")

	return sleep(ctx, w.ad.RoundDelay)
}

func (w *worker) deliverTo(ctx context.Context, displayID string) (outcome, error) {
	target, err := w.client.Resolve(ctx, displayID)
	if err != nil {
		return outcome{}, err
	}

	switch {
	case w.ad.Source.IsForward():
		return w.forward(ctx, target)
	case w.ad.Source == sessionentities.SourceSavedCopy:
		return w.copy(ctx, target)
	default:
		return w.custom(ctx, target)
	}
}

func (w *worker) ref() domain.MessageRef {
	return domain.MessageRef{Peer: w.ad.SourcePeer, MessageID: w.ad.MessageID}
}

// forward keeps the forward tag. Restricted or forbidden targets get the fallback text.
func (w *worker) forward(ctx context.Context, target domain.Target) (outcome, error) {
	sent, err := w.client.Forward(ctx, target, w.ref(), true)
	if err == nil {
		return outcome{method: entities.MethodForward, sent: sent}, nil
	}
	if !fallbackEligible(err) || w.ad.Fallback == "" {
		return outcome{}, err
	}

	sent, fbErr := w.client.SendText(ctx, target, w.ad.Fallback)
	if fbErr != nil {
		return outcome{}, fbErr
	}
	return outcome{method: entities.MethodFallback, degraded: true, sent: sent}, nil
}

// copy resends the saved message without a forward header, falling back to
// a forward with the author dropped and then to a plain forward
func (w *worker) copy(ctx context.Context, target domain.Target) (outcome, error) {
	content, err := w.client.FetchMessage(ctx, w.ref())
	if err == nil {
		var sent domain.SentMessage
		sent, err = w.client.SendContent(ctx, target, content)
		if err == nil {
			return outcome{method: entities.MethodCopy, sent: sent}, nil
		}
	}
	if stopsChain(ctx, err) {
		return outcome{}, err
	}
	w.logger.Debug().Err(err).Str("destination", target.DisplayID).Msg("Copy failed, forwarding without author")

	sent, err := w.client.Forward(ctx, target, w.ref(), false)
	if err == nil {
		return outcome{method: entities.MethodForwardDropAuthor, sent: sent}, nil
	}
	if stopsChain(ctx, err) {
		return outcome{}, err
	}

	sent, err = w.client.Forward(ctx, target, w.ref(), true)
	if err != nil {
		return outcome{}, err
	}
	return outcome{method: entities.MethodForwardPlain, sent: sent}, nil
}

func (w *worker) custom(ctx context.Context, target domain.Target) (outcome, error) {
	if w.ad.MediaPath == "" {
		sent, err := w.client.SendText(ctx, target, w.ad.Text)
		if err != nil {
			return outcome{}, err
		}
		return outcome{method: entities.MethodText, sent: sent}, nil
	}

	if w.mediaFile == nil {
		file, err := w.media.Load(ctx, w.ad.MediaPath, domain.MediaKind(w.ad.MediaKind))
		if err != nil {
			return outcome{}, err
		}
		w.mediaFile = &file
	}

	sent, err := w.client.SendMedia(ctx, target, *w.mediaFile, w.ad.Text)
	if err != nil {
		return outcome{}, err
	}
	return outcome{method: entities.MethodMedia, sent: sent}, nil
}

func (w *worker) reportSuccess(ctx context.Context, round, sent, total int, displayID string, res outcome) {
	n, err := w.sessions.RecordSent(ctx, w.userID)
	if err != nil {
		w.logger.Error().Err(err).Str("destination", displayID).Msg("Failed to record sent message")
	} else {
		w.sentTotal = n
	}
	w.metrics.RecordMessageSent(res.method, res.degraded)

	ev := entities.NewEvent(entities.EventItemSuccess, w.userID)
	ev.Round = round
	ev.Sent = sent
	ev.Total = total
	ev.Destination = displayID
	ev.Title = w.titles[displayID]
	ev.Method = res.method
	ev.Degraded = res.degraded
	ev.Link = res.sent.Link()
	w.emit(ctx, ev)
}

func (w *worker) reportFailure(ctx context.Context, round, sent, total int, displayID string, err error) {
	w.metrics.RecordSendFailure(domain.KindOf(err).String())
	w.logger.Warn().Err(err).
		Str("destination", displayID).
		Int("round", round).
		Msg("Delivery failed")

	ev := entities.NewEvent(entities.EventItemFailure, w.userID)
	ev.Round = round
	ev.Sent = sent
	ev.Total = total
	ev.Destination = displayID
	ev.Title = w.titles[displayID]
	ev.Reason = reasonOf(err)
	if wait, ok := domain.WaitOf(err); ok {
		ev.WaitSeconds = int(wait.Seconds())
	}
	w.emit(ctx, ev)
}

func (w *worker) emitProgress(ctx context.Context, round, sent, total int) {
	ev := entities.NewEvent(entities.EventProgress, w.userID)
	ev.Round = round
	ev.Sent = sent
	ev.Total = total
	w.emit(ctx, ev)
}

func (w *worker) emit(ctx context.Context, ev entities.Event) {
	if err := w.notifier.Notify(ctx, w.userID, ev); err != nil {
		w.logger.Warn().Err(err).Str("event", string(ev.Type)).Msg("Failed to deliver notification")
	}
}

func (w *worker) sessionLost(ctx context.Context, err error) {
	w.end = endLoginRequired
	w.logger.Warn().Err(err).Msg("Session lost, stopping delivery")

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("user_id", strconv.FormatInt(w.userID, 10))
		scope.SetTag("component", "ads_worker")
	})
	hub.CaptureException(err)

	ev := entities.NewEvent(entities.EventLoginRequired, w.userID)
	ev.Reason = reasonOf(err)
	w.emit(context.WithoutCancel(ctx), ev)
}

func (w *worker) recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	w.end = endPanic
	w.logger.Error().
		Interface("panic", r).
		Bytes("stack", debug.Stack()).
		Msg("Delivery worker panicked")

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("user_id", strconv.FormatInt(w.userID, 10))
		scope.SetTag("component", "ads_worker")
	})
	hub.Recover(r)
}

// finish runs the stop sequence: terminal event, disconnect, unlock, release
func (w *worker) finish() {
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	if w.end != endLoginRequired {
		ev := entities.NewEvent(entities.EventCampaignStopped, w.userID)
		ev.SentTotal = w.sentTotal
		switch {
		case w.end == endPanic:
			ev.Reason = "internal error"
		case w.leaseLost.Load():
			ev.Reason = "worker lease lost"
		}
		w.emit(ctx, ev)
	}

	if err := w.client.Disconnect(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to disconnect client")
	}

	if _, err := w.sessions.Update(ctx, w.userID, func(s *sessionentities.Session) error {
		s.Ad.Locked = false
		return nil
	}); err != nil {
		w.logger.Error().Err(err).Msg("Failed to unlock configuration")
	}

	if w.lease != nil {
		if err := w.lease.Release(ctx, w.userID); err != nil {
			w.logger.Warn().Err(err).Msg("Failed to release worker lease")
		}
	}

	w.metrics.CampaignStopped()
	w.cancel()
	if w.onExit != nil {
		w.onExit(w)
	}
	close(w.done)

	w.logger.Info().Int64("sent_total", w.sentTotal).Msg("Delivery worker stopped")
}

// keepLease refreshes the lease until ctx is done. The worker is cancelled
// once the lease is gone or could not be refreshed for a whole TTL.
func (w *worker) keepLease(ctx context.Context) {
	ticker := time.NewTicker(w.leaseTTL / 3)
	defer ticker.Stop()

	refreshed := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.lease.Refresh(ctx, w.userID)
			if err == nil {
				refreshed = time.Now()
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, adserrors.ErrLeaseLost) || time.Since(refreshed) >= w.leaseTTL {
				w.logger.Error().Err(err).Msg("Worker lease lost, stopping delivery")
				w.leaseLost.Store(true)
				w.cancel()
				return
			}
			w.logger.Warn().Err(err).Msg("Failed to refresh worker lease")
		}
	}
}

// sleep waits d or until ctx is done. It reports whether the wait completed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func fallbackEligible(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindForwardRestricted, domain.KindForbidden:
		return true
	}
	return false
}

// stopsChain reports whether a failed copy step must not fall through to the next one
func stopsChain(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	switch domain.KindOf(err) {
	case domain.KindRateLimited, domain.KindUnauthorized:
		return true
	}
	return false
}

func isSessionLoss(err error) bool {
	return domain.KindOf(err) == domain.KindUnauthorized ||
		errors.Is(err, domain.ErrLoginRequired) ||
		errors.Is(err, domain.ErrNotConnected) ||
		errors.Is(err, domain.ErrConnectionFailed)
}

func reasonOf(err error) string {
	var re *domain.RemoteError
	if errors.As(err, &re) {
		if re.Kind == domain.KindRateLimited {
			return fmt.Sprintf("flood wait %ds", int(re.Wait.Seconds()))
		}
		if re.Kind != domain.KindOther {
			return re.Kind.String()
		}
	}
	return err.Error()
}
