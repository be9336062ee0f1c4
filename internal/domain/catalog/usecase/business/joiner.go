package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	"github.com/Aztech-1729/sliptads/internal/domain/catalog/entities"
	catalogerrors "github.com/Aztech-1729/sliptads/internal/domain/catalog/errors"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	pkgerrors "github.com/Aztech-1729/sliptads/pkg/errors"
	"github.com/Aztech-1729/sliptads/pkg/tglink"
)

// Joiner joins chats one at a time over the user's durable session
type Joiner struct {
	factory domain.ClientFactory
	cfg     *config.CatalogConfig
	tgCfg   *config.TelegramConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewJoiner creates a new joiner
func NewJoiner(
	factory domain.ClientFactory,
	cfg *config.CatalogConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Joiner {
	return &Joiner{
		factory: factory,
		cfg:     cfg,
		tgCfg:   tgCfg,
		logger:  logger.With().Str("component", "catalog_joiner").Logger(),
		metrics: m,
	}
}

// Join connects once and joins every token in order, pausing JoinGap
// between targets. A short flood wait is waited out and the target retried
// once. A longer one, a revoked session or cancellation stops the batch.
func (j *Joiner) Join(ctx context.Context, userID int64, tokens []string) (entities.JoinReport, error) {
	start := time.Now()
	logger := j.logger.With().Int64("user_id", userID).Logger()

	client, err := j.factory.NewSessionClient(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrLoginRequired) {
			return entities.JoinReport{}, err
		}
		return entities.JoinReport{}, fmt.Errorf("%w: client: %s", catalogerrors.ErrCatalogUnavailable, err.Error())
	}

	connectCtx, cancel := context.WithTimeout(ctx, j.connectTimeout())
	err = client.Connect(connectCtx)
	cancel()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to connect join client")
		return entities.JoinReport{}, fmt.Errorf("%w: connect: %s", catalogerrors.ErrCatalogUnavailable, err.Error())
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn().Err(err).Msg("Failed to disconnect join client")
		}
	}()

	authorized, err := client.IsAuthorized(ctx)
	if err != nil {
		return entities.JoinReport{}, fmt.Errorf("%w: authorize: %s", catalogerrors.ErrCatalogUnavailable, err.Error())
	}
	if !authorized {
		return entities.JoinReport{}, domain.ErrLoginRequired
	}

	report := entities.JoinReport{Results: make([]entities.JoinResult, 0, len(tokens))}
	for i, token := range tokens {
		if i > 0 && !sleep(ctx, j.cfg.JoinGap) {
			report.Aborted = true
			report.Results = append(report.Results, skipped(tokens[i:], "cancelled")...)
			break
		}

		res, stop := j.joinOne(ctx, client, token)
		report.Results = append(report.Results, res)
		j.metrics.RecordCatalogJoin(string(res.Status))

		if stop {
			report.Aborted = true
			report.Results = append(report.Results, skipped(tokens[i+1:], "not attempted: "+res.Reason)...)
			break
		}
	}

	logger.Info().
		Int("targets", len(tokens)).
		Int("joined", report.Count(entities.JoinJoined)).
		Int("failed", report.Count(entities.JoinFailed)).
		Bool("aborted", report.Aborted).
		Dur("took", time.Since(start)).
		Msg("Join batch finished")

	return report, nil
}

// joinOne reports whether the rest of the batch must be skipped
func (j *Joiner) joinOne(ctx context.Context, client domain.RemoteClient, token string) (entities.JoinResult, bool) {
	res := entities.JoinResult{Target: token, Status: entities.JoinFailed}

	target, err := tglink.ParseJoinTarget(token)
	if err != nil {
		res.Reason = "not an invite link, username or chat id"
		return res, false
	}

	for retried := false; ; retried = true {
		joined, err := client.Join(ctx, target)
		if err == nil {
			res.Title = joined.Chat.Title
			if joined.Chat.ID != 0 {
				res.DisplayID = joined.Chat.DisplayID()
			}
			switch {
			case joined.Pending:
				res.Status = entities.JoinPending
			case joined.AlreadyMember:
				res.Status = entities.JoinAlreadyMember
			default:
				res.Status = entities.JoinJoined
			}
			return res, false
		}

		res.Reason = reason(err)
		j.logger.Debug().Err(err).Str("target", target.String()).Msg("Join failed")

		if wait, ok := domain.WaitOf(err); ok {
			if retried || wait > j.cfg.JoinFloodWaitMax {
				return res, true
			}
			if !sleep(ctx, wait) {
				return res, true
			}
			continue
		}
		return res, ctx.Err() != nil || domain.KindOf(err) == domain.KindUnauthorized
	}
}

func skipped(tokens []string, why string) []entities.JoinResult {
	out := make([]entities.JoinResult, 0, len(tokens))
	for _, token := range tokens {
		out = append(out, entities.JoinResult{Target: token, Status: entities.JoinFailed, Reason: why})
	}
	return out
}

// reason is the user-facing text of a join failure
func reason(err error) string {
	var public pkgerrors.Publisher
	if errors.As(err, &public) {
		return public.Public().Error()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "telegram request failed"
}

func (j *Joiner) connectTimeout() time.Duration {
	if j.tgCfg != nil && j.tgCfg.ConnectTimeout > 0 {
		return j.tgCfg.ConnectTimeout
	}
	return 30 * time.Second
}

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
