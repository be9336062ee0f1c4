package business

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Aztech-1729/sliptads/config"
	"github.com/Aztech-1729/sliptads/internal/domain"
	catalogerrors "github.com/Aztech-1729/sliptads/internal/domain/catalog/errors"
	sessionentities "github.com/Aztech-1729/sliptads/internal/domain/session/entities"
	"github.com/Aztech-1729/sliptads/internal/infrastructure/metrics"
	"github.com/Aztech-1729/sliptads/pkg/tglink"
)

// forumFetchLimit bounds concurrent topic fetches per build
const forumFetchLimit = 8

// Builder lists the user's chats and turns them into destinations
type Builder struct {
	factory domain.ClientFactory
	cfg     *config.CatalogConfig
	tgCfg   *config.TelegramConfig
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewBuilder creates a new catalog builder
func NewBuilder(
	factory domain.ClientFactory,
	cfg *config.CatalogConfig,
	tgCfg *config.TelegramConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Builder {
	return &Builder{
		factory: factory,
		cfg:     cfg,
		tgCfg:   tgCfg,
		logger:  logger.With().Str("component", "catalog_builder").Logger(),
		metrics: m,
	}
}

// Build connects with the durable session and returns the sorted catalog
func (b *Builder) Build(ctx context.Context, userID int64) ([]sessionentities.Destination, error) {
	start := time.Now()
	logger := b.logger.With().Int64("user_id", userID).Logger()

	client, err := b.factory.NewCatalogClient(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrLoginRequired) {
			return nil, err
		}
		return nil, b.unavailable("client", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, b.connectTimeout())
	err = client.Connect(connectCtx)
	cancel()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to connect catalog client")
		return nil, b.unavailable("connect", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logger.Warn().Err(err).Msg("Failed to disconnect catalog client")
		}
	}()

	authorized, err := client.IsAuthorized(ctx)
	if err != nil {
		return nil, b.unavailable("authorize", err)
	}
	if !authorized {
		return nil, b.unavailable("authorize", domain.ErrNotAuthorized)
	}

	chats, err := client.ListChats(ctx, b.cfg.DialogLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to list chats")
		return nil, b.unavailable("list", err)
	}

	destinations, err := b.collect(ctx, client, chats)
	if err != nil {
		return nil, err
	}
	Sort(destinations)

	b.metrics.RecordCatalogRefresh(len(destinations), time.Since(start).Seconds())
	logger.Info().
		Int("chats", len(chats)).
		Int("destinations", len(destinations)).
		Dur("took", time.Since(start)).
		Msg("Catalog built")

	return destinations, nil
}

// collect classifies chats and expands forums into their topics
func (b *Builder) collect(ctx context.Context, client domain.RemoteClient, chats []domain.ChatDescriptor) ([]sessionentities.Destination, error) {
	var (
		destinations []sessionentities.Destination
		forums       []domain.ChatDescriptor
	)

	for _, chat := range chats {
		switch {
		case chat.Kind != domain.ChatKindGroup && chat.Kind != domain.ChatKindSupergroup:
			continue
		case chat.Forum:
			forums = append(forums, chat)
		default:
			destinations = append(destinations, sessionentities.Destination{
				DisplayID: chat.DisplayID(),
				Title:     chat.Title,
				Pinned:    chat.Pinned,
				Kind:      sessionentities.KindGroup,
				ChatID:    chat.ID,
			})
		}
	}

	// one slot per forum, so results keep dialog order without locking
	topics := make([][]sessionentities.Destination, len(forums))

	wg, wgctx := errgroup.WithContext(ctx)
	wg.SetLimit(forumFetchLimit)

	for i, forum := range forums {
		i, forum := i, forum
		wg.Go(func() error {
			list, err := client.ListTopics(wgctx, forum, b.cfg.TopicLimit)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				b.logger.Warn().Err(err).
					Int64("chat_id", forum.ID).
					Str("title", forum.Title).
					Msg("Failed to fetch forum topics")
				return nil
			}
			topics[i] = TopicDestinations(forum, list)
			return nil
		})
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}

	for _, list := range topics {
		destinations = append(destinations, list...)
	}
	return destinations, nil
}

// TopicDestinations turns the topics of one forum into destinations
func TopicDestinations(forum domain.ChatDescriptor, topics []domain.Topic) []sessionentities.Destination {
	parent := forum.DisplayID()
	out := make([]sessionentities.Destination, 0, len(topics))
	for _, topic := range topics {
		out = append(out, sessionentities.Destination{
			DisplayID:   tglink.TopicDisplayID(parent, topic.ID),
			Title:       fmt.Sprintf("%s (in %s)", topic.Title, forum.Title),
			Kind:        sessionentities.KindTopic,
			ChatID:      forum.ID,
			TopicID:     topic.ID,
			ParentTitle: forum.Title,
		})
	}
	return out
}

// Sort orders pinned first, then by case-insensitive title, then by display id
func Sort(destinations []sessionentities.Destination) {
	sort.SliceStable(destinations, func(i, j int) bool {
		a, b := destinations[i], destinations[j]
		if a.Pinned != b.Pinned {
			return a.Pinned
		}
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if at != bt {
			return at < bt
		}
		return a.DisplayID < b.DisplayID
	})
}

func (b *Builder) unavailable(stage string, err error) error {
	b.metrics.RecordCatalogRefreshError(stage)
	return fmt.Errorf("%w: %s: %s", catalogerrors.ErrCatalogUnavailable, stage, err.Error())
}

func (b *Builder) connectTimeout() time.Duration {
	if b.tgCfg != nil && b.tgCfg.ConnectTimeout > 0 {
		return b.tgCfg.ConnectTimeout
	}
	return 30 * time.Second
}
