package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/peers"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Aztech-1729/sliptads/internal/domain"
)

// runner is the part of *telegram.Client the connection loop drives
type runner interface {
	Run(ctx context.Context, f func(ctx context.Context) error) error
	API() *tg.Client
	Auth() *auth.Client
}

// MTProtoClient implements domain.RemoteClient using gotd/td library
type MTProtoClient struct {
	// Telegram client instance
	client    runner
	newRunner func() runner

	// API credentials
	apiID   int
	apiHash string

	storage     session.Storage
	middlewares []telegram.Middleware

	// Connection state
	connected     bool
	disconnecting bool
	mu            sync.RWMutex
	cancelFunc    context.CancelFunc
	runDone       chan struct{} // Signals when client.Run() completes

	logger zerolog.Logger

	// API client for making requests
	api   *tg.Client
	peers *peers.Manager

	// Rate limiter for API calls
	rateLimiter *rate.Limiter

	// Joined chats by display id, filled lazily for Resolve
	chats   map[string]domain.ChatDescriptor
	chatsMu sync.Mutex
}

// MTProtoClientConfig holds configuration for MTProtoClient
type MTProtoClientConfig struct {
	APIID       int
	APIHash     string
	Storage     session.Storage
	RateLimit   int // requests per second
	Middlewares []telegram.Middleware
	Logger      zerolog.Logger
}

// NewMTProtoClient creates a new MTProto client instance
func NewMTProtoClient(cfg MTProtoClientConfig) (*MTProtoClient, error) {
	if cfg.APIID <= 0 {
		return nil, fmt.Errorf("APIID is required")
	}
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("APIHash is required")
	}
	if cfg.Storage == nil {
		cfg.Storage = NewMemorySessionStorage()
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}

	c := &MTProtoClient{
		apiID:       cfg.APIID,
		apiHash:     cfg.APIHash,
		storage:     cfg.Storage,
		middlewares: cfg.Middlewares,
		logger:      cfg.Logger.With().Str("component", "mtproto_client").Logger(),
		rateLimiter: rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.RateLimit)), cfg.RateLimit),
	}
	c.newRunner = func() runner {
		return telegram.NewClient(c.apiID, c.apiHash, telegram.Options{
			SessionStorage: c.storage,
			Middlewares:    c.middlewares,
			NoUpdates:      true,
		})
	}
	return c, nil
}

// Connect connects to Telegram. The connection outlives ctx until Disconnect;
// ctx only bounds the wait for the connection to become ready.
func (c *MTProtoClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already connected")
		return nil
	}
	if c.disconnecting {
		c.mu.Unlock()
		return fmt.Errorf("disconnect in progress, cannot connect")
	}
	// Keep the lock to prevent concurrent connection attempts
	defer c.mu.Unlock()

	c.logger.Debug().Msg("connecting to Telegram")

	client := c.newRunner()

	clientCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	readyChan := make(chan struct{})
	errChan := make(chan error, 1)
	runDone := make(chan struct{})

	go func() {
		err := client.Run(clientCtx, func(ctx context.Context) error {
			close(readyChan)

			// Keep connection alive
			<-ctx.Done()
			return ctx.Err()
		})
		select {
		case errChan <- err:
		default:
		}
		close(runDone)
		cancel()
		c.lost(runDone, err)
	}()

	select {
	case <-readyChan:
	case err := <-errChan:
		cancel()
		if err == nil {
			return domain.ErrConnectionFailed
		}
		return fmt.Errorf("%w: %w", domain.ErrConnectionFailed, classify(err))
	case <-ctx.Done():
		cancel()
		<-runDone
		return ctx.Err()
	}

	c.client = client
	c.api = client.API()
	c.peers = peers.Options{}.Build(c.api)
	c.cancelFunc = cancel
	c.runDone = runDone
	c.connected = true

	c.logger.Debug().Msg("connected to Telegram")
	return nil
}

// Disconnect disconnects from Telegram with graceful shutdown.
// Multiple calls are safe and return nil if already disconnected.
func (c *MTProtoClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()

	if c.disconnecting {
		c.mu.Unlock()
		c.logger.Debug().Msg("disconnect already in progress")
		return nil
	}

	if !c.connected {
		c.mu.Unlock()
		return nil
	}

	c.disconnecting = true
	cancelFunc := c.cancelFunc
	runDone := c.runDone
	c.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()

		// Wait for client.Run() goroutine to actually finish
		if runDone != nil {
			select {
			case <-runDone:
			case <-ctx.Done():
				c.logger.Warn().Msg("disconnect timeout reached while waiting for client shutdown")
			}
		}
	}

	c.mu.Lock()
	c.client = nil
	c.api = nil
	c.peers = nil
	c.connected = false
	c.cancelFunc = nil
	c.runDone = nil
	c.disconnecting = false
	c.mu.Unlock()

	c.logger.Debug().Msg("disconnected from Telegram")
	return nil
}

// lost clears the connection state when Run exits without Disconnect,
// so later calls fail with domain.ErrNotConnected
func (c *MTProtoClient) lost(runDone chan struct{}, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runDone != runDone || c.disconnecting {
		return
	}

	c.client = nil
	c.api = nil
	c.peers = nil
	c.connected = false
	c.cancelFunc = nil
	c.runDone = nil

	c.logger.Warn().Err(err).Msg("connection to Telegram lost")
}

// IsConnected checks if client is connected to Telegram
func (c *MTProtoClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// ready returns the raw clients after rate limiting
func (c *MTProtoClient) ready(ctx context.Context) (runner, *tg.Client, error) {
	c.mu.RLock()
	client, api := c.client, c.api
	connected := c.connected
	c.mu.RUnlock()

	if !connected || api == nil {
		return nil, nil, domain.ErrNotConnected
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	return client, api, nil
}

// Ensure MTProtoClient implements domain.RemoteClient interface
var _ domain.RemoteClient = (*MTProtoClient)(nil)
