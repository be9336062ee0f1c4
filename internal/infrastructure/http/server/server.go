package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/Aztech-1729/sliptads/pkg/httputil"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck reports an unhealthy dependency by returning an error
type HealthCheck func(ctx context.Context) error

// Server represents fasthttp server
type Server struct {
	server *fasthttp.Server
	Router *router.Router
	users  *httputil.UserGroup
	addr   string
	logger zerolog.Logger

	checksMu sync.RWMutex
	checks   map[string]HealthCheck
}

// NewServer creates a new fasthttp server
func NewServer(name, port string, logger zerolog.Logger) *Server {
	r := router.New()

	srv := &fasthttp.Server{
		Handler:      r.Handler,
		Name:         name,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // QR start and catalog refresh wait on Telegram
		IdleTimeout:  120 * time.Second,
	}

	s := &Server{
		server: srv,
		Router: r,
		addr:   fmt.Sprintf(":%s", port),
		logger: logger,
		checks: make(map[string]HealthCheck),
	}
	s.users = httputil.NewUserGroup(r, httputil.AccessLog(logger))

	return s
}

// Users returns the route group under /api/v1/users/{user_id}
func (s *Server) Users() *httputil.UserGroup {
	return s.users
}

// RegisterMetrics registers Prometheus metrics endpoint
func (s *Server) RegisterMetrics() {
	// Adapt promhttp.Handler to fasthttp
	prometheusHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s.Router.GET("/metrics", prometheusHandler)
}

// AddHealthCheck registers a dependency check served on /health
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checksMu.Lock()
	defer s.checksMu.Unlock()
	s.checks[name] = check
}

// RegisterHealth registers the health endpoint
func (s *Server) RegisterHealth() {
	s.Router.GET("/health", s.health)
}

func (s *Server) health(ctx *fasthttp.RequestCtx) {
	s.checksMu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]HealthCheck, len(names))
	for i, name := range names {
		checks[i] = s.checks[name]
	}
	s.checksMu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	healthy := true
	components := make(map[string]string, len(names))
	for i, name := range names {
		if err := checks[i](checkCtx); err != nil {
			healthy = false
			components[name] = err.Error()
			continue
		}
		components[name] = "ok"
	}

	status := "ok"
	if !healthy {
		status = "degraded"
	}
	httputil.WriteHealthResponse(ctx, map[string]any{
		"status":     status,
		"components": components,
	}, healthy)
}

// Start starts the HTTP server in a separate goroutine
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.addr).
		Msg("Starting HTTP server")

	go func() {
		if err := s.server.ListenAndServe(s.addr); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")

	if err := s.server.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped gracefully")
	return nil
}
