// Package devbackend assembles the development backend: a seeded in-memory
// LockMe API that serves the admin endpoints the console consumes.
package devbackend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"lockme/internal/devbackend/handler"
	"lockme/internal/devbackend/service"
	"lockme/internal/devbackend/store"
	"lockme/internal/devbackend/tokens"
	"lockme/internal/platform/config"
	"lockme/internal/platform/health"
	"lockme/internal/platform/logger"
	adminmw "lockme/pkg/platform/middleware/admin"
	"lockme/pkg/platform/middleware/auth"
	"lockme/pkg/platform/middleware/metadata"
	request "lockme/pkg/platform/middleware/request"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server owns the backend's store, token service and router.
type Server struct {
	cfg      config.DevBackend
	logger   *slog.Logger
	registry *prometheus.Registry
	now      func() time.Time

	store   *store.Memory
	tokens  *tokens.Service
	service *service.Service
	router  http.Handler
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithRegistry exposes metrics through reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithClock fixes the time used for seeding and user registration.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New seeds a fresh store and wires the HTTP stack.
func New(ctx context.Context, cfg config.DevBackend, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector())
	}

	s.store = store.NewMemory()
	if err := store.Seed(ctx, s.store, s.now()); err != nil {
		return nil, fmt.Errorf("seed store: %w", err)
	}
	issuer := "lockme-devbackend"
	if cfg.Environment != "" {
		issuer += "/" + cfg.Environment
	}
	s.tokens = tokens.NewService(cfg.SigningKey, cfg.IdentityKey, issuer, cfg.TokenTTL)
	s.service = service.New(s.store, s.tokens,
		service.WithLogger(s.logger),
		service.WithClock(s.now),
	)
	s.router = s.newRouter()
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Tokens exposes the token service, used to mint identity tokens.
func (s *Server) Tokens() *tokens.Service {
	return s.tokens
}

func (s *Server) newRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(s.logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(metadata.New().Handler)
	r.Use(request.Logger(s.logger))
	r.Use(request.Instrument(request.NewMetrics(s.registry)))
	r.Use(request.BodyLimit(request.DefaultBodyLimit))
	r.Use(chimw.Timeout(requestTimeout))

	hc := health.New(s.cfg.Environment)
	hc.RegisterCheck("store", func(ctx context.Context) error {
		_, err := s.store.ListTribes(ctx)
		return err
	})
	hc.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	h := handler.New(s.service, s.logger)
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(s.tokens, s.logger))
		r.Use(adminmw.RequireAdmin(s.service, s.logger))
		h.RegisterAdmin(r)
	})
	return r
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.InfoContext(ctx, "starting http server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
