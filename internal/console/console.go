// Package console wires the admin session, navigation and data fetcher into
// the operations the CLI and the terminal dashboard expose.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"lockme/internal/admin/client"
	"lockme/internal/admin/models"
	"lockme/internal/admin/navigation"
	"lockme/internal/admin/pagination"
	"lockme/internal/admin/session"
	"lockme/internal/admin/tokenstore"
	"lockme/internal/admin/tracer"
	"lockme/internal/platform/config"
	"lockme/internal/platform/logger"
	id "lockme/pkg/domain"
)

// ErrNoToken is returned by Whoami when no token is stored.
var ErrNoToken = errors.New("no admin token stored")

// Console owns one admin session and the view state built on top of it.
// Navigation and fetcher are rebuilt whenever the session is reset.
type Console struct {
	cfg     config.Admin
	logger  *slog.Logger
	tokens  tokenstore.Store
	closer  io.Closer
	client  *client.Client
	session *session.Controller

	httpDoer client.HTTPDoer
	registry prometheus.Registerer
	tracer   tracer.Tracer

	mu         sync.Mutex
	generation uint64
	nav        *navigation.Controller
	fetcher    *pagination.Fetcher
}

// Option configures the Console.
type Option func(*Console)

func WithLogger(l *slog.Logger) Option {
	return func(c *Console) {
		c.logger = l
	}
}

// WithTokenStore overrides the store selected by the config.
func WithTokenStore(s tokenstore.Store) Option {
	return func(c *Console) {
		c.tokens = s
	}
}

// WithHTTPClient overrides the HTTP client used for backend calls.
func WithHTTPClient(doer client.HTTPDoer) Option {
	return func(c *Console) {
		c.httpDoer = doer
	}
}

// WithMetricsRegisterer registers client metrics on reg.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(c *Console) {
		c.registry = reg
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Console) {
		c.tracer = t
	}
}

// New builds a console from cfg. Call Init before use.
func New(ctx context.Context, cfg config.Admin, opts ...Option) (*Console, error) {
	c := &Console{
		cfg:    cfg,
		logger: logger.Discard(),
		closer: nopCloser{},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		store, closer, err := OpenTokenStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		c.tokens, c.closer = store, closer
	}

	clientOpts := []client.Option{
		client.WithLogger(c.logger),
		client.WithTimeout(cfg.HTTPTimeout),
	}
	if c.httpDoer != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(c.httpDoer))
	}
	if c.registry != nil {
		clientOpts = append(clientOpts, client.WithMetrics(client.NewMetrics(c.registry)))
	}
	if c.tracer != nil {
		clientOpts = append(clientOpts, client.WithTracer(c.tracer))
	}

	var err error
	c.client, err = client.New(cfg.APIURL, c.tokens, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create admin client: %w", err)
	}
	c.session, err = session.New(c.tokens, c.client, session.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	if err := c.rebuild(); err != nil {
		return nil, err
	}
	c.session.OnReset(func() {
		if err := c.rebuild(); err != nil {
			c.logger.Error("failed to rebuild view state", "error", err)
		}
	})
	return c, nil
}

// rebuild replaces navigation and fetcher with fresh instances. The old
// fetcher is reset so its in-flight responses are discarded, and its
// unauthorized hook is bound to the generation it was built for.
func (c *Console) rebuild() error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	fetcher, err := pagination.New(c.client,
		pagination.WithPageSize(c.cfg.PageSize),
		pagination.WithLogger(c.logger),
		pagination.OnUnauthorized(func(ctx context.Context) { c.expire(ctx, gen) }),
	)
	if err != nil {
		return err
	}
	nav, err := navigation.New(c.session, fetcher, navigation.WithLogger(c.logger))
	if err != nil {
		return err
	}
	c.mu.Lock()
	old := c.fetcher
	c.nav, c.fetcher = nav, fetcher
	c.mu.Unlock()
	if old != nil {
		old.Reset()
	}
	return nil
}

// expire ends the session unless the rejection belongs to views that a
// later reset already replaced.
func (c *Console) expire(ctx context.Context, gen uint64) {
	c.mu.Lock()
	current := c.generation == gen
	c.mu.Unlock()
	if !current {
		c.logger.DebugContext(ctx, "ignoring rejection from replaced views", "generation", gen)
		return
	}
	c.session.Expire(ctx)
}

func (c *Console) views() (*navigation.Controller, *pagination.Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nav, c.fetcher
}

// Close releases the token store connection.
func (c *Console) Close() error {
	return c.closer.Close()
}

// Config returns the console configuration.
func (c *Console) Config() config.Admin { return c.cfg }

// Init re-establishes a stored session.
func (c *Console) Init(ctx context.Context) error {
	return c.session.Init(ctx)
}

// Login exchanges an identity token for an admin session.
func (c *Console) Login(ctx context.Context, idToken string) error {
	return c.session.Login(ctx, idToken)
}

// Logout signs out and drops all view state.
func (c *Console) Logout(ctx context.Context) error {
	return c.session.SignOut(ctx)
}

// Session returns the current session snapshot.
func (c *Console) Session() session.Snapshot {
	return c.session.Snapshot()
}

// Whoami decodes the stored token's claims without contacting the backend.
func (c *Console) Whoami(ctx context.Context) (*client.TokenClaims, error) {
	token, ok, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoToken
	}
	return client.PeekClaims(token)
}

// Current returns the active view.
func (c *Console) Current() models.View {
	nav, _ := c.views()
	return nav.Current()
}

// State returns the data of the active view.
func (c *Console) State() pagination.State {
	_, f := c.views()
	return f.State()
}

// Open navigates to view and loads its first page.
func (c *Console) Open(ctx context.Context, view models.View) (pagination.State, error) {
	nav, _ := c.views()
	return nav.Navigate(ctx, view)
}

// OpenTribe navigates to one tribe's detail.
func (c *Console) OpenTribe(ctx context.Context, tribeID id.TribeID) (pagination.State, error) {
	nav, _ := c.views()
	return nav.OpenTribe(ctx, tribeID)
}

// Back leaves the active view.
func (c *Console) Back(ctx context.Context) (pagination.State, error) {
	nav, _ := c.views()
	return nav.Back(ctx)
}

// Refresh reloads the active view.
func (c *Console) Refresh(ctx context.Context) (pagination.State, error) {
	nav, _ := c.views()
	return nav.Refresh(ctx)
}

// GoToPage moves the active view to page.
func (c *Console) GoToPage(ctx context.Context, page int) (pagination.State, error) {
	if !c.session.Snapshot().Authenticated() {
		return c.State(), navigation.ErrNotAuthenticated
	}
	_, f := c.views()
	return f.GoToPage(ctx, page)
}

// NextPage advances the active view one page.
func (c *Console) NextPage(ctx context.Context) (pagination.State, error) {
	return c.GoToPage(ctx, c.State().Page+1)
}

// PrevPage moves the active view back one page.
func (c *Console) PrevPage(ctx context.Context) (pagination.State, error) {
	return c.GoToPage(ctx, c.State().Page-1)
}
