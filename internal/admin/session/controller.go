// Package session owns the admin session state machine: re-entry from a
// stored token, credential exchange, expiry and sign-out.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"lockme/internal/admin/client"
	"lockme/internal/admin/models"
	"lockme/internal/admin/tokenstore"
	"lockme/internal/platform/logger"
)

// User-facing messages.
const (
	MsgSessionExpired = "Session expired or unauthorized."
	MsgNotAdmin       = "You are not an admin!"
	MsgLoginFailed    = "Login failed."
	MsgStatsFailed    = "Failed to load stats."
)

var (
	// ErrNotAdmin is the terminal rejection for a valid credential without admin rights.
	ErrNotAdmin = errors.New("account does not have admin access")

	// ErrLoginFailed means the credential exchange itself failed.
	ErrLoginFailed = errors.New("login failed")

	// ErrInProgress is returned when a probe or login is already running.
	ErrInProgress = errors.New("session transition already in progress")
)

// API is the subset of the admin client the session needs.
type API interface {
	ExchangeGoogleToken(ctx context.Context, idToken string) (*models.LoginResult, error)
	Stats(ctx context.Context) (*models.StatsSummary, error)
}

// Controller is the session state machine. It is safe for concurrent use;
// network calls run without holding the lock.
type Controller struct {
	mu      sync.Mutex
	store   tokenstore.Store
	api     API
	logger  *slog.Logger
	status  models.SessionStatus
	stats   *models.StatsSummary
	message string
	resets  []func()
}

// Option configures the Controller.
type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New creates a controller in the Unauthenticated state. Call Init to
// re-establish a stored session.
func New(store tokenstore.Store, api API, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if api == nil {
		return nil, fmt.Errorf("admin api is required")
	}
	c := &Controller{
		store:  store,
		api:    api,
		logger: logger.Discard(),
		status: models.SessionUnauthenticated,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnReset registers fn to run after sign-out or expiry so dependents can
// rebuild their state from scratch.
func (c *Controller) OnReset(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resets = append(c.resets, fn)
}

// Status returns the current status.
func (c *Controller) Status() models.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Snapshot returns a copy of the session for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Status: c.status, Stats: c.stats, Message: c.message}
}

// Init re-establishes the session from the stored token. Without a token the
// controller stays Unauthenticated and makes no network call. With one it
// enters Loading and probes the stats endpoint.
func (c *Controller) Init(ctx context.Context) error {
	token, ok, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("read stored token: %w", err)
	}
	if !ok || token == "" {
		c.mu.Lock()
		c.setLocked(models.SessionUnauthenticated)
		c.mu.Unlock()
		return nil
	}

	if err := c.begin(); err != nil {
		return err
	}

	stats, err := c.api.Stats(ctx)
	if err != nil {
		return c.probeFailed(ctx, err)
	}

	c.mu.Lock()
	c.setLocked(models.SessionAuthenticated)
	c.stats = stats
	c.message = ""
	c.mu.Unlock()
	return nil
}

func (c *Controller) probeFailed(ctx context.Context, probeErr error) error {
	if client.IsUnauthorized(probeErr) {
		if err := c.store.Clear(ctx); err != nil {
			c.logger.ErrorContext(ctx, "failed to clear rejected token", "error", err)
		}
	}

	c.mu.Lock()
	c.setLocked(models.SessionUnauthenticated)
	c.stats = nil
	c.message = MsgSessionExpired
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "session probe failed",
		"category", client.GetCategory(probeErr),
		"error", probeErr,
	)
	return nil
}

// Login exchanges an identity credential for a session token. Only admin
// accounts get a token stored; a non-admin answer is a terminal rejection.
func (c *Controller) Login(ctx context.Context, idToken string) error {
	if err := c.begin(); err != nil {
		return err
	}

	res, err := c.api.ExchangeGoogleToken(ctx, idToken)
	if err != nil {
		c.fail(MsgLoginFailed)
		c.logger.WarnContext(ctx, "credential exchange failed", "error", err)
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if !res.IsAdmin {
		c.fail(MsgNotAdmin)
		c.logger.WarnContext(ctx, "non-admin login rejected")
		return ErrNotAdmin
	}
	if err := c.store.Set(ctx, res.AccessToken); err != nil {
		c.fail(MsgLoginFailed)
		return fmt.Errorf("%w: store token: %w", ErrLoginFailed, err)
	}

	c.mu.Lock()
	c.setLocked(models.SessionAuthenticated)
	c.stats = nil
	c.message = ""
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "admin session established")

	stats, err := c.api.Stats(ctx)
	if err != nil {
		if client.IsUnauthorized(err) {
			c.Expire(ctx)
			return nil
		}
		c.mu.Lock()
		c.message = MsgStatsFailed
		c.mu.Unlock()
		return nil
	}
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
	return nil
}

// SignOut clears the token, returns to Unauthenticated and runs the reset hooks.
func (c *Controller) SignOut(ctx context.Context) error {
	clearErr := c.store.Clear(ctx)

	c.mu.Lock()
	c.setLocked(models.SessionUnauthenticated)
	c.stats = nil
	c.message = ""
	hooks := slices.Clone(c.resets)
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "admin signed out")
	runHooks(hooks)

	if clearErr != nil {
		return fmt.Errorf("clear stored token: %w", clearErr)
	}
	return nil
}

// Expire records that the backend rejected the session on an authenticated
// call. The token is cleared and dependents are reset.
func (c *Controller) Expire(ctx context.Context) {
	c.mu.Lock()
	if c.status != models.SessionAuthenticated && c.status != models.SessionLoading {
		c.mu.Unlock()
		return
	}
	c.setLocked(models.SessionExpired)
	c.stats = nil
	c.message = MsgSessionExpired
	hooks := slices.Clone(c.resets)
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear expired token", "error", err)
	}
	c.logger.InfoContext(ctx, "admin session expired")
	runHooks(hooks)
}

// begin moves to Loading unless a transition is already running.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == models.SessionLoading {
		return ErrInProgress
	}
	c.setLocked(models.SessionLoading)
	c.message = ""
	return nil
}

func (c *Controller) fail(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(models.SessionUnauthenticated)
	c.stats = nil
	c.message = message
}

// setLocked applies a transition from the table. Callers hold c.mu.
func (c *Controller) setLocked(to models.SessionStatus) {
	from := c.status
	if from == to {
		return
	}
	if !CanTransition(from, to) {
		c.logger.Error("session transition rejected", "error", ErrInvalidTransition{From: from, To: to})
		return
	}
	c.status = to
	c.logger.Debug("session transition", "from", from, "to", to)
}

func runHooks(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}
