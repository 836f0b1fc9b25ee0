// Package navigation tracks which admin view is active and triggers the
// load of each view on entry. Views are only reachable with an
// authenticated session.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"lockme/internal/admin/models"
	"lockme/internal/admin/pagination"
	"lockme/internal/platform/logger"
	id "lockme/pkg/domain"
)

var (
	// ErrNotAuthenticated is returned when navigating without an authenticated session.
	ErrNotAuthenticated = errors.New("admin session is not authenticated")

	// ErrTribeRequired is returned when opening tribe detail without a tribe.
	ErrTribeRequired = errors.New("tribe id is required")

	// ErrUnknownView is returned for a view kind the console does not have.
	ErrUnknownView = errors.New("unknown view")
)

// Session reports the session status gating navigation.
type Session interface {
	Status() models.SessionStatus
}

// Loader loads the data of the active view.
type Loader interface {
	Fetch(ctx context.Context, view models.View, page int) (pagination.State, error)
	Refresh(ctx context.Context) (pagination.State, error)
	Reset()
}

// Controller is the navigation state: the active view.
type Controller struct {
	mu      sync.Mutex
	session Session
	loader  Loader
	logger  *slog.Logger
	current models.View
}

// Option configures the Controller.
type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New creates a controller positioned on the dashboard.
func New(session Session, loader Loader, opts ...Option) (*Controller, error) {
	if session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	c := &Controller{
		session: session,
		loader:  loader,
		logger:  logger.Discard(),
		current: models.DashboardView,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Current returns the active view.
func (c *Controller) Current() models.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Navigate activates view and loads its first page. Without an
// authenticated session the controller falls back to the dashboard and
// nothing is loaded.
func (c *Controller) Navigate(ctx context.Context, view models.View) (pagination.State, error) {
	if err := validate(view); err != nil {
		return pagination.State{}, err
	}
	if c.session.Status() != models.SessionAuthenticated {
		c.mu.Lock()
		c.current = models.DashboardView
		c.mu.Unlock()
		return pagination.State{}, ErrNotAuthenticated
	}

	c.mu.Lock()
	from := c.current
	c.current = view
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "navigate", "from", from.Key(), "to", view.Key())
	return c.loader.Fetch(ctx, view, 1)
}

// OpenTribe navigates to the detail view of one tribe.
func (c *Controller) OpenTribe(ctx context.Context, tribeID id.TribeID) (pagination.State, error) {
	return c.Navigate(ctx, models.TribeDetailView(tribeID))
}

// Back leaves tribe detail for the tribe list and any other view for the dashboard.
func (c *Controller) Back(ctx context.Context) (pagination.State, error) {
	if c.Current().Kind == models.ViewTribeDetail {
		return c.Navigate(ctx, models.TribesView)
	}
	return c.Navigate(ctx, models.DashboardView)
}

// Refresh reloads the active view at its current page.
func (c *Controller) Refresh(ctx context.Context) (pagination.State, error) {
	if c.session.Status() != models.SessionAuthenticated {
		return pagination.State{}, ErrNotAuthenticated
	}
	return c.loader.Refresh(ctx)
}

// Reset returns to the dashboard and drops all loaded data.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.current = models.DashboardView
	c.mu.Unlock()
	c.loader.Reset()
}

func validate(view models.View) error {
	switch view.Kind {
	case models.ViewDashboard, models.ViewUsers, models.ViewTribes:
		return nil
	case models.ViewTribeDetail:
		if view.TribeID <= 0 {
			return ErrTribeRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownView, view.Kind)
	}
}
