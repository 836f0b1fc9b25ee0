// Package pagination loads the data behind the active admin view and tracks
// which page is shown. Every request carries a per-view sequence number; a
// response is committed only if it is still the latest request for a view
// that is still active, so a slow answer can never overwrite a newer one.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"lockme/internal/admin/client"
	"lockme/internal/admin/models"
	"lockme/internal/platform/logger"
	id "lockme/pkg/domain"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// User-facing messages for a failed load.
const (
	MsgLoadFailed   = "Failed to load data."
	MsgUnauthorized = "Session expired or unauthorized."
)

var (
	// ErrSuperseded means a newer request or a view change made this response obsolete.
	ErrSuperseded = errors.New("response superseded by a newer request")

	// ErrPageOutOfRange is returned for pages outside [1, total pages].
	ErrPageOutOfRange = errors.New("page out of range")
)

// Source is the subset of the admin client the fetcher reads from.
type Source interface {
	Stats(ctx context.Context) (*models.StatsSummary, error)
	Users(ctx context.Context) ([]models.User, error)
	Tribes(ctx context.Context) ([]models.Tribe, error)
	TribeDetail(ctx context.Context, tribeID id.TribeID, page, pageSize int) (*models.TribeDetailPage, error)
}

// Phase is the load lifecycle of the active view.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// State is a snapshot of the active view's data. Page is the page the data
// belongs to; Pending is the page being loaded while Phase is PhaseLoading.
type State struct {
	View       models.View
	Phase      Phase
	Page       int
	Pending    int
	PageSize   int
	TotalPages int
	TotalItems int

	Stats  *models.StatsSummary
	Users  []models.User
	Tribes []models.Tribe
	Detail *models.TribeDetailPage

	Err     error
	Message string
}

// Loading reports whether a request for the active view is in flight.
func (s State) Loading() bool { return s.Phase == PhaseLoading }

// Fetcher owns the data of the active view.
type Fetcher struct {
	mu             sync.Mutex
	src            Source
	pageSize       int
	logger         *slog.Logger
	onUnauthorized func(context.Context)

	seq    map[string]uint64
	state  State
	users  []models.User
	tribes []models.Tribe
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithPageSize sets the list page size. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// OnUnauthorized registers the hook run when the backend rejects the session.
func OnUnauthorized(fn func(context.Context)) Option {
	return func(f *Fetcher) {
		f.onUnauthorized = fn
	}
}

// New creates a fetcher with the dashboard as the idle active view.
func New(src Source, opts ...Option) (*Fetcher, error) {
	if src == nil {
		return nil, fmt.Errorf("data source is required")
	}
	f := &Fetcher{
		src:      src,
		pageSize: DefaultPageSize,
		logger:   logger.Discard(),
		seq:      make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.state = f.idle(models.DashboardView)
	return f, nil
}

// PageSize returns the configured list page size.
func (f *Fetcher) PageSize() int { return f.pageSize }

// State returns a snapshot of the active view.
func (f *Fetcher) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reset drops all data and supersedes every in-flight request.
func (f *Fetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.seq {
		f.seq[key]++
	}
	f.users, f.tribes = nil, nil
	f.state = f.idle(models.DashboardView)
}

func (f *Fetcher) idle(view models.View) State {
	return State{View: view, Phase: PhaseIdle, Page: 1, PageSize: f.pageSize}
}

// Fetch makes view active and loads page of it from the backend. Switching
// views discards the previous view's data and supersedes its requests.
func (f *Fetcher) Fetch(ctx context.Context, view models.View, page int) (State, error) {
	f.mu.Lock()
	if page < 1 {
		f.mu.Unlock()
		return f.State(), ErrPageOutOfRange
	}
	if f.state.View == view && f.state.TotalPages > 0 && page > f.state.TotalPages {
		f.mu.Unlock()
		return f.State(), ErrPageOutOfRange
	}
	if f.state.View != view {
		f.users, f.tribes = nil, nil
		f.state = f.idle(view)
	}
	seq := f.begin(view, page)
	f.mu.Unlock()

	f.logger.DebugContext(ctx, "fetching view", "view", view.Key(), "page", page, "seq", seq)

	var (
		commit func(*State)
		err    error
	)
	switch view.Kind {
	case models.ViewDashboard:
		var stats *models.StatsSummary
		stats, err = f.src.Stats(ctx)
		commit = func(s *State) {
			s.Stats = stats
			s.Page, s.TotalPages, s.TotalItems = 1, 0, 0
		}
	case models.ViewUsers:
		var users []models.User
		users, err = f.src.Users(ctx)
		commit = func(s *State) {
			f.users = users
			f.commitUsers(s, page)
		}
	case models.ViewTribes:
		var tribes []models.Tribe
		tribes, err = f.src.Tribes(ctx)
		commit = func(s *State) {
			f.tribes = tribes
			f.commitTribes(s, page)
		}
	case models.ViewTribeDetail:
		var detail *models.TribeDetailPage
		detail, err = f.src.TribeDetail(ctx, view.TribeID, page, f.pageSize)
		commit = func(s *State) {
			s.Detail = detail
			s.Page = page
			s.TotalPages = detail.TotalPages
			s.TotalItems = detail.TotalMembers
		}
	default:
		err = fmt.Errorf("unknown view %q", view.Kind)
	}

	return f.finish(ctx, view, seq, commit, err)
}

// GoToPage moves the active view to page. User and tribe lists are paged
// locally from the last loaded list; tribe detail pages are fetched.
func (f *Fetcher) GoToPage(ctx context.Context, page int) (State, error) {
	f.mu.Lock()
	view := f.state.View
	if page < 1 || page > max(f.state.TotalPages, 1) {
		f.mu.Unlock()
		return f.State(), ErrPageOutOfRange
	}

	local := (view.Kind == models.ViewUsers && f.users != nil) ||
		(view.Kind == models.ViewTribes && f.tribes != nil)
	if !local {
		f.mu.Unlock()
		return f.Fetch(ctx, view, page)
	}

	// A local page change is the newest intent for the view.
	f.seq[view.Key()]++
	if view.Kind == models.ViewUsers {
		f.commitUsers(&f.state, page)
	} else {
		f.commitTribes(&f.state, page)
	}
	f.state.Phase = PhaseReady
	f.state.Pending = 0
	f.state.Err, f.state.Message = nil, ""
	state := f.state
	f.mu.Unlock()
	return state, nil
}

// NextPage advances one page.
func (f *Fetcher) NextPage(ctx context.Context) (State, error) {
	return f.GoToPage(ctx, f.State().Page+1)
}

// PrevPage goes back one page.
func (f *Fetcher) PrevPage(ctx context.Context) (State, error) {
	return f.GoToPage(ctx, f.State().Page-1)
}

// Refresh reloads the current page of the active view.
func (f *Fetcher) Refresh(ctx context.Context) (State, error) {
	s := f.State()
	return f.Fetch(ctx, s.View, s.Page)
}

// begin records a new request for view. Callers hold f.mu.
func (f *Fetcher) begin(view models.View, page int) uint64 {
	key := view.Key()
	f.seq[key]++
	f.state.Phase = PhaseLoading
	f.state.Pending = page
	return f.seq[key]
}

// finish commits or discards a response. The network call ran unlocked.
func (f *Fetcher) finish(ctx context.Context, view models.View, seq uint64, commit func(*State), err error) (State, error) {
	f.mu.Lock()
	if f.seq[view.Key()] != seq || f.state.View != view {
		f.mu.Unlock()
		f.logger.DebugContext(ctx, "discarding stale response", "view", view.Key(), "seq", seq)
		return f.State(), ErrSuperseded
	}

	if err != nil {
		f.state.Phase = PhaseFailed
		f.state.Pending = 0
		f.state.Err = err
		f.state.Message = MsgLoadFailed
		if client.IsUnauthorized(err) {
			f.state.Message = MsgUnauthorized
		}
		state := f.state
		f.mu.Unlock()

		f.logger.WarnContext(ctx, "view load failed",
			"view", view.Key(),
			"category", client.GetCategory(err),
			"error", err,
		)
		if client.IsUnauthorized(err) && f.onUnauthorized != nil {
			f.onUnauthorized(ctx)
		}
		return state, err
	}

	commit(&f.state)
	f.state.Phase = PhaseReady
	f.state.Pending = 0
	f.state.Err, f.state.Message = nil, ""
	state := f.state
	f.mu.Unlock()
	return state, nil
}

// commitUsers shows page of the cached user list, clamped to the last page.
// Callers hold f.mu.
func (f *Fetcher) commitUsers(s *State, page int) {
	s.TotalItems = len(f.users)
	s.TotalPages = models.TotalPages(s.TotalItems, f.pageSize)
	s.Page = clamp(page, s.TotalPages)
	s.Users = slice(f.users, s.Page, f.pageSize)
}

func (f *Fetcher) commitTribes(s *State, page int) {
	s.TotalItems = len(f.tribes)
	s.TotalPages = models.TotalPages(s.TotalItems, f.pageSize)
	s.Page = clamp(page, s.TotalPages)
	s.Tribes = slice(f.tribes, s.Page, f.pageSize)
}

func clamp(page, totalPages int) int {
	return min(max(page, 1), max(totalPages, 1))
}
