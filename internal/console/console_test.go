package console

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"lockme/internal/admin/client"
	"lockme/internal/admin/models"
	"lockme/internal/admin/navigation"
	"lockme/internal/admin/pagination"
	"lockme/internal/admin/session"
	"lockme/internal/admin/tokenstore"
	"lockme/internal/devbackend/backendtest"
	"lockme/internal/devbackend/store"
)

type ConsoleSuite struct {
	suite.Suite
	ctx     context.Context
	backend *backendtest.Backend
	tokens  *tokenstore.MemoryStore
	console *Console
}

func TestConsoleSuite(t *testing.T) {
	suite.Run(t, new(ConsoleSuite))
}

func (s *ConsoleSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = backendtest.Start(s.T())
	s.tokens = tokenstore.NewMemory()
	s.console = s.newConsole()
}

func (s *ConsoleSuite) newConsole(opts ...Option) *Console {
	opts = append([]Option{WithTokenStore(s.tokens)}, opts...)
	c, err := New(s.ctx, s.backend.AdminConfig(), opts...)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

func (s *ConsoleSuite) loginAdmin() {
	s.Require().NoError(s.console.Login(s.ctx, s.backend.IDToken(s.T(), store.SeedAdminEmail)))
	s.Require().Equal(models.SessionAuthenticated, s.console.Session().Status)
}

func (s *ConsoleSuite) TestInitWithoutToken() {
	s.Require().NoError(s.console.Init(s.ctx))
	s.Equal(models.SessionUnauthenticated, s.console.Session().Status)

	_, err := s.console.Open(s.ctx, models.UsersView)
	s.ErrorIs(err, navigation.ErrNotAuthenticated)
	s.Equal(models.DashboardView, s.console.Current())
}

func (s *ConsoleSuite) TestLoginAndBrowse() {
	s.loginAdmin()

	snap := s.console.Session()
	s.Require().NotNil(snap.Stats)
	s.Equal(25, snap.Stats.TotalUsers)

	s.Run("users are paged locally", func() {
		state, err := s.console.Open(s.ctx, models.UsersView)
		s.Require().NoError(err)
		s.Equal(pagination.PhaseReady, state.Phase)
		s.Equal(3, state.TotalPages)
		s.Len(state.Users, 10)

		state, err = s.console.GoToPage(s.ctx, 3)
		s.Require().NoError(err)
		s.Len(state.Users, 5)

		_, err = s.console.NextPage(s.ctx)
		s.ErrorIs(err, pagination.ErrPageOutOfRange)
		s.Equal(3, s.console.State().Page)
	})

	s.Run("tribe detail pages come from the backend", func() {
		state, err := s.console.OpenTribe(s.ctx, 1)
		s.Require().NoError(err)
		s.Require().NotNil(state.Detail)
		s.Equal("Deep Work", state.Detail.TribeName)
		s.Equal(1, state.Page)

		state, err = s.console.NextPage(s.ctx)
		s.Require().NoError(err)
		s.Equal(2, state.Detail.Page)

		state, err = s.console.Back(s.ctx)
		s.Require().NoError(err)
		s.Equal(models.TribesView, state.View)
		s.Len(state.Tribes, 4)

		_, err = s.console.Back(s.ctx)
		s.Require().NoError(err)
		s.Equal(models.DashboardView, s.console.Current())
	})

	s.Run("unknown tribe fails without ending the session", func() {
		state, err := s.console.OpenTribe(s.ctx, 99)
		s.Error(err)
		s.Equal(pagination.PhaseFailed, state.Phase)
		s.Equal(pagination.MsgLoadFailed, state.Message)
		s.Equal(models.SessionAuthenticated, s.console.Session().Status)
	})
}

func (s *ConsoleSuite) TestNonAdminLogin() {
	err := s.console.Login(s.ctx, s.backend.IDToken(s.T(), store.SeedMemberEmail))
	s.ErrorIs(err, session.ErrNotAdmin)

	snap := s.console.Session()
	s.Equal(models.SessionUnauthenticated, snap.Status)
	s.Equal(session.MsgNotAdmin, snap.Message)

	_, ok, err := s.tokens.Get(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ConsoleSuite) TestSessionResumes() {
	s.loginAdmin()

	resumed := s.newConsole()
	s.Require().NoError(resumed.Init(s.ctx))
	s.Equal(models.SessionAuthenticated, resumed.Session().Status)

	claims, err := resumed.Whoami(s.ctx)
	s.Require().NoError(err)
	s.Equal(store.SeedAdminEmail, claims.Email)
	s.True(claims.IsAdmin)
}

func (s *ConsoleSuite) TestRejectedTokenExpiresSession() {
	s.loginAdmin()
	_, err := s.console.Open(s.ctx, models.UsersView)
	s.Require().NoError(err)

	// a token the backend cannot verify stands in for one that expired
	s.Require().NoError(s.tokens.Set(s.ctx, "revoked"))

	_, err = s.console.Refresh(s.ctx)
	s.Error(err)

	snap := s.console.Session()
	s.Equal(models.SessionExpired, snap.Status)
	s.Equal(session.MsgSessionExpired, snap.Message)
	s.Equal(models.DashboardView, s.console.Current())
	s.Equal(pagination.PhaseIdle, s.console.State().Phase)

	_, ok, err := s.tokens.Get(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ConsoleSuite) TestLogout() {
	s.loginAdmin()
	_, err := s.console.Open(s.ctx, models.TribesView)
	s.Require().NoError(err)

	s.Require().NoError(s.console.Logout(s.ctx))
	s.Equal(models.SessionUnauthenticated, s.console.Session().Status)
	s.Equal(models.DashboardView, s.console.Current())
	s.Empty(s.console.State().Tribes)

	_, err = s.console.Whoami(s.ctx)
	s.ErrorIs(err, ErrNoToken)

	_, err = s.console.GoToPage(s.ctx, 1)
	s.ErrorIs(err, navigation.ErrNotAuthenticated)
}

func (s *ConsoleSuite) TestClientMetrics() {
	reg := prometheus.NewRegistry()
	c := s.newConsole(WithMetricsRegisterer(reg), WithHTTPClient(http.DefaultClient))
	s.Require().NoError(c.Login(s.ctx, s.backend.IDToken(s.T(), store.SeedAdminEmail)))

	count, err := testutil.GatherAndCount(reg)
	s.Require().NoError(err)
	s.Positive(count)
}

// gatedDoer holds the first request for path until release is closed and
// then answers it with a 401, standing in for a slow response to a token
// that has since been replaced.
type gatedDoer struct {
	next    client.HTTPDoer
	path    string
	armed   atomic.Bool
	started chan struct{}
	release chan struct{}
}

func newGatedDoer(path string) *gatedDoer {
	d := &gatedDoer{
		next:    http.DefaultClient,
		path:    path,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	d.armed.Store(true)
	return d
}

func (d *gatedDoer) Do(req *http.Request) (*http.Response, error) {
	if req.URL.Path == d.path && d.armed.CompareAndSwap(true, false) {
		close(d.started)
		<-d.release
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"error":"unauthorized","error_description":"token expired"}`)),
			Request:    req,
		}, nil
	}
	return d.next.Do(req)
}

func (s *ConsoleSuite) TestLateRejectionAfterReloginIsDiscarded() {
	doer := newGatedDoer("/admin/users")
	s.console = s.newConsole(WithHTTPClient(doer))
	s.loginAdmin()

	type result struct {
		state pagination.State
		err   error
	}
	done := make(chan result, 1)
	go func() {
		state, err := s.console.Open(s.ctx, models.UsersView)
		done <- result{state, err}
	}()
	<-doer.started

	s.Require().NoError(s.console.Logout(s.ctx))
	s.loginAdmin()
	relogged, ok, err := s.tokens.Get(s.ctx)
	s.Require().NoError(err)
	s.Require().True(ok)

	close(doer.release)
	res := <-done
	s.ErrorIs(res.err, pagination.ErrSuperseded)

	snap := s.console.Session()
	s.Equal(models.SessionAuthenticated, snap.Status)
	s.Empty(snap.Message)
	token, ok, err := s.tokens.Get(s.ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(relogged, token)

	s.Equal(models.DashboardView, s.console.Current())
	s.Equal(pagination.PhaseIdle, s.console.State().Phase)

	state, err := s.console.Open(s.ctx, models.UsersView)
	s.Require().NoError(err)
	s.Len(state.Users, 10)
}

func (s *ConsoleSuite) TestLateRejectionAfterLogoutLeavesSignedOut() {
	doer := newGatedDoer("/admin/tribes")
	s.console = s.newConsole(WithHTTPClient(doer))
	s.loginAdmin()

	done := make(chan error, 1)
	go func() {
		_, err := s.console.Open(s.ctx, models.TribesView)
		done <- err
	}()
	<-doer.started

	s.Require().NoError(s.console.Logout(s.ctx))
	close(doer.release)
	s.ErrorIs(<-done, pagination.ErrSuperseded)

	snap := s.console.Session()
	s.Equal(models.SessionUnauthenticated, snap.Status)
	s.Empty(snap.Message)
	s.Empty(s.console.State().Tribes)
}
