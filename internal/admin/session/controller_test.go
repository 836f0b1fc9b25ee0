package session

//go:generate mockgen -source=controller.go -destination=mocks/mocks.go -package=mocks API

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lockme/internal/admin/client"
	"lockme/internal/admin/models"
	"lockme/internal/admin/session/mocks"
	"lockme/internal/admin/tokenstore"
	storemocks "lockme/internal/admin/tokenstore/mocks"
)

// =============================================================================
// Session Controller Test Suite
// =============================================================================
// The controller decides when a token is trusted, stored and discarded.
// Tests pin the state machine edges and the token side effects of each.

type ControllerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	api     *mocks.MockAPI
	store   *tokenstore.MemoryStore
	session *Controller
	ctx     context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.api = mocks.NewMockAPI(s.ctrl)
	s.store = tokenstore.NewMemory()
	s.ctx = context.Background()

	var err error
	s.session, err = New(s.store, s.api)
	s.Require().NoError(err)
}

func (s *ControllerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ControllerSuite) storedToken() (string, bool) {
	token, ok, err := s.store.Get(s.ctx)
	s.Require().NoError(err)
	return token, ok
}

func unauthorized() error {
	return &client.Error{Category: client.CategoryUnauthorized, Endpoint: client.EndpointStats, Status: http.StatusUnauthorized}
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ControllerSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.api)
		s.ErrorContains(err, "token store is required")
	})

	s.Run("nil api returns error", func() {
		_, err := New(s.store, nil)
		s.ErrorContains(err, "admin api is required")
	})

	s.Run("starts unauthenticated", func() {
		s.Equal(models.SessionUnauthenticated, s.session.Status())
	})
}

// =============================================================================
// Init (session re-entry)
// =============================================================================

func (s *ControllerSuite) TestInit() {
	s.Run("without a stored token no network call is made", func() {
		s.Require().NoError(s.session.Init(s.ctx))
		s.Equal(models.SessionUnauthenticated, s.session.Status())
	})

	s.Run("valid token authenticates and caches stats", func() {
		s.Require().NoError(s.store.Set(s.ctx, "tok"))
		stats := &models.StatsSummary{TotalUsers: 3, TotalTribes: 1}
		s.api.EXPECT().Stats(gomock.Any()).Return(stats, nil)

		s.Require().NoError(s.session.Init(s.ctx))

		snap := s.session.Snapshot()
		s.True(snap.Authenticated())
		s.Equal(stats, snap.Stats)
		s.Empty(snap.Message)
	})
}

func (s *ControllerSuite) TestInitProbeRejected() {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		s.Run(http.StatusText(status), func() {
			s.Require().NoError(s.store.Set(s.ctx, "stale"))
			s.api.EXPECT().Stats(gomock.Any()).Return(nil, &client.Error{
				Category: client.CategoryUnauthorized,
				Endpoint: client.EndpointStats,
				Status:   status,
			})

			s.Require().NoError(s.session.Init(s.ctx))

			snap := s.session.Snapshot()
			s.Equal(models.SessionUnauthenticated, snap.Status)
			s.Equal(MsgSessionExpired, snap.Message)
			_, ok := s.storedToken()
			s.False(ok, "rejected token must be cleared")
		})
	}
}

func (s *ControllerSuite) TestInitProbeTransportFailureKeepsToken() {
	s.Require().NoError(s.store.Set(s.ctx, "tok"))
	s.api.EXPECT().Stats(gomock.Any()).Return(nil, &client.Error{
		Category: client.CategoryTransport,
		Endpoint: client.EndpointStats,
		Message:  "connection refused",
	})

	s.Require().NoError(s.session.Init(s.ctx))

	s.Equal(models.SessionUnauthenticated, s.session.Status())
	token, ok := s.storedToken()
	s.True(ok)
	s.Equal("tok", token)
}

func (s *ControllerSuite) TestInitStoreFailure() {
	store := storemocks.NewMockStore(s.ctrl)
	store.EXPECT().Get(gomock.Any()).Return("", false, errors.New("disk gone"))
	ctl, err := New(store, s.api)
	s.Require().NoError(err)

	err = ctl.Init(s.ctx)
	s.ErrorContains(err, "disk gone")
	s.Equal(models.SessionUnauthenticated, ctl.Status())
}

// =============================================================================
// Login
// =============================================================================

func (s *ControllerSuite) TestLogin() {
	s.Run("admin credential stores token and authenticates", func() {
		stats := &models.StatsSummary{TotalUsers: 10}
		gomock.InOrder(
			s.api.EXPECT().ExchangeGoogleToken(gomock.Any(), "id-token").
				Return(&models.LoginResult{AccessToken: "access", IsAdmin: true}, nil),
			s.api.EXPECT().Stats(gomock.Any()).Return(stats, nil),
		)

		s.Require().NoError(s.session.Login(s.ctx, "id-token"))

		snap := s.session.Snapshot()
		s.True(snap.Authenticated())
		s.Equal(stats, snap.Stats)
		token, ok := s.storedToken()
		s.True(ok)
		s.Equal("access", token)
	})
}

func (s *ControllerSuite) TestLoginNonAdmin() {
	s.api.EXPECT().ExchangeGoogleToken(gomock.Any(), "id-token").
		Return(&models.LoginResult{AccessToken: "access", IsAdmin: false}, nil)

	err := s.session.Login(s.ctx, "id-token")

	s.ErrorIs(err, ErrNotAdmin)
	snap := s.session.Snapshot()
	s.Equal(models.SessionUnauthenticated, snap.Status)
	s.Equal(MsgNotAdmin, snap.Message)
	_, ok := s.storedToken()
	s.False(ok, "non-admin token must never be persisted")
}

func (s *ControllerSuite) TestLoginExchangeFailure() {
	s.api.EXPECT().ExchangeGoogleToken(gomock.Any(), "bad").
		Return(nil, &client.Error{Category: client.CategoryRequestFailed, Endpoint: client.EndpointAuthGoogle, Status: 500})

	err := s.session.Login(s.ctx, "bad")

	s.ErrorIs(err, ErrLoginFailed)
	snap := s.session.Snapshot()
	s.Equal(models.SessionUnauthenticated, snap.Status)
	s.Equal(MsgLoginFailed, snap.Message)
	_, ok := s.storedToken()
	s.False(ok)
}

func (s *ControllerSuite) TestLoginStatsFailureStaysAuthenticated() {
	gomock.InOrder(
		s.api.EXPECT().ExchangeGoogleToken(gomock.Any(), gomock.Any()).
			Return(&models.LoginResult{AccessToken: "access", IsAdmin: true}, nil),
		s.api.EXPECT().Stats(gomock.Any()).
			Return(nil, &client.Error{Category: client.CategoryRequestFailed, Status: 500}),
	)

	s.Require().NoError(s.session.Login(s.ctx, "id-token"))

	snap := s.session.Snapshot()
	s.True(snap.Authenticated())
	s.Nil(snap.Stats)
	s.Equal(MsgStatsFailed, snap.Message)
}

func (s *ControllerSuite) TestLoginStatsRejectedExpires() {
	gomock.InOrder(
		s.api.EXPECT().ExchangeGoogleToken(gomock.Any(), gomock.Any()).
			Return(&models.LoginResult{AccessToken: "access", IsAdmin: true}, nil),
		s.api.EXPECT().Stats(gomock.Any()).Return(nil, unauthorized()),
	)

	s.Require().NoError(s.session.Login(s.ctx, "id-token"))

	s.Equal(models.SessionExpired, s.session.Status())
	_, ok := s.storedToken()
	s.False(ok)
}

func (s *ControllerSuite) TestLoginStoreFailure() {
	store := storemocks.NewMockStore(s.ctrl)
	store.EXPECT().Set(gomock.Any(), "access").Return(errors.New("read-only"))
	ctl, err := New(store, s.api)
	s.Require().NoError(err)
	s.api.EXPECT().ExchangeGoogleToken(gomock.Any(), gomock.Any()).
		Return(&models.LoginResult{AccessToken: "access", IsAdmin: true}, nil)

	err = ctl.Login(s.ctx, "id-token")

	s.ErrorIs(err, ErrLoginFailed)
	s.Equal(models.SessionUnauthenticated, ctl.Status())
}

// =============================================================================
// Sign-out and expiry
// =============================================================================

func (s *ControllerSuite) authenticate() {
	s.Require().NoError(s.store.Set(s.ctx, "tok"))
	s.api.EXPECT().Stats(gomock.Any()).Return(&models.StatsSummary{}, nil)
	s.Require().NoError(s.session.Init(s.ctx))
	s.Require().True(s.session.Snapshot().Authenticated())
}

func (s *ControllerSuite) TestSignOut() {
	s.authenticate()
	resets := 0
	s.session.OnReset(func() { resets++ })

	s.Require().NoError(s.session.SignOut(s.ctx))

	snap := s.session.Snapshot()
	s.Equal(models.SessionUnauthenticated, snap.Status)
	s.Nil(snap.Stats)
	s.Equal(1, resets)
	_, ok := s.storedToken()
	s.False(ok)
}

func (s *ControllerSuite) TestSignOutReportsStoreFailure() {
	store := storemocks.NewMockStore(s.ctrl)
	store.EXPECT().Clear(gomock.Any()).Return(errors.New("locked"))
	ctl, err := New(store, s.api)
	s.Require().NoError(err)

	err = ctl.SignOut(s.ctx)

	s.ErrorContains(err, "locked")
	s.Equal(models.SessionUnauthenticated, ctl.Status())
}

func (s *ControllerSuite) TestExpire() {
	s.Run("authenticated session expires and resets dependents", func() {
		s.authenticate()
		resets := 0
		s.session.OnReset(func() { resets++ })

		s.session.Expire(s.ctx)

		snap := s.session.Snapshot()
		s.Equal(models.SessionExpired, snap.Status)
		s.Equal(MsgSessionExpired, snap.Message)
		s.False(snap.Authenticated())
		s.Equal(1, resets)
		_, ok := s.storedToken()
		s.False(ok)
	})

	s.Run("expire when signed out is a no-op", func() {
		ctl, err := New(tokenstore.NewMemory(), s.api)
		s.Require().NoError(err)
		ctl.Expire(s.ctx)
		s.Equal(models.SessionUnauthenticated, ctl.Status())
	})

	s.Run("expire when signed out keeps the stored token", func() {
		store := tokenstore.NewMemory("kept")
		ctl, err := New(store, s.api)
		s.Require().NoError(err)

		ctl.Expire(s.ctx)

		token, ok, err := store.Get(s.ctx)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal("kept", token)
	})
}

func (s *ControllerSuite) TestReloginAfterExpiry() {
	s.authenticate()
	s.session.Expire(s.ctx)

	gomock.InOrder(
		s.api.EXPECT().ExchangeGoogleToken(gomock.Any(), gomock.Any()).
			Return(&models.LoginResult{AccessToken: "fresh", IsAdmin: true}, nil),
		s.api.EXPECT().Stats(gomock.Any()).Return(&models.StatsSummary{}, nil),
	)
	s.Require().NoError(s.session.Login(s.ctx, "id-token"))

	s.True(s.session.Snapshot().Authenticated())
	token, _ := s.storedToken()
	s.Equal("fresh", token)
}

// =============================================================================
// Transition table
// =============================================================================

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.SessionStatus
		want     bool
	}{
		{models.SessionUnauthenticated, models.SessionLoading, true},
		{models.SessionUnauthenticated, models.SessionAuthenticated, false},
		{models.SessionLoading, models.SessionAuthenticated, true},
		{models.SessionAuthenticated, models.SessionExpired, true},
		{models.SessionExpired, models.SessionAuthenticated, false},
		{models.SessionExpired, models.SessionLoading, true},
	}
	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}
