package pagination

//go:generate mockgen -source=fetcher.go -destination=mocks/mocks.go -package=mocks Source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lockme/internal/admin/client"
	"lockme/internal/admin/models"
	"lockme/internal/admin/pagination/mocks"
	id "lockme/pkg/domain"
	"lockme/pkg/testutil"
)

// =============================================================================
// Fetcher Test Suite
// =============================================================================
// The fetcher is the only writer of view data. Tests cover paging bounds,
// local list paging and the discard of out-of-order responses.

type FetcherSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	src     *mocks.MockSource
	fetcher *Fetcher
	ctx     context.Context
	expired int
}

func TestFetcherSuite(t *testing.T) {
	suite.Run(t, new(FetcherSuite))
}

func (s *FetcherSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.src = mocks.NewMockSource(s.ctrl)
	s.ctx = context.Background()
	s.expired = 0

	var err error
	s.fetcher, err = New(s.src,
		WithPageSize(10),
		OnUnauthorized(func(context.Context) { s.expired++ }),
	)
	s.Require().NoError(err)
}

func (s *FetcherSuite) TearDownTest() {
	s.ctrl.Finish()
}

func detailPage(tribeID id.TribeID, page, totalMembers int) *models.TribeDetailPage {
	return &models.TribeDetailPage{
		TribeID:      tribeID,
		TribeName:    "Deep Work",
		TotalMembers: totalMembers,
		Page:         page,
		PageSize:     10,
		TotalPages:   models.TotalPages(totalMembers, 10),
		Members:      []models.TribeMember{{UserID: id.UserID(page), UserName: fmt.Sprintf("member-%d", page)}},
	}
}

// =============================================================================
// Construction
// =============================================================================

func (s *FetcherSuite) TestNew() {
	s.Run("nil source returns error", func() {
		_, err := New(nil)
		s.ErrorContains(err, "data source is required")
	})

	s.Run("defaults", func() {
		f, err := New(s.src, WithPageSize(0))
		s.Require().NoError(err)
		s.Equal(DefaultPageSize, f.PageSize())
		st := f.State()
		s.Equal(models.DashboardView, st.View)
		s.Equal(PhaseIdle, st.Phase)
		s.Equal(1, st.Page)
	})
}

// =============================================================================
// Views
// =============================================================================

func (s *FetcherSuite) TestFetchDashboard() {
	stats := &models.StatsSummary{TotalUsers: 4, TotalTribes: 2}
	s.src.EXPECT().Stats(gomock.Any()).Return(stats, nil)

	st, err := s.fetcher.Fetch(s.ctx, models.DashboardView, 1)

	s.Require().NoError(err)
	s.Equal(PhaseReady, st.Phase)
	s.Equal(stats, st.Stats)
}

func (s *FetcherSuite) TestUsersArePagedLocally() {
	s.src.EXPECT().Users(gomock.Any()).Return(testutil.AdminUsers(25), nil).Times(1)

	st, err := s.fetcher.Fetch(s.ctx, models.UsersView, 1)
	s.Require().NoError(err)
	s.Equal(3, st.TotalPages)
	s.Equal(25, st.TotalItems)
	s.Len(st.Users, 10)
	s.Equal(id.UserID(1), st.Users[0].ID)

	st, err = s.fetcher.GoToPage(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(3, st.Page)
	s.Len(st.Users, 5)
	s.Equal(id.UserID(21), st.Users[0].ID)

	st, err = s.fetcher.PrevPage(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, st.Page)
	s.Equal(id.UserID(11), st.Users[0].ID)
}

func (s *FetcherSuite) TestTribesArePagedLocally() {
	tribes := make([]models.Tribe, 12)
	for i := range tribes {
		tribes[i] = models.Tribe{ID: id.TribeID(i + 1), Name: fmt.Sprintf("tribe-%d", i+1)}
	}
	s.src.EXPECT().Tribes(gomock.Any()).Return(tribes, nil).Times(1)

	_, err := s.fetcher.Fetch(s.ctx, models.TribesView, 1)
	s.Require().NoError(err)

	st, err := s.fetcher.NextPage(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, st.Page)
	s.Len(st.Tribes, 2)
}

func (s *FetcherSuite) TestEmptyListHasOnePage() {
	s.src.EXPECT().Users(gomock.Any()).Return([]models.User{}, nil)

	st, err := s.fetcher.Fetch(s.ctx, models.UsersView, 1)

	s.Require().NoError(err)
	s.Equal(0, st.TotalPages)
	s.Equal(1, st.Page)
	s.Empty(st.Users)

	_, err = s.fetcher.NextPage(s.ctx)
	s.ErrorIs(err, ErrPageOutOfRange)
}

func (s *FetcherSuite) TestRefreshClampsShrunkList() {
	gomock.InOrder(
		s.src.EXPECT().Users(gomock.Any()).Return(testutil.AdminUsers(25), nil),
		s.src.EXPECT().Users(gomock.Any()).Return(testutil.AdminUsers(8), nil),
	)
	_, err := s.fetcher.Fetch(s.ctx, models.UsersView, 1)
	s.Require().NoError(err)
	_, err = s.fetcher.GoToPage(s.ctx, 3)
	s.Require().NoError(err)

	st, err := s.fetcher.Refresh(s.ctx)

	s.Require().NoError(err)
	s.Equal(1, st.Page)
	s.Len(st.Users, 8)
}

func (s *FetcherSuite) TestTribeDetailPagesFetchFromBackend() {
	view := models.TribeDetailView(7)
	gomock.InOrder(
		s.src.EXPECT().TribeDetail(gomock.Any(), id.TribeID(7), 1, 10).Return(detailPage(7, 1, 35), nil),
		s.src.EXPECT().TribeDetail(gomock.Any(), id.TribeID(7), 4, 10).Return(detailPage(7, 4, 35), nil),
	)

	st, err := s.fetcher.Fetch(s.ctx, view, 1)
	s.Require().NoError(err)
	s.Equal(4, st.TotalPages)

	st, err = s.fetcher.GoToPage(s.ctx, 4)
	s.Require().NoError(err)
	s.Equal(4, st.Page)
	s.Equal("member-4", st.Detail.Members[0].UserName)
}

// =============================================================================
// Page bounds
// =============================================================================

func (s *FetcherSuite) TestGoToPageOutOfRangeLeavesStateUnchanged() {
	view := models.TribeDetailView(7)
	s.src.EXPECT().TribeDetail(gomock.Any(), id.TribeID(7), 1, 10).Return(detailPage(7, 1, 35), nil)
	before, err := s.fetcher.Fetch(s.ctx, view, 1)
	s.Require().NoError(err)

	for _, page := range []int{0, -1, 5, 100} {
		st, err := s.fetcher.GoToPage(s.ctx, page)
		s.ErrorIs(err, ErrPageOutOfRange, "page %d", page)
		s.Equal(before, st)
	}

	_, err = s.fetcher.PrevPage(s.ctx)
	s.ErrorIs(err, ErrPageOutOfRange)
}

func (s *FetcherSuite) TestFetchRejectsPageBelowOne() {
	_, err := s.fetcher.Fetch(s.ctx, models.UsersView, 0)
	s.ErrorIs(err, ErrPageOutOfRange)
}

// =============================================================================
// Failures
// =============================================================================

func (s *FetcherSuite) TestFailureKeepsPreviousData() {
	gomock.InOrder(
		s.src.EXPECT().Users(gomock.Any()).Return(testutil.AdminUsers(3), nil),
		s.src.EXPECT().Users(gomock.Any()).Return(nil, &client.Error{Category: client.CategoryRequestFailed, Status: 500}),
	)
	_, err := s.fetcher.Fetch(s.ctx, models.UsersView, 1)
	s.Require().NoError(err)

	st, err := s.fetcher.Refresh(s.ctx)

	s.Error(err)
	s.Equal(PhaseFailed, st.Phase)
	s.Equal(MsgLoadFailed, st.Message)
	s.Len(st.Users, 3)
	s.Equal(0, s.expired)
}

func (s *FetcherSuite) TestUnauthorizedRunsHook() {
	s.src.EXPECT().Stats(gomock.Any()).Return(nil, &client.Error{
		Category: client.CategoryUnauthorized,
		Status:   http.StatusForbidden,
	})

	st, err := s.fetcher.Fetch(s.ctx, models.DashboardView, 1)

	s.True(client.IsUnauthorized(err))
	s.Equal(MsgUnauthorized, st.Message)
	s.Equal(1, s.expired)
}

// =============================================================================
// Out-of-order responses
// =============================================================================

// blockingDetail returns a TribeDetail stub that signals when it starts and
// waits for release before answering.
func blockingDetail(started, release chan struct{}, resp *models.TribeDetailPage) func(context.Context, id.TribeID, int, int) (*models.TribeDetailPage, error) {
	return func(context.Context, id.TribeID, int, int) (*models.TribeDetailPage, error) {
		close(started)
		<-release
		return resp, nil
	}
}

func (s *FetcherSuite) TestSlowOlderPageIsDiscarded() {
	view := models.TribeDetailView(7)
	s.src.EXPECT().TribeDetail(gomock.Any(), id.TribeID(7), 1, 10).Return(detailPage(7, 1, 35), nil)
	_, err := s.fetcher.Fetch(s.ctx, view, 1)
	s.Require().NoError(err)

	started, release := make(chan struct{}), make(chan struct{})
	s.src.EXPECT().TribeDetail(gomock.Any(), id.TribeID(7), 2, 10).
		DoAndReturn(blockingDetail(started, release, detailPage(7, 2, 35)))
	s.src.EXPECT().TribeDetail(gomock.Any(), id.TribeID(7), 3, 10).Return(detailPage(7, 3, 35), nil)

	slow := make(chan error, 1)
	go func() {
		_, err := s.fetcher.GoToPage(s.ctx, 2)
		slow <- err
	}()
	<-started

	st, err := s.fetcher.GoToPage(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(3, st.Page)

	close(release)
	s.ErrorIs(<-slow, ErrSuperseded)

	final := s.fetcher.State()
	s.Equal(3, final.Page)
	s.Equal("member-3", final.Detail.Members[0].UserName)
}

func (s *FetcherSuite) TestResponseForInactiveViewIsDiscarded() {
	started, release := make(chan struct{}), make(chan struct{})
	s.src.EXPECT().TribeDetail(gomock.Any(), id.TribeID(7), 1, 10).
		DoAndReturn(blockingDetail(started, release, detailPage(7, 1, 35)))
	s.src.EXPECT().Users(gomock.Any()).Return(testutil.AdminUsers(2), nil)

	slow := make(chan error, 1)
	go func() {
		_, err := s.fetcher.Fetch(s.ctx, models.TribeDetailView(7), 1)
		slow <- err
	}()
	<-started

	_, err := s.fetcher.Fetch(s.ctx, models.UsersView, 1)
	s.Require().NoError(err)

	close(release)
	s.ErrorIs(<-slow, ErrSuperseded)

	st := s.fetcher.State()
	s.Equal(models.UsersView, st.View)
	s.Nil(st.Detail)
	s.Len(st.Users, 2)
}

func (s *FetcherSuite) TestResetSupersedesInFlight() {
	started, release := make(chan struct{}), make(chan struct{})
	s.src.EXPECT().TribeDetail(gomock.Any(), id.TribeID(3), 1, 10).
		DoAndReturn(blockingDetail(started, release, detailPage(3, 1, 5)))

	slow := make(chan error, 1)
	go func() {
		_, err := s.fetcher.Fetch(s.ctx, models.TribeDetailView(3), 1)
		slow <- err
	}()
	<-started

	s.fetcher.Reset()
	close(release)

	s.True(errors.Is(<-slow, ErrSuperseded))
	st := s.fetcher.State()
	s.Equal(models.DashboardView, st.View)
	s.Equal(PhaseIdle, st.Phase)
}
