package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/cucumber/godog"

	"lockme/internal/admin/models"
	"lockme/internal/admin/pagination"
	"lockme/internal/admin/session"
	"lockme/internal/console"
	id "lockme/pkg/domain"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GetConsole() *console.Console
	MintIdentityToken(email string) (string, error)
	MintForeignIdentityToken(email string) (string, error)
	Record(state pagination.State, err error)
	GetLastState() pagination.State
	GetLastErr() error
	Session() session.Snapshot
}

// RegisterSteps registers admin console step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	// Session steps
	ctx.Step(`^the console has started$`, steps.consoleHasStarted)
	ctx.Step(`^I sign in to the console as "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I sign in to the console with a forged token for "([^"]*)"$`, steps.signInForged)
	ctx.Step(`^I sign out of the console$`, steps.signOut)
	ctx.Step(`^the session status should be "([^"]*)"$`, steps.sessionStatusShouldBe)
	ctx.Step(`^the session message should be "([^"]*)"$`, steps.sessionMessageShouldBe)
	ctx.Step(`^the dashboard should show (\d+) users and (\d+) tribes$`, steps.dashboardShouldShow)
	ctx.Step(`^the console should be signed in as "([^"]*)"$`, steps.signedInAs)

	// Navigation steps
	ctx.Step(`^I open the users list$`, steps.openUsers)
	ctx.Step(`^I open the tribes list$`, steps.openTribes)
	ctx.Step(`^I open tribe (\d+)$`, steps.openTribe)
	ctx.Step(`^I go back$`, steps.goBack)
	ctx.Step(`^I go to page (\d+)$`, steps.goToPage)
	ctx.Step(`^I go to the next page$`, steps.nextPage)
	ctx.Step(`^I go to the previous page$`, steps.prevPage)

	// Assertion steps
	ctx.Step(`^the current view should be "([^"]*)"$`, steps.currentViewShouldBe)
	ctx.Step(`^the view should be on page (\d+) of (\d+)$`, steps.pageShouldBe)
	ctx.Step(`^the view should list (\d+) (?:users|tribes|members)$`, steps.shouldList)
	ctx.Step(`^the tribe name should be "([^"]*)"$`, steps.tribeNameShouldBe)
	ctx.Step(`^the request should be rejected as out of range$`, steps.rejectedOutOfRange)
	ctx.Step(`^the request should be refused until sign in$`, steps.refusedUntilSignIn)
	ctx.Step(`^the view should have failed with "([^"]*)"$`, steps.viewFailedWith)
}

type adminSteps struct {
	tc TestContext
}

func (s *adminSteps) consoleHasStarted(ctx context.Context) error {
	return s.tc.GetConsole().Init(ctx)
}

func (s *adminSteps) signIn(ctx context.Context, email string) error {
	token, err := s.tc.MintIdentityToken(email)
	if err != nil {
		return err
	}
	// a refused login is asserted through the session snapshot
	_ = s.tc.GetConsole().Login(ctx, token)
	return nil
}

func (s *adminSteps) signInForged(ctx context.Context, email string) error {
	token, err := s.tc.MintForeignIdentityToken(email)
	if err != nil {
		return err
	}
	_ = s.tc.GetConsole().Login(ctx, token)
	return nil
}

func (s *adminSteps) signOut(ctx context.Context) error {
	return s.tc.GetConsole().Logout(ctx)
}

func (s *adminSteps) sessionStatusShouldBe(ctx context.Context, status string) error {
	if got := s.tc.Session().Status; string(got) != status {
		return fmt.Errorf("expected session status %s but got %s", status, got)
	}
	return nil
}

func (s *adminSteps) sessionMessageShouldBe(ctx context.Context, message string) error {
	if got := s.tc.Session().Message; got != message {
		return fmt.Errorf("expected session message %q but got %q", message, got)
	}
	return nil
}

func (s *adminSteps) dashboardShouldShow(ctx context.Context, users, tribes int) error {
	stats := s.tc.Session().Stats
	if stats == nil {
		return fmt.Errorf("no stats loaded")
	}
	if stats.TotalUsers != users || stats.TotalTribes != tribes {
		return fmt.Errorf("expected %d users and %d tribes but got %d and %d",
			users, tribes, stats.TotalUsers, stats.TotalTribes)
	}
	return nil
}

func (s *adminSteps) signedInAs(ctx context.Context, email string) error {
	claims, err := s.tc.GetConsole().Whoami(ctx)
	if err != nil {
		return err
	}
	if claims.Email != email {
		return fmt.Errorf("expected to be signed in as %s but was %s", email, claims.Email)
	}
	return nil
}

func (s *adminSteps) openUsers(ctx context.Context) error {
	s.tc.Record(s.tc.GetConsole().Open(ctx, models.UsersView))
	return nil
}

func (s *adminSteps) openTribes(ctx context.Context) error {
	s.tc.Record(s.tc.GetConsole().Open(ctx, models.TribesView))
	return nil
}

func (s *adminSteps) openTribe(ctx context.Context, tribeID int64) error {
	s.tc.Record(s.tc.GetConsole().OpenTribe(ctx, id.TribeID(tribeID)))
	return nil
}

func (s *adminSteps) goBack(ctx context.Context) error {
	s.tc.Record(s.tc.GetConsole().Back(ctx))
	return nil
}

func (s *adminSteps) goToPage(ctx context.Context, page int) error {
	s.tc.Record(s.tc.GetConsole().GoToPage(ctx, page))
	return nil
}

func (s *adminSteps) nextPage(ctx context.Context) error {
	s.tc.Record(s.tc.GetConsole().NextPage(ctx))
	return nil
}

func (s *adminSteps) prevPage(ctx context.Context) error {
	s.tc.Record(s.tc.GetConsole().PrevPage(ctx))
	return nil
}

func (s *adminSteps) currentViewShouldBe(ctx context.Context, view string) error {
	if got := s.tc.GetConsole().Current().Key(); got != view {
		return fmt.Errorf("expected view %s but got %s", view, got)
	}
	return nil
}

func (s *adminSteps) pageShouldBe(ctx context.Context, page, total int) error {
	state := s.tc.GetConsole().State()
	if state.Page != page || state.TotalPages != total {
		return fmt.Errorf("expected page %d of %d but got %d of %d", page, total, state.Page, state.TotalPages)
	}
	return nil
}

func (s *adminSteps) shouldList(ctx context.Context, n int) error {
	if err := s.tc.GetLastErr(); err != nil {
		return fmt.Errorf("last request failed: %w", err)
	}
	state := s.tc.GetConsole().State()
	var got int
	switch state.View.Kind {
	case models.ViewUsers:
		got = len(state.Users)
	case models.ViewTribes:
		got = len(state.Tribes)
	case models.ViewTribeDetail:
		if state.Detail == nil {
			return fmt.Errorf("tribe detail not loaded")
		}
		got = len(state.Detail.Members)
	default:
		return fmt.Errorf("view %s has no list", state.View)
	}
	if got != n {
		return fmt.Errorf("expected %d rows but got %d", n, got)
	}
	return nil
}

func (s *adminSteps) tribeNameShouldBe(ctx context.Context, name string) error {
	detail := s.tc.GetConsole().State().Detail
	if detail == nil {
		return fmt.Errorf("tribe detail not loaded")
	}
	if detail.TribeName != name {
		return fmt.Errorf("expected tribe %q but got %q", name, detail.TribeName)
	}
	return nil
}

func (s *adminSteps) rejectedOutOfRange(ctx context.Context) error {
	if !errors.Is(s.tc.GetLastErr(), pagination.ErrPageOutOfRange) {
		return fmt.Errorf("expected out of range error but got %v", s.tc.GetLastErr())
	}
	return nil
}

func (s *adminSteps) refusedUntilSignIn(ctx context.Context) error {
	if s.tc.GetLastErr() == nil {
		return fmt.Errorf("expected the request to be refused")
	}
	if s.tc.Session().Authenticated() {
		return fmt.Errorf("session is unexpectedly authenticated")
	}
	return nil
}

func (s *adminSteps) viewFailedWith(ctx context.Context, message string) error {
	state := s.tc.GetLastState()
	if state.Phase != pagination.PhaseFailed {
		return fmt.Errorf("expected a failed view but phase is %s", state.Phase)
	}
	if state.Message != message {
		return fmt.Errorf("expected message %q but got %q", message, state.Message)
	}
	return nil
}
