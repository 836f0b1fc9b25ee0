package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lockme/internal/admin/models"
	"lockme/internal/admin/pagination"
	"lockme/internal/admin/session"
)

func strPtr(s string) *string { return &s }

func TestSession(t *testing.T) {
	st := PlainStyles()
	assert.Contains(t, Session(st, session.Snapshot{Status: models.SessionAuthenticated}), "signed in")
	out := Session(st, session.Snapshot{Status: models.SessionUnauthenticated, Message: session.MsgNotAdmin})
	assert.Contains(t, out, "signed out")
	assert.Contains(t, out, "You are not an admin!")
}

func TestStats(t *testing.T) {
	st := PlainStyles()
	created := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)

	out := Stats(st, &models.StatsSummary{
		TotalUsers:  42,
		TotalTribes: 7,
		RecentUsers: []models.User{{ID: 3, Email: "a@lockme.test", Provider: "google", CreatedAt: &created}},
	})
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "Total Tribes")
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "a@lockme.test")
	// missing name renders as a dash
	assert.Contains(t, out, " - ")

	assert.Contains(t, Stats(st, &models.StatsSummary{}), "No recent users.")
	assert.Contains(t, Stats(st, nil), "No statistics loaded.")
}

func TestUsers(t *testing.T) {
	st := PlainStyles()
	state := pagination.State{
		View: models.UsersView, Phase: pagination.PhaseReady,
		Page: 2, PageSize: 10, TotalPages: 3, TotalItems: 25,
		Users: []models.User{
			{ID: 11, Email: "ada@lockme.test", FullName: strPtr("Ada Lovelace"), TotalFocusMinutes: 59.7, CurrentStreak: 4},
			{ID: 12, Email: "anon@lockme.test", TotalFocusMinutes: 125},
		},
	}

	out := Users(st, state)
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "60m")
	assert.Contains(t, out, "2h 5m")
	assert.Contains(t, out, "🔥 4d")
	assert.Contains(t, out, "anon@lockme.test")
	assert.Contains(t, out, "Showing 11-20 of 25")
	assert.Contains(t, out, "[2]")

	assert.Equal(t, "No users found.", Users(st, pagination.State{View: models.UsersView}))
}

func TestTribeDetail(t *testing.T) {
	st := PlainStyles()
	detail := &models.TribeDetailPage{
		TribeID: 1, TribeName: "Deep Work", InviteCode: "DEEP01",
		TotalMembers: 12, Page: 1, PageSize: 10, TotalPages: 2,
		Members: []models.TribeMember{
			{UserID: 1, UserName: "Grace", UserEmail: "g@lockme.test", TotalFocusMinutes: 300},
			{UserID: 2, UserName: "", UserEmail: "x@lockme.test", TotalFocusMinutes: 200},
			{UserID: 3, UserName: "Alan", UserEmail: "a@lockme.test", TotalFocusMinutes: 100},
			{UserID: 4, UserName: "Edsger", UserEmail: "e@lockme.test", TotalFocusMinutes: 50},
		},
	}
	out := TribeDetail(st, pagination.State{
		View: models.TribeDetailView(1), Phase: pagination.PhaseReady,
		Page: 1, PageSize: 10, TotalPages: 2, TotalItems: 12, Detail: detail,
	})
	assert.Contains(t, out, "Deep Work")
	assert.Contains(t, out, "12 members")
	for _, badge := range []string{"🥇", "🥈", "🥉", "#4"} {
		assert.Contains(t, out, badge)
	}
	assert.Contains(t, out, "Showing 1-10 of 12")

	second := *detail
	second.Page = 2
	second.Members = detail.Members[:1]
	out = TribeDetail(st, pagination.State{Page: 2, TotalPages: 2, TotalItems: 12, Detail: &second})
	assert.Contains(t, out, "#11")
	assert.NotContains(t, out, "🥇")
}

func TestPager(t *testing.T) {
	st := PlainStyles()
	assert.Empty(t, Pager(st, pagination.State{Page: 1, TotalPages: 1, TotalItems: 3, PageSize: 10}))

	out := Pager(st, pagination.State{Page: 5, TotalPages: 10, TotalItems: 100, PageSize: 10})
	assert.Contains(t, out, "1 … 4 [5] 6 … 10")
	assert.Contains(t, out, "‹")
	assert.Contains(t, out, "›")

	last := Pager(st, pagination.State{Page: 10, TotalPages: 10, TotalItems: 100, PageSize: 10})
	assert.NotContains(t, last, "›")
}

func TestView(t *testing.T) {
	st := PlainStyles()
	assert.Equal(t, "Nothing loaded.", View(st, pagination.State{Phase: pagination.PhaseIdle}))
	assert.Equal(t, pagination.MsgLoadFailed, View(st, pagination.State{Phase: pagination.PhaseFailed, Message: pagination.MsgLoadFailed}))

	loading := View(st, pagination.State{View: models.TribesView, Phase: pagination.PhaseLoading, Pending: 1})
	assert.True(t, strings.HasPrefix(loading, "Loading page 1"))
}

func TestTable(t *testing.T) {
	tbl := NewTable("A", "Long header")
	tbl.AddRow("wide cell value", "x")
	lines := strings.Split(strings.TrimRight(tbl.Render(PlainStyles()), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, len([]rune(lines[0])), len([]rune(lines[2])))
}
