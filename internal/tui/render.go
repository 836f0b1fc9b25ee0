package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lockme/internal/admin/format"
	"lockme/internal/admin/models"
	"lockme/internal/admin/pagination"
	"lockme/internal/admin/session"
)

// Session renders the session status line and any pending message.
func Session(st Styles, snap session.Snapshot) string {
	var status string
	switch snap.Status {
	case models.SessionAuthenticated:
		status = st.Success.Render("● signed in")
	case models.SessionLoading:
		status = st.Warning.Render("◌ checking session…")
	case models.SessionExpired:
		status = st.Error.Render("○ session expired")
	default:
		status = st.Muted.Render("○ signed out")
	}
	if snap.Message != "" {
		status += "  " + st.Error.Render(snap.Message)
	}
	return status
}

// Stats renders the dashboard cards and the recent users table.
func Stats(st Styles, stats *models.StatsSummary) string {
	if stats == nil {
		return st.Muted.Render("No statistics loaded.")
	}
	card := func(label string, n int) string {
		return st.Card.Render(st.CardNum.Render(strconv.Itoa(n)) + "\n" + st.Muted.Render(label))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total Users", stats.TotalUsers), " ",
		card("Total Tribes", stats.TotalTribes),
	)

	var sb strings.Builder
	sb.WriteString(cards)
	sb.WriteString("\n\n")
	sb.WriteString(st.Title.Render("Recent Users"))
	sb.WriteString("\n")
	if len(stats.RecentUsers) == 0 {
		sb.WriteString(st.Muted.Render("No recent users."))
		return sb.String()
	}
	t := NewTable("ID", "Email", "Name", "Provider", "Joined At")
	for _, u := range stats.RecentUsers {
		t.AddRow("#"+u.ID.String(), u.Email, format.OrDash(u.FullName), u.Provider, format.Date(u.CreatedAt))
	}
	sb.WriteString(t.Render(st))
	return sb.String()
}

// Users renders the current page of the user list.
func Users(st Styles, s pagination.State) string {
	if len(s.Users) == 0 {
		return st.Muted.Render("No users found.")
	}
	t := NewTable("", "User", "Email", "Tribes", "Focus", "Streak", "Joined")
	for _, u := range s.Users {
		name := format.DisplayName(u.FullName, u.Email)
		t.AddRow(format.Initial(name), name, u.Email,
			strconv.Itoa(u.TribesCount),
			format.FocusTime(u.TotalFocusMinutes),
			format.Streak(u.CurrentStreak),
			format.Date(u.CreatedAt),
		)
	}
	return t.Render(st) + Pager(st, s)
}

// Tribes renders the current page of the tribe list.
func Tribes(st Styles, s pagination.State) string {
	if len(s.Tribes) == 0 {
		return st.Muted.Render("No tribes found.")
	}
	t := NewTable("ID", "Name", "Invite Code", "Members", "Created")
	for _, tr := range s.Tribes {
		t.AddRow("#"+tr.ID.String(), tr.Name, tr.InviteCode, format.Members(tr.MemberCount), format.Date(tr.CreatedAt))
	}
	return t.Render(st) + Pager(st, s)
}

// TribeDetail renders one page of a tribe's member leaderboard.
func TribeDetail(st Styles, s pagination.State) string {
	d := s.Detail
	if d == nil {
		return st.Muted.Render("Tribe not loaded.")
	}
	var sb strings.Builder
	sb.WriteString(st.Title.Render(d.TribeName))
	sb.WriteString("\n")
	sb.WriteString(st.Muted.Render(fmt.Sprintf("Invite code %s · %s · created %s",
		d.InviteCode, format.Members(d.TotalMembers), format.Date(d.CreatedAt))))
	sb.WriteString("\n\n")

	if len(d.Members) == 0 {
		sb.WriteString(st.Muted.Render("No members on this page."))
		return sb.String()
	}
	t := NewTable("Rank", "Member", "Email", "Focus", "Streak", "Joined")
	for i, m := range d.Members {
		name := m.UserName
		if strings.TrimSpace(name) == "" {
			name = m.UserEmail
		}
		t.AddRow(format.RankBadge(format.Rank(d.Page, d.PageSize, i)), name, m.UserEmail,
			format.FocusTime(m.TotalFocusMinutes),
			format.Streak(m.CurrentStreak),
			format.Date(m.JoinedAt),
		)
	}
	sb.WriteString(t.Render(st))
	sb.WriteString(Pager(st, s))
	return sb.String()
}

// Pager renders "Showing a-b of n" and the page window. Nothing is rendered
// for a single page.
func Pager(st Styles, s pagination.State) string {
	if s.TotalPages <= 1 {
		return ""
	}
	pageSize := s.PageSize
	if s.Detail != nil && s.Detail.PageSize > 0 {
		pageSize = s.Detail.PageSize
	}
	from, to := pagination.Range(s.Page, pageSize, s.TotalItems)

	items := pagination.PageNumbers(s.TotalPages, s.Page)
	parts := make([]string, 0, len(items)+2)
	parts = append(parts, navArrow(st, "‹", s.Page > 1))
	for _, it := range items {
		switch {
		case it.Ellipsis:
			parts = append(parts, st.Muted.Render(it.String()))
		case it.Number == s.Page:
			parts = append(parts, st.Current.Render("["+it.String()+"]"))
		default:
			parts = append(parts, it.String())
		}
	}
	parts = append(parts, navArrow(st, "›", s.Page < s.TotalPages))

	return fmt.Sprintf("%s  %s\n",
		st.Muted.Render(fmt.Sprintf("Showing %d-%d of %d", from, to, s.TotalItems)),
		strings.Join(parts, " "))
}

func navArrow(st Styles, arrow string, enabled bool) string {
	if enabled {
		return arrow
	}
	return st.Muted.Render(" ")
}

// View renders the active view of s, including loading and failure states.
func View(st Styles, s pagination.State) string {
	switch s.Phase {
	case pagination.PhaseIdle:
		return st.Muted.Render("Nothing loaded.")
	case pagination.PhaseFailed:
		return st.Error.Render(s.Message)
	}

	var body string
	switch s.View.Kind {
	case models.ViewDashboard:
		body = Stats(st, s.Stats)
	case models.ViewUsers:
		body = Users(st, s)
	case models.ViewTribes:
		body = Tribes(st, s)
	case models.ViewTribeDetail:
		body = TribeDetail(st, s)
	}
	if s.Phase == pagination.PhaseLoading {
		loading := st.Warning.Render(fmt.Sprintf("Loading page %d…", s.Pending))
		if body == "" || s.Page == 0 {
			return loading
		}
		return loading + "\n" + body
	}
	return body
}
