package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"lockme/internal/admin/format"
	"lockme/internal/admin/models"
	"lockme/internal/admin/pagination"
	"lockme/internal/admin/session"
	id "lockme/pkg/domain"
)

// Console is what the dashboard drives.
type Console interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, idToken string) error
	Logout(ctx context.Context) error
	Session() session.Snapshot
	Current() models.View
	State() pagination.State
	Open(ctx context.Context, view models.View) (pagination.State, error)
	OpenTribe(ctx context.Context, tribeID id.TribeID) (pagination.State, error)
	Back(ctx context.Context) (pagination.State, error)
	Refresh(ctx context.Context) (pagination.State, error)
	NextPage(ctx context.Context) (pagination.State, error)
	PrevPage(ctx context.Context) (pagination.State, error)
}

// resultMsg reports that a console call finished. The console is the source
// of truth; the model re-reads it rather than trusting the call's result.
type resultMsg struct {
	err error
}

// Model is the Bubble Tea dashboard.
type Model struct {
	ctx     context.Context
	console Console
	styles  Styles

	input  textinput.Model
	tribes table.Model

	snap   session.Snapshot
	state  pagination.State
	notice string
	busy   bool
	width  int
}

func NewModel(ctx context.Context, c Console, st Styles) Model {
	in := textinput.New()
	in.Placeholder = "paste a Google ID token"
	in.CharLimit = 4096
	in.Width = 60
	in.EchoMode = textinput.EchoPassword
	in.Focus()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Name", Width: 28},
			{Title: "Invite", Width: 10},
			{Title: "Members", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		ctx:     ctx,
		console: c,
		styles:  st,
		input:   in,
		tribes:  t,
		busy:    true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.call(func(ctx context.Context) error { return m.console.Init(ctx) })
}

// call runs fn off the update loop.
func (m Model) call(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{err: fn(m.ctx)}
	}
}

func (m Model) load(fn func(ctx context.Context) (pagination.State, error)) tea.Cmd {
	return m.call(func(ctx context.Context) error {
		_, err := fn(ctx)
		return err
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case resultMsg:
		m.busy = false
		m.sync()
		m.notice = ""
		if errors.Is(msg.err, pagination.ErrPageOutOfRange) {
			m.notice = "No more pages."
		}
		if m.snap.Status == models.SessionAuthenticated && m.state.Phase == pagination.PhaseIdle {
			m.busy = true
			return m, m.load(func(ctx context.Context) (pagination.State, error) {
				return m.console.Open(ctx, models.DashboardView)
			})
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.snap.Status != models.SessionAuthenticated {
			return m.updateLogin(msg)
		}
		return m.updateDashboard(msg)
	}
	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		token := strings.TrimSpace(m.input.Value())
		if token == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.busy = true
		return m, m.call(func(ctx context.Context) error { return m.console.Login(ctx, token) })
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.console
	open := func(view models.View) tea.Cmd {
		return m.load(func(ctx context.Context) (pagination.State, error) { return c.Open(ctx, view) })
	}

	var cmd tea.Cmd
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "d":
		cmd = open(models.DashboardView)
	case "u":
		cmd = open(models.UsersView)
	case "t":
		cmd = open(models.TribesView)
	case "b", "esc":
		cmd = m.load(c.Back)
	case "r":
		cmd = m.load(c.Refresh)
	case "n", "right":
		cmd = m.load(c.NextPage)
	case "p", "left":
		cmd = m.load(c.PrevPage)
	case "L":
		cmd = m.call(c.Logout)
	case "enter":
		if m.state.View.Kind == models.ViewTribes {
			if tribeID, ok := m.selectedTribe(); ok {
				cmd = m.load(func(ctx context.Context) (pagination.State, error) { return c.OpenTribe(ctx, tribeID) })
			}
		}
	default:
		if m.state.View.Kind == models.ViewTribes {
			m.tribes, cmd = m.tribes.Update(msg)
			return m, cmd
		}
	}
	if cmd != nil {
		m.busy = true
	}
	return m, cmd
}

func (m Model) selectedTribe() (id.TribeID, bool) {
	row := m.tribes.SelectedRow()
	if len(row) == 0 {
		return 0, false
	}
	tribeID, err := id.ParseTribeID(strings.TrimPrefix(row[0], "#"))
	if err != nil {
		return 0, false
	}
	return tribeID, true
}

// sync copies the console's session and view state into the model.
func (m *Model) sync() {
	m.snap = m.console.Session()
	m.state = m.console.State()

	rows := make([]table.Row, 0, len(m.state.Tribes))
	for _, t := range m.state.Tribes {
		rows = append(rows, table.Row{"#" + t.ID.String(), t.Name, t.InviteCode, format.Members(t.MemberCount)})
	}
	m.tribes.SetRows(rows)
	if m.tribes.Cursor() >= len(rows) {
		m.tribes.SetCursor(0)
	}
	if m.snap.Status == models.SessionAuthenticated {
		m.input.Blur()
	} else {
		m.input.Focus()
	}
}

func (m Model) View() string {
	st := m.styles
	var sb strings.Builder
	sb.WriteString(st.Title.Render("LockMe Admin"))
	sb.WriteString("  ")
	sb.WriteString(Session(st, m.snap))
	sb.WriteString("\n\n")

	if m.snap.Status != models.SessionAuthenticated {
		if m.busy {
			sb.WriteString(st.Warning.Render("Working…"))
		} else {
			sb.WriteString("Sign in with an admin Google account.\n\n")
			sb.WriteString(m.input.View())
			sb.WriteString("\n\n")
			sb.WriteString(st.Help.Render("enter sign in · esc quit"))
		}
		return sb.String()
	}

	sb.WriteString(tabs(st, m.state.View))
	sb.WriteString("\n\n")
	if m.state.View.Kind == models.ViewTribes && m.state.Phase == pagination.PhaseReady && len(m.state.Tribes) > 0 {
		sb.WriteString(m.tribes.View())
		sb.WriteString("\n")
		sb.WriteString(Pager(st, m.state))
	} else {
		sb.WriteString(View(st, m.state))
	}
	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(st.Warning.Render(m.notice))
	}
	sb.WriteString("\n")
	sb.WriteString(st.Help.Render("d dashboard · u users · t tribes · enter open · b back · n/p page · r refresh · L sign out · q quit"))
	return sb.String()
}

func tabs(st Styles, current models.View) string {
	entries := []struct {
		kind  models.ViewKind
		label string
	}{
		{models.ViewDashboard, "Dashboard"},
		{models.ViewUsers, "Users"},
		{models.ViewTribes, "Tribes"},
	}
	parts := make([]string, 0, len(entries)+1)
	for _, e := range entries {
		if e.kind == current.Kind || (e.kind == models.ViewTribes && current.Kind == models.ViewTribeDetail) {
			parts = append(parts, st.Current.Render(e.label))
			continue
		}
		parts = append(parts, st.Muted.Render(e.label))
	}
	if current.Kind == models.ViewTribeDetail {
		parts = append(parts, st.Current.Render("Tribe #"+current.TribeID.String()))
	}
	return strings.Join(parts, "  ")
}
