package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/tui"
)

// ============================================================================
// SessionItem
// ============================================================================

// SessionItem implements list.Item for the session list.
type SessionItem struct {
	session nlquery.SessionSummary
}

// NewSessionItem creates a new SessionItem from a session summary.
func NewSessionItem(s nlquery.SessionSummary) SessionItem {
	return SessionItem{session: s}
}

// Title returns the session's question for list display.
func (i SessionItem) Title() string {
	if i.session.NaturalLanguageQuery == "" {
		return i.session.SessionID
	}
	return i.session.NaturalLanguageQuery
}

// Description returns the session status and creation time.
func (i SessionItem) Description() string {
	if i.session.CreatedAt == "" {
		return fmt.Sprintf("%s - %s", i.session.SessionID, i.session.Status)
	}
	return fmt.Sprintf("%s - %s (%s)", i.session.SessionID, i.session.Status, i.session.CreatedAt)
}

// FilterValue returns the value used for filtering in the list.
func (i SessionItem) FilterValue() string {
	return i.session.NaturalLanguageQuery
}

// ============================================================================
// SessionsModel
// ============================================================================

// SessionsModel lists the backend's past sessions.
type SessionsModel struct {
	list   list.Model
	err    error
	width  int
	height int
}

// NewSessionsModel creates a SessionsModel. err is shown instead of the list
// when loading failed.
func NewSessionsModel(sessions []nlquery.SessionSummary, err error, width, height int) SessionsModel {
	items := make([]list.Item, len(sessions))
	for i, s := range sessions {
		items[i] = NewSessionItem(s)
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("#6366F1")).
		BorderForeground(lipgloss.Color("#6366F1"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("#9CA3AF"))

	l := list.New(items, delegate, max(width-8, 20), max(height-10, 5))
	l.Title = "Sessions"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	return SessionsModel{list: l, err: err, width: width, height: height}
}

// Init returns the initial command for the sessions view.
func (m SessionsModel) Init() tea.Cmd {
	return nil
}

// Len returns the number of listed sessions.
func (m SessionsModel) Len() int {
	return len(m.list.Items())
}

// Update handles messages for the sessions view.
func (m SessionsModel) Update(msg tea.Msg) (SessionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == tui.KeyEsc && m.list.FilterState() != list.Filtering {
			return m, func() tea.Msg { return NewQueryMsg{} }
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(max(msg.Width-8, 20), max(msg.Height-10, 5))
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the sessions view.
func (m SessionsModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(Header))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(tui.ErrorStyle.Render("Could not load sessions: " + m.err.Error()))
	case len(m.list.Items()) == 0:
		b.WriteString(tui.DimStyle.Render("No sessions yet"))
	default:
		b.WriteString(m.list.View())
	}
	b.WriteString("\n\n")
	b.WriteString(tui.ShortHelp(tui.DefaultKeyMap.Up, tui.DefaultKeyMap.Down, tui.DefaultKeyMap.Escape))

	return tui.BoxStyle.Width(max(m.width-4, 20)).Render(b.String())
}
