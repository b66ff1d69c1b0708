// Package views provides TUI view components for the stocklens dashboard.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/tui"
)

// ============================================================================
// Message Types
// ============================================================================

// SubmitQueryMsg is sent when the user submits a question.
type SubmitQueryMsg struct {
	Query string
}

// ShowSessionsMsg is sent when the user asks for the session list.
type ShowSessionsMsg struct{}

// ============================================================================
// HomeModel
// ============================================================================

// Header is the dashboard title.
const Header = "Natural Language Inventory Dashboard"

// Placeholder is the query input hint.
const Placeholder = "Ask a question about inventory, e.g., 'Show me top-selling products in electronics with low stock'"

// HomeModel is the view model for the query input screen.
type HomeModel struct {
	textInput textinput.Model
	width     int
	height    int

	// Err is the error of the previous query, shown above the input.
	Err error

	ctrlCPending bool
}

// NewHomeModel creates a new HomeModel.
func NewHomeModel(width, height int) HomeModel {
	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.CharLimit = 2000
	ti.Width = width - 10 // Account for padding/borders
	ti.Focus()

	return HomeModel{
		textInput: ti,
		width:     width,
		height:    height,
	}
}

// Init returns the initial command for the home view.
func (m HomeModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetCtrlCPending syncs the exit confirmation hint.
func (m *HomeModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}

// Value returns the current input.
func (m HomeModel) Value() string {
	return m.textInput.Value()
}

// Update handles messages for the home view.
func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyEnter:
			value := strings.TrimSpace(m.textInput.Value())
			if value != "" {
				return m, func() tea.Msg {
					return SubmitQueryMsg{Query: value}
				}
			}
			return m, nil
		case "ctrl+s":
			return m, func() tea.Msg { return ShowSessionsMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 10
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View renders the home view.
func (m HomeModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(Header))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(tui.ErrorStyle.Render("Error: " + dashboard.UserMessage(m.Err)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	footer := tui.ShortHelp(tui.DefaultKeyMap.Enter, tui.DefaultKeyMap.Sessions, tui.DefaultKeyMap.CtrlC)
	if m.ctrlCPending {
		footer = tui.WarningStyle.Render("Press Ctrl+C again to exit")
	}
	b.WriteString(footer)

	boxed := tui.BoxStyle.
		Width(max(m.width-4, 20)).
		Render(b.String())

	// Center vertically if there's space
	contentHeight := lipgloss.Height(boxed)
	if m.height > contentHeight {
		padding := (m.height - contentHeight) / 3 // Slight offset toward top
		if padding > 0 {
			boxed = strings.Repeat("\n", padding) + boxed
		}
	}

	return boxed
}
