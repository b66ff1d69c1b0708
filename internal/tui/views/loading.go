package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/tui"
)

// LoadingModel is shown while a query is submitted and polled. Input is
// not accepted while it is active.
type LoadingModel struct {
	spinner     spinner.Model
	query       string
	phase       dashboard.Phase
	sessionID   string
	attempt     int
	status      nlquery.Status
	maxAttempts int
	startTime   time.Time
	now         func() time.Time
	width       int
}

// NewLoadingModel creates a LoadingModel for query.
func NewLoadingModel(query string, maxAttempts, width int) LoadingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = tui.WarningStyle

	return LoadingModel{
		spinner:     sp,
		query:       query,
		phase:       dashboard.PhaseSubmitting,
		maxAttempts: maxAttempts,
		startTime:   time.Now(),
		now:         time.Now,
		width:       width,
	}
}

// Init starts the spinner.
func (m LoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles spinner ticks and run events.
func (m LoadingModel) Update(msg tea.Msg) (LoadingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tui.QueryEventMsg:
		event := msg.Event
		if event.State != nil {
			m.phase = event.State.Phase
			m.sessionID = event.State.SessionID
		}
		if event.Attempt > 0 {
			m.attempt = event.Attempt
			m.status = event.Status
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the loading view.
func (m LoadingModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(Header))
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("> " + m.query))
	b.WriteString("\n\n")

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	elapsed := m.now().Sub(m.startTime).Round(100 * time.Millisecond)
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)))

	return tui.BoxStyle.Width(max(m.width-4, 20)).Render(b.String())
}

func (m LoadingModel) statusLine() string {
	switch {
	case m.phase == dashboard.PhaseSubmitting:
		return "Submitting query..."
	case m.attempt == 0:
		return fmt.Sprintf("Session %s created, waiting for results...", m.sessionID)
	default:
		return fmt.Sprintf("Session %s is %s (check %d of %d)", m.sessionID, m.status, m.attempt, m.maxAttempts)
	}
}
