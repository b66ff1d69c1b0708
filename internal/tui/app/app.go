// Package app provides the main TUI application that wires all views together.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/berth-dev/stocklens/internal/config"
	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/tui"
	"github.com/berth-dev/stocklens/internal/tui/commands"
	"github.com/berth-dev/stocklens/internal/tui/views"
)

// Client is the backend surface the dashboard needs.
type Client interface {
	dashboard.Lifecycle
	commands.SessionLister
}

// App is the main TUI application that wires all views together.
type App struct {
	model    *tui.Model
	ctx      context.Context
	ctrl     *dashboard.Controller
	sessions commands.SessionLister
	initial  string

	// View models
	homeView     views.HomeModel
	loadingView  views.LoadingModel
	resultsView  views.ResultsModel
	sessionsView views.SessionsModel
}

// New creates a new App. opts are applied to the dashboard controller after
// the TUI's own progress hooks.
func New(ctx context.Context, cfg *config.Config, projectRoot string, client Client, opts ...dashboard.Option) *App {
	model := tui.NewModel(cfg, projectRoot)

	onChange, onAttempt := commands.StreamTo(model.Events)
	poll := cfg.PollOptions()
	poll.OnAttempt = onAttempt

	ctrlOpts := append([]dashboard.Option{
		dashboard.WithPollOptions(poll),
		dashboard.WithOnChange(onChange),
	}, opts...)

	return &App{
		model:    model,
		ctx:      ctx,
		ctrl:     dashboard.New(client, ctrlOpts...),
		sessions: client,
		homeView: views.NewHomeModel(model.Width, model.Height),
	}
}

// WithQuery makes the app submit query as soon as it starts.
func (a *App) WithQuery(query string) *App {
	a.initial = query
	return a
}

// Model exposes the shared TUI state.
func (a *App) Model() *tui.Model {
	return a.model
}

// Controller returns the dashboard controller driving the app.
func (a *App) Controller() *dashboard.Controller {
	return a.ctrl
}

// Init returns the initial command for the TUI.
func (a *App) Init() tea.Cmd {
	if a.initial != "" {
		return a.startQuery(a.initial)
	}
	return a.homeView.Init()
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		// Only propagate to the currently active view.
		var cmd tea.Cmd
		switch a.model.State {
		case tui.StateHome:
			a.homeView, cmd = a.homeView.Update(msg)
		case tui.StateLoading:
			a.loadingView, cmd = a.loadingView.Update(msg)
		case tui.StateResults:
			a.resultsView, cmd = a.resultsView.Update(msg)
		case tui.StateSessions:
			a.sessionsView, cmd = a.sessionsView.Update(msg)
		}
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				// Second press within timeout - exit
				return a, tea.Quit
			}
			// First press - set pending and start timeout
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case tui.SessionsLoadMsg:
		a.model.Sessions = msg.Sessions
		a.model.State = tui.StateSessions
		a.sessionsView = views.NewSessionsModel(msg.Sessions, msg.Err, a.model.Width, a.model.Height)
		return a, a.sessionsView.Init()
	}

	// Route messages based on current state
	switch a.model.State {
	case tui.StateHome:
		return a.updateHome(msg)
	case tui.StateLoading:
		return a.updateLoading(msg)
	case tui.StateResults:
		return a.updateResults(msg)
	case tui.StateSessions:
		return a.updateSessions(msg)
	}
	return a, nil
}

// View renders the current application state.
func (a *App) View() string {
	a.homeView.SetCtrlCPending(a.model.CtrlCPending)
	a.resultsView.SetCtrlCPending(a.model.CtrlCPending)

	var content string
	switch a.model.State {
	case tui.StateHome:
		content = a.homeView.View()
	case tui.StateLoading:
		content = a.centerContent(a.loadingView.View())
	case tui.StateResults:
		content = a.resultsView.View()
	case tui.StateSessions:
		content = a.sessionsView.View()
	default:
		content = "Unknown state"
	}
	return content
}

// centerContent centers the given content both horizontally and vertically.
func (a *App) centerContent(content string) string {
	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// ============================================================================
// State Update Handlers
// ============================================================================

func (a *App) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.homeView, cmd = a.homeView.Update(msg)

	switch msg := msg.(type) {
	case views.SubmitQueryMsg:
		return a, a.startQuery(msg.Query)
	case views.ShowSessionsMsg:
		return a, commands.LoadSessionsCmd(a.ctx, a.sessions)
	}
	return a, cmd
}

// startQuery switches to the loading view and launches the run.
func (a *App) startQuery(query string) tea.Cmd {
	a.model.State = tui.StateLoading
	a.model.Query = query
	a.model.Err = nil
	a.model.Attempt = 0
	a.model.Status = ""
	a.model.LoadingStart = time.Now()
	a.homeView.Err = nil
	a.loadingView = views.NewLoadingModel(query, a.model.MaxAttempts(), a.model.Width)

	return tea.Batch(
		a.loadingView.Init(),
		commands.StartQueryCmd(a.ctx, a.ctrl, query, a.model.Events),
		commands.ListenQueryCmd(a.model.Events),
	)
}

func (a *App) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.loadingView, cmd = a.loadingView.Update(msg)
		return a, cmd

	case tui.QueryStartedMsg:
		return a, nil

	case tui.QueryEventMsg:
		if msg.Event.State != nil {
			a.model.Dashboard = *msg.Event.State
		}
		if msg.Event.Attempt > 0 {
			a.model.Attempt = msg.Event.Attempt
			a.model.Status = msg.Event.Status
		}
		a.loadingView, _ = a.loadingView.Update(msg)
		return a, commands.ListenQueryCmd(a.model.Events)

	case tui.TickMsg:
		return a, commands.ListenQueryCmd(a.model.Events)

	case tui.QueryDoneMsg:
		return a.finishQuery(msg)
	}

	// Input is ignored while a query is in flight.
	return a, nil
}

// finishQuery shows the result, or returns home with the error.
func (a *App) finishQuery(msg tui.QueryDoneMsg) (tea.Model, tea.Cmd) {
	a.model.Dashboard = msg.State

	switch {
	case msg.Err != nil:
		a.model.Err = msg.Err
	case msg.State.Phase == dashboard.PhaseErrored:
		a.model.Err = msg.State.Err
	case msg.State.Result != nil:
		a.model.State = tui.StateResults
		a.resultsView = views.NewResultsModel(
			a.model.Query,
			*msg.State.Result,
			a.model.Width,
			a.model.Height,
			a.model.Cfg.Display.MaxRows,
			a.model.Cfg.Display.ChartWidth,
		)
		return a, a.resultsView.Init()
	}

	a.model.State = tui.StateHome
	a.homeView.Err = a.model.Err
	return a, a.homeView.Init()
}

func (a *App) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.resultsView, cmd = a.resultsView.Update(msg)

	switch msg := msg.(type) {
	case views.SortMsg:
		if err := a.ctrl.Sort(msg.ColumnID, msg.Direction); err != nil {
			a.resultsView.Notice = err.Error()
		}
		a.model.Dashboard = a.ctrl.State()
		return a, nil

	case views.ExportMsg:
		result := a.ctrl.State().Result
		if result == nil {
			return a, nil
		}
		return a, commands.WriteReportCmd(a.model.ProjectRoot, a.model.Query, *result)

	case tui.ReportWrittenMsg:
		if msg.Err != nil {
			a.resultsView.Notice = fmt.Sprintf("Export failed: %v", msg.Err)
		} else {
			a.resultsView.Notice = "Report written to " + msg.Path
		}
		return a, nil

	case views.NewQueryMsg:
		return a, a.backHome()
	}
	return a, cmd
}

func (a *App) updateSessions(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.sessionsView, cmd = a.sessionsView.Update(msg)

	if _, ok := msg.(views.NewQueryMsg); ok {
		return a, a.backHome()
	}
	return a, cmd
}

func (a *App) backHome() tea.Cmd {
	if !a.ctrl.State().Phase.Busy() && a.ctrl.State().Phase != dashboard.PhaseIdle {
		_ = a.ctrl.Reset()
	}
	a.model.Dashboard = a.ctrl.State()
	a.model.State = tui.StateHome
	return a.homeView.Init()
}
