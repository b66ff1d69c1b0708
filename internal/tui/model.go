package tui

import (
	"time"

	"github.com/berth-dev/stocklens/internal/config"
	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// ViewState represents the current screen of the TUI.
type ViewState int

const (
	StateHome     ViewState = iota // Query input
	StateLoading                   // Submitting or polling
	StateResults                   // Result table and charts
	StateSessions                  // Past backend sessions
)

// Model holds the application state shared by the views.
type Model struct {
	State ViewState
	Err   error

	// Configuration
	Cfg         *config.Config
	ProjectRoot string

	// Query lifecycle
	Query        string
	Dashboard    dashboard.State
	Attempt      int
	Status       nlquery.Status
	LoadingStart time.Time
	Events       chan RunEvent

	// Sessions view
	Sessions []nlquery.SessionSummary

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool // True when waiting for second Ctrl+C press
}

// NewModel creates a new Model with the given configuration.
func NewModel(cfg *config.Config, projectRoot string) *Model {
	return &Model{
		State:       StateHome,
		Cfg:         cfg,
		ProjectRoot: projectRoot,
		Events:      make(chan RunEvent, 16),

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  80,
		Height: 24,
	}
}

// MaxAttempts returns the configured poll attempt limit.
func (m *Model) MaxAttempts() int {
	if m.Cfg == nil || m.Cfg.Polling.MaxAttempts <= 0 {
		return nlquery.DefaultMaxAttempts
	}
	return m.Cfg.Polling.MaxAttempts
}
