package tui

import (
	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// ============================================================================
// Query Lifecycle Messages
// ============================================================================

// RunEvent is streamed from a running query to the TUI. Exactly one of
// State, Attempt or Done is meaningful.
type RunEvent struct {
	State   *dashboard.State
	Attempt int
	Status  nlquery.Status

	// Done marks the end of the run; State then holds the final state and
	// Err any transition error.
	Done bool
	Err  error
}

// QueryStartedMsg signals that a query run has been launched.
type QueryStartedMsg struct {
	Query string
}

// QueryEventMsg carries one event of the running query.
type QueryEventMsg struct {
	Event RunEvent
}

// QueryDoneMsg signals that the query reached its final state.
type QueryDoneMsg struct {
	State dashboard.State
	Err   error
}

// ============================================================================
// Session Messages
// ============================================================================

// SessionsLoadMsg carries the backend's session listing.
type SessionsLoadMsg struct {
	Sessions []nlquery.SessionSummary
	Err      error
}

// ============================================================================
// Utility Messages
// ============================================================================

// ReportWrittenMsg signals that an HTML report was exported.
type ReportWrittenMsg struct {
	Path string
	Err  error
}

// TickMsg is sent periodically for time-based updates (spinners, timers).
type TickMsg struct{}

// CtrlCResetMsg clears a pending Ctrl+C confirmation.
type CtrlCResetMsg struct{}
