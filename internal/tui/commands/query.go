// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/tui"
)

// Runner runs one query through its whole lifecycle.
type Runner interface {
	Run(ctx context.Context, query string) (dashboard.State, error)
}

// StartQueryCmd launches the query in a background goroutine. Progress is
// streamed to events by the runner's hooks; the final state is sent as a
// Done event. Returns QueryStartedMsg to signal the TUI that the run began.
func StartQueryCmd(ctx context.Context, runner Runner, query string, events chan<- tui.RunEvent) tea.Cmd {
	return func() tea.Msg {
		go func() {
			state, err := runner.Run(ctx, query)
			events <- tui.RunEvent{State: &state, Done: true, Err: err}
		}()
		return tui.QueryStartedMsg{Query: query}
	}
}

// ListenQueryCmd waits for the next run event. Returns QueryDoneMsg for the
// final event, QueryEventMsg for progress, or TickMsg on timeout to keep
// the elapsed time fresh.
func ListenQueryCmd(events <-chan tui.RunEvent) tea.Cmd {
	return func() tea.Msg {
		select {
		case event := <-events:
			if event.Done {
				return tui.QueryDoneMsg{State: *event.State, Err: event.Err}
			}
			return tui.QueryEventMsg{Event: event}
		case <-time.After(100 * time.Millisecond):
			return tui.TickMsg{}
		}
	}
}

// StreamTo returns controller hooks that forward in-flight progress to
// events. Only busy phases are forwarded so that sorting a displayed result
// never blocks on an unread channel.
func StreamTo(events chan<- tui.RunEvent) (onChange func(dashboard.State), onAttempt func(int, nlquery.Status)) {
	onChange = func(s dashboard.State) {
		if s.Phase.Busy() {
			events <- tui.RunEvent{State: &s}
		}
	}
	onAttempt = func(attempt int, status nlquery.Status) {
		events <- tui.RunEvent{Attempt: attempt, Status: status}
	}
	return onChange, onAttempt
}
