package commands

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/report"
	"github.com/berth-dev/stocklens/internal/tui"
)

// SessionLister lists the backend's query sessions.
type SessionLister interface {
	ListSessions(ctx context.Context) ([]nlquery.SessionSummary, error)
}

// LoadSessionsCmd fetches sessions from the backend.
func LoadSessionsCmd(ctx context.Context, lister SessionLister) tea.Cmd {
	return func() tea.Msg {
		if lister == nil {
			return tui.SessionsLoadMsg{
				Err: fmt.Errorf("session listing not available"),
			}
		}

		sessions, err := lister.ListSessions(ctx)
		if err != nil {
			return tui.SessionsLoadMsg{Err: err}
		}
		return tui.SessionsLoadMsg{Sessions: sessions}
	}
}

// WriteReportCmd exports result as an HTML page under the project's state
// directory, named after the session.
func WriteReportCmd(projectRoot, query string, result nlquery.Result) tea.Cmd {
	return func() tea.Msg {
		name := result.SessionID
		if name == "" {
			name = "result"
		}
		path := filepath.Join(report.ExportDir(projectRoot), name+".html")

		if err := report.SaveHTML(path, query, result); err != nil {
			return tui.ReportWrittenMsg{Err: err}
		}
		return tui.ReportWrittenMsg{Path: path}
	}
}
