// sessions.go implements the "stocklens sessions" command listing past
// queries known to the backend.
package cli

import (
	"fmt"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent query sessions",
	Long: `List the query sessions stored by the backend, newest first as the
backend returns them, with their status and question.`,
	Args: cobra.NoArgs,
	RunE: runSessions,
}

var limitFlag int

func init() {
	sessionsCmd.Flags().IntVar(&limitFlag, "limit", 20, "Show at most N sessions (0 = all)")
}

func runSessions(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	p, err := loadProject(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	sessions, err := p.client.ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found. Ask something with: stocklens query \"your question\"")
		return nil
	}

	total := len(sessions)
	if limitFlag > 0 && total > limitFlag {
		sessions = sessions[:limitFlag]
	}

	fmt.Fprintln(out, "Stocklens Sessions")
	fmt.Fprintln(out)
	for _, s := range sessions {
		fmt.Fprintf(out, "  %-14s  %-10s  %-17s  %s\n", s.SessionID, s.Status, createdLabel(s.CreatedAt), s.NaturalLanguageQuery)
	}
	fmt.Fprintln(out)
	if len(sessions) < total {
		fmt.Fprintf(out, "Showing %d of %d sessions\n", len(sessions), total)
	} else {
		fmt.Fprintf(out, "%d session(s)\n", total)
	}

	return nil
}

// createdLabel shortens a backend timestamp for the listing. Unparseable
// values are shown as received.
func createdLabel(createdAt string) string {
	if createdAt == "" {
		return "-"
	}
	t, err := dateparse.ParseAny(createdAt)
	if err != nil {
		return createdAt
	}
	return t.UTC().Format("2006-01-02 15:04")
}
