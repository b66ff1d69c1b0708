// report.go implements the "stocklens report" command for summarising the
// last query run from the event log.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	stlog "github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show last query results",
	Long: `Display a summary of the most recent query run recorded in
.stocklens/log.jsonl: question, session, outcome, attempts and duration.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

var saveFlag bool

func init() {
	reportCmd.Flags().BoolVar(&saveFlag, "save", false, "Also write the summary to .stocklens/report.md")
}

func runReport(cmd *cobra.Command, args []string) error {
	projectRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	logger, err := stlog.NewLogger(projectRoot)
	if err != nil {
		return err
	}
	events, err := logger.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read event log: %w", err)
	}

	r := report.LastRun(events)
	if r == nil {
		return fmt.Errorf("No query runs found. Ask something with: stocklens query \"your question\"")
	}

	fmt.Fprint(cmd.OutOrStdout(), report.FormatReport(r))

	if saveFlag {
		dir := filepath.Join(projectRoot, stlog.StateDir)
		if err := report.WriteReport(dir, r); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", filepath.Join(dir, "report.md"))
	}
	return nil
}
