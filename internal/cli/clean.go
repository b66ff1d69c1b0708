// clean.go implements the "stocklens clean" command for pruning exported reports.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/berth-dev/stocklens/internal/cleanup"
	"github.com/berth-dev/stocklens/internal/report"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old exported reports",
	Long: `Remove old HTML reports and chart images from .stocklens/reports/.

By default, removes files older than --max-age days (default 30).
Use --keep to keep only the N most recent files instead.
Use --dry-run to preview what would be removed.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

var (
	keepFlag   int
	maxAgeFlag int
	dryRunFlag bool
)

func init() {
	cleanCmd.Flags().IntVar(&keepFlag, "keep", 0, "Keep only the last N reports (0 = use age-based cleanup)")
	cleanCmd.Flags().IntVar(&maxAgeFlag, "max-age", 30, "Remove reports older than this many days")
	cleanCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	projectRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	reportsDir := report.ExportDir(projectRoot)

	var pruned []string
	if keepFlag > 0 {
		pruned, err = cleanup.PruneKeepRecent(reportsDir, keepFlag, dryRunFlag)
	} else {
		maxAge := maxAgeFlag
		if maxAge <= 0 {
			maxAge = 30
		}
		pruned, err = cleanup.PruneByAge(reportsDir, maxAge, dryRunFlag)
	}
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if len(pruned) == 0 {
		fmt.Fprintln(out, "No reports to clean up.")
		return nil
	}

	verb := "Removed"
	if dryRunFlag {
		verb = "Would remove"
	}

	for _, name := range pruned {
		fmt.Fprintf(out, "  %s %s\n", verb, name)
	}
	fmt.Fprintf(out, "%s %d report(s).\n", verb, len(pruned))

	return nil
}
