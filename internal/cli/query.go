// query.go implements the "stocklens query" command which submits one
// question, polls it to completion and prints the result.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/berth-dev/stocklens/internal/charts"
	"github.com/berth-dev/stocklens/internal/dashboard"
	stlog "github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/report"
	"github.com/berth-dev/stocklens/internal/table"
	"github.com/berth-dev/stocklens/internal/tui"
	"github.com/berth-dev/stocklens/internal/tui/diagram"
	"github.com/berth-dev/stocklens/internal/tui/views"
	"github.com/berth-dev/stocklens/internal/ui"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask one inventory question",
	Long: `Submit a natural-language question, wait for the backend to answer and
print the result table followed by its charts. Progress is written to stderr,
so stdout can be redirected.`,
	Example: `  stocklens query "Show top products"
  stocklens query "Items low on stock" --sort currentStock --desc
  stocklens query "Sales by region" --html report.html --chart-dir charts`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var (
	maxAttemptsFlag int
	intervalFlag    time.Duration
	sortFlag        string
	descFlag        bool
	jsonFlag        bool
	htmlFlag        string
	chartDirFlag    string
	chartFormatFlag string
	summaryFlag     bool
	tuiFlag         bool
)

func init() {
	queryCmd.Flags().IntVar(&maxAttemptsFlag, "max-attempts", 0, "Status checks before giving up (default from config)")
	queryCmd.Flags().DurationVar(&intervalFlag, "interval", 0, "Delay between status checks (default from config)")
	queryCmd.Flags().StringVar(&sortFlag, "sort", "", "Sort the table by this column id or label")
	queryCmd.Flags().BoolVar(&descFlag, "desc", false, "Sort descending (with --sort)")
	queryCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the raw result as JSON")
	queryCmd.Flags().StringVar(&htmlFlag, "html", "", "Also write an HTML report to this file")
	queryCmd.Flags().StringVar(&chartDirFlag, "chart-dir", "", "Also write each chart as an image into this directory")
	queryCmd.Flags().StringVar(&chartFormatFlag, "chart-format", "svg", "Image format for --chart-dir: svg or png")
	queryCmd.Flags().BoolVar(&summaryFlag, "summary", false, "Print a run summary to stderr")
	queryCmd.Flags().BoolVar(&tuiFlag, "tui", false, "Show the answer in the interactive dashboard")
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("provide a question, e.g. stocklens query \"Show top products\"")
	}
	if chartFormatFlag != "svg" && chartFormatFlag != "png" {
		return fmt.Errorf("unknown chart format %q (use svg or png)", chartFormatFlag)
	}
	if descFlag && sortFlag == "" {
		return fmt.Errorf("--desc needs --sort")
	}

	if tuiFlag {
		if !tui.IsTTY() {
			return fmt.Errorf("--tui needs a terminal")
		}
		return runDashboard(cmd, question)
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	p, err := loadProject(stderr)
	if err != nil {
		return err
	}

	poll := p.cfg.PollOptions()
	if maxAttemptsFlag > 0 {
		poll.MaxAttempts = maxAttemptsFlag
	}
	if intervalFlag > 0 {
		poll.Interval = intervalFlag
	}
	maxAttempts := poll.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = nlquery.DefaultMaxAttempts
	}

	opts := p.controllerOptions()
	var progress *ui.ProgressDisplay
	if !jsonFlag {
		progress = ui.NewProgressDisplay(stderr, question, maxAttempts)
		poll.OnAttempt = progress.Attempt
		opts = append(opts, dashboard.WithOnChange(progress.Update))
	}
	opts = append(opts, dashboard.WithPollOptions(poll))
	ctrl := dashboard.New(p.client, opts...)

	state, err := ctrl.Run(cmd.Context(), question)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}

	if summaryFlag {
		defer printSummary(stderr, p, ctrl)
	}

	if state.Phase == dashboard.PhaseErrored {
		return errors.New(dashboard.UserMessage(state.Err))
	}

	original := *state.Result
	tbl := table.New(original.Table.Columns, original.Table.Rows)

	if sortFlag != "" {
		columnID, err := resolveColumn(original.Table.Columns, sortFlag)
		if err != nil {
			return err
		}
		dir := table.SortAsc
		if descFlag {
			dir = table.SortDesc
		}
		if err := ctrl.Sort(columnID, dir); err != nil {
			return err
		}
		tbl.Sort(columnID)
		if descFlag {
			tbl.Sort(columnID)
		}
	}
	result := *ctrl.State().Result

	specs := make([]charts.Spec, len(result.Charts))
	for i, c := range result.Charts {
		specs[i] = charts.Dispatch(c)
	}

	if jsonFlag {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
	} else {
		printResult(stdout, tbl, result, specs, p)
	}

	if htmlFlag != "" {
		if err := report.SaveHTML(htmlFlag, question, result); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Report written to %s\n", htmlFlag)
	}

	if chartDirFlag != "" {
		written, err := writeCharts(chartDirFlag, specs, chartFormatFlag, p)
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Fprintf(stderr, "Chart written to %s\n", path)
		}
	}

	return nil
}

// printResult writes the feedback block, the table and the text charts.
func printResult(out io.Writer, tbl *table.Table, result nlquery.Result, specs []charts.Spec, p *project) {
	if fb, ok := dashboard.FeedbackFor(result); ok {
		fmt.Fprintln(out, views.RenderFeedback(fb))
	}

	fmt.Fprintln(out, views.RenderTable(tbl, -1, p.cfg.Display.MaxRows))
	fmt.Fprintln(out)
	fmt.Fprint(out, diagram.RenderAll(specs, p.cfg.Display.ChartWidth))
}

// printSummary prints the run report built from the controller state and,
// when the event log is on, the run's logged events.
func printSummary(out io.Writer, p *project, ctrl *dashboard.Controller) {
	var events []stlog.LogEvent
	if p.events != nil {
		all, err := p.events.ReadAll()
		if err != nil {
			p.logger.Warn("Failed to read event log", "error", err)
		}
		events = stlog.ForRun(all, ctrl.RunID())
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, report.FormatReport(report.Summarize(ctrl.State(), events)))
}

// resolveColumn matches name against column ids, then case-insensitively
// against ids and labels.
func resolveColumn(columns []nlquery.Column, name string) (string, error) {
	for _, c := range columns {
		if c.ID == name {
			return c.ID, nil
		}
	}
	for _, c := range columns {
		if strings.EqualFold(c.ID, name) || strings.EqualFold(c.Label, name) {
			return c.ID, nil
		}
	}

	ids := make([]string, len(columns))
	for i, c := range columns {
		ids[i] = c.ID
	}
	return "", fmt.Errorf("unknown column %q (available: %s)", name, strings.Join(ids, ", "))
}

// writeCharts renders every non-empty chart into dir and returns the written
// paths. Empty charts are skipped.
func writeCharts(dir string, specs []charts.Spec, format string, p *project) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating chart directory: %w", err)
	}

	render := charts.RenderSVG
	if format == "png" {
		render = charts.RenderPNG
	}

	var written []string
	for i, spec := range specs {
		if spec.Empty() {
			p.logger.Debug("Skipping empty chart", "index", i, "title", spec.Title)
			continue
		}

		path := filepath.Join(dir, chartFileName(i, spec, format))
		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("creating chart file: %w", err)
		}
		err = render(f, spec, charts.DefaultWidth, charts.DefaultHeight)
		closeErr := f.Close()
		if errors.Is(err, charts.ErrNoData) {
			os.Remove(path)
			continue
		}
		if err != nil {
			return written, fmt.Errorf("rendering chart %d: %w", i+1, err)
		}
		if closeErr != nil {
			return written, fmt.Errorf("writing chart %d: %w", i+1, closeErr)
		}
		written = append(written, path)
	}
	return written, nil
}

// chartFileName names the i-th chart after its title, e.g. "01-sales-by-product.svg".
func chartFileName(i int, spec charts.Spec, ext string) string {
	name := spec.Title
	if name == "" {
		name = spec.Kind.String()
	}

	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '-'
	}, name)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "chart"
	}

	return fmt.Sprintf("%02d-%s.%s", i+1, slug, ext)
}
