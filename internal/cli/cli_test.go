package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berth-dev/stocklens/internal/charts"
	"github.com/berth-dev/stocklens/internal/config"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/testutil"
)

// resetFlags puts every flag back to its default so commands can be executed
// repeatedly within one test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI with args inside dir and returns what it printed.
func execute(t *testing.T, dir, stdin string, args ...string) (string, string, error) {
	t.Helper()
	prevDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prevDir) })
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err = rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func newProject(t *testing.T) (string, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t)
	return testutil.TempProject(t, testutil.ProjectWithConfig(backend.URL)), backend
}

func TestQueryPrintsResult(t *testing.T) {
	dir, backend := newProject(t)
	backend.Enqueue("s1",
		testutil.StatusResult("s1", nlquery.StatusExecuting),
		testutil.ExecutedResult("s1"),
	)

	stdout, stderr, err := execute(t, dir, "", "query", "Show", "top", "products")
	require.NoError(t, err)

	assert.Equal(t, "Show top products", backend.LastQuery().Text)
	assert.Equal(t, "Bearer test-token", backend.LastAuth())
	assert.Equal(t, 2, backend.Fetches("s1"))

	assert.Contains(t, stdout, "Current Stock")
	assert.Contains(t, stdout, "Widget")
	assert.Contains(t, stdout, "Showing 3 items")
	assert.Contains(t, stdout, "Sales by product")

	assert.Contains(t, stderr, `Submitting "Show top products"`)
	assert.Contains(t, stderr, "Session s1: executed")

	_, err = os.Stat(filepath.Join(dir, ".stocklens", "log.jsonl"))
	assert.NoError(t, err, "event log written")
}

func TestQuerySortedJSON(t *testing.T) {
	dir, backend := newProject(t)
	backend.Enqueue("s1", testutil.ExecutedResult("s1"))

	stdout, stderr, err := execute(t, dir, "", "query", "Stock levels", "--sort", "Current Stock", "--desc", "--json")
	require.NoError(t, err)
	assert.Empty(t, stderr, "no progress output with --json")

	var result nlquery.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Table.Rows, 3)
	assert.Equal(t, "Bolt", result.Table.Rows[0]["productName"])
	assert.Equal(t, "Widget", result.Table.Rows[2]["productName"])
}

func TestQueryUnknownSortColumn(t *testing.T) {
	dir, backend := newProject(t)
	backend.Enqueue("s1", testutil.ExecutedResult("s1"))

	_, _, err := execute(t, dir, "", "query", "Stock levels", "--sort", "price")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown column "price"`)
	assert.Contains(t, err.Error(), "currentStock")
}

func TestQueryTimeout(t *testing.T) {
	dir, backend := newProject(t)
	backend.Enqueue("s1", testutil.StatusResult("s1", nlquery.StatusExecuting))

	_, stderr, err := execute(t, dir, "", "query", "Slow question", "--summary")
	require.Error(t, err)
	assert.Equal(t, "Polling timeout: query did not complete in time", err.Error())
	assert.Equal(t, 3, backend.Fetches("s1"))

	assert.Contains(t, stderr, "Query failed")
	assert.Contains(t, stderr, "Query Report")
	assert.Contains(t, stderr, "Attempts:    3")
}

func TestQueryMaxAttemptsFlag(t *testing.T) {
	dir, backend := newProject(t)
	backend.Enqueue("s1", testutil.StatusResult("s1", nlquery.StatusExecuting))

	_, _, err := execute(t, dir, "", "query", "Slow question", "--max-attempts", "5", "--interval", "1ms")
	require.Error(t, err)
	assert.Equal(t, 5, backend.Fetches("s1"))
}

func TestQueryServerError(t *testing.T) {
	dir, backend := newProject(t)
	backend.FailWith(500, "Backend exploded")

	_, _, err := execute(t, dir, "", "query", "Anything")
	require.Error(t, err)
	assert.Equal(t, "Backend exploded", err.Error())
}

func TestQueryWritesHTMLAndCharts(t *testing.T) {
	dir, backend := newProject(t)
	backend.Enqueue("s1", testutil.ExecutedResult("s1"))

	_, stderr, err := execute(t, dir, "", "query", "Sales", "--html", "out/report.html", "--chart-dir", "charts")
	require.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(dir, "out", "report.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Sales | stocklens</title>")

	svg, err := os.ReadFile(filepath.Join(dir, "charts", "01-sales-by-product.svg"))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")

	assert.Contains(t, stderr, "Report written to out/report.html")
}

func TestQueryRejectsBadChartFormat(t *testing.T) {
	dir, _ := newProject(t)

	_, _, err := execute(t, dir, "", "query", "Sales", "--chart-format", "gif")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chart format")
}

func TestSessions(t *testing.T) {
	dir, backend := newProject(t)
	backend.SetSessions(
		nlquery.SessionSummary{SessionID: "s2", Status: nlquery.StatusExecuted, CreatedAt: "2024-03-05T10:15:00Z", NaturalLanguageQuery: "Low stock items"},
		nlquery.SessionSummary{SessionID: "s1", Status: nlquery.StatusFailed, NaturalLanguageQuery: "Top sellers"},
	)

	stdout, _, err := execute(t, dir, "", "sessions", "--limit", "1")
	require.NoError(t, err)

	assert.Contains(t, stdout, "s2")
	assert.Contains(t, stdout, "2024-03-05 10:15")
	assert.Contains(t, stdout, "Low stock items")
	assert.NotContains(t, stdout, "Top sellers")
	assert.Contains(t, stdout, "Showing 1 of 2 sessions")
}

func TestSessionsEmpty(t *testing.T) {
	dir, _ := newProject(t)

	stdout, _, err := execute(t, dir, "", "sessions")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No sessions found")
}

func TestReportShowsLastRun(t *testing.T) {
	dir, backend := newProject(t)
	backend.Enqueue("s1", testutil.ExecutedResult("s1"))
	backend.Enqueue("s2",
		testutil.StatusResult("s2", nlquery.StatusExecuting),
		testutil.ExecutedResult("s2"),
	)

	_, _, err := execute(t, dir, "", "query", "First question")
	require.NoError(t, err)
	_, _, err = execute(t, dir, "", "query", "Second question")
	require.NoError(t, err)

	stdout, _, err := execute(t, dir, "", "report", "--save")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Query:       Second question")
	assert.Contains(t, stdout, "Session:     s2")
	assert.Contains(t, stdout, "Rows:        3")
	assert.Contains(t, stdout, "Attempts:    2")
	assert.NotContains(t, stdout, "First question")

	_, err = os.Stat(filepath.Join(dir, ".stocklens", "report.md"))
	assert.NoError(t, err)
}

func TestReportWithoutRuns(t *testing.T) {
	_, _, err := execute(t, t.TempDir(), "", "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No query runs found")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := execute(t, dir, "", "init", "--api-url", "http://inventory.local:8080/")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Stocklens initialized")

	cfg, err := config.ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://inventory.local:8080", cfg.API.BaseURL)
	assert.Equal(t, nlquery.DefaultMaxAttempts, cfg.Polling.MaxAttempts)

	gitignore, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), ".stocklens/log.jsonl")
	assert.Contains(t, string(gitignore), ".env\n")
}

func TestInitAsksBeforeOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, dir, "", "init", "--api-url", "http://first")
	require.NoError(t, err)

	stdout, _, err := execute(t, dir, "n\n", "init", "--api-url", "http://second")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Aborted.")

	cfg, err := config.ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://first", cfg.API.BaseURL)

	_, _, err = execute(t, dir, "", "init", "--api-url", "http://second", "--force")
	require.NoError(t, err)
	cfg, err = config.ReadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://second", cfg.API.BaseURL)
}

func TestEnsureGitignoreAppendsMissingOnly(t *testing.T) {
	dir := testutil.TempProject(t, map[string]string{
		".gitignore": "node_modules/\n.env",
	})

	require.NoError(t, ensureGitignore(dir))
	require.NoError(t, ensureGitignore(dir))

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "node_modules/\n.env\n\n# Added by stocklens init\n"))
	assert.Equal(t, 1, strings.Count(content, "# Added by stocklens init"))
	assert.Equal(t, 1, strings.Count(content, ".stocklens/reports/"))
	assert.NotContains(t, content, "\n.env\n.env")
}

func TestClean(t *testing.T) {
	dir := testutil.TempProject(t, map[string]string{
		".stocklens/reports/s1.html": "<html></html>",
		".stocklens/reports/s2.html": "<html></html>",
	})

	stdout, _, err := execute(t, dir, "", "clean", "--keep", "1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Would remove 1 report(s).")

	stdout, _, err = execute(t, dir, "", "clean")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No reports to clean up.")
}

func TestChartFileName(t *testing.T) {
	spec := charts.Dispatch(testutil.SalesChart())
	assert.Equal(t, "01-sales-by-product.svg", chartFileName(0, spec, "svg"))

	spec.Title = "  Stock / Region (2024)  "
	assert.Equal(t, "12-stock-region-2024.png", chartFileName(11, spec, "png"))

	spec.Title = ""
	assert.Equal(t, "03-bar.svg", chartFileName(2, spec, "svg"))
}

func TestResolveColumn(t *testing.T) {
	columns := testutil.InventoryColumns()

	id, err := resolveColumn(columns, "currentStock")
	require.NoError(t, err)
	assert.Equal(t, "currentStock", id)

	id, err = resolveColumn(columns, "last restocked")
	require.NoError(t, err)
	assert.Equal(t, "lastRestocked", id)

	_, err = resolveColumn(columns, "price")
	assert.Error(t, err)
}
