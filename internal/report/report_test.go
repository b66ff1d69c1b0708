package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/testutil"
)

func runEvents(start time.Time) []log.LogEvent {
	return []log.LogEvent{
		{Time: start, Event: log.EventQuerySubmitted, Query: "Show stock"},
		{Time: start.Add(100 * time.Millisecond), Event: log.EventSessionCreated, SessionID: "s1"},
		{Time: start.Add(200 * time.Millisecond), Event: log.EventPollAttempt, Attempt: 1},
		{Time: start.Add(700 * time.Millisecond), Event: log.EventPollAttempt, Attempt: 2},
		{Time: start.Add(1500 * time.Millisecond), Event: log.EventQueryCompleted, Rows: 3},
	}
}

func TestSummarize(t *testing.T) {
	result := testutil.ExecutedResult("s1")
	state := dashboard.State{
		Phase:     dashboard.PhaseDisplaying,
		Query:     "Show stock",
		SessionID: "s1",
		Result:    &result,
	}

	r := Summarize(state, runEvents(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))

	if r.Rows != 3 {
		t.Errorf("Rows: got %d, want 3", r.Rows)
	}
	if r.Charts != 1 {
		t.Errorf("Charts: got %d, want 1", r.Charts)
	}
	if r.Attempts != 2 {
		t.Errorf("Attempts: got %d, want 2", r.Attempts)
	}
	if r.Duration != 1500*time.Millisecond {
		t.Errorf("Duration: got %v, want 1.5s", r.Duration)
	}
	if r.Status != nlquery.StatusExecuted {
		t.Errorf("Status: got %q", r.Status)
	}
}

func TestSummarizeError(t *testing.T) {
	state := dashboard.State{
		Phase: dashboard.PhaseErrored,
		Query: "Show stock",
		Err:   &nlquery.PollingTimeoutError{SessionID: "s1", Attempts: 10},
	}

	r := Summarize(state, nil)
	if r.Error != dashboard.TimeoutMessage {
		t.Errorf("Error: got %q", r.Error)
	}

	out := FormatReport(r)
	if !strings.Contains(out, "Error:       "+dashboard.TimeoutMessage) {
		t.Errorf("report missing error line:\n%s", out)
	}
	if strings.Contains(out, "Rows:") {
		t.Errorf("errored report should not list rows:\n%s", out)
	}
	if strings.Contains(out, "Duration:") {
		t.Errorf("no events means no duration:\n%s", out)
	}
}

func TestFormatReport(t *testing.T) {
	r := &Report{
		Query:     "Show stock",
		SessionID: "s1",
		Status:    nlquery.StatusExecuted,
		Rows:      3,
		Charts:    1,
		Attempts:  2,
		Duration:  1500 * time.Millisecond,
		Message:   "Query executed successfully",
	}

	out := FormatReport(r)
	for _, want := range []string{
		"Query Report",
		"Query:       Show stock",
		"Session:     s1",
		"Status:      executed",
		"Rows:        3",
		"Charts:      1",
		"Attempts:    2",
		"Duration:    1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestComputeDurationUnfinishedRun(t *testing.T) {
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	events := runEvents(start)[:4]

	if got := computeDuration(events); got != 700*time.Millisecond {
		t.Errorf("computeDuration: got %v, want 700ms", got)
	}
	if got := computeDuration(events[1:]); got != 0 {
		t.Errorf("computeDuration without submit: got %v, want 0", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1200 * time.Millisecond, "1.2s"},
		{5*time.Minute + 32*time.Second, "5m 32s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h 2m 3s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	if err := WriteReport(dir, &Report{Query: "Show stock"}); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.md"))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "Show stock") {
		t.Errorf("report file missing query:\n%s", data)
	}
}

func TestWriteHTML(t *testing.T) {
	result := testutil.ExecutedResult("s1")
	result.ReviewSummary = map[string]any{"rowsScanned": float64(3)}

	var b strings.Builder
	if err := WriteHTML(&b, "Show stock", result); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	page := b.String()

	for _, want := range []string{
		"<!doctype html>",
		"<title>Show stock | stocklens</title>",
		"Results Table",
		"Showing 3 items",
		`class="number-cell"`,
		`class="status-cell status-low"`,
		`class="status-cell status-ok"`,
		`class="status-cell status-high"`,
		"Mar 5, 2024",
		"Data Visualizations",
		"Sales by product",
		"Sales - Total",
		"<svg",
		dashboard.ReviewSummaryTitle,
		"Query executed successfully",
		"Data points",
		"Widget | Sales: ",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestWriteHTMLEmptyStates(t *testing.T) {
	var b strings.Builder
	err := WriteHTML(&b, "", nlquery.Result{SessionID: "s2", Status: nlquery.StatusExecuted})
	if err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	page := b.String()

	for _, want := range []string{"No results to display", "No chart data available", "Inventory query"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(page, `class="query-feedback`) {
		t.Error("feedback block rendered without message or summary")
	}
}

func TestWriteHTMLEscapesText(t *testing.T) {
	result := nlquery.Result{
		Status: nlquery.StatusExecuted,
		Table: nlquery.Table{
			Columns: []nlquery.Column{{ID: "name", Label: "Name"}},
			Rows:    []nlquery.Row{{"name": "<b>bold</b>"}},
		},
	}

	var b strings.Builder
	if err := WriteHTML(&b, "q", result); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	if strings.Contains(b.String(), "<b>bold</b>") {
		t.Error("cell text was not escaped")
	}
}

func TestLastRun(t *testing.T) {
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	var events []log.LogEvent
	for _, e := range runEvents(start.Add(-time.Hour)) {
		e.RunID = "run-1"
		events = append(events, e)
	}
	second := []log.LogEvent{
		{Time: start, Event: log.EventQuerySubmitted, Query: "Low stock items"},
		{Time: start.Add(50 * time.Millisecond), Event: log.EventSessionCreated, SessionID: "s2"},
		{Time: start.Add(100 * time.Millisecond), Event: log.EventPollAttempt, Attempt: 1},
		{Time: start.Add(2 * time.Second), Event: log.EventPollTimeout, Error: "Polling timed out"},
	}
	for _, e := range second {
		e.RunID = "run-2"
		events = append(events, e)
	}

	r := LastRun(events)
	if r == nil {
		t.Fatal("LastRun returned nil")
	}
	if r.Query != "Low stock items" || r.SessionID != "s2" {
		t.Errorf("got query %q session %q", r.Query, r.SessionID)
	}
	if r.Error != "Polling timed out" {
		t.Errorf("Error: got %q", r.Error)
	}
	if r.Attempts != 1 {
		t.Errorf("Attempts: got %d, want 1", r.Attempts)
	}
	if r.Duration != 2*time.Second {
		t.Errorf("Duration: got %v, want 2s", r.Duration)
	}

	if LastRun(nil) != nil {
		t.Error("LastRun(nil) should be nil")
	}
}
