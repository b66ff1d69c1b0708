// Package report summarises a finished query as terminal text or a standalone
// HTML page.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// Report holds the aggregated statistics and metadata for one query run.
type Report struct {
	Query     string
	SessionID string
	Status    nlquery.Status
	Rows      int
	Charts    int
	Attempts  int
	Duration  time.Duration
	Message   string
	Error     string
}

// Summarize builds a Report for a finished run. events are the run's
// lifecycle events and may be empty when event logging is off.
func Summarize(state dashboard.State, events []log.LogEvent) *Report {
	r := &Report{
		Query:     state.Query,
		SessionID: state.SessionID,
		Attempts:  countAttempts(events),
		Duration:  computeDuration(events),
	}

	if state.Result != nil {
		r.Status = state.Result.Status
		r.Rows = len(state.Result.Table.Rows)
		r.Charts = len(state.Result.Charts)
		r.Message = state.Result.Message
	}
	if state.Err != nil {
		r.Error = dashboard.UserMessage(state.Err)
	}

	return r
}

// LastRun rebuilds the report of the most recent run in the event log.
// It returns nil when the log holds no runs.
func LastRun(events []log.LogEvent) *Report {
	var runID string
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].RunID != "" {
			runID = events[i].RunID
			break
		}
	}
	if runID == "" {
		return nil
	}

	run := log.ForRun(events, runID)
	r := &Report{
		Attempts: countAttempts(run),
		Duration: computeDuration(run),
	}
	for _, e := range run {
		switch e.Event {
		case log.EventQuerySubmitted:
			r.Query = e.Query
		case log.EventSessionCreated:
			r.SessionID = e.SessionID
		case log.EventQueryCompleted:
			r.Status = nlquery.Status(e.Status)
			r.Rows = e.Rows
			r.Charts = e.Charts
		case log.EventQueryFailed, log.EventPollTimeout:
			r.Error = e.Error
		}
	}
	return r
}

// FormatReport produces a terminal-friendly, human-readable summary string.
func FormatReport(r *Report) string {
	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString("  Query Report\n")
	b.WriteString("========================================\n")
	b.WriteString("\n")

	if r.Query != "" {
		fmt.Fprintf(&b, "Query:       %s\n", r.Query)
	}
	if r.SessionID != "" {
		fmt.Fprintf(&b, "Session:     %s\n", r.SessionID)
	}
	if r.Status != "" {
		fmt.Fprintf(&b, "Status:      %s\n", r.Status)
	}
	b.WriteString("\n")

	if r.Error != "" {
		fmt.Fprintf(&b, "Error:       %s\n", r.Error)
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "Rows:        %d\n", r.Rows)
		fmt.Fprintf(&b, "Charts:      %d\n", r.Charts)
		b.WriteString("\n")
	}

	if r.Message != "" {
		fmt.Fprintf(&b, "Message:     %s\n", r.Message)
	}
	if r.Attempts > 0 {
		fmt.Fprintf(&b, "Attempts:    %d\n", r.Attempts)
	}
	if r.Duration > 0 {
		fmt.Fprintf(&b, "Duration:    %s\n", formatDuration(r.Duration))
	}

	b.WriteString("========================================\n")

	return b.String()
}

// WriteReport writes the formatted report to {dir}/report.md.
// Creates the directory if it does not exist.
func WriteReport(dir string, report *Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	content := FormatReport(report)
	path := filepath.Join(dir, "report.md")

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}

	return nil
}

// computeDuration calculates the run duration from log events: from the
// first query_submitted event to the last terminal event, or to the last
// event when the run never finished.
func computeDuration(events []log.LogEvent) time.Duration {
	if len(events) == 0 {
		return 0
	}

	var start time.Time
	var end time.Time

	for _, e := range events {
		if e.Event == log.EventQuerySubmitted && start.IsZero() {
			start = e.Time
		}
		if !e.Time.IsZero() {
			end = e.Time
		}
		switch e.Event {
		case log.EventQueryCompleted, log.EventQueryFailed, log.EventPollTimeout:
			end = e.Time
		}
	}

	if start.IsZero() || end.IsZero() {
		return 0
	}

	d := end.Sub(start)
	if d < 0 {
		return 0
	}

	return d
}

func countAttempts(events []log.LogEvent) int {
	n := 0
	for _, e := range events {
		if e.Event == log.EventPollAttempt {
			n++
		}
	}
	return n
}

// formatDuration produces a human-readable duration string such as "5m 32s"
// or "1.2s". Sub-second durations are shown in milliseconds.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
}
