// Package ui provides terminal UI components for stocklens.
// This file implements the progress line shown while a query is polled.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// ProgressDisplay renders the lifecycle of one query. On a terminal the
// status line is redrawn in place; otherwise one line is printed per change.
type ProgressDisplay struct {
	mu          sync.Mutex
	out         io.Writer
	query       string
	maxAttempts int
	isTTY       bool
	linesDrawn  int
	started     time.Time
	now         func() time.Time

	phase     dashboard.Phase
	sessionID string
	attempt   int
	status    nlquery.Status

	lastPrinted string
}

// NewProgressDisplay creates a ProgressDisplay writing to out. The line is
// redrawn in place only when out is a terminal.
func NewProgressDisplay(out io.Writer, query string, maxAttempts int) *ProgressDisplay {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return newProgressDisplay(out, query, maxAttempts, isTTY)
}

func newProgressDisplay(out io.Writer, query string, maxAttempts int, isTTY bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:         out,
		query:       query,
		maxAttempts: maxAttempts,
		isTTY:       isTTY,
		now:         time.Now,
	}
}

// Update records a dashboard state change and re-renders. It fits
// dashboard.WithOnChange.
func (p *ProgressDisplay) Update(state dashboard.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state.Phase == dashboard.PhaseSubmitting {
		p.started = p.now()
		p.attempt = 0
		p.status = ""
	}
	p.phase = state.Phase
	p.sessionID = state.SessionID
	if state.Result != nil {
		p.status = state.Result.Status
	}

	p.render()
}

// Attempt records a completed poll attempt and re-renders. It fits
// nlquery.PollOptions.OnAttempt.
func (p *ProgressDisplay) Attempt(attempt int, status nlquery.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempt = attempt
	p.status = status
	p.render()
}

// Finish moves the cursor below the status line.
func (p *ProgressDisplay) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isTTY && p.linesDrawn > 0 {
		fmt.Fprint(p.out, "\n")
		p.linesDrawn = 0
	}
}

func (p *ProgressDisplay) render() {
	if !p.isTTY {
		p.renderPlain()
		return
	}
	p.renderTTY()
}

// renderTTY redraws the status line using ANSI escape codes.
func (p *ProgressDisplay) renderTTY() {
	if p.linesDrawn > 0 {
		fmt.Fprint(p.out, "\r")
	}
	fmt.Fprintf(p.out, "\033[2K%s %s  %s", phaseIcon(p.phase), p.line(), p.detail())
	p.linesDrawn = 1
}

// renderPlain writes non-TTY output (for CI/piping).
// Only prints when the line changes to avoid duplicates.
func (p *ProgressDisplay) renderPlain() {
	line := fmt.Sprintf("[%s] %s", phaseLabel(p.phase), p.line())
	if line == p.lastPrinted {
		return
	}
	fmt.Fprintln(p.out, line)
	p.lastPrinted = line
}

func (p *ProgressDisplay) line() string {
	switch p.phase {
	case dashboard.PhaseSubmitting:
		return fmt.Sprintf("Submitting %q", truncate(p.query, 60))
	case dashboard.PhasePolling:
		if p.attempt == 0 {
			return fmt.Sprintf("Session %s created", p.sessionID)
		}
		return fmt.Sprintf("Session %s: %s (attempt %d/%d)", p.sessionID, p.status, p.attempt, p.maxAttempts)
	case dashboard.PhaseDisplaying:
		return fmt.Sprintf("Session %s: %s", p.sessionID, p.status)
	case dashboard.PhaseErrored:
		return "Query failed"
	default:
		return "Idle"
	}
}

func (p *ProgressDisplay) detail() string {
	if p.started.IsZero() {
		return ""
	}
	return fmt.Sprintf("\033[90m[%s]\033[0m", formatDuration(p.now().Sub(p.started)))
}

func phaseIcon(phase dashboard.Phase) string {
	switch phase {
	case dashboard.PhaseDisplaying:
		return "\033[32m✅\033[0m" // green checkmark
	case dashboard.PhaseSubmitting, dashboard.PhasePolling:
		return "\033[33m⏳\033[0m" // yellow hourglass
	case dashboard.PhaseErrored:
		return "\033[31m❌\033[0m" // red X
	default:
		return "\033[90m○\033[0m" // dim circle
	}
}

func phaseLabel(phase dashboard.Phase) string {
	switch phase {
	case dashboard.PhaseSubmitting:
		return "SUBMIT"
	case dashboard.PhasePolling:
		return "POLL"
	case dashboard.PhaseDisplaying:
		return "DONE"
	case dashboard.PhaseErrored:
		return "FAILED"
	default:
		return "IDLE"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
