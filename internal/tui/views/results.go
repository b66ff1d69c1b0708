package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/berth-dev/stocklens/internal/charts"
	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/table"
	"github.com/berth-dev/stocklens/internal/tui"
	"github.com/berth-dev/stocklens/internal/tui/diagram"
)

// ============================================================================
// Message Types
// ============================================================================

// SortMsg is sent after the user re-sorts the result table.
type SortMsg struct {
	ColumnID  string
	Direction table.SortDirection
}

// ExportMsg is sent when the user asks for an HTML export.
type ExportMsg struct{}

// NewQueryMsg is sent when the user leaves the result for a new question.
type NewQueryMsg struct{}

// ============================================================================
// ResultsModel
// ============================================================================

// ResultsModel shows a terminal result: feedback, the sortable table and
// the charts, one of the latter two at a time.
type ResultsModel struct {
	query       string
	result      nlquery.Result
	feedback    dashboard.Feedback
	hasFeedback bool
	tbl         *table.Table
	specs       []charts.Spec
	selected    int
	showCharts  bool
	maxRows     int
	chartWidth  int
	viewport    viewport.Model
	width       int
	height      int

	// Notice is a one-line status, e.g. the path of an exported report.
	Notice string

	ctrlCPending bool
}

// NewResultsModel creates a ResultsModel for result.
func NewResultsModel(query string, result nlquery.Result, width, height, maxRows, chartWidth int) ResultsModel {
	fb, ok := dashboard.FeedbackFor(result)

	specs := make([]charts.Spec, len(result.Charts))
	for i, c := range result.Charts {
		specs[i] = charts.Dispatch(c)
	}

	m := ResultsModel{
		query:       query,
		result:      result,
		feedback:    fb,
		hasFeedback: ok,
		tbl:         table.New(result.Table.Columns, result.Table.Rows),
		specs:       specs,
		maxRows:     maxRows,
		chartWidth:  chartWidth,
		viewport:    viewport.New(max(width-8, 20), viewportHeight(height)),
		width:       width,
		height:      height,
	}
	m.refresh()
	return m
}

func viewportHeight(height int) int {
	return max(height-14, 5)
}

// Init returns the initial command for the results view.
func (m ResultsModel) Init() tea.Cmd {
	return nil
}

// SetCtrlCPending syncs the exit confirmation hint.
func (m *ResultsModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}

// Table returns the displayed table.
func (m ResultsModel) Table() *table.Table {
	return m.tbl
}

// ShowingCharts reports whether the chart pane is active.
func (m ResultsModel) ShowingCharts() bool {
	return m.showCharts
}

// Update handles messages for the results view.
func (m ResultsModel) Update(msg tea.Msg) (ResultsModel, tea.Cmd) {
	keys := tui.DefaultKeyMap

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Tab):
			m.showCharts = !m.showCharts
			m.viewport.GotoTop()
			m.refresh()
			return m, nil

		case key.Matches(msg, keys.Left):
			if !m.showCharts && m.selected > 0 {
				m.selected--
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, keys.Right):
			if !m.showCharts && m.selected < len(m.tbl.Columns())-1 {
				m.selected++
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, keys.Sort):
			if m.showCharts || len(m.tbl.Columns()) == 0 {
				return m, nil
			}
			m.tbl.Sort(m.tbl.Columns()[m.selected].ID)
			m.refresh()
			columnID, dir := m.tbl.SortState()
			return m, func() tea.Msg { return SortMsg{ColumnID: columnID, Direction: dir} }

		case key.Matches(msg, keys.Export):
			return m, func() tea.Msg { return ExportMsg{} }

		case key.Matches(msg, keys.Escape):
			return m, func() tea.Msg { return NewQueryMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-8, 20)
		m.viewport.Height = viewportHeight(msg.Height)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refresh re-renders the active pane into the viewport.
func (m *ResultsModel) refresh() {
	if m.showCharts {
		m.viewport.SetContent(diagram.RenderAll(m.specs, m.chartWidth))
		return
	}
	m.viewport.SetContent(RenderTable(m.tbl, m.selected, m.maxRows))
}

// View renders the results view.
func (m ResultsModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render(Header))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf("> %s  (session %s, %s)", m.query, m.result.SessionID, m.result.Status)))
	b.WriteString("\n\n")

	if m.hasFeedback {
		b.WriteString(RenderFeedback(m.feedback))
		b.WriteString("\n")
	}

	tableTab, chartTab := tui.ActiveTabStyle, tui.InactiveTabStyle
	if m.showCharts {
		tableTab, chartTab = chartTab, tableTab
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		tableTab.Render("Results Table"), " ", chartTab.Render("Data Visualizations")))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.Notice != "" {
		b.WriteString(tui.SuccessStyle.Render(m.Notice))
		b.WriteString("\n")
	}

	keys := tui.DefaultKeyMap
	footer := tui.ShortHelp(keys.Tab, keys.Left, keys.Right, keys.Sort, keys.Export, keys.Escape)
	if m.ctrlCPending {
		footer = tui.WarningStyle.Render("Press Ctrl+C again to exit")
	}
	b.WriteString(footer)

	return tui.BoxStyle.Width(max(m.width-4, 20)).Render(b.String())
}

// RenderFeedback renders the feedback block with its review summary.
func RenderFeedback(fb dashboard.Feedback) string {
	style := tui.FeedbackStyle(fb.Level)

	var b strings.Builder
	if fb.Message != "" {
		b.WriteString(style.Render(fb.Message))
		b.WriteString("\n")
	}
	if fb.ReviewSummary != "" {
		b.WriteString(style.Bold(true).Render(dashboard.ReviewSummaryTitle))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render(fb.ReviewSummary))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTable draws tbl in display order. The selected column header is
// highlighted; at most maxRows rows are drawn when maxRows is positive.
func RenderTable(tbl *table.Table, selected, maxRows int) string {
	if tbl.Empty() {
		return tui.DimStyle.Render(table.NoDataText)
	}

	columns := tbl.Columns()
	sortColumn, sortDir := tbl.SortState()

	headers := make([]string, len(columns))
	numeric := make([]bool, len(columns))
	for i, col := range columns {
		headers[i] = col.Label
		if col.ID == sortColumn {
			headers[i] += " " + sortDir.Arrow()
		}
		numeric[i] = tbl.Roles().Of(col.ID).Class() == table.NumberCellClass
	}

	rows := tbl.Rows()
	hidden := 0
	if maxRows > 0 && len(rows) > maxRows {
		hidden = len(rows) - maxRows
		rows = rows[:maxRows]
	}

	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(columns))
		for c, col := range columns {
			cells[r][c] = tui.RenderCell(tbl.Cell(row, col))
		}
	}

	t := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tui.DimStyle).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == lgtable.HeaderRow {
				s = s.Bold(true)
				if col == selected {
					s = s.Inherit(tui.SelectedStyle)
				}
				return s
			}
			if col < len(numeric) && numeric[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render(tbl.Summary()))
	if hidden > 0 {
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf(" (%d more not shown)", hidden)))
	}
	return b.String()
}
