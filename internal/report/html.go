package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/berth-dev/stocklens/internal/charts"
	"github.com/berth-dev/stocklens/internal/dashboard"
	"github.com/berth-dev/stocklens/internal/log"
	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/table"
)

const chartWidth, chartHeight = 720, 360

// WriteHTML renders result as a standalone HTML page: feedback, the result
// table and every chart with its statistics strip.
func WriteHTML(w io.Writer, query string, result nlquery.Result) error {
	return Page(query, result).Render(w)
}

// ExportDir is where exported pages are kept inside a project.
func ExportDir(projectRoot string) string {
	return filepath.Join(projectRoot, log.StateDir, "reports")
}

// SaveHTML writes the report page for result to path, creating its
// directory when needed.
func SaveHTML(path, query string, result nlquery.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := WriteHTML(f, query, result); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}

// Page builds the report page node.
func Page(query string, result nlquery.Result) g.Node {
	title := "Inventory query"
	if query != "" {
		title = query
	}

	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.TitleEl(g.Text(title+" | stocklens")),
				h.StyleEl(g.Raw(stylesheet)),
			),
			h.Body(
				h.Main(
					h.H1(g.Text(title)),
					h.P(h.Class("muted"), g.Text(fmt.Sprintf("Session %s · %s", result.SessionID, result.Status))),
					feedbackBlock(result),
					h.Section(h.Class("results-table-container"),
						h.H2(g.Text("Results Table")),
						tableBlock(result.Table),
					),
					h.Section(h.Class("results-chart-container"),
						h.H2(g.Text("Data Visualizations")),
						chartsBlock(result.Charts),
					),
				),
			),
		),
	)
}

func feedbackBlock(result nlquery.Result) g.Node {
	fb, ok := dashboard.FeedbackFor(result)
	if !ok {
		return nil
	}

	children := []g.Node{h.Class("query-feedback " + fb.Level.String())}
	if fb.Message != "" {
		children = append(children, h.P(h.Class("message"), g.Text(fb.Message)))
	}
	if fb.ReviewSummary != "" {
		children = append(children, h.Div(h.Class("review-summary"),
			h.H4(g.Text(dashboard.ReviewSummaryTitle)),
			h.Pre(g.Text(fb.ReviewSummary)),
		))
	}
	return h.Div(children...)
}

func tableBlock(t nlquery.Table) g.Node {
	tbl := table.New(t.Columns, t.Rows)
	if tbl.Empty() {
		return h.Div(h.Class("results-table empty"), h.P(g.Text(table.NoDataText)))
	}

	headers := make([]g.Node, 0, len(t.Columns))
	for _, col := range tbl.Columns() {
		headers = append(headers, h.Th(g.Text(col.Label)))
	}

	rows := make([]g.Node, 0, tbl.Len())
	for _, row := range tbl.Rows() {
		cells := make([]g.Node, 0, len(t.Columns))
		for _, col := range tbl.Columns() {
			cells = append(cells, cellNode(tbl.Cell(row, col)))
		}
		rows = append(rows, h.Tr(cells...))
	}

	return h.Div(h.Class("results-table"),
		h.P(h.Class("muted"), g.Text(tbl.Summary())),
		h.Table(
			h.THead(h.Tr(headers...)),
			h.TBody(rows...),
		),
	)
}

func cellNode(cell table.Cell) g.Node {
	var attrs []g.Node
	if cell.Class != "" {
		attrs = append(attrs, h.Class(cell.Class))
	}

	switch {
	case cell.Empty:
		return h.Td(append(attrs, h.Span(h.Class("empty-value"), g.Text(cell.Text)))...)
	case cell.Status != 0:
		return h.Td(append(attrs,
			h.Span(h.Class("status-cell "+cell.Status.Class()), g.Text(cell.Status.String())),
			h.Span(h.Class("status-value"), g.Text(cell.Text)),
		)...)
	default:
		return h.Td(append(attrs, g.Text(cell.Text))...)
	}
}

func chartsBlock(list []nlquery.Chart) g.Node {
	if len(list) == 0 {
		return h.Div(h.Class("results-chart empty"), h.P(g.Text(charts.NoChartsText)))
	}

	nodes := make([]g.Node, 0, len(list))
	for _, c := range list {
		nodes = append(nodes, chartNode(charts.Dispatch(c)))
	}
	return h.Div(append([]g.Node{h.Class("results-chart")}, nodes...)...)
}

func chartNode(spec charts.Spec) g.Node {
	stats := make([]g.Node, 0, len(spec.Stats.Series)+3)
	for _, item := range spec.Stats.Strip() {
		stats = append(stats, h.Div(h.Class("chart-stat"),
			h.Div(h.Class("chart-stat-label"), g.Text(item.Label)),
			h.Div(h.Class("chart-stat-value"), g.Text(item.Value)),
		))
	}

	var body g.Node
	var svg bytes.Buffer
	if err := charts.RenderSVG(&svg, spec, chartWidth, chartHeight); err != nil {
		body = h.P(h.Class("muted"), g.Text(charts.NoChartsText))
	} else {
		body = h.Div(h.Class("chart-image"), g.Raw(svg.String()))
	}

	return h.Div(h.Class("chart-container"), g.Attr("data-kind", spec.Kind.String()),
		h.H3(g.Text(spec.Title)),
		h.Div(append([]g.Node{h.Class("chart-stats")}, stats...)...),
		body,
		pointsNode(spec),
	)
}

// pointsNode lists each data point with its tooltip as hover text.
func pointsNode(spec charts.Spec) g.Node {
	var items []g.Node
	for i := 0; ; i++ {
		tip, ok := spec.TooltipAt(i)
		if !ok {
			break
		}
		lines := charts.FormatTooltip(tip)
		items = append(items, h.Li(g.Attr("title", strings.Join(lines, "\n")), g.Text(strings.Join(lines, " | "))))
	}
	if len(items) == 0 {
		return nil
	}

	return h.Details(h.Class("chart-points"),
		h.Summary(g.Text("Data points")),
		h.Ul(items...),
	)
}

const stylesheet = `
body { font-family: system-ui, sans-serif; color: #1e293b; margin: 2rem; }
.muted { color: #64748b; font-size: 14px; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #e2e8f0; padding: 6px 10px; text-align: left; }
.number-cell { text-align: right; font-variant-numeric: tabular-nums; }
.empty-value { color: #94a3b8; font-style: italic; }
.status-cell { border-radius: 4px; padding: 1px 6px; margin-right: 8px; font-size: 12px; }
.status-low { background: #fee2e2; color: #b91c1c; }
.status-ok { background: #fef3c7; color: #b45309; }
.status-high { background: #d1fae5; color: #047857; }
.query-feedback { border-radius: 8px; padding: 12px; margin: 1rem 0; }
.query-feedback.info { background: #eef2ff; }
.query-feedback.warning { background: #fffbeb; }
.query-feedback.error { background: #fef2f2; }
.chart-stats { display: flex; gap: 1.5rem; margin: 0.5rem 0 1rem; }
.chart-stat-label { color: #64748b; font-size: 12px; }
.chart-stat-value { font-weight: 600; font-size: 18px; }
.chart-points { color: #64748b; font-size: 13px; margin-top: 0.5rem; }
`
