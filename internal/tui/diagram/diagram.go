// Package diagram draws charts as text for the terminal.
package diagram

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/berth-dev/stocklens/internal/charts"
)

const (
	block        = "█"
	missing      = "—"
	maxLabel     = 16
	minBarWidth  = 10
	defaultWidth = 60
)

// Render draws spec as horizontal bars (bar, line and area charts) or as a
// percentage list (pie charts), headed by its title and statistics strip.
func Render(spec charts.Spec, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder

	title := spec.Title
	if title == "" {
		title = spec.Kind.String() + " chart"
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)) + "\n")

	if strip := Strip(spec.Stats); strip != "" {
		b.WriteString(strip + "\n")
	}
	b.WriteString("\n")

	if spec.Empty() {
		b.WriteString(charts.NoChartsText + "\n")
		return b.String()
	}

	if spec.Kind == charts.KindPie {
		writePie(&b, spec, width)
	} else {
		writeBars(&b, spec, width)
	}
	return b.String()
}

// RenderAll draws every chart, separated by blank lines.
func RenderAll(specs []charts.Spec, width int) string {
	if len(specs) == 0 {
		return charts.NoChartsText + "\n"
	}

	parts := make([]string, len(specs))
	for i, spec := range specs {
		parts[i] = Render(spec, width)
	}
	return strings.Join(parts, "\n")
}

// Strip formats the statistics strip on one line.
func Strip(stats charts.Statistics) string {
	items := stats.Strip()
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.Label + ": " + item.Value
	}
	return strings.Join(parts, "   ")
}

func writeBars(b *strings.Builder, spec charts.Spec, width int) {
	labelW := 0
	for _, c := range spec.Categories {
		labelW = max(labelW, lipgloss.Width(shortLabel(c)))
	}
	nameW := 0
	for _, s := range spec.Series {
		nameW = max(nameW, lipgloss.Width(shortLabel(s.Name)))
	}

	barW := max(width-labelW-nameW-10, minBarWidth)
	top := maxValue(spec.Series)

	for i, category := range spec.Categories {
		for j, s := range spec.Series {
			label := ""
			if j == 0 {
				label = shortLabel(category)
			}

			value := missing
			bar := ""
			if s.Present[i] {
				value = charts.Abbreviate(s.Values[i])
				bar = paint(s.Color, strings.Repeat(block, barLength(s.Values[i], top, barW)))
			}

			fmt.Fprintf(b, "%s  %s  %s %s\n", pad(label, labelW), pad(shortLabel(s.Name), nameW), bar, value)
		}
	}
}

func writePie(b *strings.Builder, spec charts.Spec, width int) {
	barW := max(width/2, minBarWidth)
	for _, slice := range spec.Slices {
		n := int(math.Round(slice.Percent * float64(barW)))
		fmt.Fprintf(b, "%s %s\n", paint(slice.Color, strings.Repeat(block, n)+" "), slice.Label)
	}
}

func maxValue(series []charts.Series) float64 {
	top := 0.0
	for _, s := range series {
		for i, v := range s.Values {
			if s.Present[i] && v > top {
				top = v
			}
		}
	}
	return top
}

func barLength(v, top float64, width int) int {
	if top <= 0 || v <= 0 {
		return 0
	}
	return int(math.Round(v / top * float64(width)))
}

func paint(hex, s string) string {
	if hex == "" || s == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(s)
}

func pad(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// shortLabel truncates long category and series names.
func shortLabel(s string) string {
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return string(r[:maxLabel-1]) + "…"
}
