package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a spec has nothing to draw.
var ErrNoData = errors.New(NoChartsText)

const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

// RenderSVG draws spec as an SVG image.
func RenderSVG(w io.Writer, spec Spec, width, height int) error {
	return render(w, spec, width, height, chart.SVG)
}

// RenderPNG draws spec as a PNG image.
func RenderPNG(w io.Writer, spec Spec, width, height int) error {
	return render(w, spec, width, height, chart.PNG)
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func render(w io.Writer, spec Spec, width, height int, rp chart.RendererProvider) error {
	if spec.Empty() {
		return ErrNoData
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	var graph renderable
	switch spec.Kind {
	case KindPie:
		pie, err := pieChart(spec, width, height)
		if err != nil {
			return err
		}
		graph = pie
	case KindLine, KindArea:
		// A continuous axis needs at least two categories.
		if len(spec.Categories) < 2 {
			graph = barChart(spec, width, height)
		} else {
			graph = lineChart(spec, width, height)
		}
	default:
		graph = barChart(spec, width, height)
	}

	if err := graph.Render(rp, w); err != nil {
		return fmt.Errorf("rendering %s chart %q: %w", spec.Kind, spec.Title, err)
	}
	return nil
}

func lineChart(spec Spec, width, height int) *chart.Chart {
	xs := lo.Map(spec.Categories, func(_ string, i int) float64 { return float64(i) })
	ticks := lo.Map(spec.Categories, func(label string, i int) chart.Tick {
		return chart.Tick{Value: float64(i), Label: label}
	})

	series := make([]chart.Series, 0, len(spec.Series))
	for _, s := range spec.Series {
		color := hexColor(s.Color)
		style := chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotColor:    color,
			DotWidth:    4,
		}
		if s.Gradient != nil {
			style.FillColor = color.WithAlpha(uint8(255 * s.Gradient.MeanOpacity()))
			style.DotWidth = 0
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style:   style,
		})
	}

	minY, maxY := valueRange(spec)
	graph := &chart.Chart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 16, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(xs) - 1)},
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: minY, Max: maxY},
			ValueFormatter: tickFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph
}

// barChart draws grouped bars: for each category, one bar per series.
func barChart(spec Spec, width, height int) *chart.BarChart {
	bars := make([]chart.Value, 0, len(spec.Categories)*len(spec.Series))
	for i, category := range spec.Categories {
		for j, s := range spec.Series {
			label := ""
			if j == 0 {
				label = category
			}
			color := hexColor(s.Color)
			bars = append(bars, chart.Value{
				Label: label,
				Value: s.Values[i],
				Style: chart.Style{FillColor: color, StrokeColor: color},
			})
		}
	}

	minY, maxY := valueRange(spec)
	return &chart.BarChart{
		Title:    spec.Title,
		Width:    width,
		Height:   height,
		BarWidth: barWidth(width, len(bars)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: minY, Max: maxY},
			ValueFormatter: tickFormatter,
		},
		Bars: bars,
	}
}

func pieChart(spec Spec, width, height int) (*chart.PieChart, error) {
	total := lo.SumBy(spec.Slices, func(s Slice) float64 { return s.Value })
	if total <= 0 {
		return nil, ErrNoData
	}

	values := lo.Map(spec.Slices, func(s Slice, _ int) chart.Value {
		color := hexColor(s.Color)
		return chart.Value{
			Label: s.Label,
			Value: s.Value,
			Style: chart.Style{FillColor: color, StrokeColor: drawing.ColorWhite},
		}
	})

	return &chart.PieChart{
		Title:  spec.Title,
		Width:  width,
		Height: height,
		Values: values,
	}, nil
}

func valueRange(spec Spec) (float64, float64) {
	minY, maxY := 0.0, 0.0
	for _, s := range spec.Series {
		for _, v := range s.Values {
			minY = min(minY, v)
			maxY = max(maxY, v)
		}
	}
	if maxY == minY {
		maxY = minY + 1
	}
	return minY, maxY
}

func barWidth(width, bars int) int {
	if bars == 0 {
		return 40
	}
	return max(8, min(60, width/(bars*2)))
}

func tickFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return Abbreviate(f)
	}
	return fmt.Sprint(v)
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
