package charts

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"hermannm.dev/enumnames"

	"github.com/berth-dev/stocklens/internal/format"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// ChartKind is the construction used to draw a chart.
type ChartKind uint8

const (
	KindBar ChartKind = iota + 1
	KindLine
	KindArea
	KindPie
)

var chartKindNames = enumnames.NewMap(map[ChartKind]string{
	KindBar:  "bar",
	KindLine: "line",
	KindArea: "area",
	KindPie:  "pie",
})

func (k ChartKind) String() string {
	return chartKindNames.GetNameOrFallback(k, "bar")
}

func (k ChartKind) MarshalJSON() ([]byte, error) {
	return chartKindNames.MarshalToNameJSON(k)
}

// KindOf maps a declared chart type to its construction. Unknown types are
// drawn as bars.
func KindOf(chartType string) ChartKind {
	for _, k := range []ChartKind{KindLine, KindArea, KindPie} {
		if k.String() == chartType {
			return k
		}
	}
	return KindBar
}

// Gradient is a vertical fill fading from the series color at the top to
// near transparent at the bottom. Offsets are fractions of the plot height.
type Gradient struct {
	Color         string
	TopOffset     float64
	TopOpacity    float64
	BottomOffset  float64
	BottomOpacity float64
}

// MeanOpacity is the flat opacity approximating g.
func (g Gradient) MeanOpacity() float64 {
	return (g.TopOpacity + g.BottomOpacity) / 2
}

func areaGradient(color string) *Gradient {
	return &Gradient{
		Color:         color,
		TopOffset:     0.05,
		TopOpacity:    0.8,
		BottomOffset:  0.95,
		BottomOpacity: 0.1,
	}
}

// Series is one drawable series over the category axis. Values hold 0 where
// a data point has no numeric value; Present tells the two apart.
type Series struct {
	Key      string
	Name     string
	Color    string
	Values   []float64
	Present  []bool
	Gradient *Gradient
}

// Slice is one pie slice. Percent is a fraction in [0, 1].
type Slice struct {
	Name    string
	Value   float64
	Percent float64
	Color   string
	Label   string
}

// Spec is a renderer-independent description of one chart.
type Spec struct {
	Kind        ChartKind
	Title       string
	CategoryKey string
	Categories  []string
	Series      []Series
	Slices      []Slice
	Stats       Statistics
}

// Empty reports whether there is nothing to draw.
func (s Spec) Empty() bool {
	if s.Kind == KindPie {
		return len(s.Slices) == 0
	}
	return len(s.Categories) == 0
}

// YTick formats a numeric axis tick.
func (s Spec) YTick(v float64) string {
	return Abbreviate(v)
}

// NoChartsText is rendered when a result has no charts.
const NoChartsText = "No chart data available"

// Dispatch builds the drawable spec for c.
func Dispatch(c nlquery.Chart) Spec {
	kind := KindOf(c.Type)
	categoryKey := c.CategoryKey()

	spec := Spec{
		Kind:        kind,
		Title:       c.Title,
		CategoryKey: categoryKey,
		Categories: lo.Map(c.Data, func(point map[string]any, _ int) string {
			return format.String(point[categoryKey])
		}),
		Stats: Compute(c),
	}

	if kind == KindPie {
		spec.Slices = pieSlices(c, categoryKey)
		return spec
	}

	spec.Series = lo.Map(c.ResolvedDataKeys(), func(dk nlquery.DataKey, i int) Series {
		s := Series{
			Key:     dk.Key,
			Name:    dk.Name,
			Color:   seriesColor(dk, i),
			Values:  make([]float64, len(c.Data)),
			Present: make([]bool, len(c.Data)),
		}
		for j, point := range c.Data {
			s.Values[j], s.Present[j] = format.AsNumber(point[dk.Key])
		}
		if kind == KindArea {
			s.Gradient = areaGradient(s.Color)
		}
		return s
	})
	return spec
}

func seriesColor(dk nlquery.DataKey, i int) string {
	if dk.Color != "" {
		return dk.Color
	}
	return ColorAt(i)
}

// pieSlices slices the first data key, one slice per data point.
func pieSlices(c nlquery.Chart, categoryKey string) []Slice {
	key := c.ResolvedDataKeys()[0].Key

	values := lo.Map(c.Data, func(point map[string]any, _ int) float64 {
		v, _ := format.AsNumber(point[key])
		return v
	})
	total := lo.Sum(values)

	return lo.Map(c.Data, func(point map[string]any, i int) Slice {
		var percent float64
		if total != 0 {
			percent = values[i] / total
		}
		name := format.String(point[categoryKey])
		return Slice{
			Name:    name,
			Value:   values[i],
			Percent: percent,
			Color:   ColorAt(i),
			Label:   fmt.Sprintf("%s: %.0f%%", name, math.Round(percent*100)),
		}
	})
}
