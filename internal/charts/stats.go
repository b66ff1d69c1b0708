package charts

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/berth-dev/stocklens/internal/format"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// SeriesStats summarises the numeric values of one series.
type SeriesStats struct {
	Key   string
	Name  string
	Sum   float64
	Avg   float64
	Max   float64
	Count int
}

// Headline is the summary shown for the first series only.
type Headline struct {
	Avg   float64
	Max   float64
	Count int
}

// Statistics holds per-series totals and the first series' headline.
// Headline is nil when the chart has no series.
type Statistics struct {
	Series   []SeriesStats
	Headline *Headline
}

// StatItem is one labelled entry of the statistics strip.
type StatItem struct {
	Label string
	Value string
}

// Compute summarises every declared series of c. Non-numeric values are
// ignored; empty series yield zeros.
func Compute(c nlquery.Chart) Statistics {
	series := lo.Map(c.ResolvedDataKeys(), func(dk nlquery.DataKey, _ int) SeriesStats {
		return seriesStats(c.Data, dk)
	})

	stats := Statistics{Series: series}
	if len(series) > 0 {
		first := series[0]
		stats.Headline = &Headline{Avg: first.Avg, Max: first.Max, Count: first.Count}
	}
	return stats
}

func seriesStats(data []map[string]any, dk nlquery.DataKey) SeriesStats {
	values := lo.FilterMap(data, func(point map[string]any, _ int) (float64, bool) {
		return format.AsNumber(point[dk.Key])
	})

	s := SeriesStats{
		Key:   dk.Key,
		Name:  dk.Name,
		Sum:   lo.Sum(values),
		Count: len(values),
	}
	if s.Count > 0 {
		s.Avg = s.Sum / float64(s.Count)
		s.Max = lo.Max(values)
	}
	return s
}

// Strip returns the statistics strip: a total per series followed by the
// headline average, max and item count.
func (s Statistics) Strip() []StatItem {
	items := lo.Map(s.Series, func(ss SeriesStats, _ int) StatItem {
		return StatItem{Label: ss.Name + " - Total", Value: Abbreviate(ss.Sum)}
	})

	if s.Headline != nil {
		items = append(items,
			StatItem{Label: "Average", Value: Abbreviate(s.Headline.Avg)},
			StatItem{Label: "Max", Value: Abbreviate(s.Headline.Max)},
			StatItem{Label: "Items", Value: strconv.Itoa(s.Headline.Count)},
		)
	}
	return items
}
