package charts

import (
	"github.com/berth-dev/stocklens/internal/format"
)

// TooltipEntry is one series value at a hovered category.
type TooltipEntry struct {
	Name  string
	Color string
	Value any
}

// Tooltip is the hover content for one category or slice.
type Tooltip struct {
	Label   string
	Entries []TooltipEntry
}

// TooltipAt returns the tooltip for the data point at index. ok is false when
// index is out of range.
func (s Spec) TooltipAt(index int) (tip Tooltip, ok bool) {
	if s.Kind == KindPie {
		if index < 0 || index >= len(s.Slices) {
			return Tooltip{}, false
		}
		slice := s.Slices[index]
		return Tooltip{
			Label:   slice.Name,
			Entries: []TooltipEntry{{Name: slice.Name, Color: slice.Color, Value: slice.Value}},
		}, true
	}

	if index < 0 || index >= len(s.Categories) {
		return Tooltip{}, false
	}

	tip.Label = s.Categories[index]
	for _, series := range s.Series {
		var value any
		if series.Present[index] {
			value = series.Values[index]
		}
		tip.Entries = append(tip.Entries, TooltipEntry{
			Name:  series.Name,
			Color: series.Color,
			Value: value,
		})
	}
	return tip, true
}

// FormatTooltip renders tip as lines: the label, then "name: value" per entry.
// Numbers are localized; other values keep their string form.
func FormatTooltip(tip Tooltip) []string {
	lines := make([]string, 0, len(tip.Entries)+1)
	lines = append(lines, tip.Label)

	for _, entry := range tip.Entries {
		var value string
		if n, ok := format.AsNumber(entry.Value); ok {
			value = format.Number(n)
		} else {
			value = format.String(entry.Value)
		}
		lines = append(lines, entry.Name+": "+value)
	}
	return lines
}
