// Package charts derives statistics and drawable specs from result charts.
package charts

import (
	"fmt"
	"math"
	"strconv"
)

// Palette is the ordered series and slice palette.
var Palette = []string{
	"#6366f1", // indigo
	"#8b5cf6", // purple
	"#ec4899", // pink
	"#f59e0b", // amber
	"#10b981", // emerald
	"#06b6d4", // cyan
	"#3b82f6", // blue
	"#ef4444", // red
	"#14b8a6", // teal
	"#f97316", // orange
}

// ColorAt returns the palette color for index i, cycling.
func ColorAt(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Abbreviate shortens v for axis ticks and summary values:
// 1500000 -> "1.5M", 1000 -> "1.0K", 999 -> "999".
func Abbreviate(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
	}
}
