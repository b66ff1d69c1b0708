package table

import (
	"hermannm.dev/enumnames"

	"github.com/berth-dev/stocklens/internal/format"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// StockLevel grades a stock quantity against its reorder threshold.
type StockLevel uint8

const (
	StockLow StockLevel = iota + 1
	StockOK
	StockGood
)

var stockLevelNames = enumnames.NewMap(map[StockLevel]string{
	StockLow:  "Low",
	StockOK:   "OK",
	StockGood: "Good",
})

func (s StockLevel) String() string {
	return stockLevelNames.GetNameOrFallback(s, "")
}

func (s StockLevel) MarshalJSON() ([]byte, error) {
	return stockLevelNames.MarshalToNameJSON(s)
}

// Class returns the badge class for s.
func (s StockLevel) Class() string {
	switch s {
	case StockLow:
		return "status-low"
	case StockOK:
		return "status-ok"
	case StockGood:
		return "status-high"
	default:
		return ""
	}
}

// GradeStock grades stock against a positive threshold.
func GradeStock(stock, threshold float64) StockLevel {
	switch {
	case stock <= threshold:
		return StockLow
	case stock <= threshold*1.5:
		return StockOK
	default:
		return StockGood
	}
}

// ReorderThresholdColumn is the threshold consulted when a stock column has
// no threshold column of its own.
const ReorderThresholdColumn = "reorderThreshold"

// EmptyText is shown for missing values.
const EmptyText = "—"

// DateLayout is the short human date used for date cells.
const DateLayout = "Jan 2, 2006"

// Cell is one formatted table cell. Status is zero unless the cell carries a
// stock badge.
type Cell struct {
	Text   string
	Status StockLevel
	Empty  bool
	Class  string
}

// String returns the cell as plain text, with the badge in front when set.
func (c Cell) String() string {
	if c.Status != 0 {
		return c.Status.String() + " " + c.Text
	}
	return c.Text
}

// FormatCell renders value for display in column. It never fails: values
// that match no recognised shape are shown in their plain string form.
func FormatCell(value any, columnID string, roles Roles, firstRow nlquery.Row) Cell {
	role := roles.Of(columnID)
	cell := Cell{Class: role.Class()}

	if value == nil {
		cell.Empty = true
		cell.Text = EmptyText
		return cell
	}

	if n, ok := format.AsNumber(value); ok {
		cell.Text = format.Number(n)
		if role == RoleStockLevel {
			cell.Status = stockStatus(n, columnID, firstRow)
		}
		return cell
	}

	if t, ok := parseDate(value); ok {
		cell.Text = t.UTC().Format(DateLayout)
		return cell
	}

	if s, ok := value.(string); ok && role == RoleStockLevel {
		if n, ok := format.ParseNumber(s); ok {
			if status := stockStatus(n, columnID, firstRow); status != 0 {
				cell.Text = format.Number(n)
				cell.Status = status
				return cell
			}
		}
	}

	cell.Text = format.String(value)
	return cell
}

// stockStatus grades stock against the threshold found in firstRow, or
// returns 0 when no positive threshold exists.
func stockStatus(stock float64, columnID string, firstRow nlquery.Row) StockLevel {
	threshold, ok := thresholdFor(columnID, firstRow)
	if !ok {
		return 0
	}
	return GradeStock(stock, threshold)
}

func thresholdFor(columnID string, firstRow nlquery.Row) (float64, bool) {
	if candidate, ok := thresholdColumnFor(columnID); ok && candidate != columnID {
		if t, ok := format.Numeric(firstRow[candidate]); ok && t > 0 {
			return t, true
		}
	}
	if t, ok := format.Numeric(firstRow[ReorderThresholdColumn]); ok && t > 0 {
		return t, true
	}
	return 0, false
}
