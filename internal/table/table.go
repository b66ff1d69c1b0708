package table

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"hermannm.dev/enumnames"

	"github.com/berth-dev/stocklens/internal/format"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// SortDirection orders a sorted column.
type SortDirection uint8

const (
	SortAsc SortDirection = iota + 1
	SortDesc
)

var sortDirectionNames = enumnames.NewMap(map[SortDirection]string{
	SortAsc:  "asc",
	SortDesc: "desc",
})

func (d SortDirection) String() string {
	return sortDirectionNames.GetNameOrFallback(d, "INVALID_SORT_DIRECTION")
}

func (d SortDirection) MarshalJSON() ([]byte, error) {
	return sortDirectionNames.MarshalToNameJSON(d)
}

func (d *SortDirection) UnmarshalJSON(bytes []byte) error {
	return sortDirectionNames.UnmarshalFromNameJSON(bytes, d)
}

// Flip returns the opposite direction.
func (d SortDirection) Flip() SortDirection {
	if d == SortDesc {
		return SortAsc
	}
	return SortDesc
}

// Arrow is the header indicator for d.
func (d SortDirection) Arrow() string {
	if d == SortDesc {
		return "↓"
	}
	return "↑"
}

// NoDataText is rendered instead of a table with no rows.
const NoDataText = "No results to display"

// Table is a result table with a client-side sort. The rows it was created
// with are never reordered; Rows derives the display order on each call.
type Table struct {
	columns []nlquery.Column
	rows    []nlquery.Row
	roles   Roles

	sortColumn string
	sortDir    SortDirection

	// OnSort, if set, is notified after every Sort.
	OnSort func(columnID string, dir SortDirection)
}

// New creates a Table with no sort column and classifies its columns.
func New(columns []nlquery.Column, rows []nlquery.Row) *Table {
	return &Table{
		columns: columns,
		rows:    rows,
		roles:   ClassifyColumns(columns, firstRow(rows)),
		sortDir: SortAsc,
	}
}

// Columns returns the table's columns in declared order.
func (t *Table) Columns() []nlquery.Column {
	return t.columns
}

// Roles returns the column roles.
func (t *Table) Roles() Roles {
	return t.roles
}

// SortState returns the sort column ("" for none) and direction.
func (t *Table) SortState() (string, SortDirection) {
	return t.sortColumn, t.sortDir
}

// Sort selects columnID ascending, or flips the direction when columnID is
// already the sort column.
func (t *Table) Sort(columnID string) {
	if t.sortColumn == columnID {
		t.sortDir = t.sortDir.Flip()
	} else {
		t.sortColumn = columnID
		t.sortDir = SortAsc
	}

	if t.OnSort != nil {
		t.OnSort(t.sortColumn, t.sortDir)
	}
}

// Rows returns the rows in display order.
func (t *Table) Rows() []nlquery.Row {
	return SortRows(t.rows, t.sortColumn, t.sortDir)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Empty reports whether the table should render its no-data state.
func (t *Table) Empty() bool {
	return len(t.rows) == 0
}

// Summary returns the row count line, e.g. "Showing 3 items".
func (t *Table) Summary() string {
	if len(t.rows) == 1 {
		return "Showing 1 item"
	}
	return fmt.Sprintf("Showing %d items", len(t.rows))
}

// Cell formats the value of column in row.
func (t *Table) Cell(row nlquery.Row, column nlquery.Column) Cell {
	return FormatCell(row[column.ID], column.ID, t.roles, firstRow(t.rows))
}

// SortRows returns a stably sorted copy of rows. An empty columnID keeps the
// original order.
func SortRows(rows []nlquery.Row, columnID string, dir SortDirection) []nlquery.Row {
	sorted := slices.Clone(rows)
	if columnID == "" {
		return sorted
	}

	slices.SortStableFunc(sorted, func(a, b nlquery.Row) int {
		c := Compare(a[columnID], b[columnID])
		if dir == SortDesc {
			return -c
		}
		return c
	})
	return sorted
}

// Compare orders two cell values. Two numbers compare numerically; anything
// else compares by case-insensitive string form with nil as "".
func Compare(a, b any) int {
	an, aok := format.AsNumber(a)
	bn, bok := format.AsNumber(b)
	if aok && bok {
		return cmp.Compare(an, bn)
	}
	return strings.Compare(
		strings.ToLower(format.String(a)),
		strings.ToLower(format.String(b)),
	)
}

func firstRow(rows []nlquery.Row) nlquery.Row {
	if len(rows) == 0 {
		return nil
	}
	return rows[0]
}
