package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berth-dev/stocklens/internal/nlquery"
	"github.com/berth-dev/stocklens/internal/testutil"
)

func TestClassifyColumns(t *testing.T) {
	columns := []nlquery.Column{
		{ID: "currentStock"},
		{ID: "stockNote"},
		{ID: "reorderThreshold"},
		{ID: "salesVolume"},
		{ID: "orderCount"},
		{ID: "lastRestocked"},
		{ID: "productName"},
	}
	first := nlquery.Row{
		"currentStock":     float64(12),
		"stockNote":        "ok",
		"reorderThreshold": float64(10),
		"salesVolume":      float64(400),
		"orderCount":       float64(3),
		"lastRestocked":    "2024-03-05",
		"productName":      "Widget",
	}

	roles := ClassifyColumns(columns, first)

	assert.Equal(t, RoleStockLevel, roles.Of("currentStock"))
	assert.Equal(t, RoleQuantity, roles.Of("stockNote"), "non-numeric stock column is only a quantity")
	assert.Equal(t, RoleThreshold, roles.Of("reorderThreshold"))
	assert.Equal(t, RoleQuantity, roles.Of("salesVolume"))
	assert.Equal(t, RoleQuantity, roles.Of("orderCount"))
	assert.Equal(t, RoleQuantity, roles.Of("lastRestocked"), "restocked contains stock but the value is not numeric")
	assert.Equal(t, RoleText, roles.Of("productName"))
	assert.Equal(t, RoleText, roles.Of("unknown"))
}

func TestClassifyDateColumn(t *testing.T) {
	roles := ClassifyColumns(
		[]nlquery.Column{{ID: "updatedAt"}, {ID: "note"}},
		nlquery.Row{"updatedAt": "2024-01-31T10:00:00Z", "note": "2024-99-99"},
	)

	assert.Equal(t, RoleDate, roles.Of("updatedAt"))
	assert.Equal(t, RoleText, roles.Of("note"))
}

func TestColumnClass(t *testing.T) {
	assert.Equal(t, NumberCellClass, RoleStockLevel.Class())
	assert.Equal(t, NumberCellClass, RoleThreshold.Class())
	assert.Equal(t, NumberCellClass, RoleQuantity.Class())
	assert.Empty(t, RoleDate.Class())
	assert.Empty(t, RoleText.Class())
}

func TestStockThresholds(t *testing.T) {
	tbl := New(testutil.InventoryColumns(), testutil.InventoryRows())
	stock := nlquery.Column{ID: "currentStock"}

	want := []StockLevel{StockLow, StockOK, StockGood}
	for i, row := range tbl.Rows() {
		cell := tbl.Cell(row, stock)
		assert.Equal(t, want[i], cell.Status, "row %d", i)
		assert.Equal(t, NumberCellClass, cell.Class)
	}

	assert.Equal(t, "Low 10", tbl.Cell(tbl.Rows()[0], stock).String())
	assert.Equal(t, "status-high", StockGood.Class())
}

func TestGradeStock(t *testing.T) {
	assert.Equal(t, StockLow, GradeStock(10, 10))
	assert.Equal(t, StockOK, GradeStock(14, 10))
	assert.Equal(t, StockOK, GradeStock(15, 10))
	assert.Equal(t, StockGood, GradeStock(16, 10))
}

func TestStockUsesMatchingThresholdColumn(t *testing.T) {
	columns := []nlquery.Column{{ID: "stock"}, {ID: "threshold"}, {ID: "reorderThreshold"}}
	rows := []nlquery.Row{{"stock": float64(30), "threshold": float64(25), "reorderThreshold": float64(5)}}
	roles := ClassifyColumns(columns, rows[0])

	cell := FormatCell(rows[0]["stock"], "stock", roles, rows[0])

	assert.Equal(t, StockOK, cell.Status)
}

func TestStockFallsBackToReorderThreshold(t *testing.T) {
	rows := []nlquery.Row{{"stock": float64(30), "threshold": float64(0), "reorderThreshold": float64(5)}}
	roles := ClassifyColumns([]nlquery.Column{{ID: "stock"}}, rows[0])

	cell := FormatCell(rows[0]["stock"], "stock", roles, rows[0])

	assert.Equal(t, StockGood, cell.Status)
}

func TestStockWithoutThresholdIsPlainNumber(t *testing.T) {
	rows := []nlquery.Row{{"stock": float64(1500)}}
	roles := ClassifyColumns([]nlquery.Column{{ID: "stock"}}, rows[0])

	cell := FormatCell(rows[0]["stock"], "stock", roles, rows[0])

	assert.Zero(t, cell.Status)
	assert.Equal(t, "1,500", cell.String())
}

func TestStockNumericStringInStockColumn(t *testing.T) {
	rows := []nlquery.Row{
		{"stock": float64(50), "reorderThreshold": float64(10)},
		{"stock": "8", "reorderThreshold": float64(10)},
	}
	roles := ClassifyColumns([]nlquery.Column{{ID: "stock"}}, rows[0])

	cell := FormatCell(rows[1]["stock"], "stock", roles, rows[0])

	assert.Equal(t, StockLow, cell.Status)
	assert.Equal(t, "8", cell.Text)
}

func TestFormatCell(t *testing.T) {
	roles := Roles{"price": RoleText}
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, EmptyText},
		{"integer", float64(1234567), "1,234,567"},
		{"fraction", 12.3456, "12.346"},
		{"iso date", "2024-03-05", "Mar 5, 2024"},
		{"iso datetime", "2024-02-11T09:30:00", "Feb 11, 2024"},
		{"time value", time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), "Dec 1, 2023"},
		{"invalid date falls through", "2024-13-45", "2024-13-45"},
		{"plain string", "Widget", "Widget"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := FormatCell(tt.value, "price", roles, nil)
			assert.Equal(t, tt.want, cell.Text)
		})
	}

	assert.True(t, FormatCell(nil, "price", roles, nil).Empty)
}

func TestThresholdColumnFor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"stock", "threshold", true},
		{"currentStock", "currentThreshold", true},
		{"STOCK_LEVEL", "THRESHOLD_LEVEL", true},
		{"stock_stock", "threshold_stock", true},
		{"name", "", false},
	}

	for _, tt := range tests {
		got, ok := thresholdColumnFor(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSortToggle(t *testing.T) {
	tbl := New(testutil.InventoryColumns(), testutil.InventoryRows())

	type call struct {
		column string
		dir    SortDirection
	}
	var calls []call
	tbl.OnSort = func(columnID string, dir SortDirection) {
		calls = append(calls, call{columnID, dir})
	}

	col, dir := tbl.SortState()
	assert.Empty(t, col)
	assert.Equal(t, SortAsc, dir)

	tbl.Sort("productName")
	tbl.Sort("productName")
	tbl.Sort("currentStock")

	assert.Equal(t, []call{
		{"productName", SortAsc},
		{"productName", SortDesc},
		{"currentStock", SortAsc},
	}, calls)
}

func TestRowsSortedWithoutMutatingInput(t *testing.T) {
	rows := testutil.InventoryRows()
	tbl := New(testutil.InventoryColumns(), rows)

	tbl.Sort("productName")
	names := func(rs []nlquery.Row) []any {
		out := make([]any, len(rs))
		for i, r := range rs {
			out[i] = r["productName"]
		}
		return out
	}

	assert.Equal(t, []any{"Bolt", "gadget", "Widget"}, names(tbl.Rows()), "case-insensitive")

	tbl.Sort("productName")
	assert.Equal(t, []any{"Widget", "gadget", "Bolt"}, names(tbl.Rows()))

	assert.Equal(t, []any{"Widget", "gadget", "Bolt"}, names(rows), "input order unchanged")
	assert.Equal(t, "Widget", rows[0]["productName"])
}

func TestSortRowsIsStable(t *testing.T) {
	rows := []nlquery.Row{
		{"id": float64(1), "group": "a"},
		{"id": float64(2), "group": "A"},
		{"id": float64(3), "group": "b"},
		{"id": float64(4), "group": nil},
	}

	ids := func(rs []nlquery.Row) []any {
		out := make([]any, len(rs))
		for i, r := range rs {
			out[i] = r["id"]
		}
		return out
	}

	assert.Equal(t, []any{4.0, 1.0, 2.0, 3.0}, ids(SortRows(rows, "group", SortAsc)))
	assert.Equal(t, []any{3.0, 1.0, 2.0, 4.0}, ids(SortRows(rows, "group", SortDesc)))
	assert.Equal(t, []any{1.0, 2.0, 3.0, 4.0}, ids(SortRows(rows, "", SortDesc)))
}

func TestSortRowsNumeric(t *testing.T) {
	rows := []nlquery.Row{{"n": float64(100)}, {"n": float64(9)}, {"n": float64(25)}}

	sorted := SortRows(rows, "n", SortAsc)

	require.Len(t, sorted, 3)
	assert.Equal(t, 9.0, sorted[0]["n"])
	assert.Equal(t, 25.0, sorted[1]["n"])
	assert.Equal(t, 100.0, sorted[2]["n"])
}

func TestEmptyTable(t *testing.T) {
	tbl := New(testutil.InventoryColumns(), nil)

	assert.True(t, tbl.Empty())
	assert.Empty(t, tbl.Rows())
	assert.Equal(t, "Showing 0 items", tbl.Summary())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Showing 1 item", New(nil, []nlquery.Row{{}}).Summary())
	assert.Equal(t, "Showing 3 items", New(nil, testutil.InventoryRows()).Summary())
}
