// Package table holds the sortable result table and its cell formatter.
package table

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"hermannm.dev/enumnames"

	"github.com/berth-dev/stocklens/internal/format"
	"github.com/berth-dev/stocklens/internal/nlquery"
)

// Role is how a column's values are interpreted, assigned once per table.
type Role uint8

const (
	RoleText Role = iota + 1
	RoleQuantity
	RoleStockLevel
	RoleThreshold
	RoleDate
)

var roleNames = enumnames.NewMap(map[Role]string{
	RoleText:       "text",
	RoleQuantity:   "quantity",
	RoleStockLevel: "stockLevel",
	RoleThreshold:  "threshold",
	RoleDate:       "date",
})

func (r Role) String() string {
	return roleNames.GetNameOrFallback(r, "INVALID_ROLE")
}

func (r Role) MarshalJSON() ([]byte, error) {
	return roleNames.MarshalToNameJSON(r)
}

func (r *Role) UnmarshalJSON(bytes []byte) error {
	return roleNames.UnmarshalFromNameJSON(bytes, r)
}

// NumberCellClass is the layout class of right-aligned numeric columns.
const NumberCellClass = "number-cell"

// Class returns the layout class of columns with this role, or "".
func (r Role) Class() string {
	switch r {
	case RoleQuantity, RoleStockLevel, RoleThreshold:
		return NumberCellClass
	default:
		return ""
	}
}

// Roles maps column id to its role.
type Roles map[string]Role

// Of returns the role of columnID, RoleText when unknown.
func (r Roles) Of(columnID string) Role {
	if role, ok := r[columnID]; ok {
		return role
	}
	return RoleText
}

// ClassifyColumns assigns a role to every column. Roles that depend on the
// values are decided by the first row only.
func ClassifyColumns(columns []nlquery.Column, firstRow nlquery.Row) Roles {
	roles := make(Roles, len(columns))
	for _, col := range columns {
		roles[col.ID] = classify(col.ID, firstRow[col.ID])
	}
	return roles
}

func classify(id string, sample any) Role {
	lower := strings.ToLower(id)

	if strings.Contains(lower, "stock") {
		if _, ok := format.AsNumber(sample); ok {
			return RoleStockLevel
		}
	}
	if strings.Contains(lower, "threshold") {
		return RoleThreshold
	}
	if strings.Contains(lower, "stock") ||
		strings.Contains(lower, "volume") ||
		strings.Contains(lower, "count") {
		return RoleQuantity
	}
	if _, ok := parseDate(sample); ok {
		return RoleDate
	}
	return RoleText
}

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// parseDate accepts a time.Time or a string starting with YYYY-MM-DD that
// parses as a valid date.
func parseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		if !isoDatePrefix.MatchString(x) {
			return time.Time{}, false
		}
		t, err := dateparse.ParseIn(x, time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// thresholdColumnFor returns the id obtained by replacing the first "stock"
// in id with "threshold", keeping its case. ok is false when id has no
// "stock".
func thresholdColumnFor(id string) (string, bool) {
	i := strings.Index(strings.ToLower(id), "stock")
	if i < 0 {
		return "", false
	}

	var repl string
	switch id[i : i+len("stock")] {
	case "Stock":
		repl = "Threshold"
	case "STOCK":
		repl = "THRESHOLD"
	default:
		repl = "threshold"
	}
	return id[:i] + repl + id[i+len("stock"):], true
}
