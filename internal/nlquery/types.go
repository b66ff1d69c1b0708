// Package nlquery is the client side of the natural-language query lifecycle:
// submitting a question, polling its session and decoding the result.
package nlquery

// Status is the backend's session status. The set is open: only the values
// reported by IsTerminal end polling, anything else means "keep waiting".
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusDrafted   Status = "drafted"
	StatusExecuting Status = "executing"
	StatusReviewing Status = "reviewing"
	StatusExecuted  Status = "executed"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further polling should happen after status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusExecuted, StatusRejected, StatusFailed:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the backend gave an authoritative negative answer.
func (s Status) IsFailure() bool {
	return s == StatusRejected || s == StatusFailed
}

// Query is a free-text question submitted to the backend.
type Query struct {
	Text    string         `json:"query"`
	Context map[string]any `json:"context,omitempty"`
}

// Session is the handle returned when a query is accepted.
type Session struct {
	SessionID string `json:"sessionId"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
}

// Column describes one table column. Type is advisory; formatting is inferred
// from the values and the column id.
type Column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Row maps column id to a scalar value (float64, string, bool or nil once
// decoded from JSON).
type Row map[string]any

// Table is the tabular part of a result.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// DataKey declares one chart series.
type DataKey struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Chart is a backend-declared chart over a list of data points.
type Chart struct {
	Type     string           `json:"type"`
	Title    string           `json:"title"`
	Data     []map[string]any `json:"data"`
	XAxisKey string           `json:"xAxisKey,omitempty"`
	YAxisKey string           `json:"yAxisKey,omitempty"`
	DataKeys []DataKey        `json:"dataKeys,omitempty"`
}

// DefaultCategoryKey is the category field used when a chart declares no xAxisKey.
const DefaultCategoryKey = "name"

// DefaultSeriesColor is the color of the synthetic series used when a chart
// declares no data keys. It matches the first entry of the chart palette.
const DefaultSeriesColor = "#6366f1"

// CategoryKey returns the field that labels each data point.
func (c Chart) CategoryKey() string {
	if c.XAxisKey == "" {
		return DefaultCategoryKey
	}
	return c.XAxisKey
}

// ResolvedDataKeys returns the declared series, or a single synthetic "value"
// series when none are declared.
func (c Chart) ResolvedDataKeys() []DataKey {
	if len(c.DataKeys) == 0 {
		return []DataKey{{Key: "value", Name: "Value", Color: DefaultSeriesColor}}
	}
	return c.DataKeys
}

// Result is the full state of a session as reported by the backend.
type Result struct {
	SessionID     string         `json:"sessionId"`
	Status        Status         `json:"status"`
	ReviewSummary map[string]any `json:"reviewSummary"`
	Table         Table          `json:"table"`
	Charts        []Chart        `json:"charts"`
	Message       string         `json:"message"`
}

// WithRows returns a copy of r whose table rows are replaced by rows.
// r itself is left untouched so holders of the previous result keep a
// consistent view.
func (r Result) WithRows(rows []Row) Result {
	next := r
	next.Table = Table{
		Columns: r.Table.Columns,
		Rows:    rows,
	}
	return next
}

// SessionSummary is one entry of the session history listing. CreatedAt is
// kept as sent since the backend emits timestamps without a zone.
type SessionSummary struct {
	SessionID            string `json:"sessionId"`
	CreatedAt            string `json:"createdAt"`
	Status               Status `json:"status"`
	NaturalLanguageQuery string `json:"naturalLanguageQuery"`
}
