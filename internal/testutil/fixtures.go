// Package testutil provides test helper utilities for stocklens tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/berth-dev/stocklens/internal/nlquery"
)

// TempProject creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// ProjectWithConfig returns file contents for a project with a stocklens config.
func ProjectWithConfig(baseURL string) map[string]string {
	return map[string]string{
		".stocklens/config.yaml": "api:\n  base_url: " + baseURL + "\n  token: test-token\npolling:\n  max_attempts: 3\n  interval_ms: 1\n",
	}
}

// InventoryColumns is the column set of a typical stock report.
func InventoryColumns() []nlquery.Column {
	return []nlquery.Column{
		{ID: "productName", Label: "Product", Type: "string"},
		{ID: "currentStock", Label: "Current Stock", Type: "number"},
		{ID: "reorderThreshold", Label: "Reorder Threshold", Type: "number"},
		{ID: "lastRestocked", Label: "Last Restocked", Type: "date"},
	}
}

// InventoryRows returns rows for InventoryColumns. Stock levels are chosen so
// that one product is low, one is OK and one is well stocked against a
// threshold of 10.
func InventoryRows() []nlquery.Row {
	return []nlquery.Row{
		{"productName": "Widget", "currentStock": float64(10), "reorderThreshold": float64(10), "lastRestocked": "2024-03-05"},
		{"productName": "gadget", "currentStock": float64(14), "reorderThreshold": float64(10), "lastRestocked": "2024-02-11T09:30:00"},
		{"productName": "Bolt", "currentStock": float64(16), "reorderThreshold": float64(10), "lastRestocked": nil},
	}
}

// SalesChart returns a bar chart with two series over three products.
func SalesChart() nlquery.Chart {
	return nlquery.Chart{
		Type:     "bar",
		Title:    "Sales by product",
		XAxisKey: "name",
		Data: []map[string]any{
			{"name": "Widget", "sales": float64(1200), "returns": float64(30)},
			{"name": "Gadget", "sales": float64(800), "returns": float64(12)},
			{"name": "Bolt", "sales": float64(2500), "returns": float64(3)},
		},
		DataKeys: []nlquery.DataKey{
			{Key: "sales", Name: "Sales", Color: "#10b981"},
			{Key: "returns", Name: "Returns"},
		},
	}
}

// ExecutedResult returns a complete executed result for sessionID.
func ExecutedResult(sessionID string) nlquery.Result {
	return nlquery.Result{
		SessionID: sessionID,
		Status:    nlquery.StatusExecuted,
		Table: nlquery.Table{
			Columns: InventoryColumns(),
			Rows:    InventoryRows(),
		},
		Charts:  []nlquery.Chart{SalesChart()},
		Message: "Query executed successfully",
	}
}

// StatusResult returns a result carrying only a status, as the backend
// reports while a session is still in flight.
func StatusResult(sessionID string, status nlquery.Status) nlquery.Result {
	return nlquery.Result{SessionID: sessionID, Status: status}
}
