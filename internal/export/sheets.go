package export

import (
	"context"
	"fmt"
	"time"
)

// TableWriter replaces the contents of one spreadsheet tab
type TableWriter interface {
	ReplaceTable(ctx context.Context, spreadsheetID, tab string, header []any, rows [][]any) error
}

// SheetsExporter writes the dashboard into a Google Sheets tab
type SheetsExporter struct {
	client TableWriter
}

// NewSheetsExporter creates an exporter. A nil client yields an exporter
// that reports it is not configured.
func NewSheetsExporter(client TableWriter) *SheetsExporter {
	return &SheetsExporter{client: client}
}

// Configured reports whether a Sheets client is available
func (e *SheetsExporter) Configured() bool {
	return e != nil && e.client != nil
}

// Export replaces tab in spreadsheetID with the dashboard rows
func (e *SheetsExporter) Export(ctx context.Context, d Dashboard, spreadsheetID, tab string) (Result, error) {
	if !e.Configured() {
		return Result{Message: "Google Sheets client not configured (GOOGLE_SHEETS_CREDENTIALS_PATH not set)"},
			fmt.Errorf("sheets: client not configured")
	}
	if spreadsheetID == "" {
		return Result{}, fmt.Errorf("sheets: spreadsheet id is required")
	}
	if tab == "" {
		tab = "Dashboard"
	}

	result := Result{Destination: fmt.Sprintf("%s/%s", spreadsheetID, tab)}

	if err := e.client.ReplaceTable(ctx, spreadsheetID, tab, Header, d.Values()); err != nil {
		return result, fmt.Errorf("sheets: export dashboard: %w", err)
	}

	result.WrittenRows = len(d.Rows)
	result.CompletedAt = time.Now().UTC()
	result.Message = fmt.Sprintf("successfully exported %d row(s)", result.WrittenRows)
	return result, nil
}
