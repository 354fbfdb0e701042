package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	jobsSheet    = "Jobs"
)

// WorkbookExporter writes the dashboard as an xlsx file under a directory
type WorkbookExporter struct {
	dir string
}

func NewWorkbookExporter(dir string) *WorkbookExporter {
	if dir == "" {
		dir = "."
	}
	return &WorkbookExporter{dir: dir}
}

// Export saves the dashboard as name (".xlsx" is appended when missing). An
// empty name derives one from the generation time.
func (e *WorkbookExporter) Export(ctx context.Context, d Dashboard, name string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if name == "" {
		name = "dashboard-" + d.GeneratedAt.UTC().Format("20060102-150405")
	}
	name = filepath.Base(filepath.Clean(name))
	if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		name += ".xlsx"
	}
	path := filepath.Join(e.dir, name)

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("workbook: create export dir: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("workbook: create %s: %w", path, err)
	}
	if err := WriteWorkbook(out, d); err != nil {
		_ = out.Close()
		return Result{}, err
	}
	if err := out.Close(); err != nil {
		return Result{}, fmt.Errorf("workbook: close %s: %w", path, err)
	}

	return Result{
		Destination: path,
		WrittenRows: len(d.Rows),
		Message:     fmt.Sprintf("wrote %d row(s) to %s", len(d.Rows), path),
		CompletedAt: time.Now().UTC(),
	}, nil
}

// WriteWorkbook renders d as an xlsx document into w
func WriteWorkbook(w io.Writer, d Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("workbook: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(jobsSheet); err != nil {
		return fmt.Errorf("workbook: add sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("workbook: header style: %w", err)
	}

	if err := writeSummary(f, d, headerStyle); err != nil {
		return err
	}
	if err := writeJobs(f, d, headerStyle); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("workbook: write: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, d Dashboard, headerStyle int) error {
	rows := [][]any{
		{"Generated", d.GeneratedAt.UTC().Format(time.RFC3339)},
		{"Applied", d.Counters.Applied},
		{"Withdrawn", d.Counters.Withdrawn},
		{"New opportunities", d.Counters.NewOpportunities},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("workbook: summary row %d: %w", i+1, err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 22)
	_ = f.SetColWidth(summarySheet, "B", "B", 28)
	return f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(rows)), headerStyle)
}

func writeJobs(f *excelize.File, d Dashboard, headerStyle int) error {
	header := Header
	if err := f.SetSheetRow(jobsSheet, "A1", &header); err != nil {
		return fmt.Errorf("workbook: header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(jobsSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("workbook: header style: %w", err)
	}

	for i, values := range d.Values() {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(jobsSheet, cell, &values); err != nil {
			return fmt.Errorf("workbook: row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(jobsSheet, "B", "C", 30)
	_ = f.SetColWidth(jobsSheet, "D", "D", 20)

	if len(d.Rows) > 0 {
		lastCell, _ := excelize.CoordinatesToCellName(len(Header), len(d.Rows)+1)
		if err := f.AutoFilter(jobsSheet, "A1:"+lastCell, nil); err != nil {
			return fmt.Errorf("workbook: autofilter: %w", err)
		}
	}

	return f.SetPanes(jobsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
