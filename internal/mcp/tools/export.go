package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/export"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// DashboardExportParams defines the arguments for the dashboard_export tool
type DashboardExportParams struct {
	Format        string `json:"format,omitempty" jsonschema:"xlsx (default) or sheets"`
	FileName      string `json:"file_name,omitempty" jsonschema:"Workbook file name for xlsx"`
	SpreadsheetID string `json:"spreadsheet_id,omitempty" jsonschema:"Google Sheets document ID for sheets"`
	Tab           string `json:"tab,omitempty" jsonschema:"Tab name to replace (default Dashboard)"`
}

type dashboardTool struct {
	builder  *export.Builder
	sheets   *export.SheetsExporter
	workbook *export.WorkbookExporter
	total    func() int
	logger   *logging.Logger
}

// WithDashboardTools registers dashboard and dashboard_export
func WithDashboardTools(builder *export.Builder, sheets *export.SheetsExporter, workbook *export.WorkbookExporter, total func() int) Option {
	return func(reg *registry) {
		t := dashboardTool{builder: builder, sheets: sheets, workbook: workbook, total: total, logger: reg.logger}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "dashboard",
			Description: "Show applied and withdrawn jobs with application counters",
		}, t.dashboard)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "dashboard_export",
			Description: "Export the dashboard to an xlsx workbook or a Google Sheets tab",
		}, t.export)

		reg.add("dashboard")
		reg.add("dashboard_export")
	}
}

func (t dashboardTool) dashboard(ctx context.Context, req *sdkmcp.CallToolRequest, params EmptyParams) (*sdkmcp.CallToolResult, any, error) {
	d, err := t.builder.Build(ctx, t.total())
	if err != nil {
		return failure("dashboard", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[dashboard] applied=%d withdrawn=%d new_opportunities=%d",
		d.Counters.Applied, d.Counters.Withdrawn, d.Counters.NewOpportunities)
	for _, row := range d.Rows {
		title := row.Title
		if title == "" {
			title = "(unknown title)"
		}
		fmt.Fprintf(&b, "\n- #%d %s [%s]", row.JobID, title, row.Status)
	}
	return textResult(b.String()), d, nil
}

func (t dashboardTool) export(ctx context.Context, req *sdkmcp.CallToolRequest, params DashboardExportParams) (*sdkmcp.CallToolResult, any, error) {
	d, err := t.builder.Build(ctx, t.total())
	if err != nil {
		return failure("dashboard_export", err)
	}

	var result export.Result
	switch strings.ToLower(params.Format) {
	case "", "xlsx":
		result, err = t.workbook.Export(ctx, d, params.FileName)
	case "sheets":
		if params.SpreadsheetID == "" {
			return failure("dashboard_export", &domain.ValidationError{Field: "spreadsheet_id", Msg: "is required for sheets"})
		}
		result, err = t.sheets.Export(ctx, d, params.SpreadsheetID, params.Tab)
	default:
		return failure("dashboard_export", &domain.ValidationError{Field: "format", Msg: "must be xlsx or sheets"})
	}

	if err != nil {
		t.logger.Error("dashboard_export failed", "format", params.Format, "err", err)
		res := textResult(fmt.Sprintf("[dashboard_export] %v", err))
		res.IsError = true
		return res, result, nil
	}

	t.logger.Info("dashboard exported", "destination", result.Destination, "rows", result.WrittenRows)
	return textResult("[dashboard_export] " + result.Message), result, nil
}
