package mcp

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobboard-client/internal/application"
	"github.com/honeycarbs/jobboard-client/internal/export"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/internal/mcp/tools"
	"github.com/honeycarbs/jobboard-client/internal/scheduler"
	"github.com/honeycarbs/jobboard-client/internal/search"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
	n4j "github.com/honeycarbs/jobboard-client/pkg/neo4j"
)

type ToolRegistry struct {
	logger *logging.Logger
}

// Resources is the candidate session served by the MCP tools
type Resources struct {
	Search     *search.Controller
	Tracker    *interaction.Tracker
	Readiness  *application.Readiness
	Submitter  *application.Submitter
	CV         *application.CVService
	Dashboard  *export.Builder
	Sheets     *export.SheetsExporter
	Workbook   *export.WorkbookExporter
	Reconciler *scheduler.Reconciler // nil when periodic refresh is disabled
	Neo4j      *n4j.Client           // nil when the archive is disabled
}

// TotalItems is the size of the current listing
func (r *Resources) TotalItems() int {
	return r.Search.Listing().Snapshot().Pagination.TotalItems
}

func (r *Resources) refresher() tools.Refresher {
	if r.Reconciler != nil {
		return r.Reconciler
	}
	return r.Tracker
}

func NewToolRegistry(logger *logging.Logger) *ToolRegistry {
	return &ToolRegistry{logger: logger}
}

// RegisterAll installs every tool and returns their names
func (r *ToolRegistry) RegisterAll(server *sdkmcp.Server, res *Resources) []string {
	names := tools.Register(server, r.logger,
		tools.WithSearchTools(res.Search, res.Tracker),
		tools.WithApplicationTools(res.CV, res.Readiness, res.Submitter),
		tools.WithInteractionTools(res.Tracker, res.refresher(), res.TotalItems),
		tools.WithDashboardTools(res.Dashboard, res.Sheets, res.Workbook, res.TotalItems),
	)

	r.logger.Info("MCP tools registered", "count", len(names), "tools", names)
	return names
}
