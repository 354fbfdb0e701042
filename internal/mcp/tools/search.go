package tools

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/search"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

const defaultTopCompanies = 5

// JobSearchParams defines the arguments for the job_search tool. Omitted
// fields keep their current value.
type JobSearchParams struct {
	Search       *string           `json:"search,omitempty" jsonschema:"Free-text search term; an empty string clears it"`
	Location     *string           `json:"location,omitempty" jsonschema:"Location filter; an empty string clears it"`
	CompanyID    int64             `json:"company_id,omitempty" jsonschema:"Scope the search to this company"`
	CompanyName  string            `json:"company_name,omitempty" jsonschema:"Display name of the company scope"`
	ClearCompany bool              `json:"clear_company,omitempty" jsonschema:"Remove the company scope"`
	Filters      map[string]string `json:"filters,omitempty" jsonschema:"Advanced filters; an empty value removes one"`
	ItemsPerPage int               `json:"items_per_page,omitempty" jsonschema:"Page size"`
	Reset        bool              `json:"reset,omitempty" jsonschema:"Clear every filter before applying the others"`
}

// JobNavigateParams defines the arguments for the job_navigate tool
type JobNavigateParams struct {
	Location string `json:"location" jsonschema:"Jobs URL or query, e.g. /jobs?search=golang&location=Paris"`
}

// JobPageParams defines the arguments for the job_page tool
type JobPageParams struct {
	Page      int    `json:"page,omitempty" jsonschema:"Page number to show"`
	Direction string `json:"direction,omitempty" jsonschema:"next or prev"`
	Retry     bool   `json:"retry,omitempty" jsonschema:"Refetch the current page after an error"`
}

// JobHistoryParams defines the arguments for the job_history tool
type JobHistoryParams struct {
	Direction string `json:"direction" jsonschema:"back or forward"`
}

// TopCompaniesParams defines the arguments for the top_companies tool
type TopCompaniesParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"How many companies to return (default 5)"`
}

// TopCompaniesResult lists the companies hiring the most
type TopCompaniesResult struct {
	Companies []domain.TopCompany `json:"companies"`
}

type listingTool struct {
	search   *search.Controller
	statuses StatusSource
	logger   *logging.Logger
}

// WithSearchTools registers job_search, job_navigate, job_page, job_history and top_companies
func WithSearchTools(ctrl *search.Controller, statuses StatusSource) Option {
	return func(reg *registry) {
		t := listingTool{search: ctrl, statuses: statuses, logger: reg.logger}

		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_search",
			Description: "Change job search filters and list the first page of matching jobs",
		}, t.jobSearch)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_navigate",
			Description: "Open a jobs URL (deep link) and list the matching jobs",
		}, t.jobNavigate)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_page",
			Description: "Move through the pages of the current job listing",
		}, t.jobPage)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "job_history",
			Description: "Go back or forward through previous searches",
		}, t.jobHistory)
		sdkmcp.AddTool(reg.server, &sdkmcp.Tool{
			Name:        "top_companies",
			Description: "List the companies with the most open jobs",
		}, t.topCompanies)

		reg.add("job_search")
		reg.add("job_navigate")
		reg.add("job_page")
		reg.add("job_history")
		reg.add("top_companies")
	}
}

func (t listingTool) jobSearch(ctx context.Context, req *sdkmcp.CallToolRequest, params JobSearchParams) (*sdkmcp.CallToolResult, any, error) {
	changed := t.search.Update(func(f *search.FilterState) bool {
		return applySearchParams(f, params)
	})
	t.logger.Debug("job_search called", "changed", changed)
	return t.respond(ctx, "job_search")
}

func applySearchParams(f *search.FilterState, p JobSearchParams) bool {
	changed := false
	if p.Reset {
		changed = f.ClearAllFilters() || changed
	}
	if p.Search != nil {
		changed = f.SetSearchTerm(strings.TrimSpace(*p.Search)) || changed
	}
	if p.Location != nil {
		changed = f.SetSelectedLocation(strings.TrimSpace(*p.Location)) || changed
	}
	if p.ClearCompany {
		changed = f.ClearCompanyFilter() || changed
	}
	if p.CompanyID > 0 {
		changed = f.SetCompanyFilter(domain.CompanyID(p.CompanyID)) || changed
		if p.CompanyName != "" {
			changed = f.SetCompanyName(p.CompanyName) || changed
		}
	}
	for k, v := range p.Filters {
		changed = f.SetAdvancedFilter(k, v) || changed
	}
	if p.ItemsPerPage > 0 {
		changed = f.SetItemsPerPage(p.ItemsPerPage) || changed
	}
	return changed
}

func (t listingTool) jobNavigate(ctx context.Context, req *sdkmcp.CallToolRequest, params JobNavigateParams) (*sdkmcp.CallToolResult, any, error) {
	if strings.TrimSpace(params.Location) == "" {
		return failure("job_navigate", &domain.ValidationError{Field: "location", Msg: "is required"})
	}
	t.search.Navigate(params.Location)
	return t.respond(ctx, "job_navigate")
}

func (t listingTool) jobPage(ctx context.Context, req *sdkmcp.CallToolRequest, params JobPageParams) (*sdkmcp.CallToolResult, any, error) {
	listing := t.search.Listing()

	if params.Retry {
		snap, err := listing.Retry(ctx)
		if err != nil {
			return failure("job_page", err)
		}
		return t.render(snap)
	}

	switch strings.ToLower(params.Direction) {
	case "":
		if params.Page != 0 && !listing.GoToPage(params.Page) {
			t.logger.Debug("page change ignored", "page", params.Page)
		}
	case "next":
		listing.NextPage()
	case "prev", "previous":
		listing.PrevPage()
	default:
		return failure("job_page", &domain.ValidationError{Field: "direction", Msg: "must be next or prev"})
	}
	return t.respond(ctx, "job_page")
}

func (t listingTool) jobHistory(ctx context.Context, req *sdkmcp.CallToolRequest, params JobHistoryParams) (*sdkmcp.CallToolResult, any, error) {
	var moved bool
	switch strings.ToLower(params.Direction) {
	case "back":
		moved = t.search.Back()
	case "forward":
		moved = t.search.Forward()
	default:
		return failure("job_history", &domain.ValidationError{Field: "direction", Msg: "must be back or forward"})
	}
	if !moved {
		t.logger.Debug("no history entry", "direction", params.Direction)
	}
	return t.respond(ctx, "job_history")
}

func (t listingTool) topCompanies(ctx context.Context, req *sdkmcp.CallToolRequest, params TopCompaniesParams) (*sdkmcp.CallToolResult, any, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultTopCompanies
	}

	companies, err := t.search.Listing().TopCompanies(ctx, limit)
	if err != nil {
		t.logger.Warn("top_companies failed", "err", err)
		return failure("top_companies", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[top_companies] %d compan(ies)", len(companies))
	for _, c := range companies {
		fmt.Fprintf(&b, "\n- %s: %d job(s)", c.Name, c.JobsAvailable)
	}
	return textResult(b.String()), TopCompaniesResult{Companies: companies}, nil
}

func (t listingTool) respond(ctx context.Context, tool string) (*sdkmcp.CallToolResult, any, error) {
	snap, err := t.search.Listing().Load(ctx)
	if err != nil {
		return failure(tool, err)
	}
	return t.render(snap)
}

func (t listingTool) render(snap search.Snapshot) (*sdkmcp.CallToolResult, any, error) {
	view := newListingView(t.search.Location(), snap, t.statuses)
	return textResult(view.summary()), view, nil
}
