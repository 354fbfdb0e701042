package tools

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/internal/search"
)

// StatusSource reports the candidate's interaction with each job
type StatusSource interface {
	Status(id domain.JobID) interaction.Status
	Counters(totalItems int) interaction.Counters
}

// Refresher reloads interactions from the backend
type Refresher interface {
	RefreshData(ctx context.Context) (interaction.ReconcileReport, error)
}

// JobView is a listed job with the candidate's interaction status
type JobView struct {
	domain.JobSummary
	Interaction interaction.Status `json:"interaction"`
}

// CompanyView is the active company scope
type CompanyView struct {
	ID   domain.CompanyID `json:"id"`
	Name string           `json:"name,omitempty"`
}

// ListingView is the agent-facing rendering of the job listing
type ListingView struct {
	Location     string               `json:"location"`
	SearchTerm   string               `json:"search,omitempty"`
	JobLocation  string               `json:"job_location,omitempty"`
	Company      *CompanyView         `json:"company,omitempty"`
	Filters      map[string]string    `json:"filters,omitempty"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	TotalItems   int                  `json:"total_items"`
	ItemsPerPage int                  `json:"items_per_page"`
	Jobs         []JobView            `json:"jobs"`
	Counters     interaction.Counters `json:"counters"`
}

func newListingView(location string, snap search.Snapshot, statuses StatusSource) ListingView {
	c := snap.Criteria
	view := ListingView{
		Location:     location,
		SearchTerm:   c.SearchTerm,
		JobLocation:  c.SelectedLocation,
		Filters:      c.Advanced,
		Page:         snap.Pagination.CurrentPage,
		TotalPages:   snap.TotalPages,
		TotalItems:   snap.Pagination.TotalItems,
		ItemsPerPage: snap.Pagination.ItemsPerPage,
		Jobs:         make([]JobView, 0, len(snap.Items)),
		Counters:     statuses.Counters(snap.Pagination.TotalItems),
	}
	if c.Company != nil {
		view.Company = &CompanyView{ID: c.Company.ID, Name: c.Company.Name}
	}
	for _, job := range snap.Items {
		view.Jobs = append(view.Jobs, JobView{JobSummary: job, Interaction: statuses.Status(job.ID)})
	}
	return view
}

func (v ListingView) summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[jobs] %s page %d/%d, %d job(s) total", v.Location, v.Page, max(1, v.TotalPages), v.TotalItems)
	for _, job := range v.Jobs {
		fmt.Fprintf(&b, "\n- #%d %s at %s (%s)", job.ID, job.Title, job.Company, job.Location)
		if job.Interaction != interaction.StatusNone {
			fmt.Fprintf(&b, " [%s]", job.Interaction)
		}
	}
	return b.String()
}

// decodeContent accepts standard or URL-safe base64, padded or not
func decodeContent(field, encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, &domain.ValidationError{Field: field, Msg: "content is required"}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(encoded); err == nil {
			return b, nil
		}
	}
	return nil, &domain.ValidationError{Field: field, Msg: "content is not valid base64"}
}
