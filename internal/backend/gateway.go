// Package backend adapts the job board REST client to the collaborator
// interfaces of the search, interaction and application packages.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/honeycarbs/jobboard-client/internal/application"
	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/internal/search"
	"github.com/honeycarbs/jobboard-client/pkg/jobboard"
)

// apiClient describes the subset of the job board client used by the gateway
type apiClient interface {
	SearchJobs(ctx context.Context, params jobboard.SearchParams) (jobboard.SearchResult, error)
	TopCompanies(ctx context.Context, n int) ([]jobboard.Company, error)
	SubmitApplication(ctx context.Context, jobID int64) error
	AddApplicationDocument(ctx context.Context, jobID int64, doc jobboard.ApplicationDocument) error
	CVInfo(ctx context.Context) (jobboard.CVInfo, error)
	UploadCV(ctx context.Context, fileName string, content []byte) error
	DeleteCV(ctx context.Context) error
	DownloadCV(ctx context.Context) ([]byte, error)
	Interactions(ctx context.Context) (jobboard.Interactions, error)
	ApplyToJob(ctx context.Context, jobID int64) error
	WithdrawApplication(ctx context.Context, jobID int64) error
}

// Gateway translates between domain types and the REST client, mapping
// transport failures to *domain.NetworkError and API failures to
// *domain.ServerError.
type Gateway struct {
	client apiClient
}

// NewGateway builds a gateway over client
func NewGateway(client apiClient) (*Gateway, error) {
	if client == nil {
		return nil, fmt.Errorf("backend gateway: client is required")
	}
	return &Gateway{client: client}, nil
}

// FetchJobs runs a job search for one page
func (g *Gateway) FetchJobs(ctx context.Context, filters domain.FilterCriteria, page, pageSize int) (domain.JobPage, error) {
	params := jobboard.SearchParams{
		Search:   filters.SearchTerm,
		Location: filters.SelectedLocation,
		Filters:  filters.Advanced,
		Page:     page,
		PageSize: pageSize,
	}
	if filters.Company != nil {
		params.CompanyID = int64(filters.Company.ID)
	}

	res, err := g.client.SearchJobs(ctx, params)
	if err != nil {
		return domain.JobPage{}, translate("fetch jobs", err)
	}

	items := make([]domain.JobSummary, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		items = append(items, toSummary(j))
	}
	return domain.JobPage{Items: items, TotalItems: max(0, res.Total)}, nil
}

// FetchTopCompanies returns the n companies with the most open jobs
func (g *Gateway) FetchTopCompanies(ctx context.Context, n int) ([]domain.TopCompany, error) {
	companies, err := g.client.TopCompanies(ctx, n)
	if err != nil {
		return nil, translate("top companies", err)
	}
	out := make([]domain.TopCompany, 0, len(companies))
	for _, c := range companies {
		out = append(out, domain.TopCompany{Name: c.Name, JobsAvailable: c.JobsAvailable})
	}
	return out, nil
}

// SubmitApplication submits an application for jobID
func (g *Gateway) SubmitApplication(ctx context.Context, jobID domain.JobID) error {
	return translate("submit application", g.client.SubmitApplication(ctx, int64(jobID)))
}

// AddApplicationDocument links or uploads a document for jobID
func (g *Gateway) AddApplicationDocument(ctx context.Context, jobID domain.JobID, doc domain.DocumentRecord) error {
	err := g.client.AddApplicationDocument(ctx, int64(jobID), jobboard.ApplicationDocument{
		Type:     string(doc.Type),
		FileName: doc.FileName,
		Source:   string(doc.Source),
		Content:  doc.Content,
	})
	return translate("add application document", err)
}

// CVInfo returns the CV on file
func (g *Gateway) CVInfo(ctx context.Context) (domain.CVInfo, error) {
	info, err := g.client.CVInfo(ctx)
	if err != nil {
		return domain.CVInfo{}, translate("cv info", err)
	}
	return domain.CVInfo{HasCV: info.HasCV, FileName: info.FileName, UploadDate: info.UploadDate}, nil
}

func (g *Gateway) UploadCV(ctx context.Context, fileName string, content []byte) error {
	return translate("upload cv", g.client.UploadCV(ctx, fileName, content))
}

func (g *Gateway) DeleteCV(ctx context.Context) error {
	return translate("delete cv", g.client.DeleteCV(ctx))
}

func (g *Gateway) DownloadCV(ctx context.Context) ([]byte, error) {
	content, err := g.client.DownloadCV(ctx)
	if err != nil {
		return nil, translate("download cv", err)
	}
	return content, nil
}

// Interactions returns the server's applied and withdrawn sets
func (g *Gateway) Interactions(ctx context.Context) (domain.InteractionSnapshot, error) {
	res, err := g.client.Interactions(ctx)
	if err != nil {
		return domain.InteractionSnapshot{}, translate("interactions", err)
	}
	return domain.InteractionSnapshot{
		Applied:   toJobIDs(res.Applied),
		Withdrawn: toJobIDs(res.Withdrawn),
	}, nil
}

func (g *Gateway) Apply(ctx context.Context, id domain.JobID) error {
	return translate("apply", g.client.ApplyToJob(ctx, int64(id)))
}

func (g *Gateway) Withdraw(ctx context.Context, id domain.JobID) error {
	return translate("withdraw", g.client.WithdrawApplication(ctx, int64(id)))
}

var (
	_ search.Fetcher        = (*Gateway)(nil)
	_ interaction.Backend   = (*Gateway)(nil)
	_ application.Backend   = (*Gateway)(nil)
	_ application.FileStore = (*Gateway)(nil)
	_ apiClient             = (*jobboard.Client)(nil)
)

// translate maps client errors onto the domain taxonomy
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *jobboard.APIError
	if errors.As(err, &apiErr) {
		return &domain.ServerError{Op: op, Status: apiErr.StatusCode, Message: apiErr.Message}
	}

	var transportErr *jobboard.TransportError
	if errors.As(err, &transportErr) {
		return &domain.NetworkError{Op: op, Err: transportErr.Err}
	}

	if domain.Classify(err) == domain.KindNetwork {
		return &domain.NetworkError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toSummary(j jobboard.Job) domain.JobSummary {
	status := domain.JobStatus(j.Status)
	switch status {
	case domain.JobStatusActive, domain.JobStatusPaused, domain.JobStatusClosed:
	default:
		status = domain.JobStatusActive
	}
	return domain.JobSummary{
		ID:               domain.JobID(j.ID),
		Title:            j.Title,
		Company:          j.Company,
		CompanyID:        domain.CompanyID(j.CompanyID),
		Location:         j.Location,
		SalaryMin:        j.SalaryMin,
		SalaryMax:        j.SalaryMax,
		Currency:         j.Currency,
		PostedAt:         j.PostedAt,
		ApplicationCount: j.ApplicationsCount,
		Urgent:           j.Urgent,
		Status:           status,
	}
}

func toJobIDs(ids []int64) []domain.JobID {
	out := make([]domain.JobID, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.JobID(id))
	}
	return out
}
