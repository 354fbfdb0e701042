package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/search"

	pkgneo4j "github.com/honeycarbs/jobboard-client/pkg/neo4j"
)

// Ensure JobRepository can archive listing pages
var _ search.Archive = (*JobRepository)(nil)

// JobRepository archives every job summary the listing has seen as
// (:Job)-[:POSTED_BY]->(:Company).
type JobRepository struct {
	client *pkgneo4j.Client
	clock  func() time.Time
}

// NewJobRepository creates a JobRepository with a Neo4j client
func NewJobRepository(client *pkgneo4j.Client) *JobRepository {
	return &JobRepository{client: client, clock: time.Now}
}

// EnsureSchema creates the uniqueness constraints the upsert relies on
func (r *JobRepository) EnsureSchema(ctx context.Context) error {
	session := r.client.WriteSession(ctx)
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT job_id IF NOT EXISTS FOR (j:Job) REQUIRE j.id IS UNIQUE`,
		`CREATE CONSTRAINT company_key IF NOT EXISTS FOR (c:Company) REQUIRE c.key IS UNIQUE`,
	}
	for _, stmt := range statements {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("neo4j: ensure schema: %w", err)
		}
	}
	return nil
}

// UpsertJobs merges job summaries and their companies
func (r *JobRepository) UpsertJobs(ctx context.Context, jobs []domain.JobSummary) error {
	if len(jobs) == 0 {
		return nil
	}

	session := r.client.WriteSession(ctx)
	defer session.Close(ctx)

	query := `
		UNWIND $jobs AS job
		MERGE (j:Job {id: job.id})
		SET j.title = job.title,
		    j.location = job.location,
		    j.salaryMin = job.salaryMin,
		    j.salaryMax = job.salaryMax,
		    j.currency = job.currency,
		    j.postedAt = CASE WHEN job.postedAt IS NULL THEN null ELSE datetime({epochMillis: job.postedAt}) END,
		    j.applicationCount = job.applicationCount,
		    j.urgent = job.urgent,
		    j.status = job.status,
		    j.seenAt = datetime({epochMillis: job.seenAt})
		WITH j, job
		MERGE (c:Company {key: job.company.key})
		SET c.id = job.company.id,
		    c.name = job.company.name
		MERGE (j)-[:POSTED_BY]->(c)
	`

	params := map[string]any{"jobs": jobParams(jobs, r.clock())}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: upsert jobs: %w", err)
	}
	return nil
}

// FindByIDs loads archived summaries. Unknown ids are skipped.
func (r *JobRepository) FindByIDs(ctx context.Context, ids []domain.JobID) ([]domain.JobSummary, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	session := r.client.ReadSession(ctx)
	defer session.Close(ctx)

	raw := make([]int64, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, int64(id))
	}

	query := `
		MATCH (j:Job)
		WHERE j.id IN $ids
		OPTIONAL MATCH (j)-[:POSTED_BY]->(c:Company)
		RETURN j, c
		ORDER BY j.id
	`

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{"ids": raw})
		if err != nil {
			return nil, err
		}

		jobs := make([]domain.JobSummary, 0, len(ids))
		for result.Next(ctx) {
			record := result.Record()

			jobVal, ok := record.Get("j")
			if !ok {
				continue
			}
			jobNode, ok := jobVal.(neo4j.Node)
			if !ok {
				continue
			}

			var companyProps map[string]any
			if companyVal, ok := record.Get("c"); ok {
				if companyNode, ok := companyVal.(neo4j.Node); ok {
					companyProps = companyNode.Props
				}
			}

			if job, ok := summaryFromProps(jobNode.Props, companyProps); ok {
				jobs = append(jobs, job)
			}
		}
		return jobs, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: find jobs: %w", err)
	}

	return out.([]domain.JobSummary), nil
}

func jobParams(jobs []domain.JobSummary, seenAt time.Time) []map[string]any {
	out := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		var postedAt any
		if !job.PostedAt.IsZero() {
			postedAt = job.PostedAt.UnixMilli()
		}

		out = append(out, map[string]any{
			"id":               int64(job.ID),
			"title":            job.Title,
			"location":         job.Location,
			"salaryMin":        job.SalaryMin,
			"salaryMax":        job.SalaryMax,
			"currency":         job.Currency,
			"postedAt":         postedAt,
			"applicationCount": int64(job.ApplicationCount),
			"urgent":           job.Urgent,
			"status":           string(job.Status),
			"seenAt":           seenAt.UnixMilli(),
			"company": map[string]any{
				"key":  companyKey(job),
				"id":   int64(job.CompanyID),
				"name": job.Company,
			},
		})
	}
	return out
}

// companyKey prefers the backend id; listings without one fall back to the name
func companyKey(job domain.JobSummary) string {
	if job.CompanyID > 0 {
		return "id:" + job.CompanyID.String()
	}
	return "name:" + strings.ToLower(strings.TrimSpace(job.Company))
}

func summaryFromProps(props, company map[string]any) (domain.JobSummary, bool) {
	id, ok := props["id"].(int64)
	if !ok {
		return domain.JobSummary{}, false
	}

	job := domain.JobSummary{
		ID:               domain.JobID(id),
		Title:            stringProp(props, "title"),
		Location:         stringProp(props, "location"),
		SalaryMin:        floatProp(props, "salaryMin"),
		SalaryMax:        floatProp(props, "salaryMax"),
		Currency:         stringProp(props, "currency"),
		ApplicationCount: int(intProp(props, "applicationCount")),
		Status:           domain.JobStatus(stringProp(props, "status")),
	}
	job.Urgent, _ = props["urgent"].(bool)

	switch v := props["postedAt"].(type) {
	case time.Time:
		job.PostedAt = v
	case neo4j.LocalDateTime:
		job.PostedAt = v.Time()
	}

	if company != nil {
		job.Company = stringProp(company, "name")
		job.CompanyID = domain.CompanyID(intProp(company, "id"))
	}
	return job, true
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func floatProp(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func intProp(props map[string]any, key string) int64 {
	switch v := props[key].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}
