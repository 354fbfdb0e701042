// Package export renders the candidate dashboard (applied and withdrawn jobs
// plus counters) and writes it to Google Sheets or an xlsx workbook.
package export

import (
	"context"
	"time"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// Header names the dashboard columns in Values order
var Header = []any{"Job ID", "Title", "Company", "Location", "Status", "Applications", "Posted", "Pending"}

// Row is one job the candidate interacted with
type Row struct {
	JobID            domain.JobID       `json:"job_id"`
	Title            string             `json:"title,omitempty"`
	Company          string             `json:"company,omitempty"`
	Location         string             `json:"location,omitempty"`
	Status           interaction.Status `json:"status"`
	ApplicationCount int                `json:"application_count"`
	PostedAt         time.Time          `json:"posted_at,omitzero"`
	Pending          bool               `json:"pending,omitempty"`
}

// Dashboard is the exported view
type Dashboard struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Counters    interaction.Counters `json:"counters"`
	Rows        []Row                `json:"rows"`
}

// Values renders rows as spreadsheet cells without the header
func (d Dashboard) Values() [][]any {
	values := make([][]any, 0, len(d.Rows))
	for _, r := range d.Rows {
		posted := ""
		if !r.PostedAt.IsZero() {
			posted = r.PostedAt.UTC().Format(time.DateOnly)
		}
		values = append(values, []any{
			int64(r.JobID),
			r.Title,
			r.Company,
			r.Location,
			string(r.Status),
			r.ApplicationCount,
			posted,
			r.Pending,
		})
	}
	return values
}

// InteractionSource exposes the tracked sets
type InteractionSource interface {
	Applied() []domain.JobID
	Withdrawn() []domain.JobID
	Pending() []domain.JobID
	Counters(totalItems int) interaction.Counters
}

// SummaryLookup finds summaries on the cached listing page
type SummaryLookup interface {
	Lookup(id domain.JobID) (domain.JobSummary, bool)
}

// SummaryFinder loads archived summaries
type SummaryFinder interface {
	FindByIDs(ctx context.Context, ids []domain.JobID) ([]domain.JobSummary, error)
}

// Builder joins interaction sets with whatever job details are known
type Builder struct {
	interactions InteractionSource
	listing      SummaryLookup
	archive      SummaryFinder
	logger       *logging.Logger
	clock        func() time.Time
}

// NewBuilder creates a Builder. archive may be nil.
func NewBuilder(interactions InteractionSource, listing SummaryLookup, archive SummaryFinder, logger *logging.Logger) *Builder {
	return &Builder{
		interactions: interactions,
		listing:      listing,
		archive:      archive,
		logger:       logging.OrNop(logger).Named("export"),
		clock:        time.Now,
	}
}

// Build assembles the dashboard. totalItems is the size of the current
// listing, used for the new opportunities counter.
func (b *Builder) Build(ctx context.Context, totalItems int) (Dashboard, error) {
	applied := b.interactions.Applied()
	withdrawn := b.interactions.Withdrawn()

	pending := make(map[domain.JobID]bool)
	for _, id := range b.interactions.Pending() {
		pending[id] = true
	}

	known := make(map[domain.JobID]domain.JobSummary, len(applied)+len(withdrawn))
	var missing []domain.JobID
	for _, ids := range [][]domain.JobID{applied, withdrawn} {
		for _, id := range ids {
			if b.listing != nil {
				if s, ok := b.listing.Lookup(id); ok {
					known[id] = s
					continue
				}
			}
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 && b.archive != nil {
		found, err := b.archive.FindByIDs(ctx, missing)
		if err != nil {
			if ctx.Err() != nil {
				return Dashboard{}, ctx.Err()
			}
			b.logger.Warn("archive lookup failed, exporting ids only", "count", len(missing), "err", err)
		}
		for _, s := range found {
			known[s.ID] = s
		}
	}

	d := Dashboard{
		GeneratedAt: b.clock().UTC(),
		Counters:    b.interactions.Counters(totalItems),
		Rows:        make([]Row, 0, len(applied)+len(withdrawn)),
	}
	add := func(ids []domain.JobID, status interaction.Status) {
		for _, id := range ids {
			row := Row{JobID: id, Status: status, Pending: pending[id]}
			if s, ok := known[id]; ok {
				row.Title = s.Title
				row.Company = s.Company
				row.Location = s.Location
				row.ApplicationCount = s.ApplicationCount
				row.PostedAt = s.PostedAt
			}
			d.Rows = append(d.Rows, row)
		}
	}
	add(applied, interaction.StatusApplied)
	add(withdrawn, interaction.StatusWithdrawn)

	return d, nil
}

// Result describes a finished export
type Result struct {
	Destination string    `json:"destination"`
	WrittenRows int       `json:"written_rows"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completed_at"`
}
