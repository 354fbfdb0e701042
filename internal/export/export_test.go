package export_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/export"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
)

type fakeInteractions struct {
	applied, withdrawn, pending []domain.JobID
}

func (f fakeInteractions) Applied() []domain.JobID   { return f.applied }
func (f fakeInteractions) Withdrawn() []domain.JobID { return f.withdrawn }
func (f fakeInteractions) Pending() []domain.JobID   { return f.pending }
func (f fakeInteractions) Counters(total int) interaction.Counters {
	return interaction.Counters{
		Applied:          len(f.applied),
		Withdrawn:        len(f.withdrawn),
		NewOpportunities: max(0, total-len(f.applied)-len(f.withdrawn)),
	}
}

type fakeLookup map[domain.JobID]domain.JobSummary

func (l fakeLookup) Lookup(id domain.JobID) (domain.JobSummary, bool) {
	s, ok := l[id]
	return s, ok
}

type fakeFinder struct {
	jobs  []domain.JobSummary
	err   error
	asked []domain.JobID
}

func (f *fakeFinder) FindByIDs(ctx context.Context, ids []domain.JobID) ([]domain.JobSummary, error) {
	f.asked = append(f.asked, ids...)
	return f.jobs, f.err
}

// ── Builder ───────────────────────────────────────────────────────────────

func TestBuilder_JoinsListingAndArchive(t *testing.T) {
	finder := &fakeFinder{jobs: []domain.JobSummary{{ID: 3, Title: "Archived", Company: "Globex"}}}
	b := export.NewBuilder(
		fakeInteractions{applied: []domain.JobID{1, 3}, withdrawn: []domain.JobID{4}, pending: []domain.JobID{1}},
		fakeLookup{1: {ID: 1, Title: "Cached", Company: "Acme", ApplicationCount: 5}},
		finder,
		nil,
	)

	d, err := b.Build(context.Background(), 10)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(finder.asked) != 2 || finder.asked[0] != 3 || finder.asked[1] != 4 {
		t.Errorf("archive asked for %v, want [3 4]", finder.asked)
	}
	if d.Counters != (interaction.Counters{Applied: 2, Withdrawn: 1, NewOpportunities: 7}) {
		t.Errorf("counters = %+v", d.Counters)
	}

	want := []export.Row{
		{JobID: 1, Title: "Cached", Company: "Acme", ApplicationCount: 5, Status: interaction.StatusApplied, Pending: true},
		{JobID: 3, Title: "Archived", Company: "Globex", Status: interaction.StatusApplied},
		{JobID: 4, Status: interaction.StatusWithdrawn},
	}
	if len(d.Rows) != len(want) {
		t.Fatalf("rows = %+v", d.Rows)
	}
	for i := range want {
		if d.Rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, d.Rows[i], want[i])
		}
	}
}

func TestBuilder_ArchiveFailureDegrades(t *testing.T) {
	b := export.NewBuilder(
		fakeInteractions{applied: []domain.JobID{9}},
		fakeLookup{},
		&fakeFinder{err: errors.New("neo4j down")},
		nil,
	)

	d, err := b.Build(context.Background(), 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.Rows) != 1 || d.Rows[0].JobID != 9 || d.Rows[0].Title != "" {
		t.Errorf("rows = %+v", d.Rows)
	}
}

// ── Writers ───────────────────────────────────────────────────────────────

func sampleDashboard() export.Dashboard {
	return export.Dashboard{
		GeneratedAt: time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC),
		Counters:    interaction.Counters{Applied: 1, Withdrawn: 1, NewOpportunities: 3},
		Rows: []export.Row{
			{JobID: 1, Title: "Go dev", Company: "Acme", Status: interaction.StatusApplied, PostedAt: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)},
			{JobID: 2, Title: "SRE", Company: "Globex", Status: interaction.StatusWithdrawn},
		},
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, sampleDashboard()); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Jobs")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "Job ID" || rows[1][1] != "Go dev" || rows[1][6] != "2026-05-20" || rows[2][4] != "withdrawn" {
		t.Errorf("rows = %v", rows)
	}

	applied, err := f.GetCellValue("Summary", "B2")
	if err != nil || applied != "1" {
		t.Errorf("summary applied = %q, %v", applied, err)
	}
}

func TestWorkbookExporter_Export(t *testing.T) {
	dir := t.TempDir()
	e := export.NewWorkbookExporter(filepath.Join(dir, "out"))

	res, err := e.Export(context.Background(), sampleDashboard(), "../escape")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Destination != filepath.Join(dir, "out", "escape.xlsx") || res.WrittenRows != 2 {
		t.Errorf("result = %+v", res)
	}
	if _, err := os.Stat(res.Destination); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

type fakeTable struct {
	spreadsheetID, tab string
	header             []any
	rows               [][]any
}

func (f *fakeTable) ReplaceTable(ctx context.Context, spreadsheetID, tab string, header []any, rows [][]any) error {
	f.spreadsheetID, f.tab, f.header, f.rows = spreadsheetID, tab, header, rows
	return nil
}

func TestSheetsExporter(t *testing.T) {
	table := &fakeTable{}
	e := export.NewSheetsExporter(table)

	res, err := e.Export(context.Background(), sampleDashboard(), "sheet-1", "")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if table.tab != "Dashboard" || len(table.rows) != 2 || len(table.header) != len(export.Header) {
		t.Errorf("table = %+v", table)
	}
	if res.WrittenRows != 2 || res.Destination != "sheet-1/Dashboard" {
		t.Errorf("result = %+v", res)
	}

	if _, err := export.NewSheetsExporter(nil).Export(context.Background(), sampleDashboard(), "x", ""); err == nil {
		t.Error("unconfigured exporter succeeded")
	}
}
