package interaction_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
)

type fakeBackend struct {
	mu        sync.Mutex
	snapshot  domain.InteractionSnapshot
	applyErr  error
	applies   []domain.JobID
	withdraws []domain.JobID
	// onApply runs inside Apply, before the error is returned
	onApply func()
}

func (b *fakeBackend) Interactions(ctx context.Context) (domain.InteractionSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot, nil
}

func (b *fakeBackend) Apply(ctx context.Context, id domain.JobID) error {
	b.mu.Lock()
	b.applies = append(b.applies, id)
	hook, err := b.onApply, b.applyErr
	b.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

func (b *fakeBackend) Withdraw(ctx context.Context, id domain.JobID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.withdraws = append(b.withdraws, id)
	return nil
}

func newTracker(t *testing.T, b *fakeBackend) *interaction.Tracker {
	t.Helper()
	tr, err := interaction.NewTracker(b, nil)
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}
	return tr
}

func TestTracker_ApplyIsIdempotent(t *testing.T) {
	b := &fakeBackend{}
	tr := newTracker(t, b)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := tr.ApplyToJob(ctx, 5); err != nil {
			t.Fatalf("ApplyToJob: %v", err)
		}
	}

	if got := tr.Applied(); !slices.Equal(got, []domain.JobID{5}) {
		t.Errorf("Applied = %v", got)
	}
	if len(b.applies) != 1 {
		t.Errorf("backend applies = %d, want 1", len(b.applies))
	}
}

func TestTracker_ApplyWithdrawApply(t *testing.T) {
	tr := newTracker(t, &fakeBackend{})
	ctx := context.Background()

	steps := []struct {
		name string
		run  func() error
		want interaction.Status
	}{
		{"apply", func() error { return tr.ApplyToJob(ctx, 5) }, interaction.StatusApplied},
		{"withdraw", func() error { return tr.Withdraw(ctx, 5) }, interaction.StatusWithdrawn},
		{"apply again", func() error { return tr.ApplyToJob(ctx, 5) }, interaction.StatusApplied},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if got := tr.Status(5); got != s.want {
			t.Errorf("%s: status = %s, want %s", s.name, got, s.want)
		}
	}

	if slices.Contains(tr.Withdrawn(), 5) {
		t.Error("5 present in both sets")
	}
}

func TestTracker_WithdrawWithoutApplication(t *testing.T) {
	b := &fakeBackend{}
	tr := newTracker(t, b)

	err := tr.Withdraw(context.Background(), 9)
	var conflict *domain.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want StateConflictError", err)
	}
	if len(b.withdraws) != 0 {
		t.Error("backend called for a rejected withdraw")
	}
}

func TestTracker_FailedApplyRollsBack(t *testing.T) {
	b := &fakeBackend{applyErr: &domain.ServerError{Op: "apply", Status: 500, Message: "boom"}}
	tr := newTracker(t, b)

	err := tr.ApplyToJob(context.Background(), 3)
	var se *domain.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want wrapped ServerError", err)
	}
	if got := tr.Status(3); got != interaction.StatusNone {
		t.Errorf("status after failure = %s, want none", got)
	}
	if !slices.Contains(tr.Pending(), 3) {
		t.Error("failed write not marked for reconciliation")
	}
}

func TestTracker_RollbackSkipsNewerMutation(t *testing.T) {
	b := &fakeBackend{applyErr: errors.New("network down")}
	tr := newTracker(t, b)

	// a confirmed submission lands while the optimistic apply is still in flight
	b.onApply = func() { tr.RecordApplied(3) }

	_ = tr.ApplyToJob(context.Background(), 3)
	if got := tr.Status(3); got != interaction.StatusApplied {
		t.Errorf("status = %s, want applied kept by newer mutation", got)
	}
}

func TestTracker_RefreshReportsConfirmedAndReverted(t *testing.T) {
	b := &fakeBackend{}
	tr := newTracker(t, b)
	ctx := context.Background()

	_ = tr.ApplyToJob(ctx, 1)
	_ = tr.ApplyToJob(ctx, 2)

	b.snapshot = domain.InteractionSnapshot{Applied: []domain.JobID{1, 7}, Withdrawn: []domain.JobID{8}}

	report, err := tr.RefreshData(ctx)
	if err != nil {
		t.Fatalf("RefreshData: %v", err)
	}
	if !slices.Equal(report.Confirmed, []domain.JobID{1}) || !slices.Equal(report.Reverted, []domain.JobID{2}) {
		t.Errorf("report = %+v", report)
	}
	if !slices.Equal(tr.Applied(), []domain.JobID{1, 7}) || !slices.Equal(tr.Withdrawn(), []domain.JobID{8}) {
		t.Errorf("after refresh applied=%v withdrawn=%v", tr.Applied(), tr.Withdrawn())
	}
	if len(tr.Pending()) != 0 {
		t.Errorf("pending = %v, want empty", tr.Pending())
	}
}

func TestTracker_RefreshKeepsSetsDisjoint(t *testing.T) {
	b := &fakeBackend{snapshot: domain.InteractionSnapshot{
		Applied:   []domain.JobID{4},
		Withdrawn: []domain.JobID{4, 6},
	}}
	tr := newTracker(t, b)

	if _, err := tr.RefreshData(context.Background()); err != nil {
		t.Fatalf("RefreshData: %v", err)
	}
	if tr.Status(4) != interaction.StatusApplied || tr.Status(6) != interaction.StatusWithdrawn {
		t.Errorf("applied=%v withdrawn=%v", tr.Applied(), tr.Withdrawn())
	}
}

func TestTracker_CountersClampAtZero(t *testing.T) {
	b := &fakeBackend{snapshot: domain.InteractionSnapshot{
		Applied:   []domain.JobID{1, 2, 3},
		Withdrawn: []domain.JobID{4, 5},
	}}
	tr := newTracker(t, b)
	if _, err := tr.RefreshData(context.Background()); err != nil {
		t.Fatalf("RefreshData: %v", err)
	}

	tests := []struct {
		total int
		want  interaction.Counters
	}{
		{10, interaction.Counters{Applied: 3, Withdrawn: 2, NewOpportunities: 5}},
		{4, interaction.Counters{Applied: 3, Withdrawn: 2, NewOpportunities: 0}},
		{0, interaction.Counters{Applied: 3, Withdrawn: 2, NewOpportunities: 0}},
	}
	for _, tt := range tests {
		if got := tr.Counters(tt.total); got != tt.want {
			t.Errorf("Counters(%d) = %+v, want %+v", tt.total, got, tt.want)
		}
	}
}

func TestTracker_RefreshKeepsWriteInFlight(t *testing.T) {
	b := &fakeBackend{}
	tr := newTracker(t, b)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	b.onApply = func() {
		close(started)
		<-release
		// the server records the application once the write lands
		b.mu.Lock()
		b.snapshot = domain.InteractionSnapshot{Applied: []domain.JobID{5}}
		b.mu.Unlock()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- tr.ApplyToJob(ctx, 5) }()
	<-started

	report, err := tr.RefreshData(ctx)
	if err != nil {
		t.Fatalf("RefreshData: %v", err)
	}
	if len(report.Reverted) != 0 || len(report.Confirmed) != 0 {
		t.Errorf("report = %+v, want the in-flight write left unverified", report)
	}
	if got := tr.Status(5); got != interaction.StatusApplied {
		t.Errorf("status during write = %s, want applied", got)
	}
	if !slices.Contains(tr.Pending(), 5) {
		t.Error("in-flight write no longer pending")
	}

	close(release)
	if err := <-errCh; err != nil {
		t.Fatalf("ApplyToJob: %v", err)
	}

	report, err = tr.RefreshData(ctx)
	if err != nil {
		t.Fatalf("RefreshData: %v", err)
	}
	if !slices.Equal(report.Confirmed, []domain.JobID{5}) {
		t.Errorf("second report = %+v, want 5 confirmed", report)
	}
	if tr.Status(5) != interaction.StatusApplied || len(tr.Pending()) != 0 {
		t.Errorf("status = %s pending = %v", tr.Status(5), tr.Pending())
	}
}

func TestTracker_FailedWriteDuringRefreshStaysPending(t *testing.T) {
	b := &fakeBackend{applyErr: errors.New("network down")}
	tr := newTracker(t, b)
	ctx := context.Background()

	// the refresh runs while the write is still out, then the write fails
	b.onApply = func() {
		if _, err := tr.RefreshData(ctx); err != nil {
			t.Errorf("RefreshData: %v", err)
		}
	}
	_ = tr.ApplyToJob(ctx, 3)

	if got := tr.Status(3); got != interaction.StatusNone {
		t.Errorf("status = %s, want rolled back", got)
	}
	if !slices.Contains(tr.Pending(), 3) {
		t.Error("rolled back write not pending")
	}

	b.onApply = nil
	report, err := tr.RefreshData(ctx)
	if err != nil {
		t.Fatalf("RefreshData: %v", err)
	}
	if !slices.Equal(report.Confirmed, []domain.JobID{3}) {
		t.Errorf("report = %+v, want rollback confirmed", report)
	}
}
