// Package interaction tracks which jobs the candidate applied to or
// withdrew from. Tracker is the only writer of that state.
package interaction

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// Backend persists interactions remotely
type Backend interface {
	Interactions(ctx context.Context) (domain.InteractionSnapshot, error)
	Apply(ctx context.Context, id domain.JobID) error
	Withdraw(ctx context.Context, id domain.JobID) error
}

// Status is the candidate's relation to a job
type Status string

const (
	StatusNone      Status = "none"
	StatusApplied   Status = "applied"
	StatusWithdrawn Status = "withdrawn"
)

// Counters are the dashboard figures, never negative
type Counters struct {
	Applied          int `json:"applied"`
	Withdrawn        int `json:"withdrawn"`
	NewOpportunities int `json:"new_opportunities"`
}

// ReconcileReport lists optimistic mutations checked by RefreshData.
// Confirmed ones matched the server; Reverted ones were overwritten by it.
type ReconcileReport struct {
	Confirmed []domain.JobID `json:"confirmed,omitempty"`
	Reverted  []domain.JobID `json:"reverted,omitempty"`
	Applied   int            `json:"applied"`
	Withdrawn int            `json:"withdrawn"`
}

type pendingOp struct {
	want Status
	seq  uint64
	// writing is true until the backend write behind this op returns
	writing bool
}

// Tracker holds two disjoint job id sets. Mutations are applied locally
// first and then written to the backend; each stays pending until a
// RefreshData verifies it.
type Tracker struct {
	backend Backend
	logger  *logging.Logger

	mu        sync.Mutex
	applied   map[domain.JobID]struct{}
	withdrawn map[domain.JobID]struct{}
	pending   map[domain.JobID]pendingOp
	seq       uint64
}

// NewTracker creates an empty tracker. Call RefreshData to populate it.
func NewTracker(backend Backend, logger *logging.Logger) (*Tracker, error) {
	if backend == nil {
		return nil, fmt.Errorf("interaction.Tracker: backend is required")
	}
	return &Tracker{
		backend:   backend,
		logger:    logging.OrNop(logger).Named("interaction"),
		applied:   make(map[domain.JobID]struct{}),
		withdrawn: make(map[domain.JobID]struct{}),
		pending:   make(map[domain.JobID]pendingOp),
	}, nil
}

// ApplyToJob marks id as applied and writes it to the backend. Applying to a
// job already applied to is a no-op. On backend failure the local change is
// rolled back unless a newer mutation of id happened meanwhile.
func (t *Tracker) ApplyToJob(ctx context.Context, id domain.JobID) error {
	return t.mutate(ctx, id, StatusApplied, t.backend.Apply)
}

// Withdraw moves id from applied to withdrawn. Only applied jobs can be
// withdrawn.
func (t *Tracker) Withdraw(ctx context.Context, id domain.JobID) error {
	t.mu.Lock()
	status := t.statusLocked(id)
	t.mu.Unlock()

	if status == StatusNone {
		return &domain.StateConflictError{Msg: fmt.Sprintf("job %d has no application to withdraw", id)}
	}
	return t.mutate(ctx, id, StatusWithdrawn, t.backend.Withdraw)
}

func (t *Tracker) mutate(ctx context.Context, id domain.JobID, want Status, write func(context.Context, domain.JobID) error) error {
	t.mu.Lock()
	prev := t.statusLocked(id)
	if prev == want {
		t.mu.Unlock()
		return nil
	}
	t.seq++
	seq := t.seq
	t.setLocked(id, want)
	t.pending[id] = pendingOp{want: want, seq: seq, writing: true}
	t.mu.Unlock()

	t.logger.Debug("interaction changed", "job_id", id, "from", prev, "to", want)

	err := write(ctx, id)

	t.mu.Lock()
	if op, ok := t.pending[id]; ok && op.seq == seq {
		if err != nil {
			t.setLocked(id, prev)
			// keep it pending so the next refresh checks what the server actually did
			t.pending[id] = pendingOp{want: prev, seq: seq}
		} else {
			op.writing = false
			t.pending[id] = op
		}
	}
	t.mu.Unlock()

	if err != nil {
		t.logger.Warn("interaction write failed, rolled back", "job_id", id, "status", want, "err", err)
		return fmt.Errorf("interaction: %s job %d: %w", want, id, err)
	}
	return nil
}

// RecordApplied marks id as applied without a backend write, for
// applications submitted through another endpoint. It stays pending until
// a refresh sees it.
func (t *Tracker) RecordApplied(id domain.JobID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.setLocked(id, StatusApplied)
	t.pending[id] = pendingOp{want: StatusApplied, seq: t.seq}
}

// RefreshData replaces local state with the server snapshot. Only mutations
// whose backend write had finished before the snapshot was requested are
// verified against it; the rest are kept on top and stay pending.
func (t *Tracker) RefreshData(ctx context.Context) (ReconcileReport, error) {
	t.mu.Lock()
	settled := make(map[domain.JobID]uint64, len(t.pending))
	for id, op := range t.pending {
		if !op.writing {
			settled[id] = op.seq
		}
	}
	t.mu.Unlock()

	snap, err := t.backend.Interactions(ctx)
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("interaction: refresh: %w", err)
	}

	applied := make(map[domain.JobID]struct{}, len(snap.Applied))
	withdrawn := make(map[domain.JobID]struct{}, len(snap.Withdrawn))
	for _, id := range snap.Withdrawn {
		withdrawn[id] = struct{}{}
	}
	for _, id := range snap.Applied {
		if _, ok := withdrawn[id]; ok {
			t.logger.Warn("job both applied and withdrawn on server, keeping applied", "job_id", id)
			delete(withdrawn, id)
		}
		applied[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var report ReconcileReport
	newer := make(map[domain.JobID]Status)
	for id, op := range t.pending {
		if seq, ok := settled[id]; !ok || seq != op.seq || op.writing {
			newer[id] = op.want
			continue
		}
		if serverStatus(applied, withdrawn, id) == op.want {
			report.Confirmed = append(report.Confirmed, id)
		} else {
			report.Reverted = append(report.Reverted, id)
			t.logger.Warn("optimistic interaction reverted by server", "job_id", id, "expected", op.want)
		}
		delete(t.pending, id)
	}

	t.applied = applied
	t.withdrawn = withdrawn
	for id, want := range newer {
		t.setLocked(id, want)
	}

	slices.Sort(report.Confirmed)
	slices.Sort(report.Reverted)
	report.Applied = len(t.applied)
	report.Withdrawn = len(t.withdrawn)
	return report, nil
}

// Status returns the current relation to id
func (t *Tracker) Status(id domain.JobID) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked(id)
}

// Applied returns applied job ids in ascending order
func (t *Tracker) Applied() []domain.JobID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedIDs(t.applied)
}

// Withdrawn returns withdrawn job ids in ascending order
func (t *Tracker) Withdrawn() []domain.JobID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return sortedIDs(t.withdrawn)
}

// Pending returns ids whose last mutation has not been verified by a refresh
func (t *Tracker) Pending() []domain.JobID {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]domain.JobID, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Counters derives dashboard figures for a listing of totalItems jobs
func (t *Tracker) Counters(totalItems int) Counters {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, w := len(t.applied), len(t.withdrawn)
	return Counters{
		Applied:          a,
		Withdrawn:        w,
		NewOpportunities: max(0, totalItems-a-w),
	}
}

func (t *Tracker) statusLocked(id domain.JobID) Status {
	if _, ok := t.applied[id]; ok {
		return StatusApplied
	}
	if _, ok := t.withdrawn[id]; ok {
		return StatusWithdrawn
	}
	return StatusNone
}

// setLocked keeps the two sets disjoint
func (t *Tracker) setLocked(id domain.JobID, s Status) {
	delete(t.applied, id)
	delete(t.withdrawn, id)
	switch s {
	case StatusApplied:
		t.applied[id] = struct{}{}
	case StatusWithdrawn:
		t.withdrawn[id] = struct{}{}
	}
}

func serverStatus(applied, withdrawn map[domain.JobID]struct{}, id domain.JobID) Status {
	if _, ok := applied[id]; ok {
		return StatusApplied
	}
	if _, ok := withdrawn[id]; ok {
		return StatusWithdrawn
	}
	return StatusNone
}

func sortedIDs(set map[domain.JobID]struct{}) []domain.JobID {
	ids := make([]domain.JobID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
