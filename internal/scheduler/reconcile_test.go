package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/internal/scheduler"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshData(ctx context.Context) (interaction.ReconcileReport, error) {
	c.calls.Add(1)
	if c.err != nil {
		return interaction.ReconcileReport{}, c.err
	}
	return interaction.ReconcileReport{Applied: 2, Confirmed: []domain.JobID{1}}, nil
}

func TestNewReconciler_Validation(t *testing.T) {
	if _, err := scheduler.NewReconciler(nil, time.Minute, 0, nil); err == nil {
		t.Error("nil refresher accepted")
	}
	if _, err := scheduler.NewReconciler(&countingRefresher{}, 0, 0, nil); err == nil {
		t.Error("zero interval accepted")
	}
}

func TestReconciler_RefreshData(t *testing.T) {
	ref := &countingRefresher{}
	r, err := scheduler.NewReconciler(ref, time.Hour, time.Second, nil)
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}

	report, err := r.RefreshData(context.Background())
	if err != nil {
		t.Fatalf("RefreshData: %v", err)
	}
	if report.Applied != 2 || len(report.Confirmed) != 1 {
		t.Errorf("report = %+v", report)
	}

	ref.err = errors.New("offline")
	if _, err := r.RefreshData(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := ref.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestReconciler_StartRunsImmediately(t *testing.T) {
	ref := &countingRefresher{}
	r, err := scheduler.NewReconciler(ref, time.Hour, time.Second, nil)
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for ref.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no reconciliation after Start")
		}
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
