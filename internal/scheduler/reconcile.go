// Package scheduler runs the periodic reconciliation of optimistic
// interaction state against the backend.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/honeycarbs/jobboard-client/internal/interaction"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// Refresher reloads interactions from the backend
type Refresher interface {
	RefreshData(ctx context.Context) (interaction.ReconcileReport, error)
}

// Reconciler wraps robfig/cron and refreshes interactions on a fixed interval
type Reconciler struct {
	refresher Refresher
	logger    *logging.Logger
	cron      *cron.Cron
	spec      string
	timeout   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewReconciler creates a Reconciler firing every interval. Each run is
// bounded by timeout (the interval when timeout is zero).
func NewReconciler(refresher Refresher, interval, timeout time.Duration, logger *logging.Logger) (*Reconciler, error) {
	if refresher == nil {
		return nil, fmt.Errorf("scheduler: refresher is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: interval must be positive, got %s", interval)
	}
	if timeout <= 0 {
		timeout = interval
	}

	logger = logging.OrNop(logger).Named("reconcile")
	cl := cronLogger{logger}

	return &Reconciler{
		refresher: refresher,
		logger:    logger,
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		spec:      "@every " + interval.String(),
		timeout:   timeout,
	}, nil
}

// Start registers the job, starts the scheduler and runs one reconciliation
// immediately in the background.
func (r *Reconciler) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)

	if _, err := r.cron.AddFunc(r.spec, func() { r.run(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.cron.Start()
	r.logger.Info("reconciler started", "spec", r.spec)

	go r.run(runCtx)
	return nil
}

// Shutdown stops the scheduler and waits for a running job until ctx expires
func (r *Reconciler) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	select {
	case <-r.cron.Stop().Done():
		r.logger.Info("reconciler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshData reconciles immediately, bounded by the run timeout
func (r *Reconciler) RefreshData(ctx context.Context) (interaction.ReconcileReport, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.refresher.RefreshData(ctx)
}

func (r *Reconciler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	report, err := r.RefreshData(ctx)
	if err != nil {
		r.logger.Warn("reconcile failed", "err", err)
		return
	}
	if len(report.Reverted) > 0 {
		r.logger.Warn("optimistic interactions reverted", "job_ids", report.Reverted)
	}
	r.logger.Debug("reconcile complete",
		"applied", report.Applied,
		"withdrawn", report.Withdrawn,
		"confirmed", len(report.Confirmed),
		"reverted", len(report.Reverted),
	)
}

// cronLogger adapts logging.Logger to cron.Logger
type cronLogger struct {
	log *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

var _ cron.Logger = cronLogger{}
