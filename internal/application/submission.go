package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// Backend registers documents and submits applications
type Backend interface {
	AddApplicationDocument(ctx context.Context, jobID domain.JobID, doc domain.DocumentRecord) error
	SubmitApplication(ctx context.Context, jobID domain.JobID) error
}

// Recorder receives confirmed applications
type Recorder interface {
	RecordApplied(id domain.JobID)
}

// CountBumper applies the optimistic application count increment
type CountBumper interface {
	BumpApplicationCount(id domain.JobID) bool
}

// Option configures Submitter
type Option func(*Submitter)

// WithListing bumps application counts on the cached listing after success
func WithListing(l CountBumper) Option {
	return func(s *Submitter) {
		s.listing = l
	}
}

// WithOnClose registers the hook that closes the application view
func WithOnClose(fn func(domain.JobID)) Option {
	return func(s *Submitter) {
		s.onClose = fn
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(s *Submitter) {
		s.logger = logger
	}
}

// Result describes a completed submission
type Result struct {
	AttemptID string       `json:"attempt_id"`
	JobID     domain.JobID `json:"job_id"`
	Documents int          `json:"documents"`
	// Detached is set when Cancel ran while the submission was in flight;
	// the application went through but the view was left alone.
	Detached bool `json:"detached,omitempty"`
}

// Submitter runs the application sequence: link the CV on file, attach
// uploads, submit, then record the application. A failing step stops the
// sequence and leaves the readiness state intact for a retry.
type Submitter struct {
	backend   Backend
	readiness *Readiness
	tracker   Recorder
	listing   CountBumper
	onClose   func(domain.JobID)
	logger    *logging.Logger

	mu         sync.Mutex
	submitting bool
	generation uint64
}

// NewSubmitter builds a Submitter over readiness
func NewSubmitter(backend Backend, readiness *Readiness, tracker Recorder, opts ...Option) (*Submitter, error) {
	if backend == nil || readiness == nil || tracker == nil {
		return nil, fmt.Errorf("application.Submitter: backend, readiness and tracker are required")
	}
	s := &Submitter{
		backend:   backend,
		readiness: readiness,
		tracker:   tracker,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger).Named("submission")
	return s, nil
}

// Submit applies to jobID. It returns *domain.StateConflictError without any
// network call when documents are missing or a submission is running.
func (s *Submitter) Submit(ctx context.Context, jobID domain.JobID) (Result, error) {
	if jobID <= 0 {
		return Result{}, &domain.ValidationError{Field: "job_id", Msg: "must be positive"}
	}
	sub, err := s.readiness.prepare()
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return Result{}, &domain.StateConflictError{Msg: "a submission is already in progress"}
	}
	s.submitting = true
	gen := s.generation
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	res := Result{AttemptID: uuid.NewString(), JobID: jobID}
	log := s.logger.With("attempt_id", res.AttemptID, "job_id", jobID)

	for _, doc := range sub.docs {
		step := "attach " + string(doc.Type)
		if doc.Source == domain.SourceExisting {
			step = "link existing cv"
		}
		if err := s.backend.AddApplicationDocument(ctx, jobID, doc); err != nil {
			log.Warn("submission step failed", "step", step, "err", err)
			return Result{}, fmt.Errorf("application: %s: %w", step, err)
		}
		res.Documents++
	}

	if err := s.backend.SubmitApplication(ctx, jobID); err != nil {
		log.Warn("submission step failed", "step", "submit", "err", err)
		return Result{}, fmt.Errorf("application: submit: %w", err)
	}

	s.tracker.RecordApplied(jobID)
	if s.listing != nil {
		s.listing.BumpApplicationCount(jobID)
	}

	s.mu.Lock()
	res.Detached = s.generation != gen
	s.mu.Unlock()

	if res.Detached {
		log.Info("application submitted after view closed")
		return res, nil
	}

	if s.onClose != nil {
		s.onClose(jobID)
	}
	s.readiness.clearSubmitted(sub)
	log.Info("application submitted", "documents", res.Documents)
	return res, nil
}

// Cancel detaches any in-flight submission from the view: its completion
// still records the application but no longer closes or resets anything.
func (s *Submitter) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
}

// Submitting reports whether a submission is in flight
func (s *Submitter) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}
