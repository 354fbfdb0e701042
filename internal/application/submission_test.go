package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/honeycarbs/jobboard-client/internal/application"
	"github.com/honeycarbs/jobboard-client/internal/domain"
)

type fakeApplications struct {
	mu        sync.Mutex
	docs      []domain.DocumentRecord
	submitted []domain.JobID
	docErr    error
	submitErr error
	onSubmit  func()
}

func (f *fakeApplications) AddApplicationDocument(ctx context.Context, jobID domain.JobID, doc domain.DocumentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docErr != nil {
		return f.docErr
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeApplications) SubmitApplication(ctx context.Context, jobID domain.JobID) error {
	if f.onSubmit != nil {
		f.onSubmit()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, jobID)
	return nil
}

func (f *fakeApplications) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs) + len(f.submitted)
}

type fakeRecorder struct {
	mu      sync.Mutex
	applied []domain.JobID
}

func (r *fakeRecorder) RecordApplied(id domain.JobID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, id)
}

type fakeListing struct{ bumped []domain.JobID }

func (l *fakeListing) BumpApplicationCount(id domain.JobID) bool {
	l.bumped = append(l.bumped, id)
	return true
}

type submitFixture struct {
	backend   *fakeApplications
	readiness *application.Readiness
	recorder  *fakeRecorder
	listing   *fakeListing
	closed    []domain.JobID
	submitter *application.Submitter
}

func newSubmitFixture(t *testing.T) *submitFixture {
	t.Helper()
	f := &submitFixture{
		backend:   &fakeApplications{},
		readiness: newReadiness(),
		recorder:  &fakeRecorder{},
		listing:   &fakeListing{},
	}
	s, err := application.NewSubmitter(f.backend, f.readiness, f.recorder,
		application.WithListing(f.listing),
		application.WithOnClose(func(id domain.JobID) { f.closed = append(f.closed, id) }),
	)
	if err != nil {
		t.Fatalf("NewSubmitter: %v", err)
	}
	f.submitter = s
	return f
}

func TestSubmit_MissingDocumentsShortCircuits(t *testing.T) {
	f := newSubmitFixture(t)
	mustUpload(t, f.readiness, domain.DocumentCV, "cv.pdf")

	_, err := f.submitter.Submit(context.Background(), 10)

	var conflict *domain.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want StateConflictError", err)
	}
	if len(conflict.Missing) != 1 || conflict.Missing[0] != domain.DocumentCoverLetter {
		t.Errorf("Missing = %v", conflict.Missing)
	}
	if f.backend.calls() != 0 {
		t.Error("network call made while documents were missing")
	}
}

func TestSubmit_ExistingCVPath(t *testing.T) {
	f := newSubmitFixture(t)
	f.readiness.SetCVOnFile(true, "profile.pdf")
	f.readiness.SelectExistingCV()
	mustUpload(t, f.readiness, domain.DocumentCoverLetter, "cl.pdf")

	res, err := f.submitter.Submit(context.Background(), 10)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if res.AttemptID == "" || res.Documents != 2 || res.Detached {
		t.Errorf("result = %+v", res)
	}
	first := f.backend.docs[0]
	if first.Source != domain.SourceExisting || first.FileName != "profile.pdf" || len(first.Content) != 0 {
		t.Errorf("first document = %+v, want existing cv link without bytes", first)
	}
	if len(f.recorder.applied) != 1 || f.recorder.applied[0] != 10 {
		t.Errorf("recorded = %v", f.recorder.applied)
	}
	if len(f.listing.bumped) != 1 || len(f.closed) != 1 {
		t.Errorf("bumped=%v closed=%v", f.listing.bumped, f.closed)
	}
	if f.readiness.CanSubmit() || f.readiness.State().CoverLetter != application.CoverLetterNone {
		t.Error("readiness not reset after success")
	}
}

func TestSubmit_FailureKeepsState(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeApplications)
	}{
		{"document step", func(b *fakeApplications) {
			b.docErr = &domain.NetworkError{Op: "add document", Err: errors.New("offline")}
		}},
		{"submit step", func(b *fakeApplications) {
			b.submitErr = &domain.ServerError{Op: "submit", Status: 500, Message: "boom"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSubmitFixture(t)
			mustUpload(t, f.readiness, domain.DocumentCV, "cv.pdf")
			mustUpload(t, f.readiness, domain.DocumentCoverLetter, "cl.pdf")
			tt.setup(f.backend)

			_, err := f.submitter.Submit(context.Background(), 3)
			if err == nil {
				t.Fatal("expected error")
			}
			if !domain.IsRetryable(err) {
				t.Errorf("error %v not retryable", err)
			}
			if !f.readiness.CanSubmit() || len(f.readiness.State().Uploaded) != 2 {
				t.Error("uploaded documents lost after failure")
			}
			if len(f.recorder.applied) != 0 || len(f.closed) != 0 {
				t.Error("success effects ran after failure")
			}
		})
	}
}

func TestSubmit_RejectsConcurrentSubmission(t *testing.T) {
	f := newSubmitFixture(t)
	mustUpload(t, f.readiness, domain.DocumentCV, "cv.pdf")
	mustUpload(t, f.readiness, domain.DocumentCoverLetter, "cl.pdf")

	entered := make(chan struct{})
	release := make(chan struct{})
	f.backend.onSubmit = func() {
		close(entered)
		<-release
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := f.submitter.Submit(context.Background(), 4)
		errCh <- err
	}()
	<-entered

	_, err := f.submitter.Submit(context.Background(), 4)
	var conflict *domain.StateConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("second submit err = %v, want StateConflictError", err)
	}

	close(release)
	if err := <-errCh; err != nil {
		t.Fatalf("first submit: %v", err)
	}
}

func TestSubmit_CancelDetachesView(t *testing.T) {
	f := newSubmitFixture(t)
	mustUpload(t, f.readiness, domain.DocumentCV, "cv.pdf")
	mustUpload(t, f.readiness, domain.DocumentCoverLetter, "cl.pdf")
	f.backend.onSubmit = f.submitter.Cancel

	res, err := f.submitter.Submit(context.Background(), 8)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Detached {
		t.Error("result not marked detached")
	}
	if len(f.recorder.applied) != 1 {
		t.Error("detached submission not recorded")
	}
	if len(f.closed) != 0 {
		t.Error("onClose ran after cancel")
	}
	if !f.readiness.CanSubmit() {
		t.Error("readiness reset after cancel")
	}
}

func TestSubmit_InvalidJobID(t *testing.T) {
	f := newSubmitFixture(t)
	var ve *domain.ValidationError
	if _, err := f.submitter.Submit(context.Background(), 0); !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestSubmit_KeepsDocumentsChangedWhileSubmitting(t *testing.T) {
	f := newSubmitFixture(t)
	mustUpload(t, f.readiness, domain.DocumentCV, "cv.pdf")
	mustUpload(t, f.readiness, domain.DocumentCoverLetter, "cl.pdf")

	// the next application's cover letter is attached before this one returns
	f.backend.onSubmit = func() {
		mustUpload(t, f.readiness, domain.DocumentCoverLetter, "next.pdf")
	}

	res, err := f.submitter.Submit(context.Background(), 12)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Documents != 2 {
		t.Errorf("documents = %d, want 2", res.Documents)
	}
	if f.backend.docs[1].FileName != "cl.pdf" {
		t.Errorf("sent cover letter = %q, want cl.pdf", f.backend.docs[1].FileName)
	}

	s := f.readiness.State()
	if s.CV != application.CVNone {
		t.Errorf("submitted cv not cleared, state = %+v", s)
	}
	if s.CoverLetter != application.CoverLetterUploaded || len(s.Uploaded) != 1 || s.Uploaded[0].Name != "next.pdf" {
		t.Errorf("uploaded = %+v, want next.pdf kept", s.Uploaded)
	}
}

func TestSubmit_SendsOneConsistentDocumentSet(t *testing.T) {
	f := newSubmitFixture(t)
	mustUpload(t, f.readiness, domain.DocumentCV, "cv.pdf")
	mustUpload(t, f.readiness, domain.DocumentCoverLetter, "cl.pdf")

	// removing the cover letter mid-flight cannot shrink what was already prepared
	f.backend.onSubmit = func() { f.readiness.Remove(domain.DocumentCoverLetter) }

	if _, err := f.submitter.Submit(context.Background(), 13); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	var types []domain.DocumentType
	for _, d := range f.backend.docs {
		types = append(types, d.Type)
	}
	if len(types) != 2 || types[0] != domain.DocumentCV || types[1] != domain.DocumentCoverLetter {
		t.Errorf("sent = %v, want cv and cover letter", types)
	}
	if f.readiness.CanSubmit() {
		t.Error("readiness still complete after submit")
	}
}
