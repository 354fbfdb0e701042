// Package application gates and submits a job application: which CV source
// is used, which documents are attached and when submission is allowed.
package application

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// ErrSuperseded is returned by Upload when a later upload, removal or CV
// selection for the same document type overtook it.
var ErrSuperseded = errors.New("application: upload superseded")

// CVState is the CV source of the application
type CVState string

const (
	CVNone     CVState = "no_cv"
	CVExisting CVState = "existing_cv_selected"
	CVUploaded CVState = "new_cv_uploaded"
)

// CoverLetterState tracks the cover letter slot
type CoverLetterState string

const (
	CoverLetterNone     CoverLetterState = "no_cover_letter"
	CoverLetterUploaded CoverLetterState = "cover_letter_uploaded"
)

// State is a consistent view of the readiness machine
type State struct {
	CV          CVState                   `json:"cv_state"`
	CoverLetter CoverLetterState          `json:"cover_letter_state"`
	HasCVOnFile bool                      `json:"has_cv_on_file"`
	CVOnFile    string                    `json:"cv_on_file,omitempty"`
	Uploaded    []domain.UploadedDocument `json:"-"`
	HasValidCV  bool                      `json:"has_valid_cv"`
	CanSubmit   bool                      `json:"can_submit"`
	Missing     []domain.DocumentType     `json:"missing,omitempty"`
}

// Readiness decides whether the candidate may submit. A CV comes either
// from the file on record or from a fresh upload, never both, and a cover
// letter upload is always required.
type Readiness struct {
	policy Policy
	logger *logging.Logger

	mu          sync.Mutex
	hasCVOnFile bool
	cvFileName  string
	useExisting bool
	uploaded    map[domain.DocumentType]domain.UploadedDocument
	// issued counts actions per document type; settled is the ticket of the
	// last action that took effect. An upload lands only if no later action
	// settled first.
	issued  map[domain.DocumentType]uint64
	settled map[domain.DocumentType]uint64
}

// submission is a consistent copy of what a submit attempt sends, with the
// tickets each slot had at that moment.
type submission struct {
	docs    []domain.DocumentRecord
	settled map[domain.DocumentType]uint64
}

// NewReadiness creates an empty machine that validates uploads with policy
func NewReadiness(policy Policy, logger *logging.Logger) *Readiness {
	return &Readiness{
		policy:   policy,
		logger:   logging.OrNop(logger).Named("readiness"),
		uploaded: make(map[domain.DocumentType]domain.UploadedDocument),
		issued:   make(map[domain.DocumentType]uint64),
		settled:  make(map[domain.DocumentType]uint64),
	}
}

// SetCVOnFile records whether the candidate keeps a CV on file
func (r *Readiness) SetCVOnFile(has bool, fileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hasCVOnFile = has
	r.cvFileName = fileName
	if !has {
		r.cvFileName = ""
	}
}

// SelectExistingCV switches the CV source to the file on record, dropping any
// uploaded CV. Without a CV on file the selection holds but does not count.
func (r *Readiness) SelectExistingCV() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settleLocked(domain.DocumentCV)
	if _, ok := r.uploaded[domain.DocumentCV]; ok {
		delete(r.uploaded, domain.DocumentCV)
		r.logger.Debug("uploaded cv removed for existing cv")
	}
	r.useExisting = true
}

// DeselectExistingCV clears the existing CV selection
func (r *Readiness) DeselectExistingCV() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settleLocked(domain.DocumentCV)
	r.useExisting = false
}

// Upload validates a file and stores it in its type slot, replacing any
// previous upload of that type. A CV upload clears the existing CV
// selection. Rejected files leave state untouched.
func (r *Readiness) Upload(docType domain.DocumentType, name string, content []byte) (domain.UploadedDocument, error) {
	if _, err := domain.ParseDocumentType(string(docType)); err != nil {
		return domain.UploadedDocument{}, err
	}

	r.mu.Lock()
	r.issued[docType]++
	ticket := r.issued[docType]
	r.mu.Unlock()

	if err := r.policy.Check(name, content); err != nil {
		r.logger.Debug("upload rejected", "type", docType, "name", name, "err", err)
		return domain.UploadedDocument{}, err
	}

	doc := domain.UploadedDocument{
		Type:     docType,
		Name:     name,
		Uploaded: true,
		Size:     int64(len(content)),
		Content:  slices.Clone(content),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settled[docType] > ticket {
		return domain.UploadedDocument{}, ErrSuperseded
	}
	r.settled[docType] = ticket
	r.uploaded[docType] = doc
	if docType == domain.DocumentCV {
		r.useExisting = false
	}
	return doc, nil
}

// Remove clears the upload for docType. It also cancels an upload of that
// type still being validated.
func (r *Readiness) Remove(docType domain.DocumentType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settleLocked(docType)
	if _, ok := r.uploaded[docType]; !ok {
		return false
	}
	delete(r.uploaded, docType)
	return true
}

// CanSubmit reports whether a CV source and a cover letter are present
func (r *Readiness) CanSubmit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.missingLocked()) == 0
}

// Missing lists the document types still required
func (r *Readiness) Missing() []domain.DocumentType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.missingLocked()
}

// Documents returns the records to attach on submission: the on-file CV
// link when selected, then uploads in type order.
func (r *Readiness) Documents() []domain.DocumentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.documentsLocked()
}

func (r *Readiness) documentsLocked() []domain.DocumentRecord {
	var docs []domain.DocumentRecord
	if r.useExisting && r.hasCVOnFile {
		docs = append(docs, domain.DocumentRecord{
			Type:     domain.DocumentCV,
			FileName: r.cvFileName,
			Source:   domain.SourceExisting,
		})
	}
	for _, t := range []domain.DocumentType{domain.DocumentCV, domain.DocumentCoverLetter} {
		if doc, ok := r.uploaded[t]; ok {
			docs = append(docs, domain.DocumentRecord{
				Type:     t,
				FileName: doc.Name,
				Source:   domain.SourceUpload,
				Content:  doc.Content,
			})
		}
	}
	return docs
}

// State returns the current tagged state
func (r *Readiness) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := State{
		CV:          CVNone,
		CoverLetter: CoverLetterNone,
		HasCVOnFile: r.hasCVOnFile,
		CVOnFile:    r.cvFileName,
		HasValidCV:  r.hasValidCVLocked(),
		Missing:     r.missingLocked(),
	}
	if _, ok := r.uploaded[domain.DocumentCV]; ok {
		s.CV = CVUploaded
	} else if r.useExisting {
		s.CV = CVExisting
	}
	if _, ok := r.uploaded[domain.DocumentCoverLetter]; ok {
		s.CoverLetter = CoverLetterUploaded
	}
	for _, t := range []domain.DocumentType{domain.DocumentCV, domain.DocumentCoverLetter} {
		if doc, ok := r.uploaded[t]; ok {
			doc.Content = nil
			s.Uploaded = append(s.Uploaded, doc)
		}
	}
	s.CanSubmit = len(s.Missing) == 0
	return s
}

// Reset empties the application and cancels uploads still being validated.
// The CV on file is kept.
func (r *Readiness) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settleLocked(domain.DocumentCV)
	r.settleLocked(domain.DocumentCoverLetter)
	r.useExisting = false
	r.uploaded = make(map[domain.DocumentType]domain.UploadedDocument)
}

// prepare returns the documents to submit, or the conflict when the
// application is incomplete, from a single view of the state.
func (r *Readiness) prepare() (submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if missing := r.missingLocked(); len(missing) > 0 {
		return submission{}, &domain.StateConflictError{
			Msg:     fmt.Sprintf("cannot submit, %d document(s) missing", len(missing)),
			Missing: missing,
		}
	}
	return submission{docs: r.documentsLocked(), settled: maps.Clone(r.settled)}, nil
}

// clearSubmitted empties the slots that still hold what sub sent. A slot
// changed after prepare keeps its newer content, and uploads still being
// validated are left to land.
func (r *Readiness) clearSubmitted(sub submission) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settled[domain.DocumentCV] == sub.settled[domain.DocumentCV] {
		delete(r.uploaded, domain.DocumentCV)
		r.useExisting = false
	}
	if r.settled[domain.DocumentCoverLetter] == sub.settled[domain.DocumentCoverLetter] {
		delete(r.uploaded, domain.DocumentCoverLetter)
	}
}

// settleLocked takes a ticket for an action that always takes effect
func (r *Readiness) settleLocked(t domain.DocumentType) {
	r.issued[t]++
	r.settled[t] = r.issued[t]
}

func (r *Readiness) hasValidCVLocked() bool {
	if _, ok := r.uploaded[domain.DocumentCV]; ok {
		return true
	}
	return r.useExisting && r.hasCVOnFile
}

func (r *Readiness) missingLocked() []domain.DocumentType {
	var missing []domain.DocumentType
	if !r.hasValidCVLocked() {
		missing = append(missing, domain.DocumentCV)
	}
	if _, ok := r.uploaded[domain.DocumentCoverLetter]; !ok {
		missing = append(missing, domain.DocumentCoverLetter)
	}
	return missing
}
