package domain

import (
	"net/url"
	"sort"
	"strconv"
	"time"
)

// JobID identifies a job posting on the backend
type JobID int64

// CompanyID identifies a company on the backend
type CompanyID int64

func (id JobID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id CompanyID) String() string { return strconv.FormatInt(int64(id), 10) }

// CompanyFilter scopes a search to one company. ID and Name travel together.
type CompanyFilter struct {
	ID   CompanyID
	Name string
}

// FilterCriteria holds every job search filter value
type FilterCriteria struct {
	SearchTerm       string
	SelectedLocation string
	Company          *CompanyFilter // nil means a global search
	Advanced         map[string]string
	ItemsPerPage     int
}

// Clone returns a deep copy
func (c FilterCriteria) Clone() FilterCriteria {
	out := c
	if c.Company != nil {
		company := *c.Company
		out.Company = &company
	}
	if c.Advanced != nil {
		out.Advanced = make(map[string]string, len(c.Advanced))
		for k, v := range c.Advanced {
			out.Advanced[k] = v
		}
	}
	return out
}

// Key renders a canonical form of the criteria; equal criteria produce equal keys
func (c FilterCriteria) Key() string {
	values := url.Values{}
	if c.SearchTerm != "" {
		values.Set("q", c.SearchTerm)
	}
	if c.SelectedLocation != "" {
		values.Set("loc", c.SelectedLocation)
	}
	if c.Company != nil {
		values.Set("cid", c.Company.ID.String())
		values.Set("cname", c.Company.Name)
	}
	keys := make([]string, 0, len(c.Advanced))
	for k := range c.Advanced {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values.Set("a."+k, c.Advanced[k])
	}
	values.Set("n", strconv.Itoa(c.ItemsPerPage))
	return values.Encode()
}

// Equal compares criteria by canonical key
func (c FilterCriteria) Equal(other FilterCriteria) bool {
	return c.Key() == other.Key()
}

// JobStatus is the posting lifecycle state reported by the backend
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusPaused JobStatus = "paused"
	JobStatusClosed JobStatus = "closed"
)

// JobSummary is the list view of a job posting. The client only reads and caches it.
type JobSummary struct {
	ID               JobID     `json:"id"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	CompanyID        CompanyID `json:"company_id,omitempty"`
	Location         string    `json:"location"`
	SalaryMin        float64   `json:"salary_min,omitempty"`
	SalaryMax        float64   `json:"salary_max,omitempty"`
	Currency         string    `json:"currency,omitempty"`
	PostedAt         time.Time `json:"posted_at"`
	ApplicationCount int       `json:"application_count"`
	Urgent           bool      `json:"urgent"`
	Status           JobStatus `json:"status"`
}

// JobPage is one page of a job search
type JobPage struct {
	Items      []JobSummary
	TotalItems int
}

// TopCompany is a sidebar entry of companies hiring the most
type TopCompany struct {
	Name          string `json:"name"`
	JobsAvailable int    `json:"jobs_available"`
}

// InteractionSnapshot is the backend view of a candidate's applied and withdrawn jobs
type InteractionSnapshot struct {
	Applied   []JobID
	Withdrawn []JobID
}

// DocumentType names an application document slot
type DocumentType string

const (
	DocumentCV          DocumentType = "cv"
	DocumentCoverLetter DocumentType = "cover_letter"
)

// ParseDocumentType converts a raw string to a DocumentType
func ParseDocumentType(s string) (DocumentType, error) {
	switch t := DocumentType(s); t {
	case DocumentCV, DocumentCoverLetter:
		return t, nil
	}
	return "", &ValidationError{Field: "type", Msg: "unknown document type " + strconv.Quote(s)}
}

// UploadedDocument is an accepted upload held by an application in progress
type UploadedDocument struct {
	Type     DocumentType
	Name     string
	Uploaded bool
	Size     int64
	Content  []byte
}

// DocumentSource tells the backend whether a document's bytes are included
type DocumentSource string

const (
	SourceExisting DocumentSource = "existing"
	SourceUpload   DocumentSource = "upload"
)

// DocumentRecord links a document to an application
type DocumentRecord struct {
	Type     DocumentType
	FileName string
	Source   DocumentSource
	Content  []byte // empty for SourceExisting
}

// CVInfo describes the CV the candidate keeps on file
type CVInfo struct {
	HasCV      bool
	FileName   string
	UploadDate time.Time
}
