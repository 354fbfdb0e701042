package jobboard

import (
	"fmt"
	"net/http"
	"time"
)

// Config defines job board API client settings
type Config struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Timeout    time.Duration
	PageSize   int
}

// Client talks to the job board REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	pageSize   int
}

// SearchParams describe a job search request
type SearchParams struct {
	Search    string
	Location  string
	CompanyID int64 // 0 means unscoped
	Filters   map[string]string
	Page      int
	PageSize  int
}

// SearchResult is one page of jobs plus the total match count
type SearchResult struct {
	Jobs  []Job
	Total int
}

// Job represents a job posting as returned by the API
type Job struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Company           string    `json:"company"`
	CompanyID         int64     `json:"company_id"`
	Location          string    `json:"location"`
	SalaryMin         float64   `json:"salary_min"`
	SalaryMax         float64   `json:"salary_max"`
	Currency          string    `json:"currency"`
	PostedAt          time.Time `json:"posted_at"`
	ApplicationsCount int       `json:"applications_count"`
	Urgent            bool      `json:"is_urgent"`
	Status            string    `json:"status"`
}

// Company is an entry of the top hiring companies list
type Company struct {
	Name          string `json:"name"`
	JobsAvailable int    `json:"jobs_available"`
}

// CVInfo describes the CV stored for the current user
type CVInfo struct {
	HasCV      bool      `json:"has_cv"`
	FileName   string    `json:"file_name"`
	UploadDate time.Time `json:"upload_date"`
}

// Interactions lists the jobs the current user applied to or withdrew from
type Interactions struct {
	Applied   []int64 `json:"applied"`
	Withdrawn []int64 `json:"withdrawn"`
}

// ApplicationDocument attaches a document to an application
type ApplicationDocument struct {
	Type     string `json:"type"`
	FileName string `json:"file_name"`
	Source   string `json:"source"`
	Content  []byte `json:"content,omitempty"` // base64 on the wire
}

type searchResponse struct {
	Items []Job `json:"items"`
	Total int   `json:"total"`
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type submitRequest struct {
	JobID int64 `json:"job_id"`
}

// TransportError means the request never produced an HTTP response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("jobboard: %s: request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response or a success=false envelope
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jobboard: %s: API error (%d): %s", e.Op, e.StatusCode, e.Message)
}
