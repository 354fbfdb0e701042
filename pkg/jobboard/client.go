package jobboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxErrorBody    = 4096
)

// NewClient instantiates a job board API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jobboard: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("jobboard: parse base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		pageSize:   pageSize,
	}, nil
}

// SearchJobs fetches one page of jobs matching params
func (c *Client) SearchJobs(ctx context.Context, params SearchParams) (SearchResult, error) {
	if c == nil {
		return SearchResult{}, fmt.Errorf("jobboard: client is nil")
	}

	u, err := c.endpoint(c.searchQuery(params), "api", "jobs")
	if err != nil {
		return SearchResult{}, err
	}

	var payload searchResponse
	if err := c.do(ctx, "search jobs", http.MethodGet, u, nil, "", &payload); err != nil {
		return SearchResult{}, err
	}

	return SearchResult{Jobs: payload.Items, Total: payload.Total}, nil
}

func (c *Client) searchQuery(params SearchParams) url.Values {
	values := url.Values{}

	// advanced filters go first so the fixed keys below always win
	keys := make([]string, 0, len(params.Filters))
	for k := range params.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := params.Filters[k]; v != "" {
			values.Set(k, v)
		}
	}

	if params.Search != "" {
		values.Set("search", params.Search)
	}
	if params.Location != "" {
		values.Set("location", params.Location)
	}
	if params.CompanyID != 0 {
		values.Set("company", strconv.FormatInt(params.CompanyID, 10))
	}

	page := params.Page
	if page <= 0 {
		page = 1
	}
	size := params.PageSize
	if size <= 0 {
		size = c.pageSize
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(size))

	return values
}

// TopCompanies returns the n companies with the most open jobs
func (c *Client) TopCompanies(ctx context.Context, n int) ([]Company, error) {
	values := url.Values{}
	if n > 0 {
		values.Set("limit", strconv.Itoa(n))
	}

	u, err := c.endpoint(values, "api", "companies", "top")
	if err != nil {
		return nil, err
	}

	var companies []Company
	if err := c.do(ctx, "top companies", http.MethodGet, u, nil, "", &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// SubmitApplication applies the current user to a job
func (c *Client) SubmitApplication(ctx context.Context, jobID int64) error {
	u, err := c.endpoint(nil, "api", "applications")
	if err != nil {
		return err
	}
	return c.postEnvelope(ctx, "submit application", u, submitRequest{JobID: jobID})
}

// AddApplicationDocument links a document to the user's application for jobID
func (c *Client) AddApplicationDocument(ctx context.Context, jobID int64, doc ApplicationDocument) error {
	u, err := c.endpoint(nil, "api", "applications", strconv.FormatInt(jobID, 10), "documents")
	if err != nil {
		return err
	}
	return c.postEnvelope(ctx, "add application document", u, doc)
}

// CVInfo reports whether the user has a CV on file
func (c *Client) CVInfo(ctx context.Context) (CVInfo, error) {
	u, err := c.endpoint(nil, "api", "users", "me", "cv")
	if err != nil {
		return CVInfo{}, err
	}

	var info CVInfo
	if err := c.do(ctx, "cv info", http.MethodGet, u, nil, "", &info); err != nil {
		return CVInfo{}, err
	}
	return info, nil
}

// UploadCV replaces the user's CV on file
func (c *Client) UploadCV(ctx context.Context, fileName string, content []byte) error {
	u, err := c.endpoint(nil, "api", "users", "me", "cv")
	if err != nil {
		return err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return fmt.Errorf("jobboard: build multipart: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("jobboard: build multipart: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("jobboard: build multipart: %w", err)
	}

	var env envelope
	if err := c.do(ctx, "upload cv", http.MethodPost, u, &body, w.FormDataContentType(), &env); err != nil {
		return err
	}
	return envelopeErr("upload cv", env)
}

// DeleteCV removes the user's CV on file
func (c *Client) DeleteCV(ctx context.Context) error {
	u, err := c.endpoint(nil, "api", "users", "me", "cv")
	if err != nil {
		return err
	}
	return c.do(ctx, "delete cv", http.MethodDelete, u, nil, "", nil)
}

// DownloadCV returns the raw bytes of the user's CV on file
func (c *Client) DownloadCV(ctx context.Context) ([]byte, error) {
	u, err := c.endpoint(nil, "api", "users", "me", "cv", "download")
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, "download cv", http.MethodGet, u, nil, "")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "download cv", Err: err}
	}
	return data, nil
}

// Interactions lists the jobs the user applied to and withdrew from
func (c *Client) Interactions(ctx context.Context) (Interactions, error) {
	u, err := c.endpoint(nil, "api", "users", "me", "interactions")
	if err != nil {
		return Interactions{}, err
	}

	var out Interactions
	if err := c.do(ctx, "interactions", http.MethodGet, u, nil, "", &out); err != nil {
		return Interactions{}, err
	}
	return out, nil
}

// ApplyToJob marks jobID as applied for the current user
func (c *Client) ApplyToJob(ctx context.Context, jobID int64) error {
	u, err := c.endpoint(nil, "api", "jobs", strconv.FormatInt(jobID, 10), "apply")
	if err != nil {
		return err
	}
	return c.postEnvelope(ctx, "apply to job", u, nil)
}

// WithdrawApplication withdraws the user's application to jobID
func (c *Client) WithdrawApplication(ctx context.Context, jobID int64) error {
	u, err := c.endpoint(nil, "api", "jobs", strconv.FormatInt(jobID, 10), "withdraw")
	if err != nil {
		return err
	}
	return c.postEnvelope(ctx, "withdraw application", u, nil)
}

func (c *Client) endpoint(values url.Values, segments ...string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("jobboard: parse base url: %w", err)
	}
	u.Path = path.Join(append([]string{u.Path}, segments...)...)
	if len(values) > 0 {
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

func (c *Client) postEnvelope(ctx context.Context, op, u string, payload any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("jobboard: %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	var env envelope
	if err := c.do(ctx, op, http.MethodPost, u, body, contentType, &env); err != nil {
		return err
	}
	return envelopeErr(op, env)
}

func envelopeErr(op string, env envelope) error {
	if env.Success {
		return nil
	}
	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	if msg == "" {
		msg = "request was not successful"
	}
	return &APIError{Op: op, StatusCode: http.StatusOK, Message: msg}
}

func (c *Client) do(ctx context.Context, op, method, u string, body io.Reader, contentType string, out any) error {
	resp, err := c.send(ctx, op, method, u, body, contentType)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: "decode response: " + err.Error()}
	}
	return nil
}

func (c *Client) send(ctx context.Context, op, method, u string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("jobboard: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() {
			_ = resp.Body.Close()
		}()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	return resp, nil
}

// errorMessage prefers the envelope message over the raw body
func errorMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
