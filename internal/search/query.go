package search

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/honeycarbs/jobboard-client/internal/domain"
)

// Query string parameters shared with deep links
const (
	ParamCompany  = "company"
	ParamSearch   = "search"
	ParamLocation = "location"
)

// ParseQuery folds a query string into prev and reports whether anything
// changed. A company id together with search means search is the company's
// display name, not free text. Axes missing from the query are cleared only
// when they held a value. Malformed params count as missing.
func ParseQuery(rawQuery string, prev domain.FilterCriteria) (domain.FilterCriteria, bool) {
	// url.ParseQuery keeps every pair it could decode alongside the error
	values, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))

	next := prev.Clone()
	changed := false

	search := strings.TrimSpace(values.Get(ParamSearch))
	location := strings.TrimSpace(values.Get(ParamLocation))
	companyID, hasCompany := parseCompanyID(values.Get(ParamCompany))

	if hasCompany {
		if next.Company == nil || next.Company.ID != companyID {
			next.Company = &domain.CompanyFilter{ID: companyID}
			changed = true
		}
		if search != "" && next.Company.Name != search {
			next.Company.Name = search
			changed = true
		}
	} else if next.Company != nil {
		next.Company = nil
		changed = true
	}

	switch {
	case search != "" && !hasCompany:
		if next.SearchTerm != search {
			next.SearchTerm = search
			changed = true
		}
	case search == "" && !hasCompany && next.SearchTerm != "":
		next.SearchTerm = ""
		changed = true
	}

	if location != "" {
		if next.SelectedLocation != location {
			next.SelectedLocation = location
			changed = true
		}
	} else if next.SelectedLocation != "" {
		next.SelectedLocation = ""
		changed = true
	}

	if !changed {
		return prev, false
	}
	return next, true
}

// EncodeQuery renders the URL-visible part of c. A company scope is written
// as company=<id>&search=<name>; otherwise search carries the free text.
func EncodeQuery(c domain.FilterCriteria) string {
	parts := make([]string, 0, 3)
	if c.Company != nil {
		parts = append(parts, ParamCompany+"="+url.QueryEscape(c.Company.ID.String()))
		if c.Company.Name != "" {
			parts = append(parts, ParamSearch+"="+url.QueryEscape(c.Company.Name))
		}
	} else if c.SearchTerm != "" {
		parts = append(parts, ParamSearch+"="+url.QueryEscape(c.SearchTerm))
	}
	if c.SelectedLocation != "" {
		parts = append(parts, ParamLocation+"="+url.QueryEscape(c.SelectedLocation))
	}
	return strings.Join(parts, "&")
}

// JobsPath renders the job list location for c
func JobsPath(c domain.FilterCriteria) string {
	if q := EncodeQuery(c); q != "" {
		return "/jobs?" + q
	}
	return "/jobs"
}

// JobPath renders the job detail route
func JobPath(id domain.JobID) string {
	return "/jobs/" + id.String()
}

func parseCompanyID(raw string) (domain.CompanyID, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return domain.CompanyID(n), true
}
