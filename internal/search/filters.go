// Package search keeps job search filters, the address bar query and the
// paginated job listing consistent with one another.
package search

import (
	"sync"

	"github.com/honeycarbs/jobboard-client/internal/domain"
)

// DefaultItemsPerPage is used when criteria carry no page size
const DefaultItemsPerPage = 10

// FilterState holds the current filter criteria. Setters only update the
// criteria and report whether anything changed; they never touch the URL or
// trigger fetches.
type FilterState struct {
	mu       sync.RWMutex
	criteria domain.FilterCriteria
}

// NewFilterState creates an empty filter state
func NewFilterState(itemsPerPage int) *FilterState {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &FilterState{criteria: domain.FilterCriteria{ItemsPerPage: itemsPerPage}}
}

// Criteria returns a copy of the current criteria
func (f *FilterState) Criteria() domain.FilterCriteria {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.criteria.Clone()
}

// Replace swaps in criteria wholesale
func (f *FilterState) Replace(c domain.FilterCriteria) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ItemsPerPage <= 0 {
		c.ItemsPerPage = f.criteria.ItemsPerPage
	}
	if f.criteria.Equal(c) {
		return false
	}
	f.criteria = c.Clone()
	return true
}

func (f *FilterState) SetSearchTerm(term string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.criteria.SearchTerm == term {
		return false
	}
	f.criteria.SearchTerm = term
	return true
}

func (f *FilterState) SetSelectedLocation(location string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.criteria.SelectedLocation == location {
		return false
	}
	f.criteria.SelectedLocation = location
	return true
}

// SetCompanyFilter scopes the search to a company. Switching to another
// company drops the previous display name.
func (f *FilterState) SetCompanyFilter(id domain.CompanyID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.criteria.Company != nil && f.criteria.Company.ID == id {
		return false
	}
	f.criteria.Company = &domain.CompanyFilter{ID: id}
	return true
}

// ClearCompanyFilter removes the company scope together with its name
func (f *FilterState) ClearCompanyFilter() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.criteria.Company == nil {
		return false
	}
	f.criteria.Company = nil
	return true
}

// SetCompanyName labels the active company filter. Without one it is a no-op.
func (f *FilterState) SetCompanyName(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.criteria.Company == nil || f.criteria.Company.Name == name {
		return false
	}
	company := *f.criteria.Company
	company.Name = name
	f.criteria.Company = &company
	return true
}

// SetAdvancedFilter sets one advanced filter; an empty value removes it
func (f *FilterState) SetAdvancedFilter(key, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.criteria.Advanced[key]
	switch {
	case value == "" && !ok:
		return false
	case value == "":
		delete(f.criteria.Advanced, key)
		return true
	case ok && current == value:
		return false
	}

	if f.criteria.Advanced == nil {
		f.criteria.Advanced = make(map[string]string)
	}
	f.criteria.Advanced[key] = value
	return true
}

func (f *FilterState) SetItemsPerPage(n int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= 0 || f.criteria.ItemsPerPage == n {
		return false
	}
	f.criteria.ItemsPerPage = n
	return true
}

// ClearAllFilters resets every filter, keeping the page size
func (f *FilterState) ClearAllFilters() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	cleared := domain.FilterCriteria{ItemsPerPage: f.criteria.ItemsPerPage}
	if f.criteria.Equal(cleared) {
		return false
	}
	f.criteria = cleared
	return true
}
