package search

import (
	"strings"
	"sync"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// HistoryNavigator is a Navigator that can also walk back and forward
type HistoryNavigator interface {
	Navigator
	Back() (string, bool)
	Forward() (string, bool)
}

// Controller keeps filters, the address bar and the listing in step. Data
// flows one way per event: a location is parsed into filters, or a filter
// mutation produces a location; the two directions never feed each other.
type Controller struct {
	mu      sync.Mutex
	filters *FilterState
	nav     HistoryNavigator
	listing *Listing
	logger  *logging.Logger
}

// NewController wires filters, navigation and listing together and applies
// the navigator's current location.
func NewController(filters *FilterState, nav HistoryNavigator, listing *Listing, logger *logging.Logger) *Controller {
	c := &Controller{
		filters: filters,
		nav:     nav,
		listing: listing,
		logger:  logging.OrNop(logger).Named("search"),
	}
	c.navigateLocked(nav.Current())
	return c
}

// Navigate applies a location or raw query (deep link, typed URL) to the
// filters and records the resulting location as a new history entry, so
// Back returns to the search that was showing before.
func (c *Controller) Navigate(location string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := c.navigateLocked(location)
	if target := JobsPath(c.filters.Criteria()); c.nav.Push(target) {
		c.logger.Debug("location recorded", "location", target)
	}
	return changed
}

// navigateLocked applies location without touching the navigator. Back and
// Forward replays go through here directly.
func (c *Controller) navigateLocked(location string) bool {
	next, changed := ParseQuery(queryPart(location), c.filters.Criteria())
	if changed {
		c.filters.Replace(next)
		c.logger.Debug("filters updated from location", "location", location)
	}
	c.listing.SetCriteria(c.filters.Criteria())
	return changed
}

// Update runs a filter mutation. When it changes anything, the matching
// location is pushed once and the listing is re-keyed at page 1.
func (c *Controller) Update(mutate func(f *FilterState) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !mutate(c.filters) {
		return false
	}

	criteria := c.filters.Criteria()
	location := JobsPath(criteria)
	if c.nav.Push(location) {
		c.logger.Debug("location pushed", "location", location)
	}
	c.listing.SetCriteria(criteria)
	return true
}

// Back replays the previous location
func (c *Controller) Back() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	location, ok := c.nav.Back()
	if !ok {
		return false
	}
	c.navigateLocked(location)
	return true
}

// Forward replays the next location
func (c *Controller) Forward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	location, ok := c.nav.Forward()
	if !ok {
		return false
	}
	c.navigateLocked(location)
	return true
}

// Criteria returns the current filters
func (c *Controller) Criteria() domain.FilterCriteria {
	return c.filters.Criteria()
}

// Location returns the navigator's current location
func (c *Controller) Location() string {
	return c.nav.Current()
}

// Listing exposes the listing driven by this controller
func (c *Controller) Listing() *Listing {
	return c.listing
}

// queryPart accepts "/jobs?x=y", "?x=y" or "x=y"
func queryPart(location string) string {
	if _, q, ok := strings.Cut(location, "?"); ok {
		return q
	}
	if strings.HasPrefix(location, "/") {
		return ""
	}
	return location
}
