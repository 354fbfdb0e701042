package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/pkg/logging"
)

// ErrSuperseded is returned by Load when the criteria or page changed while
// the fetch was in flight; its result was discarded.
var ErrSuperseded = errors.New("search: request superseded")

// Fetcher is the job search collaborator
type Fetcher interface {
	FetchJobs(ctx context.Context, filters domain.FilterCriteria, page, pageSize int) (domain.JobPage, error)
	FetchTopCompanies(ctx context.Context, n int) ([]domain.TopCompany, error)
}

// Archive receives every successfully fetched page
type Archive interface {
	UpsertJobs(ctx context.Context, jobs []domain.JobSummary) error
}

// Option configures Listing
type Option func(*listingConfig)

type listingConfig struct {
	archive Archive
	logger  *logging.Logger
	ttl     time.Duration
	clock   func() time.Time
}

// WithArchive mirrors fetched pages into archive
func WithArchive(archive Archive) Option {
	return func(c *listingConfig) {
		c.archive = archive
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *listingConfig) {
		c.logger = logger
	}
}

// WithTTL bounds how long a completed fetch counts as a cache hit. Zero keeps
// results until criteria, page or Retry invalidate them.
func WithTTL(ttl time.Duration) Option {
	return func(c *listingConfig) {
		c.ttl = ttl
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *listingConfig) {
		c.clock = clock
	}
}

// Snapshot is a consistent view of the listing
type Snapshot struct {
	Criteria   domain.FilterCriteria
	Items      []domain.JobSummary
	Pagination domain.Pagination
	TotalPages int
	Loading    bool
	Err        error
	ErrorKind  domain.ErrorKind
	Message    string
	Recovery   domain.Recovery
}

type entry struct {
	key       string
	items     []domain.JobSummary
	total     int
	fetchedAt time.Time
	valid     bool
}

// Listing is the paginated, filter-keyed job list. Only the result of a
// request whose key is still current is ever applied.
type Listing struct {
	fetcher Fetcher
	archive Archive
	logger  *logging.Logger
	ttl     time.Duration
	clock   func() time.Time
	group   singleflight.Group

	mu       sync.Mutex
	criteria domain.FilterCriteria
	page     domain.Pagination
	result   *entry
	inflight map[string]int
	err      error
	errKey   string
	closed   bool
}

// NewListing builds a Listing starting at page 1 of criteria
func NewListing(fetcher Fetcher, criteria domain.FilterCriteria, opts ...Option) (*Listing, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("search.Listing: fetcher is required")
	}

	cfg := &listingConfig{clock: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	if criteria.ItemsPerPage <= 0 {
		criteria.ItemsPerPage = DefaultItemsPerPage
	}

	return &Listing{
		fetcher:  fetcher,
		archive:  cfg.archive,
		logger:   logging.OrNop(cfg.logger).Named("listing"),
		ttl:      cfg.ttl,
		clock:    cfg.clock,
		criteria: criteria.Clone(),
		page:     domain.Pagination{CurrentPage: 1, ItemsPerPage: criteria.ItemsPerPage},
		inflight: make(map[string]int),
	}, nil
}

// SetCriteria switches to new criteria and resets to page 1. It reports
// false when criteria are unchanged.
func (l *Listing) SetCriteria(c domain.FilterCriteria) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c.ItemsPerPage <= 0 {
		c.ItemsPerPage = l.criteria.ItemsPerPage
	}
	if l.criteria.Equal(c) {
		return false
	}

	l.criteria = c.Clone()
	l.page = domain.Pagination{CurrentPage: 1, ItemsPerPage: c.ItemsPerPage}
	return true
}

// GoToPage selects page n. Pages outside [1, totalPages] are ignored.
func (l *Listing) GoToPage(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.goToPageLocked(n)
}

func (l *Listing) NextPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.goToPageLocked(l.page.CurrentPage + 1)
}

func (l *Listing) PrevPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.goToPageLocked(l.page.CurrentPage - 1)
}

func (l *Listing) goToPageLocked(n int) bool {
	if n == l.page.CurrentPage || !l.page.Valid(n) {
		return false
	}
	l.page.CurrentPage = n
	return true
}

// Load returns the listing for the current key, fetching only on a cache
// miss. Concurrent loads of one key share a single network call.
func (l *Listing) Load(ctx context.Context) (Snapshot, error) {
	return l.load(ctx, true)
}

// load fetches the current key. When the result set shrank under the
// current page, the page is clamped and, if refetch allows, the clamped
// page is loaded once so its items are never reported empty.
func (l *Listing) load(ctx context.Context, refetch bool) (Snapshot, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return Snapshot{}, domain.ErrSessionClosed
	}

	key := l.keyLocked()
	if l.hitLocked(key) {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		l.logger.Debug("cache hit", "key", key)
		return snap, nil
	}

	criteria := l.criteria.Clone()
	page, size := l.page.CurrentPage, l.page.ItemsPerPage
	l.inflight[key]++
	l.mu.Unlock()

	l.logger.Debug("fetching jobs", "key", key, "page", page)

	v, err, _ := l.group.Do(key, func() (any, error) {
		result, err := l.fetcher.FetchJobs(ctx, criteria, page, size)
		if err != nil {
			return nil, err
		}
		l.archiveJobs(ctx, result.Items)
		return result, nil
	})

	l.mu.Lock()
	l.inflight[key]--
	if l.inflight[key] <= 0 {
		delete(l.inflight, key)
	}

	if l.closed {
		l.mu.Unlock()
		return Snapshot{}, domain.ErrSessionClosed
	}

	if current := l.keyLocked(); current != key {
		snap := l.snapshotLocked()
		l.mu.Unlock()
		l.logger.Debug("discarding stale result", "key", key, "current", current)
		return snap, ErrSuperseded
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			snap := l.snapshotLocked()
			l.mu.Unlock()
			return snap, err
		}
		l.err = err
		l.errKey = key
		snap := l.snapshotLocked()
		l.mu.Unlock()
		l.logger.Warn("job fetch failed", "key", key, "kind", domain.Classify(err), "err", err)
		return snap, err
	}

	result := v.(domain.JobPage)
	items := make([]domain.JobSummary, len(result.Items))
	copy(items, result.Items)

	l.result = &entry{key: key, items: items, total: result.TotalItems, fetchedAt: l.clock(), valid: true}
	l.err = nil
	l.errKey = ""
	l.page.TotalItems = max(0, result.TotalItems)

	// the result set may have shrunk under the current page
	if clamped := l.page.Clamp(); clamped.CurrentPage != l.page.CurrentPage {
		l.logger.Debug("page out of range, clamping", "page", l.page.CurrentPage, "last", clamped.CurrentPage)
		l.page = clamped
		if refetch {
			l.mu.Unlock()
			return l.load(ctx, false)
		}
	}

	snap := l.snapshotLocked()
	l.mu.Unlock()

	return snap, nil
}

// archiveJobs is best effort; failures never reach the caller
func (l *Listing) archiveJobs(ctx context.Context, items []domain.JobSummary) {
	if l.archive == nil || len(items) == 0 {
		return
	}
	if err := l.archive.UpsertJobs(ctx, items); err != nil {
		l.logger.Warn("archive jobs failed", "count", len(items), "err", err)
	}
}

// Retry drops the cached result for the current key and loads again
func (l *Listing) Retry(ctx context.Context) (Snapshot, error) {
	l.mu.Lock()
	if l.result != nil && l.result.key == l.keyLocked() {
		l.result.valid = false
	}
	l.err = nil
	l.errKey = ""
	l.mu.Unlock()

	return l.Load(ctx)
}

// Snapshot returns the current view without fetching
func (l *Listing) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Lookup returns the cached summary for id when it is on the current page
func (l *Listing) Lookup(id domain.JobID) (domain.JobSummary, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.result == nil {
		return domain.JobSummary{}, false
	}
	for _, item := range l.result.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.JobSummary{}, false
}

// BumpApplicationCount optimistically counts a new application on a cached
// job. It is the only local mutation of backend job data.
func (l *Listing) BumpApplicationCount(id domain.JobID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.result == nil {
		return false
	}
	for i := range l.result.items {
		if l.result.items[i].ID == id {
			l.result.items[i].ApplicationCount++
			return true
		}
	}
	return false
}

// TopCompanies returns the n companies with the most open jobs
func (l *Listing) TopCompanies(ctx context.Context, n int) ([]domain.TopCompany, error) {
	companies, err := l.fetcher.FetchTopCompanies(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("search: top companies: %w", err)
	}
	return companies, nil
}

// Close stops any in-flight load from touching state
func (l *Listing) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

func (l *Listing) keyLocked() string {
	return fmt.Sprintf("%s|page=%d|size=%d", l.criteria.Key(), l.page.CurrentPage, l.page.ItemsPerPage)
}

func (l *Listing) hitLocked(key string) bool {
	if l.result == nil || l.result.key != key || !l.result.valid {
		return false
	}
	if l.ttl > 0 && l.clock().Sub(l.result.fetchedAt) >= l.ttl {
		return false
	}
	return true
}

func (l *Listing) snapshotLocked() Snapshot {
	key := l.keyLocked()
	snap := Snapshot{
		Criteria:   l.criteria.Clone(),
		Pagination: l.page,
		TotalPages: l.page.TotalPages(),
		Loading:    l.inflight[key] > 0,
	}

	if l.result != nil && l.result.key == key {
		snap.Items = make([]domain.JobSummary, len(l.result.items))
		copy(snap.Items, l.result.items)
	}

	if l.err != nil && l.errKey == key {
		snap.Err = l.err
		snap.ErrorKind = domain.Classify(l.err)
		snap.Message = domain.UserMessage(l.err)
		snap.Recovery = domain.RecoveryFor(l.err)
	}

	return snap
}
