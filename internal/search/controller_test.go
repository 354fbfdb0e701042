package search_test

import (
	"testing"

	"github.com/honeycarbs/jobboard-client/internal/domain"
	"github.com/honeycarbs/jobboard-client/internal/search"
)

func newController(t *testing.T, location string) (*search.Controller, *search.History) {
	t.Helper()
	listing, err := search.NewListing(&fakeFetcher{total: 30}, domain.FilterCriteria{ItemsPerPage: 10})
	if err != nil {
		t.Fatalf("NewListing: %v", err)
	}
	nav := search.NewHistory(location)
	return search.NewController(search.NewFilterState(10), nav, listing, nil), nav
}

// ── Location to filters ───────────────────────────────────────────────────

func TestController_DeepLinkAppliesWithoutPush(t *testing.T) {
	c, nav := newController(t, "/jobs?company=7&search=Acme&location=Berlin")

	got := c.Criteria()
	if got.Company == nil || got.Company.ID != 7 || got.Company.Name != "Acme" || got.SelectedLocation != "Berlin" {
		t.Fatalf("criteria = %+v", got)
	}
	if nav.Len() != 1 {
		t.Errorf("deep link pushed %d entries", nav.Len()-1)
	}
	if !c.Listing().Snapshot().Criteria.Equal(got) {
		t.Error("listing not keyed to deep-linked criteria")
	}
}

// ── Filters to location ───────────────────────────────────────────────────

func TestController_UpdatePushesOnce(t *testing.T) {
	c, nav := newController(t, "/jobs")

	changed := c.Update(func(f *search.FilterState) bool {
		a := f.SetSearchTerm("golang")
		b := f.SetSelectedLocation("Paris")
		return a || b
	})
	if !changed {
		t.Fatal("Update reported no change")
	}
	if nav.Len() != 2 {
		t.Errorf("history length = %d, want 2", nav.Len())
	}
	if got := c.Location(); got != "/jobs?search=golang&location=Paris" {
		t.Errorf("location = %q", got)
	}

	if c.Update(func(f *search.FilterState) bool { return f.SetSearchTerm("golang") }) {
		t.Error("no-op update reported a change")
	}
	if nav.Len() != 2 {
		t.Error("no-op update pushed a location")
	}
}

func TestController_CompanySelectionEncodesName(t *testing.T) {
	c, _ := newController(t, "/jobs")

	c.Update(func(f *search.FilterState) bool {
		f.SetCompanyFilter(42)
		f.SetCompanyName("Acme Corp")
		return true
	})
	if got := c.Location(); got != "/jobs?company=42&search=Acme+Corp" {
		t.Errorf("location = %q", got)
	}

	c.Update(func(f *search.FilterState) bool { return f.ClearCompanyFilter() })
	if got := c.Location(); got != "/jobs" {
		t.Errorf("location after clear = %q", got)
	}
}

func TestController_FilterChangeResetsListingPage(t *testing.T) {
	c, _ := newController(t, "/jobs")
	listing := c.Listing()
	if _, err := listing.Load(t.Context()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	listing.GoToPage(3)

	c.Update(func(f *search.FilterState) bool { return f.SetSearchTerm("rust") })

	if got := listing.Snapshot().Pagination.CurrentPage; got != 1 {
		t.Errorf("page = %d, want 1", got)
	}
}

// ── History ───────────────────────────────────────────────────────────────

func TestController_BackAndForwardReplayFilters(t *testing.T) {
	c, nav := newController(t, "/jobs")
	c.Update(func(f *search.FilterState) bool { return f.SetSearchTerm("go") })
	c.Update(func(f *search.FilterState) bool { return f.SetSearchTerm("rust") })

	if !c.Back() {
		t.Fatal("Back failed")
	}
	if got := c.Criteria().SearchTerm; got != "go" {
		t.Errorf("after back SearchTerm = %q", got)
	}
	if nav.Len() != 3 {
		t.Errorf("Back changed history length to %d", nav.Len())
	}

	c.Back()
	if got := c.Criteria().SearchTerm; got != "" {
		t.Errorf("at start SearchTerm = %q", got)
	}
	if c.Back() {
		t.Error("Back past the first entry succeeded")
	}

	if !c.Forward() {
		t.Fatal("Forward failed")
	}
	if got := c.Criteria().SearchTerm; got != "go" {
		t.Errorf("after forward SearchTerm = %q", got)
	}
}

func TestHistory_PushTruncatesForward(t *testing.T) {
	h := search.NewHistory("")
	h.Push("/jobs?search=a")
	h.Push("/jobs?search=b")
	h.Back()
	h.Push("/jobs?search=c")

	if h.Len() != 3 {
		t.Errorf("len = %d, want 3", h.Len())
	}
	if _, ok := h.Forward(); ok {
		t.Error("forward entry survived a push")
	}
	if h.Push("/jobs?search=c") {
		t.Error("pushing the current location must be a no-op")
	}
}

func TestController_NavigateAcceptsBareQuery(t *testing.T) {
	c, nav := newController(t, "/jobs")

	if !c.Navigate("?search=ops") {
		t.Fatal("Navigate reported no change")
	}
	if got := c.Criteria().SearchTerm; got != "ops" {
		t.Errorf("SearchTerm = %q", got)
	}
	if got := c.Location(); got != "/jobs?search=ops" {
		t.Errorf("location = %q, want the navigated search", got)
	}
	if nav.Len() != 2 {
		t.Errorf("history length = %d, want 2", nav.Len())
	}

	if c.Navigate("/jobs?search=ops") {
		t.Error("navigating to the same search reported a change")
	}
	if nav.Len() != 2 {
		t.Error("navigating to the current location added an entry")
	}
}

func TestController_BackRestoresNavigatedSearch(t *testing.T) {
	c, _ := newController(t, "/jobs")

	c.Navigate("/jobs?search=react&location=Paris")
	if got := c.Location(); got != "/jobs?search=react&location=Paris" {
		t.Fatalf("location after navigate = %q", got)
	}

	c.Update(func(f *search.FilterState) bool { return f.SetSelectedLocation("Berlin") })
	if got := c.Location(); got != "/jobs?search=react&location=Berlin" {
		t.Fatalf("location after update = %q", got)
	}

	if !c.Back() {
		t.Fatal("Back failed")
	}
	got := c.Criteria()
	if got.SearchTerm != "react" || got.SelectedLocation != "Paris" {
		t.Errorf("after back criteria = %q/%q, want react/Paris", got.SearchTerm, got.SelectedLocation)
	}
	if !c.Listing().Snapshot().Criteria.Equal(got) {
		t.Error("listing not re-keyed to the restored search")
	}

	c.Back()
	if got := c.Criteria(); got.SearchTerm != "" || got.SelectedLocation != "" {
		t.Errorf("at start criteria = %+v", got)
	}
}
