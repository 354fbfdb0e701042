package search_test

import (
	"testing"

	"github.com/honeycarbs/jobboard-client/internal/search"
)

func TestFilterState_CompanyFieldsTravelTogether(t *testing.T) {
	f := search.NewFilterState(5)

	if f.SetCompanyName("Acme") {
		t.Error("SetCompanyName without a company filter must be a no-op")
	}

	f.SetCompanyFilter(42)
	f.SetCompanyName("Acme")
	c := f.Criteria()
	if c.Company == nil || c.Company.ID != 42 || c.Company.Name != "Acme" {
		t.Fatalf("company = %+v", c.Company)
	}

	f.SetCompanyFilter(43)
	if got := f.Criteria().Company.Name; got != "" {
		t.Errorf("switching company kept name %q", got)
	}

	f.ClearCompanyFilter()
	if f.Criteria().Company != nil {
		t.Error("ClearCompanyFilter left a company")
	}
}

func TestFilterState_SettersReportChange(t *testing.T) {
	f := search.NewFilterState(5)

	if !f.SetSearchTerm("go") || f.SetSearchTerm("go") {
		t.Error("SetSearchTerm change reporting is wrong")
	}
	if !f.SetSelectedLocation("Paris") || f.SetSelectedLocation("Paris") {
		t.Error("SetSelectedLocation change reporting is wrong")
	}
	if !f.SetAdvancedFilter("remote", "true") || f.SetAdvancedFilter("remote", "true") {
		t.Error("SetAdvancedFilter change reporting is wrong")
	}
	if !f.SetAdvancedFilter("remote", "") || f.SetAdvancedFilter("remote", "") {
		t.Error("removing an advanced filter change reporting is wrong")
	}
	if f.SetItemsPerPage(0) {
		t.Error("SetItemsPerPage(0) must be rejected")
	}
}

func TestFilterState_ClearAllKeepsPageSize(t *testing.T) {
	f := search.NewFilterState(25)
	f.SetSearchTerm("go")
	f.SetCompanyFilter(1)
	f.SetAdvancedFilter("level", "senior")

	if !f.ClearAllFilters() {
		t.Fatal("ClearAllFilters reported no change")
	}
	c := f.Criteria()
	if c.SearchTerm != "" || c.Company != nil || len(c.Advanced) != 0 || c.ItemsPerPage != 25 {
		t.Errorf("after clear = %+v", c)
	}
	if f.ClearAllFilters() {
		t.Error("second ClearAllFilters must be a no-op")
	}
}

func TestFilterState_CriteriaIsACopy(t *testing.T) {
	f := search.NewFilterState(5)
	f.SetAdvancedFilter("k", "v")

	c := f.Criteria()
	c.Advanced["k"] = "changed"

	if f.Criteria().Advanced["k"] != "v" {
		t.Error("Criteria leaked internal map")
	}
}
