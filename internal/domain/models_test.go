package domain_test

import (
	"testing"

	"github.com/honeycarbs/jobboard-client/internal/domain"
)

func TestFilterCriteriaKeyIgnoresMapOrder(t *testing.T) {
	a := domain.FilterCriteria{Advanced: map[string]string{"remote": "true", "level": "senior"}, ItemsPerPage: 5}
	b := domain.FilterCriteria{Advanced: map[string]string{"level": "senior", "remote": "true"}, ItemsPerPage: 5}

	if !a.Equal(b) {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
}

func TestFilterCriteriaKeyChangesWithCompany(t *testing.T) {
	global := domain.FilterCriteria{SearchTerm: "go", ItemsPerPage: 5}
	scoped := global.Clone()
	scoped.Company = &domain.CompanyFilter{ID: 7, Name: "Acme"}

	if global.Equal(scoped) {
		t.Error("company scope must change the key")
	}
}

func TestFilterCriteriaCloneIsDeep(t *testing.T) {
	orig := domain.FilterCriteria{
		Company:  &domain.CompanyFilter{ID: 1, Name: "A"},
		Advanced: map[string]string{"k": "v"},
	}
	cp := orig.Clone()
	cp.Company.Name = "B"
	cp.Advanced["k"] = "w"

	if orig.Company.Name != "A" || orig.Advanced["k"] != "v" {
		t.Error("Clone shares state with the original")
	}
}

func TestPagination(t *testing.T) {
	p := domain.Pagination{CurrentPage: 1, TotalItems: 12, ItemsPerPage: 5}

	if got := p.TotalPages(); got != 3 {
		t.Fatalf("TotalPages = %d, want 3", got)
	}
	for page, want := range map[int]bool{0: false, 1: true, 3: true, 4: false, -1: false} {
		if got := p.Valid(page); got != want {
			t.Errorf("Valid(%d) = %v, want %v", page, got, want)
		}
	}

	empty := domain.Pagination{CurrentPage: 4, ItemsPerPage: 5}
	if got := empty.Clamp().CurrentPage; got != 1 {
		t.Errorf("Clamp on empty set = %d, want 1", got)
	}
	if !empty.Valid(1) {
		t.Error("page 1 must be valid for an empty result set")
	}
}

func TestParseDocumentType(t *testing.T) {
	if _, err := domain.ParseDocumentType("cv"); err != nil {
		t.Errorf("cv: %v", err)
	}
	if _, err := domain.ParseDocumentType("cover_letter"); err != nil {
		t.Errorf("cover_letter: %v", err)
	}
	if _, err := domain.ParseDocumentType("resume"); domain.Classify(err) != domain.KindValidation {
		t.Errorf("resume: want validation error, got %v", err)
	}
}
