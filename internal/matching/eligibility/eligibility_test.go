package eligibility

import (
	"testing"

	"bedrijvengids_backend/internal/matching/domain"

	"github.com/google/uuid"
)

func TestPostalPrefixPolicyMatchesSharedPrefix(t *testing.T) {
	policy := PostalPrefixPolicy{PrefixLength: 2}

	if !policy.Nearby("6750AB", "6711CD") {
		t.Fatal("expected 67-prefixed codes to be nearby")
	}
	if policy.Nearby("6750AB", "1011CD") {
		t.Fatal("expected different prefixes to not be nearby")
	}
}

func TestPostalPrefixPolicyNormalizesInput(t *testing.T) {
	policy := PostalPrefixPolicy{PrefixLength: 4}

	if !policy.Nearby(" 6750 ab ", "6750CD") {
		t.Fatal("expected spacing and casing to be ignored")
	}
}

func TestPostalPrefixPolicyShortCodesRequireExactMatch(t *testing.T) {
	policy := PostalPrefixPolicy{PrefixLength: 4}

	if !policy.Nearby("67", "67") {
		t.Fatal("expected identical short codes to match")
	}
	if policy.Nearby("67", "68") {
		t.Fatal("expected different short codes to not match")
	}
}

func TestPostalPrefixPolicyRejectsEmptyCodes(t *testing.T) {
	policy := PostalPrefixPolicy{PrefixLength: 2}

	if policy.Nearby("", "6750AB") {
		t.Fatal("expected empty lead postal code to never match")
	}
	if policy.Nearby("6750AB", "") {
		t.Fatal("expected empty candidate postal code to never match")
	}
}

func TestFilterKeepsOnlyActiveNearbyCategoryMatches(t *testing.T) {
	categoryID := uuid.New()
	otherCategory := uuid.New()
	filter := NewFilter(PostalPrefixPolicy{PrefixLength: 2})

	lead := domain.Lead{CategoryID: &categoryID, PostalCode: "6750AB"}
	match := domain.Candidate{ID: uuid.New(), Active: true, CategoryIDs: []uuid.UUID{categoryID}, PostalCode: "6711CD"}
	pool := []domain.Candidate{
		match,
		{ID: uuid.New(), Active: false, CategoryIDs: []uuid.UUID{categoryID}, PostalCode: "6711CD"},
		{ID: uuid.New(), Active: true, CategoryIDs: []uuid.UUID{otherCategory}, PostalCode: "6711CD"},
		{ID: uuid.New(), Active: true, CategoryIDs: []uuid.UUID{categoryID}, PostalCode: "1011CD"},
	}

	eligible := filter.Apply(lead, pool)
	if len(eligible) != 1 {
		t.Fatalf("expected exactly one eligible candidate, got %d", len(eligible))
	}
	if eligible[0].ID != match.ID {
		t.Fatalf("expected candidate %s, got %s", match.ID, eligible[0].ID)
	}
}

func TestFilterWithoutCategorySkipsCategoryCheck(t *testing.T) {
	filter := NewFilter(PostalPrefixPolicy{PrefixLength: 2})

	lead := domain.Lead{PostalCode: "6750AB"}
	pool := []domain.Candidate{
		{ID: uuid.New(), Active: true, CategoryIDs: []uuid.UUID{uuid.New()}, PostalCode: "6711CD"},
		{ID: uuid.New(), Active: true, PostalCode: "6799ZZ"},
	}

	eligible := filter.Apply(lead, pool)
	if len(eligible) != 2 {
		t.Fatalf("expected both nearby candidates when lead has no category, got %d", len(eligible))
	}
}

func TestFilterEmptyPoolYieldsEmptyResult(t *testing.T) {
	filter := NewFilter(PostalPrefixPolicy{PrefixLength: 2})

	eligible := filter.Apply(domain.Lead{PostalCode: "6750AB"}, nil)
	if len(eligible) != 0 {
		t.Fatalf("expected empty result for empty pool, got %d", len(eligible))
	}
}
