// Package eligibility narrows the full candidate pool before scoring.
package eligibility

import (
	"strings"

	"bedrijvengids_backend/internal/matching/domain"
)

// ProximityPolicy decides whether a candidate is close enough to a lead.
// The default is a coarse postal-prefix heuristic; a real geodistance
// implementation can replace it without touching the filter's contract.
type ProximityPolicy interface {
	Nearby(leadPostal, candidatePostal string) bool
}

// PostalPrefixPolicy treats two postal codes as nearby when they share a
// fixed-length prefix. Coarse, but cheap and stable.
type PostalPrefixPolicy struct {
	PrefixLength int
}

// Nearby compares normalized postal-code prefixes.
func (p PostalPrefixPolicy) Nearby(leadPostal, candidatePostal string) bool {
	lead := normalizePostal(leadPostal)
	candidate := normalizePostal(candidatePostal)
	if lead == "" || candidate == "" {
		return false
	}

	n := p.PrefixLength
	if n < 1 {
		n = 1
	}
	if len(lead) < n || len(candidate) < n {
		return lead == candidate
	}
	return lead[:n] == candidate[:n]
}

func normalizePostal(value string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
}

// Filter selects scoring candidates from the active provider pool.
type Filter struct {
	proximity ProximityPolicy
}

// NewFilter creates a filter with the given proximity policy.
func NewFilter(proximity ProximityPolicy) *Filter {
	return &Filter{proximity: proximity}
}

// Apply returns the candidates eligible for the lead: active, serving the
// lead's category when one is specified, and nearby per the proximity
// policy. An empty result is a valid outcome, not a failure.
func (f *Filter) Apply(lead domain.Lead, pool []domain.Candidate) []domain.Candidate {
	eligible := make([]domain.Candidate, 0, len(pool))
	for _, candidate := range pool {
		if !candidate.Active {
			continue
		}
		if lead.CategoryID != nil && !candidate.ServesCategory(*lead.CategoryID) {
			continue
		}
		if !f.proximity.Nearby(lead.PostalCode, candidate.PostalCode) {
			continue
		}
		eligible = append(eligible, candidate)
	}
	return eligible
}
