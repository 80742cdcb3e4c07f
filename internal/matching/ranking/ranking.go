// Package ranking orders scored candidates and truncates to the top N.
package ranking

import (
	"sort"

	"bedrijvengids_backend/internal/matching/domain"
)

// Scored pairs a candidate with its computed score and reasons.
type Scored struct {
	Candidate domain.Candidate
	Score     int
	Reasons   []string
}

// Ranked is a scored candidate with its final 1-based rank.
type Ranked struct {
	Scored
	Rank int
}

// SelectTop sorts descending by score, breaks ties by company ID ascending
// so the order forms a total order, assigns contiguous 1-based ranks, and
// truncates to topN.
func SelectTop(scored []Scored, topN int) []Ranked {
	ordered := make([]Scored, len(scored))
	copy(ordered, scored)

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].Candidate.ID.String() < ordered[j].Candidate.ID.String()
	})

	if topN > 0 && len(ordered) > topN {
		ordered = ordered[:topN]
	}

	ranked := make([]Ranked, len(ordered))
	for i, item := range ordered {
		ranked[i] = Ranked{Scored: item, Rank: i + 1}
	}
	return ranked
}
