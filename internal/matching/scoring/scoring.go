// Package scoring computes match scores for (lead, candidate) pairs.
//
// Score is a pure function: identical inputs always yield the identical
// (score, reasons) output, independent of call order. This is what makes
// parallel scoring across candidates safe and test runs reproducible.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"bedrijvengids_backend/internal/matching/domain"
	"bedrijvengids_backend/platform/config"
)

const (
	// proxyBase is the starting sub-score for candidates without a ScoreProfile.
	proxyBase = 50.0

	// specializationBonus rewards candidates whose category set contains
	// the lead's requested category.
	specializationBonus = 10.0

	// nonTrivialDescriptionLen is the minimum description length that counts
	// as a real company description rather than a placeholder.
	nonTrivialDescriptionLen = 40
)

// certificationWeights is the closed table of recognized certifications.
// Adding a certification type is a data change here, not a code change.
// Top-tier safety/quality marks contribute more than generic ones.
var certificationWeights = map[string]float64{
	"RGE":       40,
	"Qualibat":  30,
	"ISO 9001":  25,
	"VCA":       20,
	"KOMO":      20,
	"Erkend":    15,
	"Qualifelec": 15,
}

// Engine scores candidates against leads using a fixed weight table.
type Engine struct {
	weights config.ScoringWeights
}

// NewEngine creates a scoring engine. The weight table must sum to 1.0;
// a wrong table would silently distort every score, so it is rejected here.
func NewEngine(weights config.ScoringWeights) (*Engine, error) {
	if weights.Quality < 0 || weights.Responsiveness < 0 || weights.Price < 0 || weights.Certification < 0 {
		return nil, fmt.Errorf("scoring weights must be non-negative")
	}
	if math.Abs(weights.Sum()-1.0) > 1e-9 {
		return nil, fmt.Errorf("scoring weights must sum to 1.0, got %v", weights.Sum())
	}
	return &Engine{weights: weights}, nil
}

// Score computes the weighted 0-100 score for a candidate against a lead,
// with one human-readable reason clause per contributing factor.
func (e *Engine) Score(lead domain.Lead, candidate domain.Candidate) (int, []string) {
	reasons := make([]string, 0, 4)

	quality, reason := qualitySubScore(candidate)
	reasons = append(reasons, reason)

	responsiveness, reason := responsivenessSubScore(candidate)
	reasons = append(reasons, reason)

	price, reason := priceSubScore(lead, candidate)
	reasons = append(reasons, reason)

	certification, reason := certificationSubScore(lead, candidate)
	if reason != "" {
		reasons = append(reasons, reason)
	}

	total := quality*e.weights.Quality +
		responsiveness*e.weights.Responsiveness +
		price*e.weights.Price +
		certification*e.weights.Certification

	return clampScore(total), reasons
}

// qualitySubScore uses the rated quality when a profile exists, otherwise a
// proxy derived from how complete the company's public listing is.
func qualitySubScore(candidate domain.Candidate) (float64, string) {
	if candidate.Profile != nil {
		quality := clampFloat(candidate.Profile.Quality, 0, 100)
		return quality, fmt.Sprintf("quality rating %d/100", int(math.Round(quality)))
	}

	score := proxyBase
	if candidate.Description != nil && len(strings.TrimSpace(*candidate.Description)) >= nonTrivialDescriptionLen {
		score += 10
	}
	if candidate.Website != nil && strings.TrimSpace(*candidate.Website) != "" {
		score += 10
	}
	if candidate.Email != nil && strings.TrimSpace(*candidate.Email) != "" {
		score += 5
	}
	score = clampFloat(score, 0, 100)
	return score, fmt.Sprintf("no rating yet, estimated quality %d/100 from listing", int(score))
}

// responsivenessSubScore maps the response SLA to four bands, or falls back
// to reachability signals when the candidate is unrated.
func responsivenessSubScore(candidate domain.Candidate) (float64, string) {
	if candidate.Profile != nil {
		sla := candidate.Profile.ResponseSLAMinutes
		switch {
		case sla <= 60:
			return 100, "typically responds within an hour"
		case sla <= 240:
			return 80, "typically responds within four hours"
		case sla <= 1440:
			return 60, "typically responds within a day"
		default:
			return 30, "slow response times"
		}
	}

	score := proxyBase
	if strings.TrimSpace(candidate.Phone) != "" {
		score += 20
	}
	if candidate.Email != nil && strings.TrimSpace(*candidate.Email) != "" {
		score += 10
	}
	return clampFloat(score, 0, 100), "responsiveness estimated from contact details"
}

// priceSubScore rewards the price position that fits the lead's budget band:
// cheap for low budgets, premium for high budgets, balanced otherwise.
// Without a profile there is no price signal, so the factor stays neutral.
func priceSubScore(lead domain.Lead, candidate domain.Candidate) (float64, string) {
	if candidate.Profile == nil {
		return 50, "no price data available"
	}

	priceIndex := clampFloat(candidate.Profile.PriceIndex, 0, 100)
	switch lead.BudgetBand {
	case domain.BudgetLow:
		return 100 - priceIndex, "competitively priced for a low budget"
	case domain.BudgetHigh:
		return priceIndex, "premium positioning fits a high budget"
	default:
		// medium, custom, or unspecified: reward balanced pricing
		return 100 - math.Abs(50-priceIndex), "balanced pricing"
	}
}

// certificationSubScore sums the closed certification table and adds the
// specialization bonus when the candidate serves the requested category.
// Recognized certifications only ever add, so the sub-score is monotone
// in the certification set.
func certificationSubScore(lead domain.Lead, candidate domain.Candidate) (float64, string) {
	score := 0.0
	recognized := make([]string, 0, 2)

	if candidate.Profile != nil {
		for _, cert := range candidate.Profile.Certifications {
			if weight, ok := certificationWeights[cert]; ok {
				score += weight
				recognized = append(recognized, cert)
			}
		}
	}

	specialized := lead.CategoryID != nil && candidate.ServesCategory(*lead.CategoryID)
	if specialized {
		score += specializationBonus
	}

	score = clampFloat(score, 0, 100)

	switch {
	case len(recognized) > 0 && specialized:
		return score, fmt.Sprintf("certified (%s) and specialized in the requested service", strings.Join(recognized, ", "))
	case len(recognized) > 0:
		return score, fmt.Sprintf("certified (%s)", strings.Join(recognized, ", "))
	case specialized:
		return score, "specialized in the requested service"
	default:
		return score, ""
	}
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

func clampFloat(value float64, min float64, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
