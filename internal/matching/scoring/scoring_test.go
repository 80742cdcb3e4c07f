package scoring

import (
	"testing"

	"bedrijvengids_backend/internal/matching/domain"
	"bedrijvengids_backend/platform/config"

	"github.com/google/uuid"
)

func defaultWeights() config.ScoringWeights {
	return config.ScoringWeights{
		Quality:        0.40,
		Responsiveness: 0.25,
		Price:          0.20,
		Certification:  0.15,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(defaultWeights())
	if err != nil {
		t.Fatalf("unexpected error creating engine: %v", err)
	}
	return engine
}

func strPtr(s string) *string { return &s }

func TestNewEngineRejectsWeightsNotSummingToOne(t *testing.T) {
	_, err := NewEngine(config.ScoringWeights{Quality: 0.5, Responsiveness: 0.5, Price: 0.5, Certification: 0.5})
	if err == nil {
		t.Fatal("expected error for weights summing to 2.0")
	}
}

func TestNewEngineRejectsNegativeWeights(t *testing.T) {
	_, err := NewEngine(config.ScoringWeights{Quality: 1.2, Responsiveness: -0.2, Price: 0, Certification: 0})
	if err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	categoryID := uuid.New()
	lead := domain.Lead{CategoryID: &categoryID, PostalCode: "6750AB", BudgetBand: domain.BudgetLow}
	candidate := domain.Candidate{
		ID:          uuid.New(),
		CategoryIDs: []uuid.UUID{categoryID},
		Phone:       "+31612345678",
		Email:       strPtr("info@voorbeeld.nl"),
		Profile: &domain.ScoreProfile{
			Quality:            85,
			PriceIndex:         30,
			ResponseSLAMinutes: 45,
			Certifications:     []string{"RGE", "VCA"},
		},
	}

	firstScore, firstReasons := engine.Score(lead, candidate)
	for i := 0; i < 50; i++ {
		score, reasons := engine.Score(lead, candidate)
		if score != firstScore {
			t.Fatalf("score changed between calls: %d vs %d", firstScore, score)
		}
		if len(reasons) != len(firstReasons) {
			t.Fatalf("reason count changed between calls: %d vs %d", len(firstReasons), len(reasons))
		}
		for j := range reasons {
			if reasons[j] != firstReasons[j] {
				t.Fatalf("reason %d changed between calls: %q vs %q", j, firstReasons[j], reasons[j])
			}
		}
	}
}

func TestRatedLowPriceCandidateScoresAtLeastEighty(t *testing.T) {
	engine := newTestEngine(t)
	categoryID := uuid.New()
	lead := domain.Lead{CategoryID: &categoryID, PostalCode: "67500", BudgetBand: domain.BudgetLow}

	rated := domain.Candidate{
		ID:          uuid.New(),
		CategoryIDs: []uuid.UUID{categoryID},
		Profile: &domain.ScoreProfile{
			Quality:            90,
			PriceIndex:         20,
			ResponseSLAMinutes: 30,
			Certifications:     []string{"RGE"},
		},
	}
	unrated := domain.Candidate{ID: uuid.New(), CategoryIDs: []uuid.UUID{categoryID}}

	ratedScore, _ := engine.Score(lead, rated)
	unratedScore, _ := engine.Score(lead, unrated)

	if ratedScore < 80 {
		t.Fatalf("expected rated candidate score >= 80, got %d", ratedScore)
	}
	if ratedScore <= unratedScore {
		t.Fatalf("expected rated candidate (%d) to outrank unrated (%d)", ratedScore, unratedScore)
	}
}

func TestUnratedCandidateUsesListingProxies(t *testing.T) {
	engine := newTestEngine(t)
	lead := domain.Lead{BudgetBand: domain.BudgetMedium}

	bare := domain.Candidate{ID: uuid.New()}
	complete := domain.Candidate{
		ID:          uuid.New(),
		Phone:       "+31612345678",
		Email:       strPtr("info@voorbeeld.nl"),
		Website:     strPtr("https://voorbeeld.nl"),
		Description: strPtr("Al meer dan twintig jaar het vertrouwde installatiebedrijf in de regio."),
	}

	bareScore, _ := engine.Score(lead, bare)
	completeScore, _ := engine.Score(lead, complete)

	if completeScore <= bareScore {
		t.Fatalf("expected complete listing (%d) to outscore bare listing (%d)", completeScore, bareScore)
	}
}

func TestPriceSubScorePerBudgetBand(t *testing.T) {
	cheap := domain.Candidate{Profile: &domain.ScoreProfile{PriceIndex: 10}}
	premium := domain.Candidate{Profile: &domain.ScoreProfile{PriceIndex: 90}}
	balanced := domain.Candidate{Profile: &domain.ScoreProfile{PriceIndex: 50}}

	if score, _ := priceSubScore(domain.Lead{BudgetBand: domain.BudgetLow}, cheap); score != 90 {
		t.Fatalf("low budget vs cheap: expected 90, got %v", score)
	}
	if score, _ := priceSubScore(domain.Lead{BudgetBand: domain.BudgetHigh}, premium); score != 90 {
		t.Fatalf("high budget vs premium: expected 90, got %v", score)
	}
	if score, _ := priceSubScore(domain.Lead{BudgetBand: domain.BudgetMedium}, balanced); score != 100 {
		t.Fatalf("medium budget vs balanced: expected 100, got %v", score)
	}
	if score, _ := priceSubScore(domain.Lead{BudgetBand: domain.BudgetCustom}, premium); score != 60 {
		t.Fatalf("custom budget vs premium: expected 60, got %v", score)
	}
	if score, _ := priceSubScore(domain.Lead{BudgetBand: domain.BudgetLow}, domain.Candidate{}); score != 50 {
		t.Fatalf("no profile: expected neutral 50, got %v", score)
	}
}

func TestResponsivenessSLABands(t *testing.T) {
	cases := []struct {
		sla  int
		want float64
	}{
		{30, 100},
		{60, 100},
		{61, 80},
		{240, 80},
		{241, 60},
		{1440, 60},
		{1441, 30},
	}
	for _, tc := range cases {
		candidate := domain.Candidate{Profile: &domain.ScoreProfile{ResponseSLAMinutes: tc.sla}}
		if score, _ := responsivenessSubScore(candidate); score != tc.want {
			t.Fatalf("sla %d: expected %v, got %v", tc.sla, tc.want, score)
		}
	}
}

func TestAddingRecognizedCertificationNeverDecreasesSubScore(t *testing.T) {
	lead := domain.Lead{}
	base := domain.Candidate{Profile: &domain.ScoreProfile{Certifications: []string{"VCA"}}}
	baseScore, _ := certificationSubScore(lead, base)

	for cert := range certificationWeights {
		extended := domain.Candidate{Profile: &domain.ScoreProfile{Certifications: []string{"VCA", cert}}}
		extendedScore, _ := certificationSubScore(lead, extended)
		if extendedScore < baseScore {
			t.Fatalf("adding %q decreased certification sub-score from %v to %v", cert, baseScore, extendedScore)
		}
	}
}

func TestCertificationSubScoreIsCappedAtHundred(t *testing.T) {
	all := make([]string, 0, len(certificationWeights))
	for cert := range certificationWeights {
		all = append(all, cert)
	}
	candidate := domain.Candidate{Profile: &domain.ScoreProfile{Certifications: all}}

	score, _ := certificationSubScore(domain.Lead{}, candidate)
	if score > 100 {
		t.Fatalf("expected certification sub-score capped at 100, got %v", score)
	}
}

func TestUnrecognizedCertificationsAreIgnored(t *testing.T) {
	with := domain.Candidate{Profile: &domain.ScoreProfile{Certifications: []string{"Onbekend Keurmerk"}}}
	without := domain.Candidate{Profile: &domain.ScoreProfile{}}

	withScore, _ := certificationSubScore(domain.Lead{}, with)
	withoutScore, _ := certificationSubScore(domain.Lead{}, without)
	if withScore != withoutScore {
		t.Fatalf("unrecognized certification changed sub-score: %v vs %v", withScore, withoutScore)
	}
}

func TestSpecializationBonusRequiresMatchingCategory(t *testing.T) {
	categoryID := uuid.New()
	lead := domain.Lead{CategoryID: &categoryID}

	specialized := domain.Candidate{CategoryIDs: []uuid.UUID{categoryID}}
	generic := domain.Candidate{CategoryIDs: []uuid.UUID{uuid.New()}}

	specializedScore, _ := certificationSubScore(lead, specialized)
	genericScore, _ := certificationSubScore(lead, generic)

	if specializedScore != genericScore+specializationBonus {
		t.Fatalf("expected specialization bonus of %v, got %v vs %v", specializationBonus, specializedScore, genericScore)
	}
}

func TestScoreStaysWithinBounds(t *testing.T) {
	engine := newTestEngine(t)
	categoryID := uuid.New()
	lead := domain.Lead{CategoryID: &categoryID, BudgetBand: domain.BudgetHigh}
	candidate := domain.Candidate{
		CategoryIDs: []uuid.UUID{categoryID},
		Profile: &domain.ScoreProfile{
			Quality:            250,
			PriceIndex:         400,
			ResponseSLAMinutes: 1,
			Certifications:     []string{"RGE", "Qualibat", "ISO 9001", "VCA", "KOMO"},
		},
	}

	score, _ := engine.Score(lead, candidate)
	if score < 0 || score > 100 {
		t.Fatalf("expected score within [0,100], got %d", score)
	}
}
