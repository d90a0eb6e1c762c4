package services

import (
	"fmt"
	"log"
	"math"
	"strings"

	"caseflow/models"
	"caseflow/repositories"
)

// CaseSnapshot carries everything a success-rate strategy may need, decoupled
// from the persistence layer so strategies stay pure and testable
type CaseSnapshot struct {
	CaseID           string
	PracticeAreaID   string
	PracticeAreaCode string
	ClientRole       string
	EvidenceStrength string
	CaseStrength     string

	PrecedentCount          int
	FavorablePrecedentCount int

	LawyerID              string
	LawyerYears           int
	LawyerWins            int
	LawyerDecided         int
	LawyerActiveCaseCount int
}

// SuccessRateStrategy computes a 0-100 estimate of case outcome likelihood.
// Implementations may be score-based, ML-backed, or external-service-backed;
// the dispatch logic never needs to know which.
type SuccessRateStrategy interface {
	Compute(snap CaseSnapshot) float64
}

// ScoreTables parameterizes a score-based strategy
type ScoreTables struct {
	Evidence        map[string]float64
	Strength        map[string]float64
	PrecedentWeight float64
	CaseWeight      float64
	LawyerWeight    float64
}

func defaultEvidenceScores() map[string]float64 {
	return map[string]float64{
		models.EvidenceWeak:       10,
		models.EvidenceModerate:   40,
		models.EvidenceStrong:     70,
		models.EvidenceConclusive: 90,
	}
}

func defaultStrengthScores() map[string]float64 {
	return map[string]float64{
		models.CaseStrengthVeryWeak:   10,
		models.CaseStrengthWeak:       30,
		models.CaseStrengthModerate:   50,
		models.CaseStrengthStrong:     75,
		models.CaseStrengthVeryStrong: 95,
	}
}

// scoreBasedStrategy is the shared weighted-factor implementation; the
// default, civil and penal strategies are just different parameter sets
type scoreBasedStrategy struct {
	tables ScoreTables
}

// NewScoreStrategy builds a score-based strategy from the given tables.
// Missing tables fall back to the defaults; weights must sum to 1.
func NewScoreStrategy(tables ScoreTables) SuccessRateStrategy {
	if tables.Evidence == nil {
		tables.Evidence = defaultEvidenceScores()
	}
	if tables.Strength == nil {
		tables.Strength = defaultStrengthScores()
	}
	if tables.PrecedentWeight == 0 {
		tables.PrecedentWeight = 1.0
	}
	if tables.CaseWeight == 0 && tables.LawyerWeight == 0 {
		tables.CaseWeight, tables.LawyerWeight = 0.7, 0.3
	}
	return &scoreBasedStrategy{tables: tables}
}

func (s *scoreBasedStrategy) Compute(snap CaseSnapshot) float64 {
	intrinsic := s.intrinsicScore(snap)
	lawyer := lawyerScore(snap)

	final := intrinsic*s.tables.CaseWeight + lawyer*s.tables.LawyerWeight
	return round2(clamp(final, 0, 100))
}

// intrinsicScore averages the sub-scores whose inputs are present
func (s *scoreBasedStrategy) intrinsicScore(snap CaseSnapshot) float64 {
	var sum float64
	var factors int

	if snap.EvidenceStrength != "" {
		if score := s.tables.Evidence[snap.EvidenceStrength]; score > 0 {
			sum += score
			factors++
		}
	}
	if snap.CaseStrength != "" {
		if score := s.tables.Strength[snap.CaseStrength]; score > 0 {
			sum += score
			factors++
		}
	}
	if snap.ClientRole != "" && snap.PrecedentCount > 0 {
		ratio := float64(snap.FavorablePrecedentCount) / float64(snap.PrecedentCount) * 100
		if score := ratio * s.tables.PrecedentWeight; score > 0 {
			sum += score
			factors++
		}
	}

	if factors == 0 {
		return 0
	}
	return sum / float64(factors)
}

// lawyerScore rates the responsible lawyer from experience, track record in
// the case's practice area, and current workload
func lawyerScore(snap CaseSnapshot) float64 {
	score := 50.0
	if snap.LawyerID == "" {
		return score
	}

	score += math.Min(float64(snap.LawyerYears)*2, 20)

	if snap.PracticeAreaID != "" && snap.LawyerDecided > 0 {
		winRate := float64(snap.LawyerWins) / float64(snap.LawyerDecided) * 100
		switch {
		case winRate >= 75:
			score += 15
		case winRate >= 50:
			score += 5
		case winRate < 30:
			score -= 10
		default:
			score -= 5
		}
	}

	if snap.LawyerActiveCaseCount > 5 {
		score -= 15
	}

	return clamp(score, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// StrategyRegistry maps practice-area codes to strategies. Constructed once
// at startup and passed by reference; new strategies can be registered at
// runtime without touching the dispatch logic.
type StrategyRegistry struct {
	strategies map[string]SuccessRateStrategy
	fallback   SuccessRateStrategy
}

// NewStrategyRegistry builds the registry with the default, civil and penal
// strategies wired in
func NewStrategyRegistry() *StrategyRegistry {
	r := &StrategyRegistry{
		strategies: make(map[string]SuccessRateStrategy),
		// Balanced weights: 70% case factors, 30% lawyer performance
		fallback: NewScoreStrategy(ScoreTables{}),
	}

	// Civil law leans harder on lawyer expertise (negotiation matters)
	civil := NewScoreStrategy(ScoreTables{
		CaseWeight:   0.6,
		LawyerWeight: 0.4,
	})
	r.Register("CIV", civil)
	r.Register("civil", civil)

	// Criminal law emphasizes evidence quality and discounts precedents
	penal := NewScoreStrategy(ScoreTables{
		Evidence: map[string]float64{
			models.EvidenceWeak:       10,
			models.EvidenceModerate:   45,
			models.EvidenceStrong:     80,
			models.EvidenceConclusive: 95,
		},
		Strength: map[string]float64{
			models.CaseStrengthVeryWeak:   10,
			models.CaseStrengthWeak:       25,
			models.CaseStrengthModerate:   50,
			models.CaseStrengthStrong:     70,
			models.CaseStrengthVeryStrong: 90,
		},
		PrecedentWeight: 0.6,
		CaseWeight:      0.75,
		LawyerWeight:    0.25,
	})
	r.Register("PEN", penal)
	r.Register("penal", penal)

	return r
}

// Register binds a strategy to a practice-area code
func (r *StrategyRegistry) Register(code string, s SuccessRateStrategy) {
	if s == nil {
		log.Printf("[ERROR] refusing to register nil strategy for code %q", code)
		return
	}
	r.strategies[code] = s
}

// Lookup resolves a strategy: exact code match, then case-insensitive, then
// the default. Unknown or empty codes always get the default.
func (r *StrategyRegistry) Lookup(code string) SuccessRateStrategy {
	if code == "" {
		return r.fallback
	}
	if s, ok := r.strategies[code]; ok {
		return s
	}
	if s, ok := r.strategies[strings.ToLower(code)]; ok {
		return s
	}
	return r.fallback
}

// SuccessRateService assembles case snapshots and delegates to the strategy
// selected by practice-area code
type SuccessRateService struct {
	registry   *StrategyRegistry
	cases      *repositories.CaseRepository
	lawyers    *repositories.LawyerRepository
	precedents *PrecedentAnalysisService
}

func NewSuccessRateService(
	registry *StrategyRegistry,
	cases *repositories.CaseRepository,
	lawyers *repositories.LawyerRepository,
	precedents *PrecedentAnalysisService,
) *SuccessRateService {
	return &SuccessRateService{
		registry:   registry,
		cases:      cases,
		lawyers:    lawyers,
		precedents: precedents,
	}
}

// Compute scores a case with the strategy matching its practice area
func (s *SuccessRateService) Compute(c *models.Case) (float64, error) {
	snap, err := s.Snapshot(c)
	if err != nil {
		return 0, err
	}
	strategy := s.registry.Lookup(snap.PracticeAreaCode)
	return strategy.Compute(snap), nil
}

// Snapshot gathers the scoring inputs for a case from the record store
func (s *SuccessRateService) Snapshot(c *models.Case) (CaseSnapshot, error) {
	snap := CaseSnapshot{CaseID: c.ID}

	if c.EvidenceStrength != nil {
		snap.EvidenceStrength = *c.EvidenceStrength
	}
	if c.CaseStrength != nil {
		snap.CaseStrength = *c.CaseStrength
	}
	if c.ClientRole != nil {
		snap.ClientRole = *c.ClientRole
	}

	if c.PracticeAreaID != nil {
		snap.PracticeAreaID = *c.PracticeAreaID
		if c.PracticeArea != nil {
			snap.PracticeAreaCode = c.PracticeArea.Code
			if snap.PracticeAreaCode == "" {
				snap.PracticeAreaCode = c.PracticeArea.Name
			}
		}

		summary, err := s.precedents.Summary(snap.PracticeAreaID, snap.ClientRole)
		if err != nil {
			return snap, fmt.Errorf("failed to analyze precedents: %w", err)
		}
		snap.PrecedentCount = summary.TotalPrecedents
		snap.FavorablePrecedentCount = summary.FavorableCount
	}

	if c.ResponsibleLawyerID != nil {
		snap.LawyerID = *c.ResponsibleLawyerID

		lawyer := c.ResponsibleLawyer
		if lawyer == nil {
			var err error
			lawyer, err = s.lawyers.FindByID(snap.LawyerID)
			if err != nil {
				return snap, err
			}
		}
		snap.LawyerYears = lawyer.YearsOfExperience

		if snap.PracticeAreaID != "" {
			past, err := s.cases.FindClosedByLawyerAndArea(snap.LawyerID, snap.PracticeAreaID)
			if err != nil {
				return snap, err
			}
			snap.LawyerDecided = len(past)
			for _, p := range past {
				if p.Outcome != nil && *p.Outcome == models.CaseOutcomeWon {
					snap.LawyerWins++
				}
			}
		}

		active, err := s.cases.CountActiveByLawyer(snap.LawyerID, c.ID)
		if err != nil {
			return snap, err
		}
		snap.LawyerActiveCaseCount = int(active)
	}

	return snap, nil
}
