package services

import (
	"caseflow/models"
	"caseflow/repositories"
)

// FavorabilityAnalysis classifies a precedent set relative to a client role
type FavorabilityAnalysis struct {
	Favorable   []models.Precedent `json:"favorable"`
	Unfavorable []models.Precedent `json:"unfavorable"`
	Neutral     []models.Precedent `json:"neutral"`

	FavorableCount   int     `json:"favorable_count"`
	UnfavorableCount int     `json:"unfavorable_count"`
	NeutralCount     int     `json:"neutral_count"`
	FavorableRatio   float64 `json:"favorable_ratio"`
}

// PrecedentSummary is the combined search-and-analysis result for one
// practice area and client role
type PrecedentSummary struct {
	TotalPrecedents  int     `json:"total_precedents"`
	FavorableCount   int     `json:"favorable_count"`
	UnfavorableCount int     `json:"unfavorable_count"`
	NeutralCount     int     `json:"neutral_count"`
	FavorableRatio   float64 `json:"favorable_ratio"`
	HasFavorable     bool    `json:"has_favorable"`
}

// OutcomeStats summarizes the outcomes of a set of closed cases
type OutcomeStats struct {
	SuccessRate  float64 `json:"success_rate"`
	WonCount     int     `json:"won_count"`
	LostCount    int     `json:"lost_count"`
	SettledCount int     `json:"settled_count"`
	TotalCount   int     `json:"total_count"`
}

// AnalyzeFavorability classifies precedents by which party they favored.
// Favorable = favors the client role; unfavorable = favors the other side;
// neutral = favors neither. The ratio is 0 when the role is absent or the
// set is empty.
func AnalyzeFavorability(precedents []models.Precedent, clientRole string) FavorabilityAnalysis {
	analysis := FavorabilityAnalysis{}
	if len(precedents) == 0 || clientRole == "" {
		return analysis
	}

	for _, p := range precedents {
		switch {
		case p.Favors(clientRole):
			analysis.Favorable = append(analysis.Favorable, p)
		case !p.IsNeutral():
			analysis.Unfavorable = append(analysis.Unfavorable, p)
		default:
			analysis.Neutral = append(analysis.Neutral, p)
		}
	}

	analysis.FavorableCount = len(analysis.Favorable)
	analysis.UnfavorableCount = len(analysis.Unfavorable)
	analysis.NeutralCount = len(analysis.Neutral)
	analysis.FavorableRatio = float64(analysis.FavorableCount) / float64(len(precedents)) * 100
	return analysis
}

// SuccessProbability derives outcome statistics from similar closed cases
func SuccessProbability(cases []models.Case) OutcomeStats {
	stats := OutcomeStats{TotalCount: len(cases)}
	if len(cases) == 0 {
		return stats
	}

	for _, c := range cases {
		if c.Outcome == nil {
			continue
		}
		switch *c.Outcome {
		case models.CaseOutcomeWon:
			stats.WonCount++
		case models.CaseOutcomeLost:
			stats.LostCount++
		case models.CaseOutcomeSettled:
			stats.SettledCount++
		}
	}

	stats.SuccessRate = float64(stats.WonCount) / float64(stats.TotalCount) * 100
	return stats
}

// PrecedentAnalysisService finds precedents relevant to a case and analyzes
// their favorability
type PrecedentAnalysisService struct {
	precedents *repositories.PrecedentRepository
	cases      *repositories.CaseRepository
}

func NewPrecedentAnalysisService(
	precedents *repositories.PrecedentRepository,
	cases *repositories.CaseRepository,
) *PrecedentAnalysisService {
	return &PrecedentAnalysisService{precedents: precedents, cases: cases}
}

// FindRelevant returns the precedents for a practice area; empty when no
// area is given
func (s *PrecedentAnalysisService) FindRelevant(practiceAreaID string, filter *repositories.PrecedentFilter) ([]models.Precedent, error) {
	if practiceAreaID == "" {
		return nil, nil
	}
	return s.precedents.FindByPracticeArea(practiceAreaID, filter)
}

// Summary combines search and favorability analysis in one call
func (s *PrecedentAnalysisService) Summary(practiceAreaID, clientRole string) (PrecedentSummary, error) {
	precedents, err := s.FindRelevant(practiceAreaID, nil)
	if err != nil {
		return PrecedentSummary{}, err
	}

	analysis := AnalyzeFavorability(precedents, clientRole)
	return PrecedentSummary{
		TotalPrecedents:  len(precedents),
		FavorableCount:   analysis.FavorableCount,
		UnfavorableCount: analysis.UnfavorableCount,
		NeutralCount:     analysis.NeutralCount,
		FavorableRatio:   analysis.FavorableRatio,
		HasFavorable:     analysis.FavorableCount > 0,
	}, nil
}

// SimilarCases finds closed cases resembling the given one
func (s *PrecedentAnalysisService) SimilarCases(c *models.Case, limit int) ([]models.Case, error) {
	return s.cases.FindSimilar(c, limit)
}
