package repositories

import (
	"fmt"

	"caseflow/models"

	"gorm.io/gorm"
)

// PrecedentFilter narrows precedent searches beyond the practice area
type PrecedentFilter struct {
	FavouredParty string
	Court         string
	BindingOnly   bool
	Keyword       string
}

// PrecedentRepository is a thin query facade over the precedents table
type PrecedentRepository struct {
	db *gorm.DB
}

func NewPrecedentRepository(db *gorm.DB) *PrecedentRepository {
	return &PrecedentRepository{db: db}
}

// FindByID fetches a precedent with its practice area preloaded
func (r *PrecedentRepository) FindByID(id string) (*models.Precedent, error) {
	var p models.Precedent
	err := r.db.Preload("PracticeArea").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch precedent %s: %w", id, err)
	}
	return &p, nil
}

// FindByPracticeArea returns precedents for a practice area, newest decision
// first, optionally narrowed by extra filters
func (r *PrecedentRepository) FindByPracticeArea(practiceAreaID string, filter *PrecedentFilter) ([]models.Precedent, error) {
	query := r.db.Where("practice_area_id = ?", practiceAreaID)

	if filter != nil {
		if filter.FavouredParty != "" {
			query = query.Where("favoured_party = ?", filter.FavouredParty)
		}
		if filter.Court != "" {
			query = query.Where("court = ?", filter.Court)
		}
		if filter.BindingOnly {
			query = query.Where("is_binding = ?", true)
		}
		if filter.Keyword != "" {
			like := "%" + filter.Keyword + "%"
			query = query.Where("name LIKE ? OR legal_principle LIKE ? OR summary LIKE ?", like, like, like)
		}
	}

	var precedents []models.Precedent
	err := query.Order("decision_date DESC").Find(&precedents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch precedents for area %s: %w", practiceAreaID, err)
	}
	return precedents, nil
}

// UsageCount counts how many cases cite a precedent
func (r *PrecedentRepository) UsageCount(id string) (int64, error) {
	var count int64
	err := r.db.Table("case_precedents").Where("precedent_id = ?", id).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count citations for precedent %s: %w", id, err)
	}
	return count, nil
}

// Create inserts a new precedent row
func (r *PrecedentRepository) Create(p *models.Precedent) error {
	if err := r.db.Create(p).Error; err != nil {
		return fmt.Errorf("failed to create precedent: %w", err)
	}
	return nil
}

// Delete soft-deletes a precedent row
func (r *PrecedentRepository) Delete(id string) error {
	if err := r.db.Delete(&models.Precedent{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete precedent %s: %w", id, err)
	}
	return nil
}
