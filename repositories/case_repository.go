package repositories

import (
	"fmt"

	"caseflow/models"

	"gorm.io/gorm"
)

// CaseFilter narrows case listings
type CaseFilter struct {
	Status         string
	LawyerID       string
	PracticeAreaID string
	ClientID       string
	Keyword        string
	Page           int
	Limit          int
}

// CaseRepository is a thin query facade over the cases table
type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// FindByID fetches a case with its usual associations preloaded
func (r *CaseRepository) FindByID(id string) (*models.Case, error) {
	var c models.Case
	err := r.db.
		Preload("ResponsibleLawyer").
		Preload("PracticeArea").
		Preload("Team").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch case %s: %w", id, err)
	}
	return &c, nil
}

// List returns cases matching the filter plus the unpaginated total
func (r *CaseRepository) List(filter CaseFilter) ([]models.Case, int64, error) {
	query := r.db.Model(&models.Case{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LawyerID != "" {
		query = query.Where("responsible_lawyer_id = ?", filter.LawyerID)
	}
	if filter.PracticeAreaID != "" {
		query = query.Where("practice_area_id = ?", filter.PracticeAreaID)
	}
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("title LIKE ? OR code LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var cases []models.Case
	err := query.
		Preload("ResponsibleLawyer").
		Preload("PracticeArea").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&cases).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch cases: %w", err)
	}
	return cases, total, nil
}

// FindClosedByLawyerAndArea returns a lawyer's closed cases in one practice
// area whose outcome was decided (won or lost). Used for win-rate history.
func (r *CaseRepository) FindClosedByLawyerAndArea(lawyerID, practiceAreaID string) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.
		Where("responsible_lawyer_id = ?", lawyerID).
		Where("practice_area_id = ?", practiceAreaID).
		Where("status = ?", models.CaseStatusClosed).
		Where("outcome IN ?", []string{models.CaseOutcomeWon, models.CaseOutcomeLost}).
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch closed cases for lawyer %s: %w", lawyerID, err)
	}
	return cases, nil
}

// CountActiveByLawyer counts a lawyer's currently open cases, optionally
// excluding one case (the one being scored)
func (r *CaseRepository) CountActiveByLawyer(lawyerID, excludeCaseID string) (int64, error) {
	query := r.db.Model(&models.Case{}).
		Where("responsible_lawyer_id = ?", lawyerID).
		Where("status = ?", models.CaseStatusOpen)
	if excludeCaseID != "" {
		query = query.Where("id != ?", excludeCaseID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active cases for lawyer %s: %w", lawyerID, err)
	}
	return count, nil
}

// FindSimilar returns closed cases sharing the given case's practice area and
// client role, most recent first
func (r *CaseRepository) FindSimilar(c *models.Case, limit int) ([]models.Case, error) {
	if c.PracticeAreaID == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query := r.db.
		Where("id != ?", c.ID).
		Where("practice_area_id = ?", *c.PracticeAreaID).
		Where("status = ?", models.CaseStatusClosed)
	if c.ClientRole != nil {
		query = query.Where("client_role = ?", *c.ClientRole)
	}

	var cases []models.Case
	err := query.Order("close_date DESC").Limit(limit).Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch similar cases: %w", err)
	}
	return cases, nil
}

// Create inserts a new case row
func (r *CaseRepository) Create(c *models.Case) error {
	if err := r.db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

// ApplyChanges persists a merged change set against one case row
func (r *CaseRepository) ApplyChanges(id string, cs models.ChangeSet) error {
	if len(cs) == 0 {
		return nil
	}
	err := r.db.Model(&models.Case{}).Where("id = ?", id).Updates(map[string]any(cs)).Error
	if err != nil {
		return fmt.Errorf("failed to update case %s: %w", id, err)
	}
	return nil
}

// Delete soft-deletes a case row
func (r *CaseRepository) Delete(id string) error {
	if err := r.db.Delete(&models.Case{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete case %s: %w", id, err)
	}
	return nil
}
