package repositories

import (
	"errors"
	"fmt"

	"caseflow/models"

	"gorm.io/gorm"
)

// PracticeAreaRepository is a thin query facade over the practice_areas table
type PracticeAreaRepository struct {
	db *gorm.DB
}

func NewPracticeAreaRepository(db *gorm.DB) *PracticeAreaRepository {
	return &PracticeAreaRepository{db: db}
}

// FindByID fetches a practice area with its parent preloaded
func (r *PracticeAreaRepository) FindByID(id string) (*models.PracticeArea, error) {
	var a models.PracticeArea
	err := r.db.Preload("Parent").First(&a, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch practice area %s: %w", id, err)
	}
	return &a, nil
}

// FindByCode fetches a practice area by its short code; nil when absent
func (r *PracticeAreaRepository) FindByCode(code string) (*models.PracticeArea, error) {
	var a models.PracticeArea
	err := r.db.First(&a, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch practice area by code %s: %w", code, err)
	}
	return &a, nil
}

// FindActive returns every active practice area
func (r *PracticeAreaRepository) FindActive() ([]models.PracticeArea, error) {
	var areas []models.PracticeArea
	err := r.db.Where("active = ?", true).Order("name ASC").Find(&areas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch practice areas: %w", err)
	}
	return areas, nil
}

// WithCaseCounts fills the live case counters on a practice area
func (r *PracticeAreaRepository) WithCaseCounts(a *models.PracticeArea) error {
	err := r.db.Model(&models.Case{}).
		Where("practice_area_id = ?", a.ID).
		Count(&a.CaseCount).Error
	if err != nil {
		return fmt.Errorf("failed to count cases for area %s: %w", a.ID, err)
	}
	err = r.db.Model(&models.Case{}).
		Where("practice_area_id = ?", a.ID).
		Where("status IN ?", []string{models.CaseStatusDraft, models.CaseStatusOpen}).
		Count(&a.ActiveCaseCount).Error
	if err != nil {
		return fmt.Errorf("failed to count active cases for area %s: %w", a.ID, err)
	}
	return nil
}

// Create inserts a new practice area row
func (r *PracticeAreaRepository) Create(a *models.PracticeArea) error {
	if err := r.db.Create(a).Error; err != nil {
		return fmt.Errorf("failed to create practice area: %w", err)
	}
	return nil
}
