package repositories

import (
	"fmt"

	"caseflow/models"

	"gorm.io/gorm"
)

// LawyerRepository is a thin query facade over the lawyers table
type LawyerRepository struct {
	db *gorm.DB
}

func NewLawyerRepository(db *gorm.DB) *LawyerRepository {
	return &LawyerRepository{db: db}
}

// FindByID fetches a lawyer with specializations preloaded
func (r *LawyerRepository) FindByID(id string) (*models.Lawyer, error) {
	var l models.Lawyer
	err := r.db.Preload("Specialties").First(&l, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lawyer %s: %w", id, err)
	}
	return &l, nil
}

// FindLawyers returns all employees flagged as lawyers
func (r *LawyerRepository) FindLawyers() ([]models.Lawyer, error) {
	var lawyers []models.Lawyer
	err := r.db.Where("is_lawyer = ?", true).Order("name ASC").Find(&lawyers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lawyers: %w", err)
	}
	return lawyers, nil
}

// FindSpecialists returns lawyers specialized in a practice area
func (r *LawyerRepository) FindSpecialists(practiceAreaID string) ([]models.Lawyer, error) {
	var lawyers []models.Lawyer
	err := r.db.
		Joins("JOIN lawyer_specialties ls ON ls.lawyer_id = lawyers.id").
		Where("ls.practice_area_id = ?", practiceAreaID).
		Where("is_lawyer = ?", true).
		Find(&lawyers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch specialists for area %s: %w", practiceAreaID, err)
	}
	return lawyers, nil
}

// Create inserts a new lawyer row
func (r *LawyerRepository) Create(l *models.Lawyer) error {
	if err := r.db.Create(l).Error; err != nil {
		return fmt.Errorf("failed to create lawyer: %w", err)
	}
	return nil
}
