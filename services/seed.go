package services

import (
	"log"

	"caseflow/models"

	"gorm.io/gorm"
)

// SeedPracticeAreas creates the default practice area catalog when it is
// absent. Codes drive scoring strategy selection, so the defaults stay
// aligned with the registered strategies.
func SeedPracticeAreas(db *gorm.DB) error {
	defaults := []models.PracticeArea{
		{Name: "Civil Law", Code: "CIV"},
		{Name: "Criminal Law", Code: "PEN"},
		{Name: "Labor Law", Code: "LAB"},
		{Name: "Commercial Law", Code: "COM"},
		{Name: "Family Law", Code: "FAM"},
	}

	for _, area := range defaults {
		var existing models.PracticeArea
		err := db.Where("code = ?", area.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		area.Active = true
		if err := db.Create(&area).Error; err != nil {
			return err
		}
		log.Printf("Seeded practice area %s (%s)", area.Name, area.Code)
	}
	return nil
}
