package services

import (
	"errors"
	"fmt"
	"time"

	"caseflow/models"

	"gorm.io/gorm"
)

// Case code prefix, e.g. CASE-2026-00042
const caseCodePrefix = "CASE"

// GenerateCaseCode produces the next case code for the current year.
// Format: {PREFIX}-{YEAR}-{SEQUENCE}
func GenerateCaseCode(db *gorm.DB) (string, error) {
	currentYear := time.Now().Year()

	// Find the highest sequence number for this year
	var maxCase models.Case
	err := db.Where("code LIKE ?", fmt.Sprintf("%s-%d-%%", caseCodePrefix, currentYear)).
		Order("code DESC").
		First(&maxCase).Error

	sequence := 1
	if err == nil {
		var parsedSeq int
		_, scanErr := fmt.Sscanf(maxCase.Code, fmt.Sprintf("%s-%d-%%d", caseCodePrefix, currentYear), &parsedSeq)
		if scanErr == nil {
			sequence = parsedSeq + 1
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to query max case code: %w", err)
	}

	return fmt.Sprintf("%s-%d-%05d", caseCodePrefix, currentYear, sequence), nil
}

// EnsureUniqueCaseCode generates a case code with retry logic in case a
// concurrent creation grabbed the same sequence number
func EnsureUniqueCaseCode(db *gorm.DB) (string, error) {
	const maxRetries = 10

	for i := 0; i < maxRetries; i++ {
		code, err := GenerateCaseCode(db)
		if err != nil {
			return "", err
		}

		var count int64
		if err := db.Model(&models.Case{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check case code uniqueness: %w", err)
		}
		if count == 0 {
			return code, nil
		}
		// Collision detected, retry
	}

	return "", fmt.Errorf("failed to generate unique case code after %d retries", maxRetries)
}
