package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lawyer represents a firm employee eligible to carry cases
type Lawyer struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"index" json:"email,omitempty"`
	Title string `json:"title,omitempty"`

	IsLawyer          bool `gorm:"not null;default:true" json:"is_lawyer"`
	YearsOfExperience int  `gorm:"not null;default:0" json:"years_of_experience"`

	// Practice areas this lawyer specializes in
	Specialties []PracticeArea `gorm:"many2many:lawyer_specialties;" json:"specialties,omitempty"`

	// Live-computed, not persisted
	ActiveCaseCount int64 `gorm:"-" json:"active_case_count"`
}

// BeforeCreate hook to generate UUID
func (l *Lawyer) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Lawyer model
func (Lawyer) TableName() string {
	return "lawyers"
}
