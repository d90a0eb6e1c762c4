package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PracticeArea is a legal specialization category, optionally hierarchical
type PracticeArea struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"not null" json:"name"`
	// Short code used for strategy selection, e.g. CIV, PEN
	Code        string  `gorm:"size:10;index" json:"code,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	ParentID *string       `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent   *PracticeArea `gorm:"foreignKey:ParentID" json:"parent,omitempty"`

	Active bool `gorm:"not null;default:true" json:"active"`

	// Live-computed, not persisted
	CaseCount       int64 `gorm:"-" json:"case_count"`
	ActiveCaseCount int64 `gorm:"-" json:"active_case_count"`
}

// BeforeCreate hook to generate UUID
func (a *PracticeArea) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for PracticeArea model
func (PracticeArea) TableName() string {
	return "practice_areas"
}

// DisplayName returns the hierarchical name when a parent is loaded
func (a *PracticeArea) DisplayName() string {
	if a.Parent != nil {
		return a.Parent.Name + "/" + a.Name
	}
	return a.Name
}
