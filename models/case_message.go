package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseMessage is an entry on a case's activity feed
type CaseMessage struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Subject string `json:"subject,omitempty"`
	// Sanitized HTML body
	Body string `gorm:"type:text;not null" json:"body"`

	// Author attribution, denormalized for historical accuracy
	AuthorID   *string `gorm:"type:uuid" json:"author_id,omitempty"`
	AuthorName string  `json:"author_name,omitempty"`
}

// BeforeCreate hook to generate UUID
func (m *CaseMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseMessage model
func (CaseMessage) TableName() string {
	return "case_messages"
}
