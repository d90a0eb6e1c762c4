package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseFollower subscribes a user to a case's notifications
type CaseFollower struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CaseID string `gorm:"type:uuid;not null;uniqueIndex:idx_case_follower" json:"case_id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_case_follower" json:"user_id"`
}

// BeforeCreate hook to generate UUID
func (f *CaseFollower) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseFollower model
func (CaseFollower) TableName() string {
	return "case_followers"
}
