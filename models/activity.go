package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity kinds
const (
	ActivityKindTodo    = "todo"
	ActivityKindWarning = "warning"
)

// Activity is a scheduled reminder attached to a case, e.g. a deadline
// warning created by the deadline observer
type Activity struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Kind    string `gorm:"not null;default:todo" json:"kind"`
	Summary string `gorm:"not null" json:"summary"`
	Note    string `gorm:"type:text" json:"note,omitempty"`

	DueDate time.Time `gorm:"not null;index" json:"due_date"`

	// Assignee; nil means the case's responsible lawyer at display time
	UserID *string `gorm:"type:uuid" json:"user_id,omitempty"`

	DoneAt *time.Time `json:"done_at,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Activity model
func (Activity) TableName() string {
	return "activities"
}

// IsDone reports whether the activity has been completed
func (a *Activity) IsDone() bool {
	return a.DoneAt != nil
}
