package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseDocument represents a stored file attached to a case
type CaseDocument struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	// File metadata
	FileName         string `gorm:"not null" json:"file_name"`
	FileOriginalName string `gorm:"not null" json:"file_original_name"`
	StorageKey       string `gorm:"not null" json:"-"`
	FileSize         int64  `gorm:"not null" json:"file_size"`
	MimeType         string `json:"mime_type,omitempty"`

	// Document metadata
	DocumentType string  `json:"document_type,omitempty"` // e.g. "evidence", "ruling", "contract"
	Description  *string `gorm:"type:text" json:"description,omitempty"`

	UploadedByID *string `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (d *CaseDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CaseDocument model
func (CaseDocument) TableName() string {
	return "case_documents"
}

// DownloadURL returns the API download path for this document
func (d *CaseDocument) DownloadURL() string {
	return "/api/cases/" + d.CaseID + "/documents/" + d.ID + "/download"
}
