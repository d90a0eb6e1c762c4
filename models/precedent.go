package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Favoured party constants for precedents. An empty value means the decision
// favored neither side.
const (
	FavouredPartyPlaintiff = "plaintiff"
	FavouredPartyDefendant = "defendant"
)

// Precedent is a prior judicial decision usable as reference material
type Precedent struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name            string     `gorm:"not null" json:"name"`
	ReferenceNumber string     `json:"reference_number,omitempty"`
	Court           string     `gorm:"not null" json:"court"`
	DecisionDate    *time.Time `json:"decision_date,omitempty"`

	// Which party the decision favored; empty when neutral
	FavouredParty *string `gorm:"size:20" json:"favoured_party,omitempty"`

	PracticeAreaID *string       `gorm:"type:uuid;index" json:"practice_area_id,omitempty"`
	PracticeArea   *PracticeArea `gorm:"foreignKey:PracticeAreaID" json:"practice_area,omitempty"`

	LegalPrinciple string `gorm:"type:text;not null" json:"legal_principle"`
	Summary        string `gorm:"type:text" json:"summary,omitempty"`

	IsBinding bool `gorm:"not null;default:false" json:"is_binding"`

	// Cases that cite this precedent
	Cases []Case `gorm:"many2many:case_precedents;" json:"cases,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Precedent) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Precedent model
func (Precedent) TableName() string {
	return "precedents"
}

// Favors reports whether the precedent favors the given party role
func (p *Precedent) Favors(role string) bool {
	return p.FavouredParty != nil && *p.FavouredParty == role
}

// IsNeutral reports whether the precedent favors neither party
func (p *Precedent) IsNeutral() bool {
	return p.FavouredParty == nil || *p.FavouredParty == ""
}

// IsValidFavouredParty checks the favoured party enumeration
func IsValidFavouredParty(party string) bool {
	return party == FavouredPartyPlaintiff || party == FavouredPartyDefendant
}
