package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case lifecycle states
const (
	CaseStatusDraft  = "draft"
	CaseStatusOpen   = "open"
	CaseStatusOnHold = "on_hold"
	CaseStatusClosed = "closed"
)

// Client role constants (role of the client in the case)
const (
	ClientRolePlaintiff = "plaintiff"
	ClientRoleDefendant = "defendant"
)

// Case outcome constants (set when a case is closed)
const (
	CaseOutcomeWon       = "won"
	CaseOutcomeLost      = "lost"
	CaseOutcomeSettled   = "settled"
	CaseOutcomeDismissed = "dismissed"
	CaseOutcomeWithdrawn = "withdrawn"
)

// Evidence strength levels
const (
	EvidenceWeak       = "weak"
	EvidenceModerate   = "moderate"
	EvidenceStrong     = "strong"
	EvidenceConclusive = "conclusive"
)

// Case strength levels
const (
	CaseStrengthVeryWeak   = "very_weak"
	CaseStrengthWeak       = "weak"
	CaseStrengthModerate   = "moderate"
	CaseStrengthStrong     = "strong"
	CaseStrengthVeryStrong = "very_strong"
)

// Case represents a legal case tracked through its lifecycle
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Case identification. Code is assigned once from a sequence and never changes.
	Code  string  `gorm:"not null;uniqueIndex" json:"code"`
	Title string  `gorm:"not null" json:"title"`
	Facts *string `gorm:"type:text" json:"facts,omitempty"`

	// Client relationship (partner records live in the surrounding platform)
	ClientID   string  `gorm:"type:uuid;not null;index" json:"client_id"`
	ClientRole *string `gorm:"size:20" json:"client_role,omitempty"`

	// Status and lifecycle
	Status    string     `gorm:"not null;default:draft;index:idx_case_status" json:"status"`
	OpenDate  *time.Time `json:"open_date,omitempty"`
	CloseDate *time.Time `json:"close_date,omitempty"`

	// Assignment
	ResponsibleLawyerID *string  `gorm:"type:uuid;index" json:"responsible_lawyer_id,omitempty"`
	ResponsibleLawyer   *Lawyer  `gorm:"foreignKey:ResponsibleLawyerID" json:"responsible_lawyer,omitempty"`
	Team                []Lawyer `gorm:"many2many:case_team;" json:"team,omitempty"`

	// Classification
	PracticeAreaID *string       `gorm:"type:uuid;index" json:"practice_area_id,omitempty"`
	PracticeArea   *PracticeArea `gorm:"foreignKey:PracticeAreaID" json:"practice_area,omitempty"`

	CaseStrength     *string `gorm:"size:20" json:"case_strength,omitempty"`
	EvidenceStrength *string `gorm:"size:20" json:"evidence_strength,omitempty"`
	Complexity       *string `gorm:"size:20" json:"complexity,omitempty"`

	// Financial estimates
	ClaimAmount    float64 `gorm:"not null;default:0" json:"claim_amount"`
	RecoveryAmount float64 `gorm:"not null;default:0" json:"recovery_amount"`
	LegalCosts     float64 `gorm:"not null;default:0" json:"legal_costs"`

	// Outcome (only meaningful once closed)
	Outcome *string `gorm:"size:20" json:"outcome,omitempty"`

	// Duration tracking
	EstimatedDurationMonths int  `gorm:"not null;default:0" json:"estimated_duration_months"`
	ActualDurationDays      *int `json:"actual_duration_days,omitempty"`

	// Derived fields, recomputed on read
	SuccessRate             float64 `gorm:"not null;default:0" json:"success_rate"`
	PrecedentCount          int     `gorm:"not null;default:0" json:"precedent_count"`
	FavorablePrecedentCount int     `gorm:"not null;default:0" json:"favorable_precedent_count"`

	// Cited precedents
	Precedents []Precedent `gorm:"many2many:case_precedents;" json:"precedents,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsOpen checks if the case is open
func (c *Case) IsOpen() bool {
	return c.Status == CaseStatusOpen
}

// IsClosed checks if the case is closed
func (c *Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}

// IsDraft checks if the case is still in intake
func (c *Case) IsDraft() bool {
	return c.Status == CaseStatusDraft
}

// IsValidCaseStatus checks if the status is one of the lifecycle states
func IsValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusDraft, CaseStatusOpen, CaseStatusOnHold, CaseStatusClosed:
		return true
	}
	return false
}

// IsValidClientRole checks if the client role is valid
func IsValidClientRole(role string) bool {
	return role == ClientRolePlaintiff || role == ClientRoleDefendant
}

// IsDecidedOutcome reports whether the outcome counts toward win-rate history
func IsDecidedOutcome(outcome string) bool {
	return outcome == CaseOutcomeWon || outcome == CaseOutcomeLost
}
