package models

import "time"

// Column names used as ChangeSet keys. Keys match the database columns so a
// merged ChangeSet can be handed to GORM Updates directly.
const (
	FieldCode                    = "code"
	FieldTitle                   = "title"
	FieldFacts                   = "facts"
	FieldStatus                  = "status"
	FieldOpenDate                = "open_date"
	FieldCloseDate               = "close_date"
	FieldClientID                = "client_id"
	FieldClientRole              = "client_role"
	FieldResponsibleLawyerID     = "responsible_lawyer_id"
	FieldPracticeAreaID          = "practice_area_id"
	FieldCaseStrength            = "case_strength"
	FieldEvidenceStrength        = "evidence_strength"
	FieldComplexity              = "complexity"
	FieldClaimAmount             = "claim_amount"
	FieldRecoveryAmount          = "recovery_amount"
	FieldLegalCosts              = "legal_costs"
	FieldOutcome                 = "outcome"
	FieldEstimatedDurationMonths = "estimated_duration_months"
	FieldActualDurationDays      = "actual_duration_days"
)

// ChangeSet is the pending set of field changes for a case write. A key that
// is present with a nil value clears the column; an absent key leaves the
// current value untouched.
type ChangeSet map[string]any

// Has reports whether a field is part of the pending change
func (cs ChangeSet) Has(field string) bool {
	_, ok := cs[field]
	return ok
}

// Clone returns a shallow copy so hooks can work without mutating the caller's set
func (cs ChangeSet) Clone() ChangeSet {
	out := make(ChangeSet, len(cs))
	for k, v := range cs {
		out[k] = v
	}
	return out
}

// Merge applies a patch on top of the change set, overwriting existing keys
func (cs ChangeSet) Merge(patch ChangeSet) {
	for k, v := range patch {
		cs[k] = v
	}
}

// Fields returns the list of changed field names
func (cs ChangeSet) Fields() []string {
	fields := make([]string, 0, len(cs))
	for k := range cs {
		fields = append(fields, k)
	}
	return fields
}

// String reads a string-valued field, tolerating *string values
func (cs ChangeSet) String(field string) (string, bool) {
	v, ok := cs[field]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	}
	return "", false
}

// Float reads a numeric field, tolerating the integer types JSON decoding
// and callers commonly produce
func (cs ChangeSet) Float(field string) (float64, bool) {
	v, ok := cs[field]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Time reads a date field, tolerating *time.Time values
func (cs ChangeSet) Time(field string) (time.Time, bool) {
	v, ok := cs[field]
	if !ok || v == nil {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

// EffectiveStatus resolves the status a write would leave the case in
func (cs ChangeSet) EffectiveStatus(c *Case) string {
	if s, ok := cs.String(FieldStatus); ok {
		return s
	}
	if c != nil {
		return c.Status
	}
	return CaseStatusDraft
}

// EffectiveLawyerID resolves the responsible lawyer after the write
func (cs ChangeSet) EffectiveLawyerID(c *Case) string {
	if cs.Has(FieldResponsibleLawyerID) {
		s, _ := cs.String(FieldResponsibleLawyerID)
		return s
	}
	if c != nil && c.ResponsibleLawyerID != nil {
		return *c.ResponsibleLawyerID
	}
	return ""
}

// EffectiveClientRole resolves the client role after the write
func (cs ChangeSet) EffectiveClientRole(c *Case) string {
	if cs.Has(FieldClientRole) {
		s, _ := cs.String(FieldClientRole)
		return s
	}
	if c != nil && c.ClientRole != nil {
		return *c.ClientRole
	}
	return ""
}

// EffectivePracticeAreaID resolves the practice area after the write
func (cs ChangeSet) EffectivePracticeAreaID(c *Case) string {
	if cs.Has(FieldPracticeAreaID) {
		s, _ := cs.String(FieldPracticeAreaID)
		return s
	}
	if c != nil && c.PracticeAreaID != nil {
		return *c.PracticeAreaID
	}
	return ""
}

// EffectiveOutcome resolves the outcome after the write
func (cs ChangeSet) EffectiveOutcome(c *Case) string {
	if cs.Has(FieldOutcome) {
		s, _ := cs.String(FieldOutcome)
		return s
	}
	if c != nil && c.Outcome != nil {
		return *c.Outcome
	}
	return ""
}

// EffectiveFloat resolves a financial field after the write
func (cs ChangeSet) EffectiveFloat(field string, c *Case) float64 {
	if f, ok := cs.Float(field); ok {
		return f
	}
	if c == nil {
		return 0
	}
	switch field {
	case FieldClaimAmount:
		return c.ClaimAmount
	case FieldRecoveryAmount:
		return c.RecoveryAmount
	case FieldLegalCosts:
		return c.LegalCosts
	}
	return 0
}

// EffectiveOpenDate resolves the open date after the write
func (cs ChangeSet) EffectiveOpenDate(c *Case) *time.Time {
	if cs.Has(FieldOpenDate) {
		if t, ok := cs.Time(FieldOpenDate); ok {
			return &t
		}
		return nil
	}
	if c != nil {
		return c.OpenDate
	}
	return nil
}

// EffectiveCloseDate resolves the close date after the write
func (cs ChangeSet) EffectiveCloseDate(c *Case) *time.Time {
	if cs.Has(FieldCloseDate) {
		if t, ok := cs.Time(FieldCloseDate); ok {
			return &t
		}
		return nil
	}
	if c != nil {
		return c.CloseDate
	}
	return nil
}
