package services

import (
	"fmt"
	"log"

	"caseflow/models"
	"caseflow/repositories"
	"caseflow/services/events"

	"gorm.io/gorm"
)

// CreateCaseInput carries the fields accepted on case creation. The code is
// always assigned from the sequence, never taken from the caller.
type CreateCaseInput struct {
	Title                   string
	Facts                   *string
	ClientID                string
	ClientRole              *string
	Status                  string
	ResponsibleLawyerID     *string
	PracticeAreaID          *string
	CaseStrength            *string
	EvidenceStrength        *string
	Complexity              *string
	ClaimAmount             float64
	RecoveryAmount          float64
	LegalCosts              float64
	EstimatedDurationMonths int
}

// CaseService orchestrates the case write path: validation chain, state
// machine, persistence, then event dispatch. Reads recompute the derived
// scoring fields.
type CaseService struct {
	db          *gorm.DB
	cases       *repositories.CaseRepository
	chain       *ValidationChain
	machine     *StateMachine
	dispatcher  *events.Dispatcher
	successRate *SuccessRateService
	precedents  *PrecedentAnalysisService
}

func NewCaseService(
	db *gorm.DB,
	cases *repositories.CaseRepository,
	chain *ValidationChain,
	machine *StateMachine,
	dispatcher *events.Dispatcher,
	successRate *SuccessRateService,
	precedents *PrecedentAnalysisService,
) *CaseService {
	return &CaseService{
		db:          db,
		cases:       cases,
		chain:       chain,
		machine:     machine,
		dispatcher:  dispatcher,
		successRate: successRate,
		precedents:  precedents,
	}
}

// Machine exposes the state machine for allowed-transition listings
func (s *CaseService) Machine() *StateMachine {
	return s.machine
}

// Create validates and persists a new case. Cases start in draft; a
// different initial status is treated as a transition from draft so the
// enter/exit hooks still apply.
func (s *CaseService) Create(input CreateCaseInput, actor events.Actor) (*models.Case, error) {
	cs := models.ChangeSet{
		models.FieldTitle:                   input.Title,
		models.FieldClientID:                input.ClientID,
		models.FieldClaimAmount:             input.ClaimAmount,
		models.FieldRecoveryAmount:          input.RecoveryAmount,
		models.FieldLegalCosts:              input.LegalCosts,
		models.FieldEstimatedDurationMonths: input.EstimatedDurationMonths,
	}
	if input.Facts != nil {
		cs[models.FieldFacts] = *input.Facts
	}
	if input.ClientRole != nil {
		cs[models.FieldClientRole] = *input.ClientRole
	}
	if input.ResponsibleLawyerID != nil {
		cs[models.FieldResponsibleLawyerID] = *input.ResponsibleLawyerID
	}
	if input.PracticeAreaID != nil {
		cs[models.FieldPracticeAreaID] = *input.PracticeAreaID
	}
	if input.CaseStrength != nil {
		cs[models.FieldCaseStrength] = *input.CaseStrength
	}
	if input.EvidenceStrength != nil {
		cs[models.FieldEvidenceStrength] = *input.EvidenceStrength
	}
	if input.Complexity != nil {
		cs[models.FieldComplexity] = *input.Complexity
	}

	status := input.Status
	if status == "" {
		status = models.CaseStatusDraft
	}
	if !models.IsValidCaseStatus(status) {
		return nil, NewValidationError(fmt.Sprintf("invalid case status %q", status))
	}
	cs[models.FieldStatus] = status

	if err := s.chain.Validate(nil, cs); err != nil {
		return nil, err
	}

	if status != models.CaseStatusDraft {
		enriched, err := s.machine.Transition(nil, models.CaseStatusDraft, status, cs)
		if err != nil {
			return nil, err
		}
		cs = enriched
	}

	code, err := EnsureUniqueCaseCode(s.db)
	if err != nil {
		return nil, err
	}

	c := buildCase(code, cs)
	if err := s.cases.Create(c); err != nil {
		return nil, err
	}

	s.dispatcher.Notify(events.NewCaseCreatedEvent(c, actor))
	if status != models.CaseStatusDraft {
		s.dispatcher.Notify(events.NewStateChangedEvent(c, models.CaseStatusDraft, status, actor))
	}
	return s.Get(c.ID)
}

// Update runs the full mutation pipeline over an existing case. The change
// set may carry any writable fields; a status change triggers the state
// machine and its hooks. The code is immutable: a proposed code change is
// dropped with a warning.
func (s *CaseService) Update(caseID string, cs models.ChangeSet, actor events.Actor) (*models.Case, error) {
	current, err := s.cases.FindByID(caseID)
	if err != nil {
		return nil, err
	}

	cs = cs.Clone()
	if cs.Has(models.FieldCode) {
		log.Printf("[WARN] ignoring attempt to change code of case %s", current.Code)
		delete(cs, models.FieldCode)
	}

	if err := s.chain.Validate(current, cs); err != nil {
		return nil, err
	}

	oldStatus := current.Status
	newStatus := cs.EffectiveStatus(current)
	statusChanged := cs.Has(models.FieldStatus) && newStatus != oldStatus

	if statusChanged {
		enriched, err := s.machine.Transition(current, oldStatus, newStatus, cs)
		if err != nil {
			return nil, err
		}
		cs = enriched
	}

	oldLawyerID := ""
	if current.ResponsibleLawyerID != nil {
		oldLawyerID = *current.ResponsibleLawyerID
	}

	oldValues := snapshotValues(current, cs)
	if err := s.cases.ApplyChanges(caseID, cs); err != nil {
		return nil, err
	}

	updated, err := s.cases.FindByID(caseID)
	if err != nil {
		return nil, err
	}

	s.dispatchUpdateEvents(updated, cs, oldValues, oldStatus, newStatus, oldLawyerID, statusChanged, actor)
	return s.Get(caseID)
}

// Get fetches a case and refreshes its derived fields
func (s *CaseService) Get(caseID string) (*models.Case, error) {
	c, err := s.cases.FindByID(caseID)
	if err != nil {
		return nil, err
	}
	if err := s.refreshDerived(c); err != nil {
		log.Printf("[WARN] failed to refresh derived fields for case %s: %v", c.Code, err)
	}
	return c, nil
}

// refreshDerived recomputes the success rate and precedent counts and
// stores them on the row
func (s *CaseService) refreshDerived(c *models.Case) error {
	areaID := ""
	if c.PracticeAreaID != nil {
		areaID = *c.PracticeAreaID
	}
	role := ""
	if c.ClientRole != nil {
		role = *c.ClientRole
	}

	summary, err := s.precedents.Summary(areaID, role)
	if err != nil {
		return err
	}

	rate, err := s.successRate.Compute(c)
	if err != nil {
		return err
	}

	c.SuccessRate = rate
	c.PrecedentCount = summary.TotalPrecedents
	c.FavorablePrecedentCount = summary.FavorableCount

	return s.cases.ApplyChanges(c.ID, models.ChangeSet{
		"success_rate":              rate,
		"precedent_count":           summary.TotalPrecedents,
		"favorable_precedent_count": summary.FavorableCount,
	})
}

func (s *CaseService) dispatchUpdateEvents(
	c *models.Case,
	cs models.ChangeSet,
	oldValues map[string]any,
	oldStatus, newStatus, oldLawyerID string,
	statusChanged bool,
	actor events.Actor,
) {
	if statusChanged {
		s.dispatcher.Notify(events.NewStateChangedEvent(c, oldStatus, newStatus, actor))
		if newStatus == models.CaseStatusClosed {
			outcome := ""
			if c.Outcome != nil {
				outcome = *c.Outcome
			}
			s.dispatcher.Notify(events.NewCaseClosedEvent(c, outcome, actor))
		}
	}

	if cs.Has(models.FieldResponsibleLawyerID) {
		newLawyerID, _ := cs.String(models.FieldResponsibleLawyerID)
		if newLawyerID != oldLawyerID {
			s.dispatcher.Notify(events.NewLawyerAssignedEvent(c, oldLawyerID, newLawyerID, actor))
		}
	}

	newValues := map[string]any(cs)
	s.dispatcher.Notify(events.NewCaseUpdatedEvent(c, oldValues, newValues, actor))
}

// snapshotValues captures the current values of the fields a change set
// touches, for the event's old-value map
func snapshotValues(c *models.Case, cs models.ChangeSet) map[string]any {
	old := make(map[string]any, len(cs))
	for field := range cs {
		switch field {
		case models.FieldTitle:
			old[field] = c.Title
		case models.FieldFacts:
			old[field] = c.Facts
		case models.FieldStatus:
			old[field] = c.Status
		case models.FieldOpenDate:
			old[field] = c.OpenDate
		case models.FieldCloseDate:
			old[field] = c.CloseDate
		case models.FieldClientID:
			old[field] = c.ClientID
		case models.FieldClientRole:
			old[field] = c.ClientRole
		case models.FieldResponsibleLawyerID:
			old[field] = c.ResponsibleLawyerID
		case models.FieldPracticeAreaID:
			old[field] = c.PracticeAreaID
		case models.FieldCaseStrength:
			old[field] = c.CaseStrength
		case models.FieldEvidenceStrength:
			old[field] = c.EvidenceStrength
		case models.FieldComplexity:
			old[field] = c.Complexity
		case models.FieldClaimAmount:
			old[field] = c.ClaimAmount
		case models.FieldRecoveryAmount:
			old[field] = c.RecoveryAmount
		case models.FieldLegalCosts:
			old[field] = c.LegalCosts
		case models.FieldOutcome:
			old[field] = c.Outcome
		case models.FieldEstimatedDurationMonths:
			old[field] = c.EstimatedDurationMonths
		case models.FieldActualDurationDays:
			old[field] = c.ActualDurationDays
		}
	}
	return old
}

// buildCase materializes a new Case row from a merged change set
func buildCase(code string, cs models.ChangeSet) *models.Case {
	c := &models.Case{Code: code}

	if v, ok := cs.String(models.FieldTitle); ok {
		c.Title = v
	}
	if v, ok := cs.String(models.FieldFacts); ok {
		c.Facts = &v
	}
	if v, ok := cs.String(models.FieldClientID); ok {
		c.ClientID = v
	}
	if v, ok := cs.String(models.FieldClientRole); ok && v != "" {
		c.ClientRole = &v
	}
	c.Status = cs.EffectiveStatus(nil)
	if v, ok := cs.Time(models.FieldOpenDate); ok {
		c.OpenDate = &v
	}
	if v, ok := cs.Time(models.FieldCloseDate); ok {
		c.CloseDate = &v
	}
	if v, ok := cs.String(models.FieldResponsibleLawyerID); ok && v != "" {
		c.ResponsibleLawyerID = &v
	}
	if v, ok := cs.String(models.FieldPracticeAreaID); ok && v != "" {
		c.PracticeAreaID = &v
	}
	if v, ok := cs.String(models.FieldCaseStrength); ok && v != "" {
		c.CaseStrength = &v
	}
	if v, ok := cs.String(models.FieldEvidenceStrength); ok && v != "" {
		c.EvidenceStrength = &v
	}
	if v, ok := cs.String(models.FieldComplexity); ok && v != "" {
		c.Complexity = &v
	}
	if v, ok := cs.Float(models.FieldClaimAmount); ok {
		c.ClaimAmount = v
	}
	if v, ok := cs.Float(models.FieldRecoveryAmount); ok {
		c.RecoveryAmount = v
	}
	if v, ok := cs.Float(models.FieldLegalCosts); ok {
		c.LegalCosts = v
	}
	if v, ok := cs.Float(models.FieldEstimatedDurationMonths); ok {
		c.EstimatedDurationMonths = int(v)
	}
	if v, ok := cs.Float(models.FieldActualDurationDays); ok {
		days := int(v)
		c.ActualDurationDays = &days
	}
	return c
}
