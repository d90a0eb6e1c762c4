package services

import (
	"fmt"
	"log"

	"caseflow/models"
)

// CaseValidator checks one business rule against a proposed change set. The
// current case is nil for create operations. A blocking validator returning
// false aborts the write with its message; advisory validators always return
// true and only log.
type CaseValidator interface {
	Name() string
	Validate(c *models.Case, cs models.ChangeSet) (bool, string)
}

// Legal state adjacency. Staying in the same state is always legal and is
// handled before this map is consulted.
var allowedTransitions = map[string][]string{
	models.CaseStatusDraft:  {models.CaseStatusOpen},
	models.CaseStatusOpen:   {models.CaseStatusOnHold, models.CaseStatusClosed},
	models.CaseStatusOnHold: {models.CaseStatusOpen, models.CaseStatusClosed},
	models.CaseStatusClosed: {models.CaseStatusDraft},
}

// stateTransitionValidator rejects writes proposing an illegal status edge
type stateTransitionValidator struct{}

func (stateTransitionValidator) Name() string { return "state_transition" }

func (stateTransitionValidator) Validate(c *models.Case, cs models.ChangeSet) (bool, string) {
	if !cs.Has(models.FieldStatus) {
		return true, ""
	}

	oldStatus := models.CaseStatusDraft
	if c != nil {
		oldStatus = c.Status
	}
	newStatus := cs.EffectiveStatus(c)

	if oldStatus == newStatus {
		return true, ""
	}
	for _, allowed := range allowedTransitions[oldStatus] {
		if allowed == newStatus {
			return true, ""
		}
	}
	return false, fmt.Sprintf("invalid state transition: %s -> %s", oldStatus, newStatus)
}

// responsibleLawyerValidator requires a responsible lawyer whenever the write
// would leave the case open
type responsibleLawyerValidator struct{}

func (responsibleLawyerValidator) Name() string { return "responsible_lawyer" }

func (responsibleLawyerValidator) Validate(c *models.Case, cs models.ChangeSet) (bool, string) {
	if cs.EffectiveStatus(c) == models.CaseStatusOpen && cs.EffectiveLawyerID(c) == "" {
		return false, "assign a responsible lawyer before opening the case"
	}
	return true, ""
}

// financialValidator enforces consistency of the monetary estimates
type financialValidator struct{}

func (financialValidator) Name() string { return "financial_data" }

func (financialValidator) Validate(c *models.Case, cs models.ChangeSet) (bool, string) {
	claim := cs.EffectiveFloat(models.FieldClaimAmount, c)
	recovery := cs.EffectiveFloat(models.FieldRecoveryAmount, c)
	costs := cs.EffectiveFloat(models.FieldLegalCosts, c)

	if claim < 0 {
		return false, "claimed amount cannot be negative"
	}
	if costs < 0 {
		return false, "legal costs cannot be negative"
	}
	if claim > 0 && recovery > claim {
		return false, "estimated recovery cannot exceed the claimed amount"
	}
	return true, ""
}

// clientRoleValidator rejects roles outside the enumeration
type clientRoleValidator struct{}

func (clientRoleValidator) Name() string { return "client_role" }

func (clientRoleValidator) Validate(c *models.Case, cs models.ChangeSet) (bool, string) {
	if !cs.Has(models.FieldClientRole) {
		return true, ""
	}
	role, ok := cs.String(models.FieldClientRole)
	if !ok || role == "" {
		// Clearing the role is allowed
		return true, ""
	}
	if !models.IsValidClientRole(role) {
		return false, fmt.Sprintf("invalid client role %q: must be %s or %s",
			role, models.ClientRolePlaintiff, models.ClientRoleDefendant)
	}
	return true, ""
}

// openAdvisoryValidator warns about missing client role or practice area when
// opening a case. Never blocks.
type openAdvisoryValidator struct{}

func (openAdvisoryValidator) Name() string { return "open_advisory" }

func (openAdvisoryValidator) Validate(c *models.Case, cs models.ChangeSet) (bool, string) {
	if cs.EffectiveStatus(c) != models.CaseStatusOpen {
		return true, ""
	}
	if cs.EffectiveClientRole(c) == "" {
		log.Println("[WARN] opening case without client role - precedent analysis will be limited")
	}
	if cs.EffectivePracticeAreaID(c) == "" {
		log.Println("[WARN] opening case without practice area")
	}
	return true, ""
}

// closeAdvisoryValidator warns when a case is closed without an outcome.
// Never blocks; the outcome can be set later.
type closeAdvisoryValidator struct{}

func (closeAdvisoryValidator) Name() string { return "close_advisory" }

func (closeAdvisoryValidator) Validate(c *models.Case, cs models.ChangeSet) (bool, string) {
	if cs.EffectiveStatus(c) == models.CaseStatusClosed && cs.EffectiveOutcome(c) == "" {
		log.Println("[WARN] closing case without setting an outcome")
	}
	return true, ""
}

// ValidationChain evaluates validators in a fixed priority order. The first
// blocking failure aborts evaluation and surfaces its message.
type ValidationChain struct {
	validators []CaseValidator
}

// NewValidationChain builds the default rule chain
func NewValidationChain() *ValidationChain {
	return &ValidationChain{
		validators: []CaseValidator{
			stateTransitionValidator{},
			responsibleLawyerValidator{},
			financialValidator{},
			clientRoleValidator{},
			// Advisory rules, warnings only
			openAdvisoryValidator{},
			closeAdvisoryValidator{},
		},
	}
}

// Add appends a validator at the end of the chain
func (vc *ValidationChain) Add(v CaseValidator) {
	vc.validators = append(vc.validators, v)
}

// Remove drops every validator with the given name
func (vc *ValidationChain) Remove(name string) {
	kept := vc.validators[:0]
	for _, v := range vc.validators {
		if v.Name() != name {
			kept = append(kept, v)
		}
	}
	vc.validators = kept
}

// Validate runs the chain. Returns nil on acceptance or a *ValidationError
// carrying the failing rule's message. A panicking validator is logged and
// skipped so one broken rule cannot take the whole chain down.
func (vc *ValidationChain) Validate(c *models.Case, cs models.ChangeSet) error {
	for _, v := range vc.validators {
		ok, msg := vc.run(v, c, cs)
		if !ok {
			log.Printf("[WARN] validation failed: %s - %s", v.Name(), msg)
			return NewValidationError(msg)
		}
	}
	return nil
}

func (vc *ValidationChain) run(v CaseValidator, c *models.Case, cs models.ChangeSet) (ok bool, msg string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] validator %s panicked: %v", v.Name(), r)
			ok, msg = true, ""
		}
	}()
	return v.Validate(c, cs)
}
