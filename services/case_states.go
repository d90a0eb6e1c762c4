package services

import (
	"fmt"
	"log"
	"time"

	"caseflow/models"
)

// HookResult is the outcome of a state hook. Hooks are pure: instead of
// mutating the pending change set they return a patch which the machine
// merges only when the whole transition succeeds.
type HookResult struct {
	OK      bool
	Message string
	Patch   models.ChangeSet
}

func hookOK() HookResult {
	return HookResult{OK: true}
}

func hookPatch(patch models.ChangeSet) HookResult {
	return HookResult{OK: true, Patch: patch}
}

func hookFail(message string) HookResult {
	return HookResult{OK: false, Message: message}
}

// CaseState defines one lifecycle state: its allowed successors and the
// hooks run when entering, leaving, or validating it
type CaseState interface {
	Name() string
	AllowedTransitions() []string
	OnExit(c *models.Case, cs models.ChangeSet) HookResult
	OnEnter(c *models.Case, cs models.ChangeSet) HookResult
	Validate(c *models.Case, cs models.ChangeSet) HookResult
	RequiredFields() []string
}

// baseState supplies no-op hooks for states that don't need them
type baseState struct{}

func (baseState) OnExit(*models.Case, models.ChangeSet) HookResult  { return hookOK() }
func (baseState) OnEnter(*models.Case, models.ChangeSet) HookResult { return hookOK() }
func (baseState) Validate(*models.Case, models.ChangeSet) HookResult {
	return hookOK()
}
func (baseState) RequiredFields() []string { return nil }

// draftState is the intake state. Cases can be edited freely; leaving it
// requires a responsible lawyer. Re-entering draft (reopening) clears dates.
type draftState struct{ baseState }

func (draftState) Name() string { return models.CaseStatusDraft }

func (draftState) AllowedTransitions() []string {
	return []string{models.CaseStatusOpen}
}

func (draftState) OnExit(c *models.Case, cs models.ChangeSet) HookResult {
	if cs.EffectiveLawyerID(c) == "" {
		return hookFail("assign a responsible lawyer before opening the case")
	}
	return hookOK()
}

func (draftState) OnEnter(c *models.Case, cs models.ChangeSet) HookResult {
	// Reopening: wipe the lifecycle dates
	return hookPatch(models.ChangeSet{
		models.FieldOpenDate:  nil,
		models.FieldCloseDate: nil,
	})
}

func (draftState) RequiredFields() []string {
	return []string{models.FieldTitle, models.FieldClientID}
}

// openState is active work. Sets the open date on entry and requires a
// responsible lawyer to validate, independent of draft's exit hook, so
// direct writes that bypass draft are still covered.
type openState struct{ baseState }

func (openState) Name() string { return models.CaseStatusOpen }

func (openState) AllowedTransitions() []string {
	return []string{models.CaseStatusOnHold, models.CaseStatusClosed}
}

func (openState) OnEnter(c *models.Case, cs models.ChangeSet) HookResult {
	patch := models.ChangeSet{}
	if cs.EffectiveOpenDate(c) == nil {
		today := time.Now().Truncate(24 * time.Hour)
		patch[models.FieldOpenDate] = today
	}
	if !cs.Has(models.FieldCloseDate) {
		patch[models.FieldCloseDate] = nil
	}
	return hookPatch(patch)
}

func (openState) Validate(c *models.Case, cs models.ChangeSet) HookResult {
	if cs.EffectiveLawyerID(c) == "" {
		return hookFail("an open case must have a responsible lawyer assigned")
	}
	return hookOK()
}

func (openState) RequiredFields() []string {
	return []string{models.FieldTitle, models.FieldClientID, models.FieldResponsibleLawyerID, models.FieldPracticeAreaID}
}

// onHoldState pauses a case; it can be resumed or closed
type onHoldState struct{ baseState }

func (onHoldState) Name() string { return models.CaseStatusOnHold }

func (onHoldState) AllowedTransitions() []string {
	return []string{models.CaseStatusOpen, models.CaseStatusClosed}
}

// closedState completes a case: sets the close date and derives the actual
// duration. Closing without an outcome only warns.
type closedState struct{ baseState }

func (closedState) Name() string { return models.CaseStatusClosed }

func (closedState) AllowedTransitions() []string {
	return []string{models.CaseStatusDraft}
}

func (closedState) OnEnter(c *models.Case, cs models.ChangeSet) HookResult {
	patch := models.ChangeSet{}

	closeDate := cs.EffectiveCloseDate(c)
	if closeDate == nil {
		today := time.Now().Truncate(24 * time.Hour)
		closeDate = &today
		patch[models.FieldCloseDate] = today
	}

	if openDate := cs.EffectiveOpenDate(c); openDate != nil {
		days := int(closeDate.Sub(*openDate).Hours() / 24)
		patch[models.FieldActualDurationDays] = days
	}
	return hookPatch(patch)
}

func (closedState) OnExit(c *models.Case, cs models.ChangeSet) HookResult {
	code := ""
	if c != nil {
		code = c.Code
	}
	log.Printf("[WARN] reopening closed case %s", code)
	return hookOK()
}

func (closedState) Validate(c *models.Case, cs models.ChangeSet) HookResult {
	if cs.EffectiveOutcome(c) == "" {
		code := ""
		if c != nil {
			code = c.Code
		}
		log.Printf("[WARN] closing case %s without setting an outcome", code)
	}
	return hookOK()
}

func (closedState) RequiredFields() []string {
	return []string{models.FieldTitle, models.FieldClientID, models.FieldResponsibleLawyerID, models.FieldCloseDate}
}

// StateMachine orchestrates lifecycle transitions. Built once at startup and
// passed to the components that need it; states can be registered at runtime.
type StateMachine struct {
	states map[string]CaseState
}

// NewStateMachine builds a machine with the four lifecycle states registered
func NewStateMachine() *StateMachine {
	m := &StateMachine{states: make(map[string]CaseState)}
	m.Register(draftState{})
	m.Register(openState{})
	m.Register(onHoldState{})
	m.Register(closedState{})
	return m
}

// Register adds or replaces a state
func (m *StateMachine) Register(s CaseState) {
	m.states[s.Name()] = s
}

// State returns a registered state, or nil for unknown names
func (m *StateMachine) State(name string) CaseState {
	return m.states[name]
}

// AllowedTransitions lists the legal successor states of a state
func (m *StateMachine) AllowedTransitions(current string) []string {
	s := m.states[current]
	if s == nil {
		return nil
	}
	return s.AllowedTransitions()
}

// RequiredFields lists the fields a state expects to be populated
func (m *StateMachine) RequiredFields(name string) []string {
	s := m.states[name]
	if s == nil {
		return nil
	}
	return s.RequiredFields()
}

// Transition runs the full protocol for a proposed state change and returns
// the enriched change set. The input set is never mutated: hook patches are
// merged into a working copy and only a fully successful transition is
// returned. A no-op (old == new) succeeds without invoking any hook.
//
// Hook rejections come back as *ValidationError; an unregistered state name
// is a configuration error.
func (m *StateMachine) Transition(c *models.Case, oldState, newState string, cs models.ChangeSet) (models.ChangeSet, error) {
	if oldState == newState {
		return cs, nil
	}

	current := m.states[oldState]
	if current == nil {
		return cs, fmt.Errorf("unknown case state %q", oldState)
	}
	target := m.states[newState]
	if target == nil {
		return cs, fmt.Errorf("unknown case state %q", newState)
	}

	allowed := false
	for _, t := range current.AllowedTransitions() {
		if t == newState {
			allowed = true
			break
		}
	}
	if !allowed {
		return cs, NewValidationError(
			fmt.Sprintf("invalid state transition: %s -> %s", oldState, newState))
	}

	working := cs.Clone()

	for _, step := range []struct {
		name string
		run  func() HookResult
	}{
		{"on_exit", func() HookResult { return current.OnExit(c, working) }},
		{"on_enter", func() HookResult { return target.OnEnter(c, working) }},
		{"validate", func() HookResult { return target.Validate(c, working) }},
	} {
		res := step.run()
		if !res.OK {
			log.Printf("[WARN] %s rejected %s -> %s: %s", step.name, oldState, newState, res.Message)
			return cs, NewValidationError(res.Message)
		}
		working.Merge(res.Patch)
	}

	return working, nil
}
