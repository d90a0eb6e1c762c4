package services

import (
	"testing"
	"time"

	"caseflow/models"

	"github.com/stretchr/testify/assert"
)

func TestStateMachineTransitions(t *testing.T) {
	machine := NewStateMachine()
	lawyerID := "lawyer-1"

	t.Run("Draft To Open Sets Open Date", func(t *testing.T) {
		c := &models.Case{Status: models.CaseStatusDraft, ResponsibleLawyerID: &lawyerID}
		cs := models.ChangeSet{models.FieldStatus: models.CaseStatusOpen}

		result, err := machine.Transition(c, models.CaseStatusDraft, models.CaseStatusOpen, cs)
		assert.NoError(t, err)
		assert.True(t, result.Has(models.FieldOpenDate))
		openDate, ok := result.Time(models.FieldOpenDate)
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now(), openDate, 25*time.Hour)
		// Close date is wiped on (re)open
		assert.True(t, result.Has(models.FieldCloseDate))
		_, hasClose := result.Time(models.FieldCloseDate)
		assert.False(t, hasClose)
	})

	t.Run("Draft To Open Without Lawyer Fails", func(t *testing.T) {
		c := &models.Case{Status: models.CaseStatusDraft}
		cs := models.ChangeSet{models.FieldStatus: models.CaseStatusOpen}

		_, err := machine.Transition(c, models.CaseStatusDraft, models.CaseStatusOpen, cs)
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("Explicit Open Date Is Respected", func(t *testing.T) {
		chosen := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		c := &models.Case{Status: models.CaseStatusDraft, ResponsibleLawyerID: &lawyerID}
		cs := models.ChangeSet{
			models.FieldStatus:   models.CaseStatusOpen,
			models.FieldOpenDate: chosen,
		}

		result, err := machine.Transition(c, models.CaseStatusDraft, models.CaseStatusOpen, cs)
		assert.NoError(t, err)
		openDate, _ := result.Time(models.FieldOpenDate)
		assert.Equal(t, chosen, openDate)
	})

	t.Run("Closing Sets Close Date And Duration", func(t *testing.T) {
		opened := time.Now().Add(-40 * 24 * time.Hour)
		c := &models.Case{
			Status:              models.CaseStatusOpen,
			ResponsibleLawyerID: &lawyerID,
			OpenDate:            &opened,
		}
		cs := models.ChangeSet{models.FieldStatus: models.CaseStatusClosed}

		result, err := machine.Transition(c, models.CaseStatusOpen, models.CaseStatusClosed, cs)
		assert.NoError(t, err)
		assert.True(t, result.Has(models.FieldCloseDate))

		days, ok := result.Float(models.FieldActualDurationDays)
		assert.True(t, ok)
		assert.InDelta(t, 40, days, 1)
	})

	t.Run("Reopening A Closed Case Clears Dates", func(t *testing.T) {
		opened := time.Now().Add(-60 * 24 * time.Hour)
		closed := time.Now()
		c := &models.Case{
			Status:              models.CaseStatusClosed,
			ResponsibleLawyerID: &lawyerID,
			OpenDate:            &opened,
			CloseDate:           &closed,
		}
		cs := models.ChangeSet{models.FieldStatus: models.CaseStatusDraft}

		result, err := machine.Transition(c, models.CaseStatusClosed, models.CaseStatusDraft, cs)
		assert.NoError(t, err)
		assert.True(t, result.Has(models.FieldOpenDate))
		assert.True(t, result.Has(models.FieldCloseDate))
		assert.Nil(t, result[models.FieldOpenDate])
		assert.Nil(t, result[models.FieldCloseDate])
	})

	t.Run("Illegal Edge Is A Validation Error", func(t *testing.T) {
		c := &models.Case{Status: models.CaseStatusDraft}
		cs := models.ChangeSet{models.FieldStatus: models.CaseStatusClosed}

		_, err := machine.Transition(c, models.CaseStatusDraft, models.CaseStatusClosed, cs)
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Contains(t, err.Error(), "invalid state transition")
	})

	t.Run("Unknown State Is Not A Validation Error", func(t *testing.T) {
		c := &models.Case{Status: models.CaseStatusDraft}
		_, err := machine.Transition(c, "limbo", models.CaseStatusOpen, models.ChangeSet{})
		assert.Error(t, err)
		assert.False(t, IsValidationError(err))
	})

	t.Run("Same State Is A No Op", func(t *testing.T) {
		c := &models.Case{Status: models.CaseStatusOpen}
		cs := models.ChangeSet{models.FieldTitle: "renamed"}

		result, err := machine.Transition(c, models.CaseStatusOpen, models.CaseStatusOpen, cs)
		assert.NoError(t, err)
		// No hooks ran: the set comes back untouched
		assert.Equal(t, cs, result)
		assert.False(t, result.Has(models.FieldOpenDate))
	})

	t.Run("Failed Transition Leaves Input Untouched", func(t *testing.T) {
		c := &models.Case{Status: models.CaseStatusDraft}
		cs := models.ChangeSet{models.FieldStatus: models.CaseStatusOpen}

		result, err := machine.Transition(c, models.CaseStatusDraft, models.CaseStatusOpen, cs)
		assert.Error(t, err)
		assert.Len(t, result, 1)
		assert.False(t, cs.Has(models.FieldOpenDate))
	})
}

func TestStateMachineIntrospection(t *testing.T) {
	machine := NewStateMachine()

	t.Run("Allowed Transitions Per State", func(t *testing.T) {
		assert.Equal(t, []string{models.CaseStatusOpen}, machine.AllowedTransitions(models.CaseStatusDraft))
		assert.ElementsMatch(t,
			[]string{models.CaseStatusOnHold, models.CaseStatusClosed},
			machine.AllowedTransitions(models.CaseStatusOpen))
		assert.ElementsMatch(t,
			[]string{models.CaseStatusOpen, models.CaseStatusClosed},
			machine.AllowedTransitions(models.CaseStatusOnHold))
		assert.Equal(t, []string{models.CaseStatusDraft}, machine.AllowedTransitions(models.CaseStatusClosed))
		assert.Nil(t, machine.AllowedTransitions("limbo"))
	})

	t.Run("Required Fields Grow With The Lifecycle", func(t *testing.T) {
		draft := machine.RequiredFields(models.CaseStatusDraft)
		open := machine.RequiredFields(models.CaseStatusOpen)
		assert.Contains(t, draft, models.FieldTitle)
		assert.Contains(t, open, models.FieldResponsibleLawyerID)
		assert.Greater(t, len(open), len(draft))
	})

	t.Run("Registered State Replaces Existing", func(t *testing.T) {
		m := NewStateMachine()
		m.Register(draftState{})
		assert.NotNil(t, m.State(models.CaseStatusDraft))
	})
}
