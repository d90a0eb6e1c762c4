package services

import (
	"strings"
	"testing"

	"caseflow/models"
	"caseflow/repositories"
	"caseflow/services/events"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// recordingObserver captures every event it receives, in order
type recordingObserver struct {
	events []events.Event
}

func (r *recordingObserver) Name() string                { return "recording" }
func (r *recordingObserver) Priority() int               { return 10 }
func (r *recordingObserver) CanHandle(events.Event) bool { return true }
func (r *recordingObserver) Handle(e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingObserver) types() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func setupCaseServiceTest() (*gorm.DB, *CaseService, *recordingObserver) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.PracticeArea{}, &models.Lawyer{}, &models.Case{}, &models.Precedent{})

	cases := repositories.NewCaseRepository(db)
	lawyers := repositories.NewLawyerRepository(db)
	precedents := repositories.NewPrecedentRepository(db)

	analysis := NewPrecedentAnalysisService(precedents, cases)
	successRate := NewSuccessRateService(NewStrategyRegistry(), cases, lawyers, analysis)

	rec := &recordingObserver{}
	dispatcher := events.NewDispatcher()
	dispatcher.Register(rec)

	svc := NewCaseService(db, cases, NewValidationChain(), NewStateMachine(), dispatcher, successRate, analysis)
	return db, svc, rec
}

func seedLawyer(db *gorm.DB, name string, years int) *models.Lawyer {
	l := &models.Lawyer{Name: name, YearsOfExperience: years}
	db.Create(l)
	return l
}

var testActor = events.Actor{ID: "u-1", Name: "Ana Torres", Role: "partner"}

func TestCaseServiceCreate(t *testing.T) {
	t.Run("Draft By Default", func(t *testing.T) {
		_, svc, rec := setupCaseServiceTest()

		c, err := svc.Create(CreateCaseInput{Title: "Contract dispute", ClientID: "cl-1"}, testActor)
		assert.NoError(t, err)
		assert.Equal(t, models.CaseStatusDraft, c.Status)
		assert.True(t, strings.HasPrefix(c.Code, "CASE-"))
		assert.True(t, strings.HasSuffix(c.Code, "-00001"))
		assert.Nil(t, c.OpenDate)
		assert.Equal(t, []string{events.EventCaseCreated}, rec.types())
	})

	t.Run("Created Open Runs The Transition Pipeline", func(t *testing.T) {
		db, svc, rec := setupCaseServiceTest()
		lawyer := seedLawyer(db, "Ana Torres", 5)

		c, err := svc.Create(CreateCaseInput{
			Title:               "Labor claim",
			ClientID:            "cl-1",
			Status:              models.CaseStatusOpen,
			ResponsibleLawyerID: &lawyer.ID,
		}, testActor)
		assert.NoError(t, err)
		assert.Equal(t, models.CaseStatusOpen, c.Status)
		assert.NotNil(t, c.OpenDate)
		assert.Equal(t, []string{events.EventCaseCreated, events.EventStateChanged}, rec.types())
	})

	t.Run("Open Without Lawyer Rejected", func(t *testing.T) {
		_, svc, rec := setupCaseServiceTest()

		_, err := svc.Create(CreateCaseInput{
			Title:    "Orphan case",
			ClientID: "cl-1",
			Status:   models.CaseStatusOpen,
		}, testActor)
		assert.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Empty(t, rec.events)
	})

	t.Run("Unknown Status Rejected", func(t *testing.T) {
		_, svc, _ := setupCaseServiceTest()

		_, err := svc.Create(CreateCaseInput{Title: "x", ClientID: "cl-1", Status: "archived"}, testActor)
		assert.True(t, IsValidationError(err))
	})

	t.Run("Codes Are Sequential", func(t *testing.T) {
		_, svc, _ := setupCaseServiceTest()

		first, err := svc.Create(CreateCaseInput{Title: "a", ClientID: "cl-1"}, testActor)
		assert.NoError(t, err)
		second, err := svc.Create(CreateCaseInput{Title: "b", ClientID: "cl-1"}, testActor)
		assert.NoError(t, err)
		assert.NotEqual(t, first.Code, second.Code)
		assert.True(t, strings.HasSuffix(second.Code, "-00002"))
	})
}

func TestCaseServiceUpdate(t *testing.T) {
	t.Run("Code Is Immutable", func(t *testing.T) {
		_, svc, _ := setupCaseServiceTest()
		c, err := svc.Create(CreateCaseInput{Title: "Original", ClientID: "cl-1"}, testActor)
		assert.NoError(t, err)

		updated, err := svc.Update(c.ID, models.ChangeSet{
			models.FieldCode:  "CASE-1999-99999",
			models.FieldTitle: "Renamed",
		}, testActor)
		assert.NoError(t, err)
		assert.Equal(t, c.Code, updated.Code)
		assert.Equal(t, "Renamed", updated.Title)
	})

	t.Run("Illegal Transition Leaves The Case Untouched", func(t *testing.T) {
		_, svc, rec := setupCaseServiceTest()
		c, err := svc.Create(CreateCaseInput{Title: "Draft case", ClientID: "cl-1"}, testActor)
		assert.NoError(t, err)
		rec.events = nil

		_, err = svc.Update(c.ID, models.ChangeSet{models.FieldStatus: models.CaseStatusClosed}, testActor)
		assert.True(t, IsValidationError(err))
		assert.Empty(t, rec.events)

		fresh, err := svc.Get(c.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.CaseStatusDraft, fresh.Status)
	})

	t.Run("Closing Sets Dates And Dispatches", func(t *testing.T) {
		db, svc, rec := setupCaseServiceTest()
		lawyer := seedLawyer(db, "Ana Torres", 5)
		c, err := svc.Create(CreateCaseInput{
			Title:               "To be closed",
			ClientID:            "cl-1",
			Status:              models.CaseStatusOpen,
			ResponsibleLawyerID: &lawyer.ID,
		}, testActor)
		assert.NoError(t, err)
		rec.events = nil

		closed, err := svc.Update(c.ID, models.ChangeSet{
			models.FieldStatus:  models.CaseStatusClosed,
			models.FieldOutcome: models.CaseOutcomeWon,
		}, testActor)
		assert.NoError(t, err)
		assert.Equal(t, models.CaseStatusClosed, closed.Status)
		assert.NotNil(t, closed.CloseDate)
		assert.NotNil(t, closed.ActualDurationDays)
		assert.Equal(t, []string{
			events.EventStateChanged,
			events.EventCaseClosed,
			events.EventCaseUpdated,
		}, rec.types())

		closedEvent := rec.events[1]
		assert.Equal(t, models.CaseOutcomeWon, closedEvent.Context["outcome"])
		assert.Equal(t, testActor, closedEvent.Actor())
	})

	t.Run("Lawyer Change Dispatches Assignment", func(t *testing.T) {
		db, svc, rec := setupCaseServiceTest()
		first := seedLawyer(db, "Ana Torres", 5)
		second := seedLawyer(db, "Luis Vega", 8)
		c, err := svc.Create(CreateCaseInput{
			Title:               "Handover",
			ClientID:            "cl-1",
			Status:              models.CaseStatusOpen,
			ResponsibleLawyerID: &first.ID,
		}, testActor)
		assert.NoError(t, err)
		rec.events = nil

		_, err = svc.Update(c.ID, models.ChangeSet{models.FieldResponsibleLawyerID: second.ID}, testActor)
		assert.NoError(t, err)
		assert.Equal(t, []string{events.EventLawyerAssigned, events.EventCaseUpdated}, rec.types())

		assigned := rec.events[0]
		assert.Equal(t, first.ID, assigned.OldValue(models.FieldResponsibleLawyerID))
		assert.Equal(t, second.ID, assigned.NewValue(models.FieldResponsibleLawyerID))
	})

	t.Run("Unchanged Lawyer Does Not Dispatch Assignment", func(t *testing.T) {
		db, svc, rec := setupCaseServiceTest()
		lawyer := seedLawyer(db, "Ana Torres", 5)
		c, err := svc.Create(CreateCaseInput{
			Title:               "Stable",
			ClientID:            "cl-1",
			Status:              models.CaseStatusOpen,
			ResponsibleLawyerID: &lawyer.ID,
		}, testActor)
		assert.NoError(t, err)
		rec.events = nil

		_, err = svc.Update(c.ID, models.ChangeSet{models.FieldResponsibleLawyerID: lawyer.ID}, testActor)
		assert.NoError(t, err)
		assert.Equal(t, []string{events.EventCaseUpdated}, rec.types())
	})
}

func TestCaseServiceDerivedFields(t *testing.T) {
	db, svc, _ := setupCaseServiceTest()

	area := &models.PracticeArea{Name: "Civil", Code: "CIV", Active: true}
	db.Create(area)
	favoured := models.ClientRolePlaintiff
	db.Create(&models.Precedent{Name: "P1", Court: "Supreme", PracticeAreaID: &area.ID, FavouredParty: &favoured})
	db.Create(&models.Precedent{Name: "P2", Court: "Appeals", PracticeAreaID: &area.ID})

	role := models.ClientRolePlaintiff
	evidence := models.EvidenceStrong
	strength := models.CaseStrengthStrong
	c, err := svc.Create(CreateCaseInput{
		Title:            "Scored case",
		ClientID:         "cl-1",
		ClientRole:       &role,
		PracticeAreaID:   &area.ID,
		EvidenceStrength: &evidence,
		CaseStrength:     &strength,
	}, testActor)
	assert.NoError(t, err)

	assert.Equal(t, 2, c.PrecedentCount)
	assert.Equal(t, 1, c.FavorablePrecedentCount)
	assert.Greater(t, c.SuccessRate, 0.0)

	// The derived values are persisted, not just decorated on the response
	var stored models.Case
	assert.NoError(t, db.First(&stored, "id = ?", c.ID).Error)
	assert.Equal(t, 2, stored.PrecedentCount)
	assert.Equal(t, c.SuccessRate, stored.SuccessRate)
}
