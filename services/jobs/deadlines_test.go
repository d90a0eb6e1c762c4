package jobs

import (
	"testing"
	"time"

	"caseflow/models"
	"caseflow/services/events"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type capturingObserver struct {
	events []events.Event
}

func (c *capturingObserver) Name() string                { return "capturing" }
func (c *capturingObserver) Priority() int               { return 10 }
func (c *capturingObserver) CanHandle(events.Event) bool { return true }
func (c *capturingObserver) Handle(e events.Event) error {
	c.events = append(c.events, e)
	return nil
}

func setupDeadlineTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Lawyer{}, &models.Case{})
	return db
}

func seedDeadlineCase(db *gorm.DB, code, status string, opened time.Time, months int) *models.Case {
	c := &models.Case{
		Code:                    code,
		Title:                   "t",
		ClientID:                "cl-1",
		Status:                  status,
		OpenDate:                &opened,
		EstimatedDurationMonths: months,
	}
	db.Create(c)
	return c
}

func TestCheckCaseDeadlines(t *testing.T) {
	db := setupDeadlineTestDB()
	now := time.Now().UTC()

	// One month estimated, opened two months ago: overdue by ~30 days
	overdue := seedDeadlineCase(db, "CASE-2026-00001", models.CaseStatusOpen, now.AddDate(0, 0, -60), 1)
	// One month estimated, opened 27 days ago: 3 days remaining
	approaching := seedDeadlineCase(db, "CASE-2026-00002", models.CaseStatusOpen, now.AddDate(0, 0, -27), 1)
	// Far from its deadline, stays silent
	seedDeadlineCase(db, "CASE-2026-00003", models.CaseStatusOpen, now.AddDate(0, 0, -5), 6)
	// Overdue on paper but closed, so out of scope
	seedDeadlineCase(db, "CASE-2026-00004", models.CaseStatusClosed, now.AddDate(0, 0, -60), 1)
	// No estimate, never checked
	seedDeadlineCase(db, "CASE-2026-00005", models.CaseStatusOpen, now.AddDate(0, 0, -60), 0)

	rec := &capturingObserver{}
	dispatcher := events.NewDispatcher()
	dispatcher.Register(rec)

	CheckCaseDeadlines(db, dispatcher)

	assert.Len(t, rec.events, 2)

	byCase := map[string]events.Event{}
	for _, e := range rec.events {
		byCase[e.Case.Code] = e
	}

	overdueEvent, ok := byCase[overdue.Code]
	assert.True(t, ok)
	assert.Equal(t, events.EventCaseOverdue, overdueEvent.Type)
	assert.InDelta(t, 30, overdueEvent.Context["days_overdue"], 1)

	approachingEvent, ok := byCase[approaching.Code]
	assert.True(t, ok)
	assert.Equal(t, events.EventApproachingDeadline, approachingEvent.Type)
	assert.InDelta(t, 3, approachingEvent.Context["days_remaining"], 1)
}

func TestCheckCaseDeadlinesEmptyStore(t *testing.T) {
	db := setupDeadlineTestDB()
	rec := &capturingObserver{}
	dispatcher := events.NewDispatcher()
	dispatcher.Register(rec)

	CheckCaseDeadlines(db, dispatcher)
	assert.Empty(t, rec.events)
}
