package events

import (
	"testing"

	"caseflow/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.AuditLog{})
	return db
}

func TestAuditObserver(t *testing.T) {
	actor := Actor{ID: "u-1", Name: "Ana Torres", Role: "partner"}

	t.Run("State Change Produces An Audit Row", func(t *testing.T) {
		db := setupAuditTestDB()
		o := NewAuditObserver(db)

		e := NewStateChangedEvent(testCase(), models.CaseStatusOpen, models.CaseStatusClosed, actor)
		assert.NoError(t, o.Handle(e))

		var entry models.AuditLog
		assert.NoError(t, db.First(&entry).Error)
		assert.Equal(t, models.AuditActionStateChange, entry.Action)
		assert.Equal(t, "Case", entry.ResourceType)
		assert.Equal(t, "CASE-2026-00001", entry.ResourceName)
		assert.Equal(t, "Ana Torres", entry.UserName)
		assert.Contains(t, entry.Description, "open -> closed")
		assert.Contains(t, entry.OldValues, models.CaseStatusOpen)
		assert.Contains(t, entry.NewValues, models.CaseStatusClosed)
	})

	t.Run("Closed With Outcome In Description", func(t *testing.T) {
		db := setupAuditTestDB()
		o := NewAuditObserver(db)

		e := NewCaseClosedEvent(testCase(), models.CaseOutcomeWon, actor)
		assert.NoError(t, o.Handle(e))

		var entry models.AuditLog
		assert.NoError(t, db.First(&entry).Error)
		assert.Equal(t, models.AuditActionCaseClosed, entry.Action)
		assert.Contains(t, entry.Description, "won")
	})

	t.Run("Updated Lists Changed Fields", func(t *testing.T) {
		db := setupAuditTestDB()
		o := NewAuditObserver(db)

		e := NewCaseUpdatedEvent(testCase(),
			map[string]any{models.FieldTitle: "Old"},
			map[string]any{models.FieldTitle: "New"},
			actor)
		assert.NoError(t, o.Handle(e))

		var entry models.AuditLog
		assert.NoError(t, db.First(&entry).Error)
		assert.Equal(t, models.AuditActionUpdate, entry.Action)
		assert.Contains(t, entry.Description, models.FieldTitle)
	})

	t.Run("Anonymous Actor Leaves User ID Empty", func(t *testing.T) {
		db := setupAuditTestDB()
		o := NewAuditObserver(db)

		assert.NoError(t, o.Handle(NewCaseCreatedEvent(testCase(), Actor{})))

		var entry models.AuditLog
		assert.NoError(t, db.First(&entry).Error)
		assert.Nil(t, entry.UserID)
	})

	t.Run("Nil Case Is A No Op", func(t *testing.T) {
		db := setupAuditTestDB()
		o := NewAuditObserver(db)

		assert.NoError(t, o.Handle(NewEvent(EventCaseUpdated, nil)))

		var count int64
		db.Model(&models.AuditLog{}).Count(&count)
		assert.Zero(t, count)
	})
}
