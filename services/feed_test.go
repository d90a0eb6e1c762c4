package services

import (
	"testing"
	"time"

	"caseflow/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFeedTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.CaseMessage{}, &models.CaseFollower{}, &models.Activity{})
	return db
}

func TestFeedMessages(t *testing.T) {
	db := setupFeedTestDB()
	feed := NewFeedService(db)

	t.Run("Post And Read Back", func(t *testing.T) {
		err := feed.PostMessage("case-1", nil, "System", "Status changed", "Case moved to open")
		assert.NoError(t, err)

		messages, err := feed.Messages("case-1", 0)
		assert.NoError(t, err)
		assert.Len(t, messages, 1)
		assert.Equal(t, "Status changed", messages[0].Subject)
		assert.Equal(t, "System", messages[0].AuthorName)
	})

	t.Run("Body Is Sanitized", func(t *testing.T) {
		err := feed.PostMessage("case-2", nil, "Mallory", "Note",
			`Hello <script>alert("x")</script><b>world</b>`)
		assert.NoError(t, err)

		messages, err := feed.Messages("case-2", 10)
		assert.NoError(t, err)
		assert.Len(t, messages, 1)
		assert.NotContains(t, messages[0].Body, "<script>")
		assert.Contains(t, messages[0].Body, "<b>world</b>")
	})

	t.Run("Scoped To The Case", func(t *testing.T) {
		messages, err := feed.Messages("case-other", 10)
		assert.NoError(t, err)
		assert.Empty(t, messages)
	})
}

func TestFeedFollowers(t *testing.T) {
	db := setupFeedTestDB()
	feed := NewFeedService(db)

	assert.NoError(t, feed.Subscribe("case-1", "user-a"))
	assert.NoError(t, feed.Subscribe("case-1", "user-b"))
	// Subscribing twice must not duplicate
	assert.NoError(t, feed.Subscribe("case-1", "user-a"))

	followers, err := feed.Followers("case-1")
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-a", "user-b"}, followers)

	assert.NoError(t, feed.Unsubscribe("case-1", "user-a"))
	followers, err = feed.Followers("case-1")
	assert.NoError(t, err)
	assert.Equal(t, []string{"user-b"}, followers)

	// Unsubscribing a non-follower is harmless
	assert.NoError(t, feed.Unsubscribe("case-1", "user-z"))
}

func TestFeedReminders(t *testing.T) {
	db := setupFeedTestDB()
	feed := NewFeedService(db)
	due := time.Now().Add(72 * time.Hour)

	assert.NoError(t, feed.ScheduleReminder("case-1", models.ActivityKindWarning, "Deadline due soon", "", due, nil))
	assert.NoError(t, feed.ScheduleReminder("case-1", models.ActivityKindTodo, "File response", "", due.Add(time.Hour), nil))

	t.Run("Pending Sorted By Due Date", func(t *testing.T) {
		pending, err := feed.PendingReminders("case-1")
		assert.NoError(t, err)
		assert.Len(t, pending, 2)
		assert.Equal(t, "Deadline due soon", pending[0].Summary)
	})

	t.Run("Cancel Matches Pattern And Skips Done", func(t *testing.T) {
		done := time.Now()
		db.Create(&models.Activity{
			CaseID:  "case-1",
			Kind:    models.ActivityKindWarning,
			Summary: "Deadline already handled",
			DueDate: due,
			DoneAt:  &done,
		})

		assert.NoError(t, feed.CancelReminders("case-1", "%Deadline%"))

		pending, err := feed.PendingReminders("case-1")
		assert.NoError(t, err)
		assert.Len(t, pending, 1)
		assert.Equal(t, "File response", pending[0].Summary)

		// The completed activity survives the cancellation
		var count int64
		db.Model(&models.Activity{}).Where("case_id = ?", "case-1").Count(&count)
		assert.Equal(t, int64(2), count)
	})
}
