package services

import (
	"fmt"
	"time"

	"caseflow/models"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// FeedService is the messaging sink for cases: activity-feed posts, follower
// subscriptions, and scheduled reminder activities. Message bodies are
// sanitized before storage since they may carry markup from user input.
type FeedService struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

func NewFeedService(db *gorm.DB) *FeedService {
	return &FeedService{
		db:     db,
		policy: bluemonday.UGCPolicy(),
	}
}

// PostMessage appends a sanitized entry to the case's activity feed
func (s *FeedService) PostMessage(caseID string, authorID *string, authorName, subject, body string) error {
	message := models.CaseMessage{
		CaseID:     caseID,
		Subject:    subject,
		Body:       s.policy.Sanitize(body),
		AuthorID:   authorID,
		AuthorName: authorName,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return fmt.Errorf("failed to post case message: %w", err)
	}
	return nil
}

// Messages returns a case's feed, newest first
func (s *FeedService) Messages(caseID string, limit int) ([]models.CaseMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	var messages []models.CaseMessage
	err := s.db.Where("case_id = ?", caseID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch case messages: %w", err)
	}
	return messages, nil
}

// Subscribe adds a follower; subscribing twice is a no-op
func (s *FeedService) Subscribe(caseID, userID string) error {
	follower := models.CaseFollower{CaseID: caseID, UserID: userID}
	err := s.db.Where("case_id = ? AND user_id = ?", caseID, userID).
		FirstOrCreate(&follower).Error
	if err != nil {
		return fmt.Errorf("failed to subscribe user %s to case %s: %w", userID, caseID, err)
	}
	return nil
}

// Unsubscribe removes a follower if present
func (s *FeedService) Unsubscribe(caseID, userID string) error {
	err := s.db.Where("case_id = ? AND user_id = ?", caseID, userID).
		Delete(&models.CaseFollower{}).Error
	if err != nil {
		return fmt.Errorf("failed to unsubscribe user %s from case %s: %w", userID, caseID, err)
	}
	return nil
}

// Followers lists the subscribed user IDs for a case
func (s *FeedService) Followers(caseID string) ([]string, error) {
	var followers []models.CaseFollower
	err := s.db.Where("case_id = ?", caseID).Find(&followers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch followers for case %s: %w", caseID, err)
	}
	ids := make([]string, 0, len(followers))
	for _, f := range followers {
		ids = append(ids, f.UserID)
	}
	return ids, nil
}

// ScheduleReminder creates a reminder activity with a due date
func (s *FeedService) ScheduleReminder(caseID, kind, summary, note string, due time.Time, userID *string) error {
	activity := models.Activity{
		CaseID:  caseID,
		Kind:    kind,
		Summary: summary,
		Note:    note,
		DueDate: due,
		UserID:  userID,
	}
	if err := s.db.Create(&activity).Error; err != nil {
		return fmt.Errorf("failed to schedule reminder for case %s: %w", caseID, err)
	}
	return nil
}

// CancelReminders removes pending (not done) reminders whose summary matches
// the given LIKE pattern
func (s *FeedService) CancelReminders(caseID, summaryLike string) error {
	err := s.db.Where("case_id = ? AND summary LIKE ? AND done_at IS NULL", caseID, summaryLike).
		Delete(&models.Activity{}).Error
	if err != nil {
		return fmt.Errorf("failed to cancel reminders for case %s: %w", caseID, err)
	}
	return nil
}

// PendingReminders lists a case's open reminder activities, soonest first
func (s *FeedService) PendingReminders(caseID string) ([]models.Activity, error) {
	var activities []models.Activity
	err := s.db.Where("case_id = ? AND done_at IS NULL", caseID).
		Order("due_date ASC").
		Find(&activities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders for case %s: %w", caseID, err)
	}
	return activities, nil
}
