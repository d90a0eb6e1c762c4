package events

import "time"

// Feed is the messaging/notification sink the observers write through. The
// concrete implementation lives in the services package.
type Feed interface {
	// PostMessage appends an entry to the case's activity feed
	PostMessage(caseID string, authorID *string, authorName, subject, body string) error
	// Subscribe/Unsubscribe manage a user's case notification subscription
	Subscribe(caseID, userID string) error
	Unsubscribe(caseID, userID string) error
	// Followers lists the subscribed user IDs
	Followers(caseID string) ([]string, error)
	// ScheduleReminder creates a reminder activity with a due date
	ScheduleReminder(caseID, kind, summary, note string, due time.Time, userID *string) error
	// CancelReminders removes pending reminders whose summary matches the pattern
	CancelReminders(caseID, summaryLike string) error
}

// Mailer delivers email notifications. Implementations may be a real
// transport or a console test mode.
type Mailer interface {
	Send(to []string, subject, htmlBody, textBody string) error
}
