package events

import (
	"fmt"

	"caseflow/models"

	"gorm.io/gorm"
)

var stateLabels = map[string]string{
	models.CaseStatusDraft:  "Draft",
	models.CaseStatusOpen:   "Open",
	models.CaseStatusOnHold: "On Hold",
	models.CaseStatusClosed: "Closed",
}

var outcomeLabels = map[string]string{
	models.CaseOutcomeWon:       "Won",
	models.CaseOutcomeLost:      "Lost",
	models.CaseOutcomeSettled:   "Settled",
	models.CaseOutcomeDismissed: "Dismissed",
	models.CaseOutcomeWithdrawn: "Withdrawn",
}

// NotificationObserver posts feed messages and notification rows for
// noteworthy events, and emails the followers when a case closes
type NotificationObserver struct {
	db     *gorm.DB
	feed   Feed
	mailer Mailer
}

// NewNotificationObserver builds the observer; mailer may be nil to skip email
func NewNotificationObserver(db *gorm.DB, feed Feed, mailer Mailer) *NotificationObserver {
	return &NotificationObserver{db: db, feed: feed, mailer: mailer}
}

func (o *NotificationObserver) Name() string { return "notifications" }

func (o *NotificationObserver) Priority() int { return 40 }

func (o *NotificationObserver) CanHandle(e Event) bool {
	switch e.Type {
	case EventCaseCreated, EventStateChanged, EventCaseClosed,
		EventCaseOverdue, EventApproachingDeadline, EventLawyerAssigned:
		return true
	}
	return false
}

func (o *NotificationObserver) Handle(e Event) error {
	c := e.Case
	if c == nil {
		return nil
	}

	switch e.Type {
	case EventCaseCreated:
		return o.post(e, "New Case", fmt.Sprintf("Case created: %s", c.Title))

	case EventStateChanged:
		oldLabel := label(stateLabels, e.OldValue(models.FieldStatus))
		newLabel := label(stateLabels, e.NewValue(models.FieldStatus))
		return o.post(e, "Status Change",
			fmt.Sprintf("Case status changed from <b>%s</b> to <b>%s</b>", oldLabel, newLabel))

	case EventCaseClosed:
		return o.notifyClosed(e)

	case EventCaseOverdue:
		days, _ := e.Context["days_overdue"].(int)
		return o.post(e, "Case Overdue",
			fmt.Sprintf("This case has exceeded its estimated duration by <b>%d days</b>.", days))

	case EventApproachingDeadline:
		days, _ := e.Context["days_remaining"].(int)
		return o.post(e, "Deadline Approaching",
			fmt.Sprintf("This case is due in <b>%d days</b>.", days))

	case EventLawyerAssigned:
		newID, _ := e.NewValue(models.FieldResponsibleLawyerID).(string)
		if newID == "" {
			return o.post(e, "Lawyer Unassigned", "Responsible lawyer removed")
		}
		var lawyer models.Lawyer
		if err := o.db.First(&lawyer, "id = ?", newID).Error; err != nil {
			return fmt.Errorf("failed to fetch assigned lawyer: %w", err)
		}
		return o.post(e, "Lawyer Assigned",
			fmt.Sprintf("Responsible lawyer assigned: <b>%s</b>", lawyer.Name))
	}
	return nil
}

// post writes the feed message and fans a notification row out per follower
func (o *NotificationObserver) post(e Event, title, body string) error {
	c := e.Case
	actor := e.Actor()

	var authorID *string
	if actor.ID != "" {
		id := actor.ID
		authorID = &id
	}
	if err := o.feed.PostMessage(c.ID, authorID, actor.Name, title, body); err != nil {
		return fmt.Errorf("failed to post feed message: %w", err)
	}

	followers, err := o.feed.Followers(c.ID)
	if err != nil {
		return fmt.Errorf("failed to list followers: %w", err)
	}

	for _, userID := range followers {
		if userID == actor.ID {
			continue // don't notify the actor about their own change
		}
		uid := userID
		notification := models.Notification{
			UserID:  &uid,
			CaseID:  &c.ID,
			Type:    models.NotificationTypeCaseUpdate,
			Title:   title,
			Message: fmt.Sprintf("%s: %s", c.Code, body),
			LinkURL: "/cases/" + c.ID,
		}
		if e.Type == EventCaseOverdue || e.Type == EventApproachingDeadline {
			notification.Type = models.NotificationTypeDeadline
		}
		if err := o.db.Create(&notification).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}
	return nil
}

func (o *NotificationObserver) notifyClosed(e Event) error {
	c := e.Case

	outcome, _ := e.Context["outcome"].(string)
	if outcome == "" && c.Outcome != nil {
		outcome = *c.Outcome
	}
	outcomeLabel := outcomeLabels[outcome]
	if outcomeLabel == "" {
		outcomeLabel = "Not specified"
	}

	duration := 0
	if c.ActualDurationDays != nil {
		duration = *c.ActualDurationDays
	}

	body := fmt.Sprintf("Case closed. Outcome: <b>%s</b>. Duration: %d days.", outcomeLabel, duration)
	if err := o.post(e, "Case Closed", body); err != nil {
		return err
	}

	if o.mailer == nil || c.ResponsibleLawyer == nil || c.ResponsibleLawyer.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("Case %s closed (%s)", c.Code, outcomeLabel)
	html := fmt.Sprintf("<p>Case <b>%s</b> (%s) was closed.</p><p>Outcome: %s<br>Duration: %d days</p>",
		c.Title, c.Code, outcomeLabel, duration)
	text := fmt.Sprintf("Case %s (%s) was closed. Outcome: %s. Duration: %d days.",
		c.Title, c.Code, outcomeLabel, duration)
	if err := o.mailer.Send([]string{c.ResponsibleLawyer.Email}, subject, html, text); err != nil {
		return fmt.Errorf("failed to send closure email: %w", err)
	}
	return nil
}

func label(labels map[string]string, value any) string {
	s, _ := value.(string)
	if l, ok := labels[s]; ok {
		return l
	}
	return s
}
