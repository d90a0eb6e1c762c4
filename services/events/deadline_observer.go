package events

import (
	"fmt"
	"time"

	"caseflow/models"
)

const deadlineSummaryPattern = "%due%"

// DeadlineObserver keeps reminder activities in sync with case deadlines:
// scheduling on open, cancelling on close, and escalating when the deadline
// job reports an overdue or approaching case.
type DeadlineObserver struct {
	feed Feed
}

func NewDeadlineObserver(feed Feed) *DeadlineObserver {
	return &DeadlineObserver{feed: feed}
}

func (o *DeadlineObserver) Name() string { return "deadlines" }

func (o *DeadlineObserver) Priority() int { return 60 }

func (o *DeadlineObserver) CanHandle(e Event) bool {
	switch e.Type {
	case EventCaseCreated, EventStateChanged, EventCaseUpdated,
		EventCaseOverdue, EventApproachingDeadline:
		return true
	}
	return false
}

func (o *DeadlineObserver) Handle(e Event) error {
	c := e.Case
	if c == nil {
		return nil
	}

	switch e.Type {
	case EventCaseCreated:
		return o.schedule(c)

	case EventStateChanged:
		newState, _ := e.NewValue(models.FieldStatus).(string)
		switch newState {
		case models.CaseStatusOpen:
			return o.schedule(c)
		case models.CaseStatusClosed:
			return o.feed.CancelReminders(c.ID, deadlineSummaryPattern)
		}
		return nil

	case EventCaseUpdated:
		if e.FieldChanged(models.FieldEstimatedDurationMonths) {
			if err := o.feed.CancelReminders(c.ID, deadlineSummaryPattern); err != nil {
				return err
			}
			return o.schedule(c)
		}
		return nil

	case EventCaseOverdue:
		days, _ := e.Context["days_overdue"].(int)
		return o.feed.ScheduleReminder(
			c.ID,
			models.ActivityKindWarning,
			fmt.Sprintf("Case OVERDUE: %s", c.Title),
			fmt.Sprintf("This case is %d days past its estimated duration and needs immediate attention.", days),
			time.Now(),
			c.ResponsibleLawyerID,
		)

	case EventApproachingDeadline:
		days, _ := e.Context["days_remaining"].(int)
		return o.feed.ScheduleReminder(
			c.ID,
			models.ActivityKindTodo,
			fmt.Sprintf("Case due soon: %s", c.Title),
			fmt.Sprintf("This case is due in %d days. Please review its progress.", days),
			time.Now(),
			c.ResponsibleLawyerID,
		)
	}
	return nil
}

// schedule creates a reminder 7 days before the expected close date, derived
// from the open date and the estimated duration
func (o *DeadlineObserver) schedule(c *models.Case) error {
	if c.Status != models.CaseStatusOpen || c.OpenDate == nil {
		return nil
	}
	if c.EstimatedDurationMonths <= 0 {
		return nil
	}

	expectedClose := c.OpenDate.Add(time.Duration(c.EstimatedDurationMonths) * 30 * 24 * time.Hour)
	reminderDate := expectedClose.Add(-7 * 24 * time.Hour)

	return o.feed.ScheduleReminder(
		c.ID,
		models.ActivityKindTodo,
		fmt.Sprintf("Case due soon: %s", c.Title),
		fmt.Sprintf("This case is due on %s. Please review its progress.", expectedClose.Format("2006-01-02")),
		reminderDate,
		c.ResponsibleLawyerID,
	)
}
