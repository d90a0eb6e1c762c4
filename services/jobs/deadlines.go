package jobs

import (
	"log"
	"time"

	"caseflow/models"
	"caseflow/services/events"

	"gorm.io/gorm"
)

// Cases within this many days of their expected close date get an
// approaching-deadline event
const approachingWindowDays = 7

// CheckCaseDeadlines scans open cases with an estimated duration and emits
// overdue or approaching-deadline events. Observers turn those into
// activities and notifications.
func CheckCaseDeadlines(database *gorm.DB, dispatcher *events.Dispatcher) {
	log.Println("Starting case deadline job...")

	var cases []models.Case
	err := database.Preload("ResponsibleLawyer").
		Where("status = ?", models.CaseStatusOpen).
		Where("open_date IS NOT NULL").
		Where("estimated_duration_months > 0").
		Find(&cases).Error
	if err != nil {
		log.Printf("Error fetching open cases for deadline check: %v", err)
		return
	}

	log.Printf("Checking deadlines for %d open cases", len(cases))

	now := time.Now().UTC()
	for i := range cases {
		c := &cases[i]
		expected := c.OpenDate.Add(time.Duration(c.EstimatedDurationMonths) * 30 * 24 * time.Hour)

		switch {
		case now.After(expected):
			daysOverdue := int(now.Sub(expected).Hours() / 24)
			dispatcher.Notify(events.NewCaseOverdueEvent(c, daysOverdue))
			log.Printf("Case %s is %d days past its expected close date", c.Code, daysOverdue)
		case expected.Sub(now) <= approachingWindowDays*24*time.Hour:
			daysRemaining := int(expected.Sub(now).Hours() / 24)
			dispatcher.Notify(events.NewApproachingDeadlineEvent(c, daysRemaining))
			log.Printf("Case %s expected to close in %d days", c.Code, daysRemaining)
		}
	}

	log.Println("Case deadline job completed")
}
