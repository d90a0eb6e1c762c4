package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"caseflow/models"

	"gorm.io/gorm"
)

// AuditObserver records an immutable audit row for every case event. It runs
// last so the row reflects what the earlier observers saw.
type AuditObserver struct {
	db *gorm.DB
}

func NewAuditObserver(db *gorm.DB) *AuditObserver {
	return &AuditObserver{db: db}
}

func (o *AuditObserver) Name() string { return "audit_log" }

func (o *AuditObserver) Priority() int { return 80 }

// CanHandle always returns true: every event is auditable
func (o *AuditObserver) CanHandle(e Event) bool { return true }

func (o *AuditObserver) Handle(e Event) error {
	c := e.Case
	if c == nil {
		return nil
	}

	actor := e.Actor()
	entry := models.AuditLog{
		UserName:     actor.Name,
		UserRole:     actor.Role,
		ResourceType: "Case",
		ResourceID:   c.ID,
		ResourceName: c.Code,
		Action:       auditAction(e.Type),
		Description:  o.describe(e),
		OldValues:    encodeValues(e.OldValues),
		NewValues:    encodeValues(e.NewValues),
	}
	if actor.ID != "" {
		id := actor.ID
		entry.UserID = &id
	}

	if err := o.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

func (o *AuditObserver) describe(e Event) string {
	switch e.Type {
	case EventCaseCreated:
		return "Case created"
	case EventCaseClosed:
		outcome, _ := e.Context["outcome"].(string)
		if outcome == "" {
			return "Case closed"
		}
		return fmt.Sprintf("Case closed (outcome: %s)", outcome)
	case EventStateChanged:
		return fmt.Sprintf("Status changed: %v -> %v",
			e.OldValue(models.FieldStatus), e.NewValue(models.FieldStatus))
	case EventLawyerAssigned:
		oldID, _ := e.OldValue(models.FieldResponsibleLawyerID).(string)
		newID, _ := e.NewValue(models.FieldResponsibleLawyerID).(string)
		switch {
		case oldID != "" && newID != "":
			return "Responsible lawyer changed"
		case newID != "":
			return "Responsible lawyer assigned"
		default:
			return "Responsible lawyer removed"
		}
	case EventCaseUpdated:
		fields := e.ChangedFields()
		if len(fields) == 0 {
			return "Case updated"
		}
		return "Fields updated: " + strings.Join(fields, ", ")
	case EventCaseOverdue:
		return "Case flagged as overdue"
	case EventApproachingDeadline:
		return "Case approaching deadline"
	}
	return "Event: " + e.Type
}

func auditAction(eventType string) models.AuditAction {
	switch eventType {
	case EventCaseCreated:
		return models.AuditActionCreate
	case EventStateChanged:
		return models.AuditActionStateChange
	case EventCaseClosed:
		return models.AuditActionCaseClosed
	case EventLawyerAssigned:
		return models.AuditActionLawyerChange
	}
	return models.AuditActionUpdate
}

func encodeValues(values map[string]any) string {
	if len(values) == 0 {
		return ""
	}
	bytes, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	return string(bytes)
}
