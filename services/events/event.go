package events

import (
	"fmt"
	"time"

	"caseflow/models"
)

// Event kinds
const (
	EventCaseCreated         = "case_created"
	EventCaseUpdated         = "case_updated"
	EventStateChanged        = "state_changed"
	EventCaseClosed          = "case_closed"
	EventLawyerAssigned      = "lawyer_assigned"
	EventCaseOverdue         = "case_overdue"
	EventApproachingDeadline = "case_approaching_deadline"
)

// Actor identifies the user a mutation is attributed to
type Actor struct {
	ID   string
	Name string
	Role string
}

// Event is an ephemeral value object describing one case mutation. It is
// built at mutation time, handed to the observers, and discarded.
type Event struct {
	Type      string
	Case      *models.Case
	OldValues map[string]any
	NewValues map[string]any
	Context   map[string]any
	Timestamp time.Time
}

// NewEvent builds an event with the maps initialized and the clock read
func NewEvent(eventType string, c *models.Case) Event {
	return Event{
		Type:      eventType,
		Case:      c,
		OldValues: map[string]any{},
		NewValues: map[string]any{},
		Context:   map[string]any{},
		Timestamp: time.Now(),
	}
}

// WithChange records an old/new value pair
func (e Event) WithChange(field string, oldValue, newValue any) Event {
	e.OldValues[field] = oldValue
	e.NewValues[field] = newValue
	return e
}

// WithContext attaches free-form context
func (e Event) WithContext(key string, value any) Event {
	e.Context[key] = value
	return e
}

// WithActor attaches the invoking user
func (e Event) WithActor(actor Actor) Event {
	e.Context["actor"] = actor
	return e
}

// Actor returns the attributed user, zero-valued when absent
func (e Event) Actor() Actor {
	if a, ok := e.Context["actor"].(Actor); ok {
		return a
	}
	return Actor{}
}

// ChangedFields lists the fields this event carries changes for
func (e Event) ChangedFields() []string {
	fields := make([]string, 0, len(e.NewValues))
	for k := range e.NewValues {
		fields = append(fields, k)
	}
	return fields
}

// FieldChanged reports whether a specific field changed
func (e Event) FieldChanged(field string) bool {
	_, ok := e.NewValues[field]
	return ok
}

// OldValue returns the previous value of a field
func (e Event) OldValue(field string) any {
	return e.OldValues[field]
}

// NewValue returns the proposed value of a field
func (e Event) NewValue(field string) any {
	return e.NewValues[field]
}

func (e Event) String() string {
	code := ""
	if e.Case != nil {
		code = e.Case.Code
	}
	return fmt.Sprintf("Event(type=%s, case=%s, fields=%v)", e.Type, code, e.ChangedFields())
}

// Convenience constructors for the common events

func NewCaseCreatedEvent(c *models.Case, actor Actor) Event {
	return NewEvent(EventCaseCreated, c).WithActor(actor)
}

func NewCaseUpdatedEvent(c *models.Case, oldValues, newValues map[string]any, actor Actor) Event {
	e := NewEvent(EventCaseUpdated, c).WithActor(actor)
	for k, v := range oldValues {
		e.OldValues[k] = v
	}
	for k, v := range newValues {
		e.NewValues[k] = v
	}
	return e
}

func NewStateChangedEvent(c *models.Case, oldState, newState string, actor Actor) Event {
	return NewEvent(EventStateChanged, c).
		WithChange(models.FieldStatus, oldState, newState).
		WithActor(actor)
}

func NewCaseClosedEvent(c *models.Case, outcome string, actor Actor) Event {
	return NewEvent(EventCaseClosed, c).
		WithContext("outcome", outcome).
		WithActor(actor)
}

func NewLawyerAssignedEvent(c *models.Case, oldLawyerID, newLawyerID string, actor Actor) Event {
	return NewEvent(EventLawyerAssigned, c).
		WithChange(models.FieldResponsibleLawyerID, oldLawyerID, newLawyerID).
		WithActor(actor)
}

func NewCaseOverdueEvent(c *models.Case, daysOverdue int) Event {
	return NewEvent(EventCaseOverdue, c).WithContext("days_overdue", daysOverdue)
}

func NewApproachingDeadlineEvent(c *models.Case, daysRemaining int) Event {
	return NewEvent(EventApproachingDeadline, c).WithContext("days_remaining", daysRemaining)
}
