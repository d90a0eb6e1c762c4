package events

import (
	"errors"
	"testing"

	"caseflow/models"

	"github.com/stretchr/testify/assert"
)

// stubObserver is a configurable observer for dispatcher tests
type stubObserver struct {
	name     string
	priority int
	handles  func(Event) bool
	handle   func(Event) error
}

func (s *stubObserver) Name() string     { return s.name }
func (s *stubObserver) Priority() int    { return s.priority }
func (s *stubObserver) CanHandle(e Event) bool {
	if s.handles == nil {
		return true
	}
	return s.handles(e)
}
func (s *stubObserver) Handle(e Event) error {
	if s.handle == nil {
		return nil
	}
	return s.handle(e)
}

func testCase() *models.Case {
	return &models.Case{ID: "case-1", Code: "CASE-2026-00001", Title: "t", ClientID: "cl-1"}
}

func TestDispatcherOrdering(t *testing.T) {
	d := NewDispatcher()
	var order []string
	record := func(name string) func(Event) error {
		return func(Event) error {
			order = append(order, name)
			return nil
		}
	}

	// Registered out of order on purpose
	d.Register(&stubObserver{name: "late", priority: 80, handle: record("late")})
	d.Register(&stubObserver{name: "early", priority: 20, handle: record("early")})
	d.Register(&stubObserver{name: "middle", priority: 40, handle: record("middle")})

	d.Notify(NewEvent(EventCaseUpdated, testCase()))
	assert.Equal(t, []string{"early", "middle", "late"}, order)
}

func TestDispatcherIsolation(t *testing.T) {
	t.Run("Error Does Not Stop Delivery", func(t *testing.T) {
		d := NewDispatcher()
		reached := false
		d.Register(&stubObserver{name: "failing", priority: 10, handle: func(Event) error {
			return errors.New("boom")
		}})
		d.Register(&stubObserver{name: "after", priority: 20, handle: func(Event) error {
			reached = true
			return nil
		}})

		d.Notify(NewEvent(EventCaseCreated, testCase()))
		assert.True(t, reached)
	})

	t.Run("Panic Does Not Stop Delivery", func(t *testing.T) {
		d := NewDispatcher()
		reached := false
		d.Register(&stubObserver{name: "panicking", priority: 10, handle: func(Event) error {
			panic("observer blew up")
		}})
		d.Register(&stubObserver{name: "after", priority: 20, handle: func(Event) error {
			reached = true
			return nil
		}})

		assert.NotPanics(t, func() {
			d.Notify(NewEvent(EventCaseCreated, testCase()))
		})
		assert.True(t, reached)
	})
}

func TestDispatcherCanHandleFiltering(t *testing.T) {
	d := NewDispatcher()
	var seen []string
	d.Register(&stubObserver{
		name:     "closed_only",
		priority: 10,
		handles:  func(e Event) bool { return e.Type == EventCaseClosed },
		handle: func(e Event) error {
			seen = append(seen, e.Type)
			return nil
		},
	})

	d.Notify(NewEvent(EventCaseCreated, testCase()))
	d.Notify(NewEvent(EventCaseClosed, testCase()))
	d.Notify(NewEvent(EventCaseUpdated, testCase()))

	assert.Equal(t, []string{EventCaseClosed}, seen)
}

func TestDispatcherUnregister(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	d.Register(&stubObserver{name: "target", priority: 10, handle: func(Event) error {
		calls++
		return nil
	}})
	d.Register(&stubObserver{name: "keeper", priority: 20})
	assert.Len(t, d.Observers(), 2)

	d.Notify(NewEvent(EventCaseCreated, testCase()))
	assert.Equal(t, 1, calls)

	d.Unregister("target")
	assert.Len(t, d.Observers(), 1)

	d.Notify(NewEvent(EventCaseCreated, testCase()))
	assert.Equal(t, 1, calls)
}

func TestEventValueObject(t *testing.T) {
	c := testCase()
	actor := Actor{ID: "u-1", Name: "Ana", Role: "partner"}

	e := NewStateChangedEvent(c, models.CaseStatusOpen, models.CaseStatusClosed, actor)
	assert.Equal(t, EventStateChanged, e.Type)
	assert.True(t, e.FieldChanged(models.FieldStatus))
	assert.Equal(t, models.CaseStatusOpen, e.OldValue(models.FieldStatus))
	assert.Equal(t, models.CaseStatusClosed, e.NewValue(models.FieldStatus))
	assert.Equal(t, actor, e.Actor())

	// Absent actor yields the zero value, not a panic
	assert.Equal(t, Actor{}, NewCaseOverdueEvent(c, 3).Actor())
}
