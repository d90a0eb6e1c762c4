package events

import (
	"fmt"

	"caseflow/models"
)

// FollowerObserver keeps case subscriptions in sync with lawyer assignments.
// It runs first so later observers can rely on an up-to-date follower list.
type FollowerObserver struct {
	feed Feed
}

func NewFollowerObserver(feed Feed) *FollowerObserver {
	return &FollowerObserver{feed: feed}
}

func (o *FollowerObserver) Name() string { return "follower_sync" }

func (o *FollowerObserver) Priority() int { return 20 }

func (o *FollowerObserver) CanHandle(e Event) bool {
	switch e.Type {
	case EventCaseCreated, EventLawyerAssigned, EventCaseUpdated:
		return true
	}
	return false
}

func (o *FollowerObserver) Handle(e Event) error {
	c := e.Case
	if c == nil {
		return nil
	}

	switch e.Type {
	case EventCaseCreated:
		return o.subscribeTeam(c)

	case EventLawyerAssigned:
		if oldID, ok := e.OldValue(models.FieldResponsibleLawyerID).(string); ok && oldID != "" {
			if err := o.feed.Unsubscribe(c.ID, oldID); err != nil {
				return fmt.Errorf("failed to unsubscribe previous lawyer: %w", err)
			}
		}
		if newID, ok := e.NewValue(models.FieldResponsibleLawyerID).(string); ok && newID != "" {
			if err := o.feed.Subscribe(c.ID, newID); err != nil {
				return fmt.Errorf("failed to subscribe new lawyer: %w", err)
			}
		}
		return nil

	case EventCaseUpdated:
		// Team membership may have changed alongside other fields
		return o.subscribeTeam(c)
	}
	return nil
}

func (o *FollowerObserver) subscribeTeam(c *models.Case) error {
	if c.ResponsibleLawyerID != nil && *c.ResponsibleLawyerID != "" {
		if err := o.feed.Subscribe(c.ID, *c.ResponsibleLawyerID); err != nil {
			return fmt.Errorf("failed to subscribe responsible lawyer: %w", err)
		}
	}
	for _, member := range c.Team {
		if err := o.feed.Subscribe(c.ID, member.ID); err != nil {
			return fmt.Errorf("failed to subscribe team member %s: %w", member.ID, err)
		}
	}
	return nil
}
