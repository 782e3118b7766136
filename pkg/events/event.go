package events

import (
	"context"
	"time"
)

// Event types published on the bus. The NATS subject is "events.<TYPE>".
const (
	TypeCreditsPurchased    = "CREDITS_PURCHASED"
	TypeOnboardingCompleted = "ONBOARDING_COMPLETED"
	TypeWorkflowUpdated     = "WORKFLOW_UPDATED"
)

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is what services depend on to emit events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when the broker is unreachable at boot.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
