package service

import (
	"context"
	"encoding/json"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const WorkflowUpdatedFrame = "workflow_updated"

// WorkflowNotifier pushes live updates to a user's open dashboards.
type WorkflowNotifier interface {
	Send(userID uuid.UUID, msgType string, data interface{})
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService fans in-process workflow updates out to websockets and to
// the durable event stream.
type consumerService struct {
	subscriber message.Subscriber
	topic      string
	notifier   WorkflowNotifier
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewConsumerService(subscriber message.Subscriber, topic string, notifier WorkflowNotifier, publisher events.Publisher, log logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topic:      topic,
		notifier:   notifier,
		publisher:  publisher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Malformed payloads are acked so they are not redelivered forever.
	defer msg.Ack()

	var evt dto.WorkflowEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("CONSUMER", "Failed to decode workflow event", map[string]interface{}{"error": err, "message_id": msg.UUID})
		return
	}

	cs.notifier.Send(evt.UserID, WorkflowUpdatedFrame, evt)

	err := cs.publisher.Publish(ctx, events.New(events.TypeWorkflowUpdated, map[string]interface{}{
		"workflow_id": evt.WorkflowID.String(),
		"user_id":     evt.UserID.String(),
		"status":      evt.Status,
	}))
	if err != nil {
		cs.logger.Warn("CONSUMER", "Failed to publish workflow event", map[string]interface{}{"error": err, "workflow_id": evt.WorkflowID.String()})
	}
}
