package service

import (
	"context"

	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/mailer"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/pkg/events"
	pktNats "gen8n-be/pkg/nats"

	"github.com/google/uuid"
)

const notificationDurable = "gen8n-notification-worker"

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// NotificationService turns domain events into emails.
type NotificationService struct {
	subscriber EventSubscriber
	uowFactory unitofwork.RepositoryFactory
	email      mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(sub EventSubscriber, uowFactory unitofwork.RepositoryFactory, email mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		uowFactory: uowFactory,
		email:      email,
		logger:     log,
	}
}

func (s *NotificationService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, "events.>", notificationDurable, s.handleEvent); err != nil {
		return err
	}
	s.logger.Info("NOTIFY", "Notification worker listening on events.>", nil)
	return nil
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	switch event.EventType() {
	case events.TypeCreditsPurchased:
		to, err := s.recipient(ctx, payload)
		if err != nil || to == "" {
			return err
		}
		return s.email.SendPurchaseReceipt(to, intFrom(payload["quantity"]), intFrom(payload["bonus"]))
	case events.TypeOnboardingCompleted:
		to, err := s.recipient(ctx, payload)
		if err != nil || to == "" {
			return err
		}
		firstName, _ := payload["first_name"].(string)
		ownKeys, _ := payload["use_own_api_keys"].(bool)
		return s.email.SendWelcome(to, firstName, ownKeys)
	}
	return nil
}

// recipient prefers the email carried by the event and falls back to the
// user row.
func (s *NotificationService) recipient(ctx context.Context, payload map[string]interface{}) (string, error) {
	if email, _ := payload["email"].(string); email != "" {
		return email, nil
	}
	raw, _ := payload["user_id"].(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("NOTIFY", "Event without recipient", map[string]interface{}{"user_id": raw})
		return "", nil
	}
	user, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return user.Email, nil
}
