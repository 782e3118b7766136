package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/payment"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/pkg/credit"
	"gen8n-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
)

type BillingConfig struct {
	ClientURL      string
	UnitPriceCents int
	Currency       string
}

type IBillingService interface {
	CreateCheckout(ctx context.Context, userID uuid.UUID, req *dto.PurchaseCreditsRequest) (*dto.PurchaseCreditsResponse, error)
	// HandleWebhook verifies and applies a Stripe event. Redelivered events
	// are acknowledged without side effects.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type billingService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    payment.Gateway
	publisher  events.Publisher
	cfg        BillingConfig
	logger     logger.ILogger
}

func NewBillingService(uowFactory unitofwork.RepositoryFactory, gateway payment.Gateway, publisher events.Publisher, cfg BillingConfig, log logger.ILogger) IBillingService {
	if cfg.UnitPriceCents <= 0 {
		cfg.UnitPriceCents = credit.UnitPriceCents
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &billingService{
		uowFactory: uowFactory,
		gateway:    gateway,
		publisher:  publisher,
		cfg:        cfg,
		logger:     log,
	}
}

func (s *billingService) CreateCheckout(ctx context.Context, userID uuid.UUID, req *dto.PurchaseCreditsRequest) (*dto.PurchaseCreditsResponse, error) {
	if req.UserID != "" && req.UserID != userID.String() {
		return nil, serverutils.NewForbidden("Cannot purchase credits for another user")
	}
	if err := credit.ValidateQuantity(req.Quantity); err != nil {
		return nil, serverutils.NewBadRequest(err.Error())
	}

	user, err := requireUser(ctx, s.uowFactory.NewUnitOfWork(ctx), userID)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		CustomerEmail:   user.Email,
		ProductName:     fmt.Sprintf("Gen8n Credits (%d)", req.Quantity),
		Quantity:        int64(req.Quantity),
		UnitAmountCents: int64(s.cfg.UnitPriceCents),
		Currency:        s.cfg.Currency,
		SuccessURL:      s.cfg.ClientURL + "/settings?purchase=success",
		CancelURL:       s.cfg.ClientURL + "/settings?purchase=cancelled",
		Metadata: map[string]string{
			"user_id":         userID.String(),
			"credit_quantity": strconv.Itoa(req.Quantity),
			"user_email":      user.Email,
		},
	})
	if err != nil {
		s.logger.Error("BILLING", "Failed to create checkout session", map[string]interface{}{
			"error":    err,
			"user_id":  userID.String(),
			"quantity": req.Quantity,
		})
		return nil, serverutils.NewInternal(err)
	}

	s.logger.Info("BILLING", "Checkout session created", map[string]interface{}{
		"user_id":    userID.String(),
		"session_id": session.ID,
		"quantity":   req.Quantity,
	})
	return &dto.PurchaseCreditsResponse{URL: session.URL, SessionID: session.ID}, nil
}

func (s *billingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		s.logger.Warn("BILLING", "Webhook signature verification failed", map[string]interface{}{"error": err})
		if errors.Is(err, payment.ErrWebhookNotConfigured) {
			return serverutils.NewInternal(err)
		}
		return serverutils.NewBadRequest("Invalid signature")
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			s.logger.Error("BILLING", "Malformed checkout session", map[string]interface{}{"error": err, "event_id": event.ID})
			return nil
		}
		return s.creditPurchase(ctx, &session)
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			s.logger.Error("BILLING", "Malformed payment intent", map[string]interface{}{"error": err, "event_id": event.ID})
			return nil
		}
		return s.attachPaymentIntent(ctx, &intent)
	case "payment_intent.payment_failed":
		s.logger.Warn("BILLING", "Payment failed", map[string]interface{}{"event_id": event.ID})
	default:
		s.logger.Debug("BILLING", "Ignoring webhook event", map[string]interface{}{"type": string(event.Type), "event_id": event.ID})
	}
	return nil
}

func (s *billingService) creditPurchase(ctx context.Context, session *stripe.CheckoutSession) error {
	userID, err := uuid.Parse(session.Metadata["user_id"])
	quantity, qtyErr := strconv.Atoi(session.Metadata["credit_quantity"])
	if err != nil || qtyErr != nil || credit.ValidateQuantity(quantity) != nil {
		s.logger.Warn("BILLING", "Checkout session without usable metadata", map[string]interface{}{
			"session_id": session.ID,
			"metadata":   session.Metadata,
		})
		return nil
	}
	if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		s.logger.Info("BILLING", "Checkout completed but unpaid", map[string]interface{}{"session_id": session.ID})
		return nil
	}

	var intentID *string
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		id := session.PaymentIntent.ID
		intentID = &id
	}
	bonus := credit.BonusFor(quantity)
	total := quantity + bonus

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	txns := uow.CreditTransactionRepository()
	seen, err := txns.ExistsByCheckoutSession(ctx, session.ID)
	if err == nil && !seen && intentID != nil {
		seen, err = txns.ExistsByPaymentIntent(ctx, *intentID)
	}
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if seen {
		s.logger.Info("BILLING", "Duplicate checkout event ignored", map[string]interface{}{"session_id": session.ID})
		return nil
	}

	user, err := uow.UserRepository().FindByID(ctx, userID)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if user == nil {
		s.logger.Error("BILLING", "Paid checkout for unknown user", map[string]interface{}{
			"session_id": session.ID,
			"user_id":    userID.String(),
		})
		return nil
	}

	if err := uow.UserRepository().AddCredits(ctx, userID, total); err != nil {
		return serverutils.NewInternal(err)
	}
	sessionID := session.ID
	err = txns.Create(ctx, &entity.CreditTransaction{
		Id:                      uuid.New(),
		UserId:                  userID,
		Type:                    entity.CreditTransactionPurchase,
		Amount:                  total,
		Description:             credit.PurchaseDescription(quantity),
		StripePaymentIntentId:   intentID,
		StripeCheckoutSessionId: &sessionID,
		CreatedAt:               time.Now(),
	})
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if err := uow.Commit(); err != nil {
		return serverutils.NewInternal(err)
	}

	s.logger.Info("BILLING", "Credits purchased", map[string]interface{}{
		"user_id":  userID.String(),
		"quantity": quantity,
		"bonus":    bonus,
	})

	event := events.New(events.TypeCreditsPurchased, map[string]interface{}{
		"user_id":  userID.String(),
		"email":    user.Email,
		"quantity": quantity,
		"bonus":    bonus,
		"total":    total,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("BILLING", "Failed to publish purchase event", map[string]interface{}{"error": err, "user_id": userID.String()})
	}
	return nil
}

// attachPaymentIntent covers sessions completed before Stripe attached the
// intent id.
func (s *billingService) attachPaymentIntent(ctx context.Context, intent *stripe.PaymentIntent) error {
	userID, err := uuid.Parse(intent.Metadata["user_id"])
	if err != nil {
		s.logger.Debug("BILLING", "Payment intent without user metadata", map[string]interface{}{"payment_intent": intent.ID})
		return nil
	}

	txns := s.uowFactory.NewUnitOfWork(ctx).CreditTransactionRepository()
	seen, err := txns.ExistsByPaymentIntent(ctx, intent.ID)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if seen {
		return nil
	}
	updated, err := txns.AttachPaymentIntent(ctx, userID, intent.ID)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	s.logger.Info("BILLING", "Payment intent succeeded", map[string]interface{}{
		"payment_intent": intent.ID,
		"user_id":        userID.String(),
		"attached":       updated,
	})
	return nil
}
