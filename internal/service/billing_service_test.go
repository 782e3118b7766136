package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/payment"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func stripeSignature(payload []byte) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: payload,
		Secret:  testWebhookSecret,
	}).Header
}

func checkoutCompletedEvent(userID uuid.UUID, quantity int) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_checkout_1",
		"object": "event",
		"type": "checkout.session.completed",
		"api_version": "2024-06-20",
		"data": {"object": {
			"id": "cs_test_abc",
			"object": "checkout.session",
			"payment_intent": "pi_test_123",
			"payment_status": "paid",
			"metadata": {"user_id": %q, "credit_quantity": "%d", "user_email": "buyer@example.com"}
		}}
	}`, userID.String(), quantity))
}

type fakeGateway struct {
	lastRequest payment.CheckoutRequest
	err         error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.lastRequest = req
	if g.err != nil {
		return nil, g.err
	}
	return &payment.CheckoutSession{ID: "cs_test_new", URL: "https://checkout.stripe.com/c/pay/cs_test_new"}, nil
}

func (g *fakeGateway) ConstructEvent([]byte, string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("not used")
}

func newBilling(db *memDB, gw payment.Gateway, pub events.Publisher) IBillingService {
	return NewBillingService(&memFactory{db}, gw, pub, BillingConfig{ClientURL: "https://app.gen8n.test"}, nopLog())
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr, ok := serverutils.AsAppError(err)
	require.True(t, ok, "expected *AppError, got %v", err)
	return appErr.Code
}

func TestStripeWebhookCreditsPurchaseOnce(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{Email: "buyer@example.com"})
	pub := &recordingPublisher{}
	svc := newBilling(db, payment.NewStripeGateway("sk_test_x", testWebhookSecret), pub)

	payload := checkoutCompletedEvent(user.Id, 10)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, stripeSignature(payload)))

	txns := db.transactions(user.Id)
	require.Len(t, txns, 1)
	assert.Equal(t, entity.CreditTransactionPurchase, txns[0].Type)
	assert.Equal(t, 12, txns[0].Amount)
	assert.Equal(t, "Purchased 10 credits (+2 bonus) via Stripe", txns[0].Description)
	require.NotNil(t, txns[0].StripePaymentIntentId)
	assert.Equal(t, "pi_test_123", *txns[0].StripePaymentIntentId)
	assert.Equal(t, 12, db.user(user.Id).Credits)
	assert.Equal(t, []string{events.TypeCreditsPurchased}, pub.types())

	// Stripe redelivers on timeouts.
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, stripeSignature(payload)))
	assert.Len(t, db.transactions(user.Id), 1)
	assert.Equal(t, 12, db.user(user.Id).Credits)
	assert.Len(t, pub.types(), 1)
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	svc := newBilling(db, payment.NewStripeGateway("sk_test_x", testWebhookSecret), events.NopPublisher{})

	payload := checkoutCompletedEvent(user.Id, 10)
	err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")

	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.Zero(t, db.user(user.Id).Credits)
}

func TestStripeWebhookIgnoresMissingMetadata(t *testing.T) {
	db := newMemDB()
	svc := newBilling(db, payment.NewStripeGateway("sk_test_x", testWebhookSecret), events.NopPublisher{})

	payload := []byte(`{"id":"evt_2","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_x","object":"checkout.session","metadata":{}}}}`)
	assert.NoError(t, svc.HandleWebhook(context.Background(), payload, stripeSignature(payload)))
	assert.Empty(t, db.txns)
}

func TestPaymentIntentSucceededBackfillsPurchase(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	session := "cs_pending"
	db.txns = append(db.txns, entity.CreditTransaction{
		Id: uuid.New(), UserId: user.Id, Type: entity.CreditTransactionPurchase, Amount: 5,
		StripeCheckoutSessionId: &session,
	})
	svc := newBilling(db, payment.NewStripeGateway("sk_test_x", testWebhookSecret), events.NopPublisher{})

	payload := []byte(fmt.Sprintf(`{"id":"evt_3","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_late","object":"payment_intent","metadata":{"user_id":%q}}}}`, user.Id))
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, stripeSignature(payload)))

	txns := db.transactions(user.Id)
	require.NotNil(t, txns[0].StripePaymentIntentId)
	assert.Equal(t, "pi_late", *txns[0].StripePaymentIntentId)
}

func TestCreateCheckout(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{Email: "buyer@example.com"})
	gw := &fakeGateway{}
	svc := newBilling(db, gw, events.NopPublisher{})

	res, err := svc.CreateCheckout(context.Background(), user.Id, &dto.PurchaseCreditsRequest{Quantity: 25, UserID: user.Id.String()})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_new", res.URL)

	req := gw.lastRequest
	assert.Equal(t, int64(25), req.Quantity)
	assert.Equal(t, int64(150), req.UnitAmountCents)
	assert.Equal(t, "Gen8n Credits (25)", req.ProductName)
	assert.Equal(t, "https://app.gen8n.test/settings?purchase=success", req.SuccessURL)
	assert.Equal(t, "https://app.gen8n.test/settings?purchase=cancelled", req.CancelURL)
	assert.Equal(t, map[string]string{
		"user_id":         user.Id.String(),
		"credit_quantity": "25",
		"user_email":      "buyer@example.com",
	}, req.Metadata)
}

func TestCreateCheckoutRejections(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	gw := &fakeGateway{}
	svc := newBilling(db, gw, events.NopPublisher{})
	ctx := context.Background()

	for _, q := range []int{0, -3, 1001} {
		_, err := svc.CreateCheckout(ctx, user.Id, &dto.PurchaseCreditsRequest{Quantity: q})
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err), "quantity %d", q)
	}

	_, err := svc.CreateCheckout(ctx, user.Id, &dto.PurchaseCreditsRequest{Quantity: 5, UserID: uuid.NewString()})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	gw.err = errors.New("stripe down")
	_, err = svc.CreateCheckout(ctx, user.Id, &dto.PurchaseCreditsRequest{Quantity: 5})
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}
