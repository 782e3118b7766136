package specification

import "gorm.io/gorm"

type ByCheckoutSession struct {
	SessionID string
}

func (s ByCheckoutSession) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stripe_checkout_session_id = ?", s.SessionID)
}

type ByPaymentIntent struct {
	PaymentIntentID string
}

func (s ByPaymentIntent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stripe_payment_intent_id = ?", s.PaymentIntentID)
}

// PurchaseAwaitingIntent selects purchase rows recorded before Stripe
// reported the payment intent.
type PurchaseAwaitingIntent struct{}

func (s PurchaseAwaitingIntent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ? AND stripe_payment_intent_id IS NULL", "purchase")
}
