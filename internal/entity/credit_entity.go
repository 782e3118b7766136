package entity

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransactionType string

const (
	CreditTransactionPurchase CreditTransactionType = "purchase"
	CreditTransactionUsage    CreditTransactionType = "usage"
	CreditTransactionRefund   CreditTransactionType = "refund"
	CreditTransactionBonus    CreditTransactionType = "bonus"
)

// CreditTransaction is an append-only ledger row.
type CreditTransaction struct {
	Id                      uuid.UUID
	UserId                  uuid.UUID
	Type                    CreditTransactionType
	Amount                  int
	Description             string
	WorkflowId              *uuid.UUID
	StripePaymentIntentId   *string
	StripeCheckoutSessionId *string
	CreatedAt               time.Time
}
