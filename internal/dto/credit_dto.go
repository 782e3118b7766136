package dto

import (
	"time"

	"github.com/google/uuid"
)

type BalanceResponse struct {
	Credits          int    `json:"credits"`
	ReservedCredits  int    `json:"reserved_credits"`
	AvailableCredits int    `json:"available_credits"`
	Mode             string `json:"mode"`
	UseOwnAPIKeys    bool   `json:"use_own_api_keys"`
}

type EligibilityResponse struct {
	CanGenerate      bool     `json:"can_generate"`
	Mode             string   `json:"mode"`
	Reason           string   `json:"reason,omitempty"`
	Message          string   `json:"message,omitempty"`
	MissingProviders []string `json:"missing_providers,omitempty"`
	AvailableCredits int      `json:"available_credits"`
	MainProvider     string   `json:"main_provider,omitempty"`
	FallbackProvider string   `json:"fallback_provider,omitempty"`
}

type CreditTransactionResponse struct {
	Id              uuid.UUID  `json:"id"`
	Type            string     `json:"type"`
	Amount          int        `json:"amount"`
	Description     string     `json:"description"`
	WorkflowId      *uuid.UUID `json:"workflow_id,omitempty"`
	PaymentIntentId *string    `json:"stripe_payment_intent_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type SetModeRequest struct {
	UseOwnAPIKeys *bool `json:"use_own_api_keys" validate:"required"`
}

type PurchaseCreditsRequest struct {
	Quantity int    `json:"quantity"`
	UserID   string `json:"user_id"`
}

type PurchaseCreditsResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type WebhookAckResponse struct {
	Received bool `json:"received"`
}
