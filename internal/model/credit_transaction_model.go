package model

import (
	"time"

	"github.com/google/uuid"
)

type CreditTransaction struct {
	Id                      uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type                    string     `gorm:"type:varchar(20);not null"`
	Amount                  int        `gorm:"not null"`
	Description             string     `gorm:"type:text"`
	WorkflowId              *uuid.UUID `gorm:"type:uuid"`
	StripePaymentIntentId   *string    `gorm:"type:varchar(255);index"`
	StripeCheckoutSessionId *string    `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt               time.Time  `gorm:"autoCreateTime;index"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
