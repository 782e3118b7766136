package contract

import (
	"context"

	"gen8n-be/internal/entity"

	"github.com/google/uuid"
)

type CreditTransactionRepository interface {
	Create(ctx context.Context, txn *entity.CreditTransaction) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.CreditTransaction, error)
	ExistsByCheckoutSession(ctx context.Context, sessionID string) (bool, error)
	ExistsByPaymentIntent(ctx context.Context, paymentIntentID string) (bool, error)
	// AttachPaymentIntent fills the intent on the user's latest purchase that
	// lacks one. It reports whether a row was updated.
	AttachPaymentIntent(ctx context.Context, userID uuid.UUID, paymentIntentID string) (bool, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
}
