package implementation

import (
	"context"
	"errors"

	"gen8n-be/internal/entity"
	"gen8n-be/internal/mapper"
	"gen8n-be/internal/model"
	"gen8n-be/internal/repository/contract"
	"gen8n-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditTransactionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CreditMapper
}

func NewCreditTransactionRepository(db *gorm.DB) contract.CreditTransactionRepository {
	return &CreditTransactionRepositoryImpl{
		db:     db,
		mapper: mapper.NewCreditMapper(),
	}
}

func (r *CreditTransactionRepositoryImpl) Create(ctx context.Context, txn *entity.CreditTransaction) error {
	row := r.mapper.ToModel(txn)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*txn = *r.mapper.ToEntity(row)
	return nil
}

func (r *CreditTransactionRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.CreditTransaction, error) {
	var rows []*model.CreditTransaction
	err := specification.Apply(r.db.WithContext(ctx),
		specification.OwnedBy{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *CreditTransactionRepositoryImpl) exists(ctx context.Context, spec specification.Specification) (bool, error) {
	var count int64
	err := specification.Apply(r.db.WithContext(ctx).Model(&model.CreditTransaction{}), spec).
		Limit(1).Count(&count).Error
	return count > 0, err
}

func (r *CreditTransactionRepositoryImpl) ExistsByCheckoutSession(ctx context.Context, sessionID string) (bool, error) {
	return r.exists(ctx, specification.ByCheckoutSession{SessionID: sessionID})
}

func (r *CreditTransactionRepositoryImpl) ExistsByPaymentIntent(ctx context.Context, paymentIntentID string) (bool, error) {
	return r.exists(ctx, specification.ByPaymentIntent{PaymentIntentID: paymentIntentID})
}

func (r *CreditTransactionRepositoryImpl) AttachPaymentIntent(ctx context.Context, userID uuid.UUID, paymentIntentID string) (bool, error) {
	var row model.CreditTransaction
	err := specification.Apply(r.db.WithContext(ctx),
		specification.OwnedBy{UserID: userID},
		specification.PurchaseAwaitingIntent{},
		specification.OrderBy{Field: "created_at", Desc: true},
	).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	res := r.db.WithContext(ctx).Model(&model.CreditTransaction{}).
		Where("id = ?", row.Id).
		UpdateColumn("stripe_payment_intent_id", paymentIntentID)
	return res.RowsAffected > 0, res.Error
}

type FeedbackRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CreditMapper
}

func NewFeedbackRepository(db *gorm.DB) contract.FeedbackRepository {
	return &FeedbackRepositoryImpl{
		db:     db,
		mapper: mapper.NewCreditMapper(),
	}
}

func (r *FeedbackRepositoryImpl) Create(ctx context.Context, feedback *entity.Feedback) error {
	row := r.mapper.FeedbackToModel(feedback)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	feedback.Id = row.Id
	feedback.CreatedAt = row.CreatedAt
	return nil
}
