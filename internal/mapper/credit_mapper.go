package mapper

import (
	"gen8n-be/internal/entity"
	"gen8n-be/internal/model"
)

type CreditMapper struct{}

func NewCreditMapper() *CreditMapper {
	return &CreditMapper{}
}

func (m *CreditMapper) ToEntity(t *model.CreditTransaction) *entity.CreditTransaction {
	if t == nil {
		return nil
	}
	return &entity.CreditTransaction{
		Id:                      t.Id,
		UserId:                  t.UserId,
		Type:                    entity.CreditTransactionType(t.Type),
		Amount:                  t.Amount,
		Description:             t.Description,
		WorkflowId:              t.WorkflowId,
		StripePaymentIntentId:   t.StripePaymentIntentId,
		StripeCheckoutSessionId: t.StripeCheckoutSessionId,
		CreatedAt:               t.CreatedAt,
	}
}

func (m *CreditMapper) ToModel(t *entity.CreditTransaction) *model.CreditTransaction {
	if t == nil {
		return nil
	}
	return &model.CreditTransaction{
		Id:                      t.Id,
		UserId:                  t.UserId,
		Type:                    string(t.Type),
		Amount:                  t.Amount,
		Description:             t.Description,
		WorkflowId:              t.WorkflowId,
		StripePaymentIntentId:   t.StripePaymentIntentId,
		StripeCheckoutSessionId: t.StripeCheckoutSessionId,
		CreatedAt:               t.CreatedAt,
	}
}

func (m *CreditMapper) ToEntities(ts []*model.CreditTransaction) []*entity.CreditTransaction {
	entities := make([]*entity.CreditTransaction, len(ts))
	for i, t := range ts {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

func (m *CreditMapper) FeedbackToModel(f *entity.Feedback) *model.Feedback {
	if f == nil {
		return nil
	}
	return &model.Feedback{
		Id:                f.Id,
		UserId:            f.UserId,
		Type:              string(f.Type),
		Content:           f.Content,
		RelatedWorkflowId: f.RelatedWorkflowId,
		CreatedAt:         f.CreatedAt,
	}
}
