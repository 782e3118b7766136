package service

import (
	"context"
	"net/http"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/pkg/credit"

	"github.com/google/uuid"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

type ICreditService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*dto.BalanceResponse, error)
	GetEligibility(ctx context.Context, userID uuid.UUID) (*dto.EligibilityResponse, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]dto.CreditTransactionResponse, error)
	// SetMode switches between own keys and credits. Setting the current mode
	// again changes nothing.
	SetMode(ctx context.Context, userID uuid.UUID, useOwnKeys bool) (*dto.BalanceResponse, error)
}

type creditService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewCreditService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ICreditService {
	return &creditService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func toBalanceResponse(user *entity.User, settings *entity.Settings) *dto.BalanceResponse {
	return &dto.BalanceResponse{
		Credits:          user.Credits,
		ReservedCredits:  user.ReservedCredits,
		AvailableCredits: user.AvailableCredits(),
		Mode:             string(modeOf(settings.UseOwnAPIKeys)),
		UseOwnAPIKeys:    settings.UseOwnAPIKeys,
	}
}

func (s *creditService) GetBalance(ctx context.Context, userID uuid.UUID) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := requireUser(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	return toBalanceResponse(user, settings), nil
}

func (s *creditService) GetEligibility(ctx context.Context, userID uuid.UUID) (*dto.EligibilityResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := requireUser(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	d := credit.Resolve(balanceOf(user), settings.KeySettings())
	return &dto.EligibilityResponse{
		CanGenerate:      d.CanGenerate,
		Mode:             string(d.Mode),
		Reason:           string(d.Reason),
		Message:          d.Message,
		MissingProviders: d.MissingProviders,
		AvailableCredits: d.AvailableCredits,
		MainProvider:     string(d.MainProvider),
		FallbackProvider: string(d.FallbackProvider),
	}, nil
}

func (s *creditService) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]dto.CreditTransactionResponse, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	txns, err := uow.CreditTransactionRepository().ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	res := make([]dto.CreditTransactionResponse, 0, len(txns))
	for _, t := range txns {
		res = append(res, dto.CreditTransactionResponse{
			Id:              t.Id,
			Type:            string(t.Type),
			Amount:          t.Amount,
			Description:     t.Description,
			WorkflowId:      t.WorkflowId,
			PaymentIntentId: t.StripePaymentIntentId,
			CreatedAt:       t.CreatedAt,
		})
	}
	return res, nil
}

func (s *creditService) SetMode(ctx context.Context, userID uuid.UUID, useOwnKeys bool) (*dto.BalanceResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	user, err := requireUser(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if settings.UseOwnAPIKeys == useOwnKeys {
		return toBalanceResponse(user, settings), nil
	}

	if useOwnKeys {
		candidate := settings.KeySettings()
		candidate.UseOwnAPIKeys = true
		if d := credit.Resolve(balanceOf(user), candidate); !d.CanGenerate {
			return nil, serverutils.NewBadRequest(d.Message).WithDetails(eligibilityDetails(d))
		}
	} else if user.AvailableCredits() == 0 {
		return nil, serverutils.NewAppError(http.StatusForbidden, "No credits available. Purchase credits before switching.").
			WithDetails(map[string]interface{}{"reason": "no_credits_available", "available_credits": 0})
	}

	settings.UseOwnAPIKeys = useOwnKeys
	if err := uow.SettingsRepository().Upsert(ctx, settings); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	s.logger.Info("CREDITS", "Billing mode changed", map[string]interface{}{
		"user_id": userID.String(),
		"mode":    string(modeOf(useOwnKeys)),
	})
	return toBalanceResponse(user, settings), nil
}
