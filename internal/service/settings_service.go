package service

import (
	"context"
	"strings"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/pkg/credit"

	"github.com/google/uuid"
)

type ISettingsService interface {
	GetSettings(ctx context.Context, userID uuid.UUID) (*dto.SettingsResponse, error)
	UpdateAPIKeys(ctx context.Context, userID uuid.UUID, req *dto.UpdateAPIKeysRequest) (*dto.SettingsResponse, error)
	DeleteAPIKey(ctx context.Context, userID uuid.UUID, provider string) (*dto.SettingsResponse, error)
}

type settingsService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewSettingsService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ISettingsService {
	return &settingsService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func toSettingsResponse(s *entity.Settings) *dto.SettingsResponse {
	keys := make(map[string]dto.APIKeyView, len(s.APIKeys))
	for p, key := range s.APIKeys {
		keys[p.String()] = dto.APIKeyView{Masked: credit.MaskKey(key), Name: s.KeyNames[p]}
	}
	return &dto.SettingsResponse{
		MainProvider:       s.MainProvider.String(),
		FallbackProvider:   s.FallbackProvider.String(),
		UseOwnAPIKeys:      s.UseOwnAPIKeys,
		OnboardingComplete: s.OnboardingComplete,
		Keys:               keys,
	}
}

func (s *settingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*dto.SettingsResponse, error) {
	settings, err := settingsOrDefault(ctx, s.uowFactory.NewUnitOfWork(ctx), userID)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

func parseProviderField(field, raw string) (credit.Provider, error) {
	p, err := credit.ParseProvider(raw)
	if err != nil {
		return "", serverutils.NewBadRequest("Invalid provider").WithDetails(map[string]string{field: err.Error()})
	}
	return p, nil
}

func (s *settingsService) UpdateAPIKeys(ctx context.Context, userID uuid.UUID, req *dto.UpdateAPIKeysRequest) (*dto.SettingsResponse, error) {
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

	if req.MainProvider != nil {
		if settings.MainProvider, err = parseProviderField("main_provider", *req.MainProvider); err != nil {
			return nil, err
		}
	}
	if req.FallbackProvider != nil {
		if settings.FallbackProvider, err = parseProviderField("fallback_provider", *req.FallbackProvider); err != nil {
			return nil, err
		}
	}

	keyErrors := map[string]string{}
	for raw, key := range req.Keys {
		p, err := credit.ParseProvider(raw)
		if err != nil || p == "" {
			keyErrors[raw] = "unknown provider"
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if err := credit.ValidateKeyFormat(p, key); err != nil {
			keyErrors[raw] = err.Error()
			continue
		}
		settings.APIKeys[p] = key
	}
	for raw, name := range req.KeyNames {
		p, err := credit.ParseProvider(raw)
		if err != nil || p == "" {
			keyErrors[raw] = "unknown provider"
			continue
		}
		if name = strings.TrimSpace(name); name == "" {
			delete(settings.KeyNames, p)
		} else {
			settings.KeyNames[p] = name
		}
	}
	if len(keyErrors) > 0 {
		return nil, serverutils.NewBadRequest("Invalid API keys").WithDetails(keyErrors)
	}

	if settings.UseOwnAPIKeys {
		if d := credit.Resolve(balanceOf(user), settings.KeySettings()); !d.CanGenerate {
			return nil, serverutils.NewBadRequest(d.Message).WithDetails(eligibilityDetails(d))
		}
	}

	if err := uow.SettingsRepository().Upsert(ctx, settings); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	return toSettingsResponse(settings), nil
}

func (s *settingsService) DeleteAPIKey(ctx context.Context, userID uuid.UUID, provider string) (*dto.SettingsResponse, error) {
	p, err := credit.ParseProvider(provider)
	if err != nil || p == "" {
		return nil, serverutils.NewBadRequest("Invalid provider")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	if settings.UseOwnAPIKeys && (p == settings.MainProvider || p == settings.FallbackProvider) {
		return nil, serverutils.NewConflict("This key is in use. Switch providers or billing mode first.")
	}

	delete(settings.APIKeys, p)
	delete(settings.KeyNames, p)
	if err := uow.SettingsRepository().Upsert(ctx, settings); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	return toSettingsResponse(settings), nil
}
