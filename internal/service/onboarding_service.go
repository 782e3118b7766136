package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/contract"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/pkg/credit"
	"gen8n-be/pkg/events"
	"gen8n-be/pkg/onboarding"

	"github.com/google/uuid"
)

type IOnboardingService interface {
	GetState(ctx context.Context, userID uuid.UUID) (*dto.OnboardingStateResponse, error)
	UpdateData(ctx context.Context, userID uuid.UUID, req *dto.OnboardingPatchRequest) (*dto.OnboardingStateResponse, error)
	Next(ctx context.Context, userID uuid.UUID) (*dto.OnboardingStateResponse, error)
	Back(ctx context.Context, userID uuid.UUID) (*dto.OnboardingStateResponse, error)
	JumpTo(ctx context.Context, userID uuid.UUID, step int) (*dto.OnboardingStateResponse, error)
	Complete(ctx context.Context, userID uuid.UUID) (*dto.OnboardingCompleteResponse, error)
	IsOnboardingComplete(ctx context.Context, userID uuid.UUID) (bool, error)
}

type onboardingService struct {
	uowFactory unitofwork.RepositoryFactory
	store      contract.OnboardingStateStore
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewOnboardingService(uowFactory unitofwork.RepositoryFactory, store contract.OnboardingStateStore, publisher events.Publisher, log logger.ILogger) IOnboardingService {
	return &onboardingService{
		uowFactory: uowFactory,
		store:      store,
		publisher:  publisher,
		logger:     log,
	}
}

func alreadyOnboarded() error {
	return serverutils.NewConflict("Onboarding already completed").
		WithDetails(map[string]string{"redirect": serverutils.DashboardPath})
}

func (s *onboardingService) IsOnboardingComplete(ctx context.Context, userID uuid.UUID) (bool, error) {
	settings, err := s.uowFactory.NewUnitOfWork(ctx).SettingsRepository().FindByUserID(ctx, userID)
	if err != nil {
		return false, err
	}
	return settings != nil && settings.OnboardingComplete, nil
}

// load returns the saved wizard, or a fresh one seeded from the account. The
// bool reports that onboarding is already done and there is nothing to load.
func (s *onboardingService) load(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := requireUser(ctx, uow, userID)
	if err != nil {
		return nil, false, err
	}
	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, false, err
	}
	if settings.OnboardingComplete {
		return nil, true, nil
	}

	w, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, false, serverutils.NewInternal(err)
	}
	if w == nil {
		w = onboarding.New()
		w.Data.Email = user.Email
		w.Data.FirstName = user.FirstName
		w.Data.LastName = user.LastName
	}
	return w, false, nil
}

func (s *onboardingService) GetState(ctx context.Context, userID uuid.UUID) (*dto.OnboardingStateResponse, error) {
	w, done, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if done {
		return &dto.OnboardingStateResponse{
			OnboardingComplete: true,
			Redirect:           serverutils.DashboardPath,
			CompletedSteps:     []int{},
			ReachableSteps:     []int{},
		}, nil
	}
	return toOnboardingState(w), nil
}

func (s *onboardingService) mutate(ctx context.Context, userID uuid.UUID, fn func(w *onboarding.Wizard) error) (*dto.OnboardingStateResponse, error) {
	w, done, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, alreadyOnboarded()
	}
	if err := fn(w); err != nil {
		return nil, wizardError(err)
	}
	if err := s.store.Save(ctx, userID, w); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	return toOnboardingState(w), nil
}

func (s *onboardingService) UpdateData(ctx context.Context, userID uuid.UUID, req *dto.OnboardingPatchRequest) (*dto.OnboardingStateResponse, error) {
	return s.mutate(ctx, userID, func(w *onboarding.Wizard) error {
		return applyPatch(&w.Data, req)
	})
}

func (s *onboardingService) Next(ctx context.Context, userID uuid.UUID) (*dto.OnboardingStateResponse, error) {
	return s.mutate(ctx, userID, func(w *onboarding.Wizard) error { return w.Next() })
}

func (s *onboardingService) Back(ctx context.Context, userID uuid.UUID) (*dto.OnboardingStateResponse, error) {
	return s.mutate(ctx, userID, func(w *onboarding.Wizard) error { return w.Back() })
}

func (s *onboardingService) JumpTo(ctx context.Context, userID uuid.UUID, step int) (*dto.OnboardingStateResponse, error) {
	return s.mutate(ctx, userID, func(w *onboarding.Wizard) error { return w.JumpTo(onboarding.Step(step)) })
}

func (s *onboardingService) Complete(ctx context.Context, userID uuid.UUID) (*dto.OnboardingCompleteResponse, error) {
	w, done, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, alreadyOnboarded()
	}
	if !w.Data.Consent {
		return nil, serverutils.NewBadRequest("Consent is required to finish onboarding").
			WithDetails(map[string]int{"step": int(onboarding.StepConfirm)})
	}
	if !w.IsComplete() {
		for step := onboarding.FirstStep; step <= onboarding.LastStep; step++ {
			if stepErr := w.StepError(step); stepErr != nil {
				return nil, serverutils.NewBadRequest(stepErr.Error()).
					WithDetails(map[string]interface{}{"step": int(step), "step_name": step.String()})
			}
		}
	}

	ownKeys := w.PaysWithOwnKeys()
	bonus := 0
	email := ""

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	user, err := requireUser(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	email = user.Email

	profile, err := uow.ProfileRepository().FindByUserID(ctx, userID)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if profile == nil {
		profile = &entity.Profile{Id: uuid.New(), UserId: userID}
	}
	profile.CompanyOrProject = strings.TrimSpace(w.Data.CompanyOrProject)
	profile.UsageIntent = strings.TrimSpace(w.Data.UsageIntent)
	profile.MarketingSource = w.MarketingSourceValue()
	profile.N8nBaseURL = strings.TrimSpace(w.Data.N8nBaseURL)
	profile.UpdatedAt = time.Now()
	if err := uow.ProfileRepository().Upsert(ctx, profile); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	settings.OnboardingComplete = true
	settings.UseOwnAPIKeys = ownKeys
	if ownKeys {
		settings.MainProvider = w.Data.MainProvider
		settings.FallbackProvider = w.Data.FallbackProvider
		for raw, key := range w.Data.APIKeys {
			p, err := credit.ParseProvider(raw)
			if err != nil || p == "" || credit.ValidateKeyFormat(p, key) != nil {
				continue
			}
			settings.APIKeys[p] = strings.TrimSpace(key)
		}
	}
	if err := uow.SettingsRepository().Upsert(ctx, settings); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	if first, last := strings.TrimSpace(w.Data.FirstName), strings.TrimSpace(w.Data.LastName); first != user.FirstName || last != user.LastName {
		if err := uow.UserRepository().UpdateName(ctx, userID, first, last); err != nil {
			return nil, serverutils.NewInternal(err)
		}
	}

	if !ownKeys && user.Credits == 0 {
		bonus = credit.WelcomeBonus
		if err := uow.UserRepository().AddCredits(ctx, userID, bonus); err != nil {
			return nil, serverutils.NewInternal(err)
		}
		err := uow.CreditTransactionRepository().Create(ctx, &entity.CreditTransaction{
			Id:          uuid.New(),
			UserId:      userID,
			Type:        entity.CreditTransactionBonus,
			Amount:      bonus,
			Description: "Welcome bonus",
			CreatedAt:   time.Now(),
		})
		if err != nil {
			return nil, serverutils.NewInternal(err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	if err := s.store.Clear(ctx, userID); err != nil {
		s.logger.Warn("ONBOARDING", "Failed to clear saved wizard", map[string]interface{}{"error": err, "user_id": userID.String()})
	}

	event := events.New(events.TypeOnboardingCompleted, map[string]interface{}{
		"user_id":          userID.String(),
		"email":            email,
		"first_name":       strings.TrimSpace(w.Data.FirstName),
		"use_own_api_keys": ownKeys,
		"welcome_bonus":    bonus,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("ONBOARDING", "Failed to publish completion event", map[string]interface{}{"error": err, "user_id": userID.String()})
	}

	s.logger.Info("ONBOARDING", "Onboarding completed", map[string]interface{}{
		"user_id": userID.String(),
		"mode":    string(modeOf(ownKeys)),
		"bonus":   bonus,
	})
	return &dto.OnboardingCompleteResponse{
		OnboardingComplete: true,
		UseOwnAPIKeys:      ownKeys,
		WelcomeBonus:       bonus,
		Redirect:           serverutils.DashboardPath,
	}, nil
}

func wizardError(err error) error {
	if _, ok := serverutils.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, onboarding.ErrInvalidStep),
		errors.Is(err, onboarding.ErrStepIncomplete),
		errors.Is(err, onboarding.ErrStepLocked),
		errors.Is(err, onboarding.ErrStepSkipped),
		errors.Is(err, onboarding.ErrAtFirstStep),
		errors.Is(err, onboarding.ErrAtLastStep):
		return serverutils.NewBadRequest(err.Error())
	}
	return serverutils.NewInternal(err)
}

func applyPatch(d *onboarding.Data, req *dto.OnboardingPatchRequest) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setString(&d.FirstName, req.FirstName)
	setString(&d.LastName, req.LastName)
	setString(&d.CompanyOrProject, req.CompanyOrProject)
	setString(&d.UsageIntent, req.UsageIntent)
	setString(&d.N8nBaseURL, req.N8nBaseURL)
	setString(&d.MarketingSource, req.MarketingSource)
	setString(&d.OtherSource, req.OtherSource)
	if req.Email != nil {
		d.Email = normalizeEmail(*req.Email)
	}
	if req.UseOwnAPIKeys != nil {
		v := *req.UseOwnAPIKeys
		d.UseOwnAPIKeys = &v
	}
	if req.Consent != nil {
		d.Consent = *req.Consent
	}
	if req.MainProvider != nil {
		p, err := parseProviderField("main_provider", *req.MainProvider)
		if err != nil {
			return err
		}
		d.MainProvider = p
	}
	if req.FallbackProvider != nil {
		p, err := parseProviderField("fallback_provider", *req.FallbackProvider)
		if err != nil {
			return err
		}
		d.FallbackProvider = p
	}
	if d.APIKeys == nil {
		d.APIKeys = map[string]string{}
	}
	for raw, key := range req.APIKeys {
		p, err := parseProviderField("api_keys", raw)
		if err != nil {
			return err
		}
		if p == "" {
			continue
		}
		if key = strings.TrimSpace(key); key == "" {
			delete(d.APIKeys, p.String())
		} else {
			d.APIKeys[p.String()] = key
		}
	}
	return nil
}

func toOnboardingState(w *onboarding.Wizard) *dto.OnboardingStateResponse {
	completed := []int{}
	reachable := []int{}
	for step := onboarding.FirstStep; step <= onboarding.LastStep; step++ {
		if w.IsStepComplete(step) {
			completed = append(completed, int(step))
		}
		skipped := step == onboarding.StepAPIKeySetup && !w.PaysWithOwnKeys()
		if !skipped && (step <= w.Step || w.CanJumpToStep(step)) {
			reachable = append(reachable, int(step))
		}
	}
	data := w.Data
	data.APIKeys = make(map[string]string, len(w.Data.APIKeys))
	for p, key := range w.Data.APIKeys {
		data.APIKeys[p] = credit.MaskKey(key)
	}
	return &dto.OnboardingStateResponse{
		Step:             int(w.Step),
		StepName:         w.Step.String(),
		Data:             &data,
		CompletedSteps:   completed,
		ReachableSteps:   reachable,
		SkipsAPIKeySetup: !w.PaysWithOwnKeys(),
		CanComplete:      w.IsComplete(),
	}
}
