package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/unitofwork"
	"gen8n-be/pkg/credit"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// TriggerConfig locates the generator and the keys used for credit-paid runs.
type TriggerConfig struct {
	WebhookURL               string
	CallbackURL              string
	PlatformMainProvider     string
	PlatformFallbackProvider string
	PlatformKeys             map[string]string
}

type ITriggerService interface {
	// Trigger enriches body and forwards it once to the generator. The
	// upstream reply is returned as-is, whatever its status.
	Trigger(ctx context.Context, userID uuid.UUID, body map[string]interface{}) (*dto.ProxyResponse, error)
}

type triggerService struct {
	uowFactory unitofwork.RepositoryFactory
	client     *resty.Client
	cfg        TriggerConfig
	logger     logger.ILogger
}

func NewTriggerService(uowFactory unitofwork.RepositoryFactory, client *resty.Client, cfg TriggerConfig, log logger.ILogger) ITriggerService {
	if client == nil {
		client = resty.New()
	}
	client.SetRetryCount(0)
	return &triggerService{
		uowFactory: uowFactory,
		client:     client,
		cfg:        cfg,
		logger:     log,
	}
}

// workflowIDFrom reports whether the body carries a workflow_id at all, and
// the parsed id when it does.
func workflowIDFrom(body map[string]interface{}) (uuid.UUID, bool, error) {
	switch v := body["workflow_id"].(type) {
	case nil:
		return uuid.Nil, false, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return uuid.Nil, false, nil
		}
		id, err := uuid.Parse(strings.TrimSpace(v))
		return id, true, err
	default:
		return uuid.Nil, true, fmt.Errorf("workflow_id must be a string, got %T", v)
	}
}

func (s *triggerService) Trigger(ctx context.Context, userID uuid.UUID, body map[string]interface{}) (*dto.ProxyResponse, error) {
	if body == nil {
		return nil, serverutils.NewBadRequest("workflow_id is required")
	}
	workflowID, present, err := workflowIDFrom(body)
	if !present {
		return nil, serverutils.NewBadRequest("workflow_id is required")
	}
	if err != nil {
		return nil, serverutils.NewBadRequest("workflow_id must be a valid UUID")
	}
	if s.cfg.WebhookURL == "" {
		s.logger.Error("TRIGGER", "Generator webhook URL is not configured", nil)
		return nil, serverutils.NewInternal(errors.New("generator webhook url not configured"))
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := requireUser(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	// The generator's callback updates by id, so only the owner may start a run.
	workflow, err := uow.WorkflowRepository().FindOwned(ctx, workflowID, userID)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if workflow == nil {
		s.logger.Warn("TRIGGER", "Trigger refused: workflow not owned", map[string]interface{}{
			"user_id":     userID.String(),
			"workflow_id": workflowID.String(),
		})
		return nil, serverutils.NewNotFound("Workflow not found")
	}
	profile, err := uow.ProfileRepository().FindByUserID(ctx, userID)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	d := credit.Resolve(balanceOf(user), settings.KeySettings())
	if !d.CanGenerate {
		s.logger.Info("TRIGGER", "Generation refused", map[string]interface{}{
			"user_id": userID.String(),
			"reason":  string(d.Reason),
		})
		return nil, serverutils.NewForbidden(d.Message).WithDetails(eligibilityDetails(d))
	}

	body["workflow_id"] = workflow.Id.String()
	body["user_id"] = userID.String()
	body["email"] = user.Email
	body["use_own_api_keys"] = d.Mode == credit.ModeOwnKeys
	body["callback_url"] = s.cfg.CallbackURL
	if d.Mode == credit.ModeOwnKeys {
		keys := make(map[string]string, len(d.Keys))
		for p, key := range d.Keys {
			keys[p.String()] = key
		}
		body["api_keys"] = keys
		body["main_provider"] = d.MainProvider.String()
		body["fallback_provider"] = d.FallbackProvider.String()
	} else {
		body["api_keys"] = s.cfg.PlatformKeys
		body["main_provider"] = s.cfg.PlatformMainProvider
		body["fallback_provider"] = s.cfg.PlatformFallbackProvider
	}
	if profile != nil && profile.N8nBaseURL != "" {
		body["base_url"] = profile.N8nBaseURL
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(s.cfg.WebhookURL)
	if err != nil {
		s.logger.Error("TRIGGER", "Generator unreachable", map[string]interface{}{
			"error":       err,
			"user_id":     userID.String(),
			"workflow_id": fmt.Sprint(body["workflow_id"]),
		})
		return nil, serverutils.NewBadGateway("Workflow generator is unavailable", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		s.logger.Warn("TRIGGER", "Generator returned an error", map[string]interface{}{
			"status":      resp.StatusCode(),
			"user_id":     userID.String(),
			"workflow_id": fmt.Sprint(body["workflow_id"]),
		})
	}
	return &dto.ProxyResponse{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}, nil
}
