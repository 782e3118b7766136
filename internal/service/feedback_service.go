package service

import (
	"context"
	"strings"
	"time"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IFeedbackService interface {
	Submit(ctx context.Context, userID uuid.UUID, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)
}

type feedbackService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewFeedbackService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IFeedbackService {
	return &feedbackService{uowFactory: uowFactory, logger: log}
}

func (s *feedbackService) Submit(ctx context.Context, userID uuid.UUID, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	var related *uuid.UUID
	if req.RelatedWorkflowID != "" {
		id, err := uuid.Parse(req.RelatedWorkflowID)
		if err != nil {
			return nil, serverutils.NewBadRequest("related_workflow_id must be a valid UUID")
		}
		w, err := uow.WorkflowRepository().FindOwned(ctx, id, userID)
		if err != nil {
			return nil, serverutils.NewInternal(err)
		}
		if w == nil {
			return nil, serverutils.NewNotFound("Workflow not found")
		}
		related = &id
	}

	fb := &entity.Feedback{
		Id:                uuid.New(),
		UserId:            userID,
		Type:              entity.FeedbackType(req.Type),
		Content:           strings.TrimSpace(req.Content),
		RelatedWorkflowId: related,
		CreatedAt:         time.Now(),
	}
	if err := uow.FeedbackRepository().Create(ctx, fb); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	s.logger.Info("FEEDBACK", "Feedback received", map[string]interface{}{"user_id": userID.String(), "type": req.Type})
	return &dto.FeedbackResponse{Id: fb.Id, Type: string(fb.Type), CreatedAt: fb.CreatedAt}, nil
}
