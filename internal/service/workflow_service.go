package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	WorkflowUpdatedTopic = "workflow.updated"

	defaultPageSize = 10
	maxPageSize     = 100
)

type IWorkflowService interface {
	List(ctx context.Context, userID uuid.UUID, from, to int, search string) (*dto.WorkflowListResponse, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*dto.WorkflowResponse, error)
	Download(ctx context.Context, userID, id uuid.UUID) (string, []byte, error)
	Create(ctx context.Context, userID uuid.UUID, req *dto.CreateWorkflowRequest) (*dto.WorkflowResponse, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	// Generate inserts a placeholder and triggers generation for it. The
	// placeholder is removed again when the trigger does not succeed.
	Generate(ctx context.Context, userID uuid.UUID, req *dto.GenerateWorkflowRequest) (*dto.ProxyResponse, uuid.UUID, error)
	HandleCallback(ctx context.Context, secret string, req *dto.WorkflowCallbackRequest) (*dto.WorkflowResponse, error)
	Summary(ctx context.Context, userID uuid.UUID) (*dto.DashboardSummaryResponse, error)
}

type workflowService struct {
	uowFactory     unitofwork.RepositoryFactory
	trigger        ITriggerService
	bus            message.Publisher
	callbackSecret string
	logger         logger.ILogger
}

func NewWorkflowService(uowFactory unitofwork.RepositoryFactory, trigger ITriggerService, bus message.Publisher, callbackSecret string, log logger.ILogger) IWorkflowService {
	return &workflowService{
		uowFactory:     uowFactory,
		trigger:        trigger,
		bus:            bus,
		callbackSecret: callbackSecret,
		logger:         log,
	}
}

func toWorkflowResponse(w *entity.Workflow) *dto.WorkflowResponse {
	return &dto.WorkflowResponse{
		Id:          w.Id,
		Name:        w.Name,
		Description: w.Description,
		JSON:        w.JSON,
		StickyNotes: w.StickyNotes,
		Status:      string(w.Status),
		WorkflowURL: w.WorkflowURL,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// pageBounds clamps an inclusive row range.
func pageBounds(from, to int) (int, int) {
	if from < 0 {
		from = 0
	}
	if to < from {
		to = from + defaultPageSize - 1
	}
	if to-from+1 > maxPageSize {
		to = from + maxPageSize - 1
	}
	return from, to
}

func (s *workflowService) List(ctx context.Context, userID uuid.UUID, from, to int, search string) (*dto.WorkflowListResponse, error) {
	from, to = pageBounds(from, to)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	// One extra row tells whether another page exists.
	rows, err := uow.WorkflowRepository().List(ctx, userID, entity.WorkflowQuery{From: from, To: to + 1, Search: search})
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	pageSize := to - from + 1
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}

	list := make([]dto.WorkflowResponse, 0, len(rows))
	for _, w := range rows {
		list = append(list, *toWorkflowResponse(w))
	}
	return &dto.WorkflowListResponse{Workflows: list, From: from, To: to, HasMore: hasMore}, nil
}

func (s *workflowService) findOwned(ctx context.Context, userID, id uuid.UUID) (*entity.Workflow, error) {
	w, err := s.uowFactory.NewUnitOfWork(ctx).WorkflowRepository().FindOwned(ctx, id, userID)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if w == nil {
		return nil, serverutils.NewNotFound("Workflow not found")
	}
	return w, nil
}

func (s *workflowService) Get(ctx context.Context, userID, id uuid.UUID) (*dto.WorkflowResponse, error) {
	w, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return toWorkflowResponse(w), nil
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

func workflowFilename(name string) string {
	slug := strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "workflow"
	}
	return slug + ".json"
}

func (s *workflowService) Download(ctx context.Context, userID, id uuid.UUID) (string, []byte, error) {
	w, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return "", nil, err
	}
	if !w.Status.Finished() {
		return "", nil, serverutils.NewConflict("Workflow is not ready yet")
	}
	return workflowFilename(w.Name), w.JSON, nil
}

func (s *workflowService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateWorkflowRequest) (*dto.WorkflowResponse, error) {
	w := entity.NewPlaceholder(userID, strings.TrimSpace(req.Name), strings.TrimSpace(req.Description))
	if err := s.uowFactory.NewUnitOfWork(ctx).WorkflowRepository().Create(ctx, w); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	return toWorkflowResponse(w), nil
}

func (s *workflowService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.uowFactory.NewUnitOfWork(ctx).WorkflowRepository().Delete(ctx, id, userID)
	if err != nil {
		return serverutils.NewInternal(err)
	}
	if n == 0 {
		return serverutils.NewNotFound("Workflow not found")
	}
	return nil
}

func (s *workflowService) Generate(ctx context.Context, userID uuid.UUID, req *dto.GenerateWorkflowRequest) (*dto.ProxyResponse, uuid.UUID, error) {
	placeholder, err := s.Create(ctx, userID, &dto.CreateWorkflowRequest{Name: req.Name, Description: req.Description})
	if err != nil {
		return nil, uuid.Nil, err
	}

	body := map[string]interface{}{
		"workflow_id": placeholder.Id.String(),
		"name":        placeholder.Name,
		"description": placeholder.Description,
	}
	if len(req.Nodes) > 0 {
		body["nodes"] = req.Nodes
	}
	if req.BaseURL != "" {
		body["base_url"] = req.BaseURL
	}

	resp, err := s.trigger.Trigger(ctx, userID, body)
	if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, placeholder.Id, nil
	}

	if _, delErr := s.uowFactory.NewUnitOfWork(ctx).WorkflowRepository().Delete(ctx, placeholder.Id, userID); delErr != nil {
		s.logger.Error("WORKFLOW", "Failed to remove placeholder", map[string]interface{}{
			"error":       delErr,
			"workflow_id": placeholder.Id.String(),
		})
	}
	return resp, uuid.Nil, err
}

func (s *workflowService) HandleCallback(ctx context.Context, secret string, req *dto.WorkflowCallbackRequest) (*dto.WorkflowResponse, error) {
	if s.callbackSecret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(s.callbackSecret)) != 1 {
		s.logger.Warn("WORKFLOW", "Callback rejected: bad secret", nil)
		return nil, serverutils.NewUnauthorized("Invalid webhook secret")
	}

	if strings.TrimSpace(req.WorkflowID) == "" {
		return nil, serverutils.NewBadRequest("workflow_id is required")
	}
	id, err := uuid.Parse(strings.TrimSpace(req.WorkflowID))
	if err != nil {
		return nil, serverutils.NewBadRequest("workflow_id must be a valid UUID")
	}

	status := entity.WorkflowStatusReady
	if strings.TrimSpace(req.Status) != "" {
		parsed, ok := entity.ParseWorkflowStatus(req.Status)
		if !ok {
			return nil, serverutils.NewBadRequest("Invalid status").
				WithDetails(map[string]interface{}{"allowed": entity.WorkflowStatuses})
		}
		status = parsed
	}
	for field, raw := range map[string]json.RawMessage{"json": req.JSON, "sticky_notes": req.StickyNotes} {
		if len(raw) > 0 && !json.Valid(raw) {
			return nil, serverutils.NewBadRequest(field + " must be valid JSON")
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	w, err := uow.WorkflowRepository().FindByID(ctx, id)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if w == nil {
		return nil, serverutils.NewNotFound("Workflow not found")
	}

	wasFinished := w.Status.Finished()
	if len(req.JSON) > 0 && string(req.JSON) != "null" {
		w.JSON = req.JSON
	}
	if len(req.StickyNotes) > 0 && string(req.StickyNotes) != "null" {
		w.StickyNotes = req.StickyNotes
	}
	if req.WorkflowURL != "" {
		w.WorkflowURL = req.WorkflowURL
	}
	w.Status = status
	w.UpdatedAt = time.Now()

	if err := uow.WorkflowRepository().Update(ctx, w); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if !wasFinished && status.Finished() {
		if err := uow.UserRepository().IncrementUsage(ctx, w.UserId); err != nil {
			return nil, serverutils.NewInternal(err)
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	s.publishUpdate(w)
	s.logger.Info("WORKFLOW", "Workflow updated by generator", map[string]interface{}{
		"workflow_id": w.Id.String(),
		"status":      string(w.Status),
	})
	return toWorkflowResponse(w), nil
}

func (s *workflowService) publishUpdate(w *entity.Workflow) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(dto.WorkflowEvent{
		WorkflowID: w.Id,
		UserID:     w.UserId,
		Status:     string(w.Status),
		UpdatedAt:  w.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := s.bus.Publish(WorkflowUpdatedTopic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		s.logger.Warn("WORKFLOW", "Failed to publish update", map[string]interface{}{"error": err, "workflow_id": w.Id.String()})
	}
}

func (s *workflowService) Summary(ctx context.Context, userID uuid.UUID) (*dto.DashboardSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := requireUser(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	counts, err := uow.WorkflowRepository().CountByStatus(ctx, userID)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}

	res := &dto.DashboardSummaryResponse{
		ByStatus:         make(map[string]int64, len(entity.WorkflowStatuses)),
		UsageCount:       user.UsageCount,
		Credits:          user.Credits,
		AvailableCredits: user.AvailableCredits(),
		Mode:             string(modeOf(settings.UseOwnAPIKeys)),
	}
	for _, st := range entity.WorkflowStatuses {
		res.ByStatus[string(st)] = counts[st]
		res.TotalWorkflows += counts[st]
	}
	return res, nil
}
