package dto

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackRequest struct {
	Type              string `json:"type" validate:"required,oneof=bug feature comment"`
	Content           string `json:"content" validate:"required,max=5000"`
	RelatedWorkflowID string `json:"related_workflow_id" validate:"omitempty,uuid"`
}

type FeedbackResponse struct {
	Id        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
