package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type WorkflowResponse struct {
	Id          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	JSON        json.RawMessage `json:"json"`
	StickyNotes json.RawMessage `json:"sticky_notes"`
	Status      string          `json:"status"`
	WorkflowURL string          `json:"workflow_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type WorkflowListResponse struct {
	Workflows []WorkflowResponse `json:"workflows"`
	From      int                `json:"from"`
	To        int                `json:"to"`
	HasMore   bool               `json:"has_more"`
}

type CreateWorkflowRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

// GenerateWorkflowRequest starts a generation from the dashboard. Extra
// fields are forwarded to the generator untouched.
type GenerateWorkflowRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"required,max=5000"`
	Nodes       json.RawMessage `json:"nodes,omitempty"`
	BaseURL     string          `json:"base_url,omitempty" validate:"omitempty,url"`
}

// WorkflowCallbackRequest is what the generator posts when it finishes.
type WorkflowCallbackRequest struct {
	WorkflowID  string          `json:"workflow_id"`
	JSON        json.RawMessage `json:"json"`
	StickyNotes json.RawMessage `json:"sticky_notes"`
	Status      string          `json:"status"`
	WorkflowURL string          `json:"workflow_url"`
}

// WorkflowEvent is published whenever a workflow row changes.
type WorkflowEvent struct {
	WorkflowID uuid.UUID `json:"workflow_id"`
	UserID     uuid.UUID `json:"user_id"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DashboardSummaryResponse struct {
	TotalWorkflows   int64            `json:"total_workflows"`
	ByStatus         map[string]int64 `json:"by_status"`
	UsageCount       int              `json:"usage_count"`
	Credits          int              `json:"credits"`
	AvailableCredits int              `json:"available_credits"`
	Mode             string           `json:"mode"`
}

// ProxyResponse is an upstream answer relayed to the caller unchanged.
type ProxyResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}
