package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

type WorkflowStatus string

const (
	WorkflowStatusPending  WorkflowStatus = "pending"
	WorkflowStatusReady    WorkflowStatus = "ready"
	WorkflowStatusComplete WorkflowStatus = "complete"
	WorkflowStatusError    WorkflowStatus = "error"
)

var WorkflowStatuses = []WorkflowStatus{
	WorkflowStatusPending,
	WorkflowStatusReady,
	WorkflowStatusComplete,
	WorkflowStatusError,
}

// ParseWorkflowStatus accepts the canonical values plus the spellings the
// generator has been seen to send.
func ParseWorkflowStatus(s string) (WorkflowStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "processing", "generating":
		return WorkflowStatusPending, true
	case "ready":
		return WorkflowStatusReady, true
	case "complete", "completed", "done":
		return WorkflowStatusComplete, true
	case "error", "failed":
		return WorkflowStatusError, true
	}
	return "", false
}

// Finished reports whether the workflow holds a usable artifact.
func (s WorkflowStatus) Finished() bool {
	return s == WorkflowStatusReady || s == WorkflowStatusComplete
}

type Workflow struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Name        string
	Description string
	JSON        json.RawMessage
	StickyNotes json.RawMessage
	Status      WorkflowStatus
	WorkflowURL string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPlaceholder is the pending row inserted before generation starts.
func NewPlaceholder(userID uuid.UUID, name, description string) *Workflow {
	now := time.Now()
	return &Workflow{
		Id:          uuid.New(),
		UserId:      userID,
		Name:        name,
		Description: description,
		JSON:        json.RawMessage(`{}`),
		StickyNotes: json.RawMessage(`{}`),
		Status:      WorkflowStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WorkflowQuery selects an inclusive row range of a user's workflows.
type WorkflowQuery struct {
	From   int
	To     int
	Search string
}
