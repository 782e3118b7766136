package entity

import (
	"time"

	"github.com/google/uuid"
)

type FeedbackType string

const (
	FeedbackBug     FeedbackType = "bug"
	FeedbackFeature FeedbackType = "feature"
	FeedbackComment FeedbackType = "comment"
)

type Feedback struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	Type              FeedbackType
	Content           string
	RelatedWorkflowId *uuid.UUID
	CreatedAt         time.Time
}
