package model

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	Id                uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type              string     `gorm:"type:varchar(20);not null"`
	Content           string     `gorm:"type:text;not null"`
	RelatedWorkflowId *uuid.UUID `gorm:"type:uuid"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
}

func (Feedback) TableName() string {
	return "feedback"
}
