package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Workflow struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index:idx_workflows_user_created,priority:1"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Description string         `gorm:"type:text"`
	Json        datatypes.JSON `gorm:"column:json;type:jsonb;not null;default:'{}'"`
	StickyNotes datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
	Status      string         `gorm:"type:varchar(20);not null;default:'pending'"`
	WorkflowURL string         `gorm:"column:workflow_url;type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index:idx_workflows_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Workflow) TableName() string {
	return "workflows"
}
