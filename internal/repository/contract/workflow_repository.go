package contract

import (
	"context"

	"gen8n-be/internal/entity"

	"github.com/google/uuid"
)

type WorkflowRepository interface {
	Create(ctx context.Context, workflow *entity.Workflow) error
	Update(ctx context.Context, workflow *entity.Workflow) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Workflow, error)
	// FindOwned returns nil when the row is missing or belongs to someone else.
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*entity.Workflow, error)
	// List returns rows From..To inclusive, newest first.
	List(ctx context.Context, userID uuid.UUID, query entity.WorkflowQuery) ([]*entity.Workflow, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[entity.WorkflowStatus]int64, error)
}
