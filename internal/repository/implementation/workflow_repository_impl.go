package implementation

import (
	"context"
	"errors"

	"gen8n-be/internal/entity"
	"gen8n-be/internal/mapper"
	"gen8n-be/internal/model"
	"gen8n-be/internal/repository/contract"
	"gen8n-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkflowRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkflowMapper
}

func NewWorkflowRepository(db *gorm.DB) contract.WorkflowRepository {
	return &WorkflowRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkflowMapper(),
	}
}

func (r *WorkflowRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Workflow, error) {
	var row model.Workflow
	if err := specification.Apply(r.db.WithContext(ctx), specs...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&row), nil
}

func (r *WorkflowRepositoryImpl) Create(ctx context.Context, workflow *entity.Workflow) error {
	row := r.mapper.ToModel(workflow)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	*workflow = *r.mapper.ToEntity(row)
	return nil
}

func (r *WorkflowRepositoryImpl) Update(ctx context.Context, workflow *entity.Workflow) error {
	row := r.mapper.ToModel(workflow)
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return err
	}
	*workflow = *r.mapper.ToEntity(row)
	return nil
}

func (r *WorkflowRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Workflow, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *WorkflowRepositoryImpl) FindOwned(ctx context.Context, id, userID uuid.UUID) (*entity.Workflow, error) {
	return r.findOne(ctx, specification.ByID{ID: id}, specification.OwnedBy{UserID: userID})
}

func (r *WorkflowRepositoryImpl) List(ctx context.Context, userID uuid.UUID, query entity.WorkflowQuery) ([]*entity.Workflow, error) {
	var rows []*model.Workflow
	err := specification.Apply(r.db.WithContext(ctx),
		specification.OwnedBy{UserID: userID},
		specification.WorkflowSearch{Term: query.Search},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Offset: query.From, Limit: query.To - query.From + 1},
	).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *WorkflowRepositoryImpl) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	res := specification.Apply(r.db.WithContext(ctx),
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userID},
	).Delete(&model.Workflow{})
	return res.RowsAffected, res.Error
}

func (r *WorkflowRepositoryImpl) CountByStatus(ctx context.Context, userID uuid.UUID) (map[entity.WorkflowStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := specification.Apply(r.db.WithContext(ctx).Model(&model.Workflow{}),
		specification.OwnedBy{UserID: userID},
	).Select("status, COUNT(*) AS total").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[entity.WorkflowStatus]int64, len(rows))
	for _, row := range rows {
		counts[entity.WorkflowStatus(row.Status)] = row.Total
	}
	return counts, nil
}
