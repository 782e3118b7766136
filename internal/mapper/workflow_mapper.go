package mapper

import (
	"encoding/json"

	"gen8n-be/internal/entity"
	"gen8n-be/internal/model"

	"gorm.io/datatypes"
)

type WorkflowMapper struct{}

func NewWorkflowMapper() *WorkflowMapper {
	return &WorkflowMapper{}
}

func jsonOrEmpty(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte(`{}`)
	}
	return raw
}

func (m *WorkflowMapper) ToEntity(w *model.Workflow) *entity.Workflow {
	if w == nil {
		return nil
	}
	return &entity.Workflow{
		Id:          w.Id,
		UserId:      w.UserId,
		Name:        w.Name,
		Description: w.Description,
		JSON:        json.RawMessage(jsonOrEmpty(w.Json)),
		StickyNotes: json.RawMessage(jsonOrEmpty(w.StickyNotes)),
		Status:      entity.WorkflowStatus(w.Status),
		WorkflowURL: w.WorkflowURL,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func (m *WorkflowMapper) ToModel(w *entity.Workflow) *model.Workflow {
	if w == nil {
		return nil
	}
	return &model.Workflow{
		Id:          w.Id,
		UserId:      w.UserId,
		Name:        w.Name,
		Description: w.Description,
		Json:        datatypes.JSON(jsonOrEmpty(w.JSON)),
		StickyNotes: datatypes.JSON(jsonOrEmpty(w.StickyNotes)),
		Status:      string(w.Status),
		WorkflowURL: w.WorkflowURL,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func (m *WorkflowMapper) ToEntities(ws []*model.Workflow) []*entity.Workflow {
	entities := make([]*entity.Workflow, len(ws))
	for i, w := range ws {
		entities[i] = m.ToEntity(w)
	}
	return entities
}
