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
	"gorm.io/gorm/clause"
)

var settingsUpsertColumns = []string{
	"main_provider", "fallback_provider",
	"anthropic_key", "anthropic_key_name",
	"openai_key", "openai_key_name",
	"openrouter_key", "openrouter_key_name",
	"google_key", "google_key_name",
	"use_own_api_keys", "onboarding_complete", "updated_at",
}

var profileUpsertColumns = []string{
	"company_or_project", "usage_intent", "marketing_source", "n8n_base_url", "updated_at",
}

type SettingsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SettingsMapper
}

func NewSettingsRepository(db *gorm.DB) contract.SettingsRepository {
	return &SettingsRepositoryImpl{
		db:     db,
		mapper: mapper.NewSettingsMapper(),
	}
}

func (r *SettingsRepositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Settings, error) {
	var row model.Settings
	if err := specification.Apply(r.db.WithContext(ctx), specification.OwnedBy{UserID: userID}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&row), nil
}

func (r *SettingsRepositoryImpl) Upsert(ctx context.Context, settings *entity.Settings) error {
	if settings.Id == uuid.Nil {
		settings.Id = uuid.New()
	}
	row := r.mapper.ToModel(settings)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(settingsUpsertColumns),
	}).Create(row).Error
	if err != nil {
		return err
	}
	settings.UpdatedAt = row.UpdatedAt
	return nil
}

type ProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SettingsMapper
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &ProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewSettingsMapper(),
	}
}

func (r *ProfileRepositoryImpl) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var row model.Profile
	if err := specification.Apply(r.db.WithContext(ctx), specification.OwnedBy{UserID: userID}).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ProfileToEntity(&row), nil
}

func (r *ProfileRepositoryImpl) Upsert(ctx context.Context, profile *entity.Profile) error {
	if profile.Id == uuid.Nil {
		profile.Id = uuid.New()
	}
	row := r.mapper.ProfileToModel(profile)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(profileUpsertColumns),
	}).Create(row).Error
}
