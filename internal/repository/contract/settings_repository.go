package contract

import (
	"context"

	"gen8n-be/internal/entity"

	"github.com/google/uuid"
)

type SettingsRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Settings, error)
	// Upsert writes the whole row keyed by user_id.
	Upsert(ctx context.Context, settings *entity.Settings) error
}

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	Upsert(ctx context.Context, profile *entity.Profile) error
}
