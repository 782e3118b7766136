package contract

import (
	"context"

	"gen8n-be/internal/entity"

	"github.com/google/uuid"
)

// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	// UpdateName writes only the name columns so balances changed by a
	// concurrent transaction are never overwritten.
	UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName string) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// AddCredits adjusts the balance atomically in SQL.
	AddCredits(ctx context.Context, id uuid.UUID, amount int) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error

	FindByProvider(ctx context.Context, provider, providerUserID string) (*entity.User, error)
	SaveProvider(ctx context.Context, provider *entity.UserProvider) error
}
