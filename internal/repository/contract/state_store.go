package contract

import (
	"context"

	"gen8n-be/pkg/onboarding"

	"github.com/google/uuid"
)

// OAuthStateStore remembers issued OAuth state values until they are consumed.
type OAuthStateStore interface {
	Issue(state string)
	// Consume reports whether the state was issued and removes it.
	Consume(state string) bool
}

// OnboardingStateStore keeps an in-progress wizard per user. Load returns
// (nil, nil) when nothing is stored.
type OnboardingStateStore interface {
	Load(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, error)
	Save(ctx context.Context, userID uuid.UUID, wizard *onboarding.Wizard) error
	Clear(ctx context.Context, userID uuid.UUID) error
}
