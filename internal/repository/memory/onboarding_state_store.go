package memory

import (
	"context"
	"encoding/json"
	"time"

	"gen8n-be/internal/repository/contract"
	"gen8n-be/pkg/onboarding"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// OnboardingStateStore is the single-instance fallback used when Redis is
// unreachable.
type OnboardingStateStore struct {
	cache *cache.Cache
}

func NewOnboardingStateStore(ttl time.Duration) contract.OnboardingStateStore {
	return &OnboardingStateStore{cache: cache.New(ttl, time.Hour)}
}

func (s *OnboardingStateStore) Load(_ context.Context, userID uuid.UUID) (*onboarding.Wizard, error) {
	x, found := s.cache.Get(userID.String())
	if !found {
		return nil, nil
	}
	var w onboarding.Wizard
	if err := json.Unmarshal(x.([]byte), &w); err != nil {
		return nil, err
	}
	w.Normalize()
	return &w, nil
}

func (s *OnboardingStateStore) Save(_ context.Context, userID uuid.UUID, wizard *onboarding.Wizard) error {
	raw, err := json.Marshal(wizard)
	if err != nil {
		return err
	}
	s.cache.Set(userID.String(), raw, cache.DefaultExpiration)
	return nil
}

func (s *OnboardingStateStore) Clear(_ context.Context, userID uuid.UUID) error {
	s.cache.Delete(userID.String())
	return nil
}
