package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"gen8n-be/internal/repository/contract"
	"gen8n-be/pkg/onboarding"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	dataKeyPrefix = "gen8n_onboarding_data:"
	stepKeyPrefix = "gen8n_onboarding_step:"
)

// OnboardingStateStore keeps wizard data and the current step under two keys
// so either can be inspected on its own.
type OnboardingStateStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOnboardingStateStore(rdb *redis.Client, ttl time.Duration) contract.OnboardingStateStore {
	return &OnboardingStateStore{rdb: rdb, ttl: ttl}
}

func dataKey(userID uuid.UUID) string { return dataKeyPrefix + userID.String() }
func stepKey(userID uuid.UUID) string { return stepKeyPrefix + userID.String() }

func (s *OnboardingStateStore) Load(ctx context.Context, userID uuid.UUID) (*onboarding.Wizard, error) {
	values, err := s.rdb.MGet(ctx, dataKey(userID), stepKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	rawData, _ := values[0].(string)
	if rawData == "" {
		return nil, nil
	}

	w := onboarding.New()
	if err := json.Unmarshal([]byte(rawData), &w.Data); err != nil {
		return nil, err
	}
	if rawStep, ok := values[1].(string); ok {
		if step, err := strconv.Atoi(rawStep); err == nil {
			w.Step = onboarding.Step(step)
		}
	}
	w.Normalize()
	return w, nil
}

func (s *OnboardingStateStore) Save(ctx context.Context, userID uuid.UUID, wizard *onboarding.Wizard) error {
	raw, err := json.Marshal(wizard.Data)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, dataKey(userID), raw, s.ttl)
		pipe.Set(ctx, stepKey(userID), int(wizard.Step), s.ttl)
		return nil
	})
	return err
}

func (s *OnboardingStateStore) Clear(ctx context.Context, userID uuid.UUID) error {
	err := s.rdb.Del(ctx, dataKey(userID), stepKey(userID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
