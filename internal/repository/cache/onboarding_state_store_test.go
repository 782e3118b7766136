package cache

import (
	"context"
	"testing"
	"time"

	"gen8n-be/pkg/onboarding"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *OnboardingStateStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewOnboardingStateStore(rdb, ttl).(*OnboardingStateStore)
}

func TestRedisStoreKeepsDataAndStepApart(t *testing.T) {
	mr, store := newStore(t, time.Hour)
	ctx := context.Background()
	user := uuid.New()

	w := onboarding.New()
	w.Data.Email = "a@b.co"
	w.Step = onboarding.StepBillingChoice
	require.NoError(t, store.Save(ctx, user, w))

	assert.True(t, mr.Exists(dataKey(user)))
	step, err := mr.Get(stepKey(user))
	require.NoError(t, err)
	assert.Equal(t, "2", step)

	got, err := store.Load(ctx, user)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a@b.co", got.Data.Email)
	assert.Equal(t, onboarding.StepBillingChoice, got.Step)
}

func TestRedisStoreExpiresAfterTTL(t *testing.T) {
	mr, store := newStore(t, time.Minute)
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, store.Save(ctx, user, onboarding.New()))
	mr.FastForward(2 * time.Minute)

	got, err := store.Load(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreClearIsIdempotent(t *testing.T) {
	_, store := newStore(t, time.Hour)
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, store.Clear(ctx, user))
	require.NoError(t, store.Save(ctx, user, onboarding.New()))
	require.NoError(t, store.Clear(ctx, user))

	got, err := store.Load(ctx, user)
	require.NoError(t, err)
	assert.Nil(t, got)
}
