package service

import (
	"context"
	"net/http"
	"testing"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/pkg/credit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettingsMasksKeys(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	db.putSettings(byokSettings(user.Id))
	svc := NewSettingsService(&memFactory{db}, nopLog())

	res, err := svc.GetSettings(context.Background(), user.Id)

	require.NoError(t, err)
	assert.Equal(t, "anthropic", res.MainProvider)
	require.Contains(t, res.Keys, "openai")
	assert.NotContains(t, res.Keys["openai"].Masked, "fallbackkey")
	assert.Contains(t, res.Keys["openai"].Masked, "5678")
}

func TestUpdateAPIKeysValidatesFormat(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{Credits: 1})
	svc := NewSettingsService(&memFactory{db}, nopLog())

	_, err := svc.UpdateAPIKeys(context.Background(), user.Id, &dto.UpdateAPIKeysRequest{
		Keys: map[string]string{"google": "not-a-google-key", "cohere": "whatever-long-key"},
	})

	require.Equal(t, http.StatusBadRequest, statusOf(t, err))
	appErr, _ := serverutils.AsAppError(err)
	details := appErr.Details.(map[string]string)
	assert.Contains(t, details, "google")
	assert.Contains(t, details, "cohere")
	_, ok := db.settingsOf(user.Id)
	assert.False(t, ok)
}

func TestUpdateAPIKeysKeepsOwnKeysUsable(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	db.putSettings(byokSettings(user.Id))
	svc := NewSettingsService(&memFactory{db}, nopLog())
	ctx := context.Background()

	_, err := svc.UpdateAPIKeys(ctx, user.Id, &dto.UpdateAPIKeysRequest{FallbackProvider: ptr("anthropic")})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.UpdateAPIKeys(ctx, user.Id, &dto.UpdateAPIKeysRequest{FallbackProvider: ptr("google")})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	res, err := svc.UpdateAPIKeys(ctx, user.Id, &dto.UpdateAPIKeysRequest{
		FallbackProvider: ptr("google"),
		Keys:             map[string]string{"google": "AIzaSyNewGoogleKey42"},
		KeyNames:         map[string]string{"google": "team"},
	})
	require.NoError(t, err)
	assert.Equal(t, "google", res.FallbackProvider)
	assert.Equal(t, "team", res.Keys["google"].Name)

	s, _ := db.settingsOf(user.Id)
	assert.True(t, credit.Resolve(credit.Balance{}, s.KeySettings()).CanGenerate)
}

func TestDeleteAPIKey(t *testing.T) {
	db := newMemDB()
	user := db.addUser(entity.User{})
	settings := byokSettings(user.Id)
	settings.APIKeys[credit.ProviderGoogle] = "AIzaSySpareKey12345"
	db.putSettings(settings)
	svc := NewSettingsService(&memFactory{db}, nopLog())
	ctx := context.Background()

	_, err := svc.DeleteAPIKey(ctx, user.Id, "openai")
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, err = svc.DeleteAPIKey(ctx, user.Id, "cohere")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	res, err := svc.DeleteAPIKey(ctx, user.Id, "google")
	require.NoError(t, err)
	assert.NotContains(t, res.Keys, "google")
	assert.Contains(t, res.Keys, "openai")
}
