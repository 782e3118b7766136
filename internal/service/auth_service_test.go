package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func TestRegisterThenLogin(t *testing.T) {
	db := newMemDB()
	svc := NewAuthService(&memFactory{db}, testJWTSecret, time.Hour, nopLog())
	ctx := context.Background()

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Email: " New@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", reg.User.Email)
	assert.False(t, reg.OnboardingComplete)
	assert.Equal(t, "/onboarding", reg.Redirect)

	userID, err := serverutils.ParseSessionToken(testJWTSecret, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.Id, userID)
	_, ok := db.settingsOf(userID)
	assert.True(t, ok, "registration creates the settings row")

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "new@example.com", Password: "another one"})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "new@example.com", Password: "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "NEW@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.Id, login.User.Id)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&memFactory{newMemDB()}, testJWTSecret, time.Hour, nopLog())

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"})

	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestSessionRedirects(t *testing.T) {
	db := newMemDB()
	onboarded := db.addUser(entity.User{})
	db.putSettings(byokSettings(onboarded.Id))
	fresh := db.addUser(entity.User{})
	svc := NewAuthService(&memFactory{db}, testJWTSecret, time.Hour, nopLog())
	ctx := context.Background()

	res, err := svc.Session(ctx, onboarded.Id)
	require.NoError(t, err)
	assert.True(t, res.Authenticated)
	assert.Equal(t, "/dashboard", res.Redirect)

	res, err = svc.Session(ctx, fresh.Id)
	require.NoError(t, err)
	assert.Equal(t, "/onboarding", res.Redirect)

	res, err = svc.Session(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, res.Authenticated)
	assert.Equal(t, "/login", res.Redirect)
}

func TestOAuthSignInLinksExistingEmail(t *testing.T) {
	db := newMemDB()
	existing := db.addUser(entity.User{Email: "ada@example.com"})
	svc := NewOAuthService(&memFactory{db}, memory.NewOAuthStateStore(), OAuthConfig{JWTSecret: testJWTSecret}, nopLog()).(*oauthService)
	profile := &dto.OAuthProfile{ProviderUserID: "g-123", Email: "Ada@Example.com"}

	user, onboarded, err := svc.signIn(context.Background(), ProviderGoogle, profile)
	require.NoError(t, err)
	assert.Equal(t, existing.Id, user.Id)
	assert.False(t, onboarded)
	require.Len(t, db.providers, 1)

	again, _, err := svc.signIn(context.Background(), ProviderGoogle, profile)
	require.NoError(t, err)
	assert.Equal(t, existing.Id, again.Id)
	assert.Len(t, db.providers, 1)
}

func TestOAuthSignInCreatesAccount(t *testing.T) {
	db := newMemDB()
	svc := NewOAuthService(&memFactory{db}, memory.NewOAuthStateStore(), OAuthConfig{JWTSecret: testJWTSecret}, nopLog()).(*oauthService)

	user, _, err := svc.signIn(context.Background(), ProviderGoogle, &dto.OAuthProfile{
		ProviderUserID: "g-456", Email: "grace@example.com", FirstName: "Grace",
	})

	require.NoError(t, err)
	assert.Equal(t, "Grace", db.user(user.Id).FirstName)
	_, ok := db.settingsOf(user.Id)
	assert.True(t, ok)
}

func TestOAuthCallbackRejectsUnknownState(t *testing.T) {
	svc := NewOAuthService(&memFactory{newMemDB()}, memory.NewOAuthStateStore(), OAuthConfig{}, nopLog())

	_, err := svc.HandleCallback(context.Background(), ProviderGoogle, "forged", "code")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = svc.GetLoginURL("github")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	loginURL, err := svc.GetLoginURL(ProviderGoogle)
	require.NoError(t, err)
	assert.Contains(t, loginURL, "state=")
}
