package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/contract"
	"gen8n-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	ProviderGoogle    = "google"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	// HandleCallback returns the client URL the browser should land on.
	HandleCallback(ctx context.Context, provider, state, code string) (string, error)
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	ClientURL    string
	JWTSecret    string
	TokenTTL     time.Duration
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	states     contract.OAuthStateStore
	googleConf *oauth2.Config
	cfg        OAuthConfig
	logger     logger.ILogger
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, states contract.OAuthStateStore, cfg OAuthConfig, log logger.ILogger) IOAuthService {
	return &oauthService{
		uowFactory: uowFactory,
		states:     states,
		googleConf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		cfg:    cfg,
		logger: log,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	if provider != ProviderGoogle {
		return "", serverutils.NewBadRequest("Unsupported provider")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", serverutils.NewInternal(err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	s.states.Issue(state)

	return s.googleConf.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider, state, code string) (string, error) {
	if provider != ProviderGoogle {
		return "", serverutils.NewBadRequest("Unsupported provider")
	}
	if !s.states.Consume(state) {
		return "", serverutils.NewBadRequest("Invalid or expired OAuth state")
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("OAUTH", "Code exchange failed", map[string]interface{}{"error": err})
		return "", serverutils.NewBadRequest("Code exchange failed")
	}

	profile, err := s.fetchGoogleProfile(ctx, token)
	if err != nil {
		s.logger.Error("OAUTH", "Failed to fetch user info", map[string]interface{}{"error": err})
		return "", serverutils.NewBadGateway("Failed to fetch user info", err)
	}

	user, onboarded, err := s.signIn(ctx, provider, profile)
	if err != nil {
		return "", err
	}

	sessionToken, err := serverutils.IssueSessionToken(s.cfg.JWTSecret, user.Id, s.cfg.TokenTTL)
	if err != nil {
		return "", serverutils.NewInternal(err)
	}
	return fmt.Sprintf("%s%s?token=%s", s.cfg.ClientURL, landingPath(onboarded), url.QueryEscape(sessionToken)), nil
}

func (s *oauthService) fetchGoogleProfile(ctx context.Context, token *oauth2.Token) (*dto.OAuthProfile, error) {
	resp, err := s.googleConf.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &dto.OAuthProfile{
		ProviderUserID: info.ID,
		Email:          info.Email,
		FirstName:      info.GivenName,
		LastName:       info.FamilyName,
		AvatarURL:      info.Picture,
	}, nil
}

// signIn resolves the provider identity to a user, linking by email and
// creating the account on first sight.
func (s *oauthService) signIn(ctx context.Context, provider string, profile *dto.OAuthProfile) (*entity.User, bool, error) {
	email := normalizeEmail(profile.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, false, serverutils.NewBadRequest("Provider did not return an email address")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	users := uow.UserRepository()
	user, err := users.FindByProvider(ctx, provider, profile.ProviderUserID)
	if err != nil {
		return nil, false, serverutils.NewInternal(err)
	}
	linked := user != nil

	if user == nil {
		if user, err = users.FindByEmail(ctx, email); err != nil {
			return nil, false, serverutils.NewInternal(err)
		}
	}
	if user == nil {
		now := time.Now()
		user = &entity.User{
			Id:        uuid.New(),
			Email:     email,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Plan:      entity.UserPlanFree,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := newAccount(ctx, uow, user); err != nil {
			return nil, false, serverutils.NewInternal(err)
		}
		s.logger.Info("OAUTH", "User created", map[string]interface{}{"user_id": user.Id.String(), "provider": provider})
	}
	if !linked {
		link := &entity.UserProvider{
			Id:             uuid.New(),
			UserId:         user.Id,
			ProviderName:   provider,
			ProviderUserId: profile.ProviderUserID,
			AvatarURL:      profile.AvatarURL,
		}
		if err := users.SaveProvider(ctx, link); err != nil {
			return nil, false, serverutils.NewInternal(err)
		}
	}

	settings, err := settingsOrDefault(ctx, uow, user.Id)
	if err != nil {
		return nil, false, err
	}
	if err := uow.Commit(); err != nil {
		return nil, false, serverutils.NewInternal(err)
	}
	return user, settings.OnboardingComplete, nil
}
