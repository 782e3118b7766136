package service

import (
	"context"
	"errors"
	"time"

	"gen8n-be/internal/dto"
	"gen8n-be/internal/entity"
	"gen8n-be/internal/pkg/logger"
	"gen8n-be/internal/pkg/serverutils"
	"gen8n-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Session(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	jwtSecret  string
	tokenTTL   time.Duration
	logger     logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, jwtSecret string, tokenTTL time.Duration, log logger.ILogger) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		logger:     log,
	}
}

var errInvalidCredentials = serverutils.NewUnauthorized("Invalid email or password")

func landingPath(onboardingComplete bool) string {
	if onboardingComplete {
		return serverutils.DashboardPath
	}
	return serverutils.OnboardingPath
}

// newAccount creates a user together with the empty settings row every user
// is expected to have.
func newAccount(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) error {
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return err
	}
	return uow.SettingsRepository().Upsert(ctx, entity.NewSettings(user.Id))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	hashStr := string(hash)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().FindByEmail(ctx, email)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if existing != nil {
		return nil, serverutils.NewConflict("Email already registered")
	}

	now := time.Now()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		PasswordHash: &hashStr,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Plan:         entity.UserPlanFree,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := newAccount(ctx, uow, user); err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if err := uow.Commit(); err != nil {
		return nil, serverutils.NewInternal(err)
	}

	s.logger.Info("AUTH", "User registered", map[string]interface{}{"user_id": user.Id.String()})
	return s.authResponse(user, false)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if user == nil {
		return nil, errInvalidCredentials
	}
	if user.PasswordHash == nil {
		return nil, serverutils.NewBadRequest("This account signs in with Google")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.logger.Warn("AUTH", "Password check failed", map[string]interface{}{"error": err, "user_id": user.Id.String()})
		}
		return nil, errInvalidCredentials
	}

	settings, err := settingsOrDefault(ctx, uow, user.Id)
	if err != nil {
		return nil, err
	}
	return s.authResponse(user, settings.OnboardingComplete)
}

func (s *authService) Session(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindByID(ctx, userID)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	if user == nil {
		return &dto.SessionResponse{Redirect: serverutils.LoginPath}, nil
	}
	settings, err := settingsOrDefault(ctx, uow, userID)
	if err != nil {
		return nil, err
	}
	return &dto.SessionResponse{
		Authenticated:      true,
		UserID:             &user.Id,
		Email:              user.Email,
		OnboardingComplete: settings.OnboardingComplete,
		Redirect:           landingPath(settings.OnboardingComplete),
	}, nil
}

func (s *authService) authResponse(user *entity.User, onboardingComplete bool) (*dto.AuthResponse, error) {
	token, err := serverutils.IssueSessionToken(s.jwtSecret, user.Id, s.tokenTTL)
	if err != nil {
		return nil, serverutils.NewInternal(err)
	}
	return &dto.AuthResponse{
		Token:              token,
		User:               toUserResponse(user),
		OnboardingComplete: onboardingComplete,
		Redirect:           landingPath(onboardingComplete),
	}, nil
}
